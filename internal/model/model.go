package model

// Wire records for the society-management API. The server owns the canonical
// schema; these structs only declare the fields this client renders, filters,
// and exports. Timestamps stay as the server's strings (RFC 3339 datetimes or
// bare dates) and are parsed at display time. Money fields arrive as decimal
// strings and are coerced to numbers only for aggregation.

type UserRef struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type UserStatus struct {
	ID          int    `json:"id"`
	IsSuperuser bool   `json:"is_superuser"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`

	ForcePasswordChange bool    `json:"force_password_change"`
	PhoneNumber         string  `json:"phone_number"`
	Bio                 string  `json:"bio"`
	Avatar              *string `json:"avatar"`
	EmailVerified       bool    `json:"email_verified"`
	PhoneVerified       bool    `json:"phone_verified"`
	TwoFactorEnabled    bool    `json:"two_factor_enabled"`
}

func (s UserStatus) DisplayName() string {
	if s.FirstName != "" {
		return s.FirstName
	}
	return s.Username
}

type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	DateJoined  string `json:"date_joined,omitempty"`
}

type Flat struct {
	ID         int    `json:"id"`
	FlatNumber string `json:"flat_number"`
	Building   string `json:"building,omitempty"`
	Floor      *int   `json:"floor,omitempty"`
	AreaSqft   *int   `json:"area_sqft,omitempty"`
	Bedrooms   int    `json:"bedrooms"`
	Bathrooms  int    `json:"bathrooms"`
	// Decimal field; serialized as a string by the server.
	MonthlyRent string    `json:"monthly_rent,omitempty"`
	IsOccupied  bool      `json:"is_occupied"`
	Owner       *UserRef  `json:"owner,omitempty"`
	Tenants     []UserRef `json:"tenants,omitempty"`
}

// FlatRef is the nested shape embedded in bills, complaints and camera
// requests (id + number only).
type FlatRef struct {
	ID         int    `json:"id"`
	FlatNumber string `json:"flat_number"`
}

type Bill struct {
	ID       int     `json:"id"`
	Flat     FlatRef `json:"flat"`
	BillType string  `json:"bill_type"`
	// Decimal field; serialized as a string by the server.
	Amount      string  `json:"amount"`
	BillMonth   int     `json:"bill_month"`
	BillYear    int     `json:"bill_year"`
	DueDate     string  `json:"due_date"`
	Status      string  `json:"status"`
	PaymentDate *string `json:"payment_date,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

type Complaint struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Priority      string   `json:"priority"`
	Status        string   `json:"status"`
	Flat          *FlatRef `json:"flat,omitempty"`
	Author        *UserRef `json:"author,omitempty"`
	AdminResponse string   `json:"admin_response,omitempty"`
	ResolvedAt    *string  `json:"resolved_at,omitempty"`
	CreatedAt     string   `json:"created_at,omitempty"`
}

type Vehicle struct {
	ID            int      `json:"id"`
	VehicleNumber string   `json:"vehicle_number"`
	VehicleType   string   `json:"vehicle_type"`
	Brand         string   `json:"brand,omitempty"`
	Color         string   `json:"color,omitempty"`
	IsActive      bool     `json:"is_active"`
	Resident      *UserRef `json:"resident,omitempty"`
	CreatedAt     string   `json:"created_at,omitempty"`
}

type CameraRequest struct {
	ID            int      `json:"id"`
	Flat          FlatRef  `json:"flat"`
	Requester     *UserRef `json:"requester,omitempty"`
	Reason        string   `json:"reason"`
	RequestedDate string   `json:"requested_date"`
	DurationHours int      `json:"duration_hours"`
	Status        string   `json:"status"`
	AccessLink    string   `json:"access_link,omitempty"`
	RequestedAt   string   `json:"requested_at,omitempty"`
}

type Notification struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	Message          string `json:"message"`
	NotificationType string `json:"notification_type"`
	Priority         string `json:"priority"`
	IsRead           bool   `json:"is_read"`
	IsActive         bool   `json:"is_active"`
	CreatedAt        string `json:"created_at,omitempty"`
}

type ForumCategory struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type ForumComment struct {
	// Comments share the forum's UUID primary keys.
	ID        string   `json:"id"`
	Post      string   `json:"post"`
	Author    *UserRef `json:"author,omitempty"`
	Content   string   `json:"content"`
	VoteScore int      `json:"vote_score"`
	CreatedAt string   `json:"created_at,omitempty"`
}

type ForumPost struct {
	// Forum posts use UUID primary keys (the rest of the API uses ints).
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Author       *UserRef `json:"author,omitempty"`
	Category     int      `json:"category"`
	CategoryName string   `json:"category_name,omitempty"`
	PostType     string   `json:"post_type"`
	IsPinned     bool     `json:"is_pinned"`
	IsLocked     bool     `json:"is_locked"`
	VoteScore    int      `json:"vote_score"`
	CommentCount int      `json:"comment_count"`
	Views        int      `json:"views"`
	CreatedAt    string   `json:"created_at,omitempty"`
}
