package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"nconnect-cli/internal/model"
)

// Client talks to the society-management API. All business logic,
// persistence and authorization live on the server; the client only shapes
// requests and normalizes responses.
//
// The token is owned by the session controller and updated through SetToken.
// Requests issued before a logout may still complete afterwards; callers
// discard stale completions by generation (see internal/feed) rather than by
// cancellation.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger

	mu    sync.RWMutex
	token string
}

func New(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do issues one request and returns the response body for 2xx statuses.
// Non-2xx responses come back as *RequestError with whatever structured
// detail the server provided; transport failures are wrapped.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, header http.Header, body io.Reader) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	c.log.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseRequestError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, q, Headers(c.Token()), nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("GET %s: decode body: %w", path, err)
	}
	return nil
}

func (c *Client) submitJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode payload: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, method, path, nil, Headers(c.Token()), body)
}

// formField is one entry of an ordered multipart body.
type formField struct {
	key   string
	value string
}

// submitForm sends a multipart/form-data body. Several endpoints expect
// multipart even with no file attached, so the JSON content type is replaced
// by the encoder's boundary-carrying one.
func (c *Client) submitForm(ctx context.Context, method, path string, fields []formField) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, fmt.Errorf("%s %s: encode form: %w", method, path, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s %s: encode form: %w", method, path, err)
	}

	header := Headers(c.Token())
	header.Set("Content-Type", w.FormDataContentType())
	return c.do(ctx, method, path, nil, header, &buf)
}

// decodeList normalizes a collection response: either a bare JSON array or a
// paginated envelope exposing a "results" field. Anything else is an error.
func decodeList[T any](body []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(body, &items); err == nil {
		if items == nil {
			items = []T{}
		}
		return items, nil
	}

	var envelope struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode list: neither array nor envelope: %w", err)
	}
	if envelope.Results == nil {
		envelope.Results = []T{}
	}
	return envelope.Results, nil
}

func fetchList[T any](ctx context.Context, c *Client, path string, q url.Values) ([]T, error) {
	body, err := c.do(ctx, http.MethodGet, path, q, Headers(c.Token()), nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[T](body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return items, nil
}

// --- Authentication ---

// Login exchanges credentials for an opaque token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload := map[string]string{"username": username, "password": password}
	body, err := c.submitJSON(ctx, http.MethodPost, EndpointLogin, payload)
	if err != nil {
		return "", err
	}
	var out struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("login: decode body: %w", err)
	}
	if out.Key == "" {
		return "", fmt.Errorf("login: response carried no token")
	}
	return out.Key, nil
}

// Register creates an account. A successful registration does not log the
// user in; the caller routes back to sign-in.
func (c *Client) Register(ctx context.Context, username, email, password, password2 string) error {
	payload := map[string]string{
		"username":  username,
		"email":     email,
		"password":  password,
		"password2": password2,
	}
	_, err := c.submitJSON(ctx, http.MethodPost, EndpointRegister, payload)
	return err
}

// LogoutRemote invalidates the token server-side. Local logout does not
// depend on it succeeding.
func (c *Client) LogoutRemote(ctx context.Context) error {
	_, err := c.submitJSON(ctx, http.MethodPost, EndpointLogout, nil)
	return err
}

// UserStatus fetches the current user's status record; this is the
// verification round-trip of the session controller.
func (c *Client) UserStatus(ctx context.Context) (model.UserStatus, error) {
	var st model.UserStatus
	if err := c.getJSON(ctx, EndpointUserStatus, nil, &st); err != nil {
		return model.UserStatus{}, err
	}
	return st, nil
}

// --- Resource lists ---

func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	return fetchList[model.User](ctx, c, EndpointUsers, nil)
}

func (c *Client) Flats(ctx context.Context, q url.Values) ([]model.Flat, error) {
	return fetchList[model.Flat](ctx, c, EndpointFlats, q)
}

func (c *Client) Bills(ctx context.Context, q url.Values) ([]model.Bill, error) {
	return fetchList[model.Bill](ctx, c, EndpointBills, q)
}

func (c *Client) Complaints(ctx context.Context, q url.Values) ([]model.Complaint, error) {
	return fetchList[model.Complaint](ctx, c, EndpointComplaints, q)
}

func (c *Client) Vehicles(ctx context.Context, q url.Values) ([]model.Vehicle, error) {
	return fetchList[model.Vehicle](ctx, c, EndpointVehicles, q)
}

func (c *Client) CameraRequests(ctx context.Context, q url.Values) ([]model.CameraRequest, error) {
	return fetchList[model.CameraRequest](ctx, c, EndpointCameraRequests, q)
}

func (c *Client) Notifications(ctx context.Context) ([]model.Notification, error) {
	return fetchList[model.Notification](ctx, c, EndpointNotifications, nil)
}

func (c *Client) ForumCategories(ctx context.Context) ([]model.ForumCategory, error) {
	return fetchList[model.ForumCategory](ctx, c, EndpointForumCategories, nil)
}

func (c *Client) ForumPosts(ctx context.Context) ([]model.ForumPost, error) {
	return fetchList[model.ForumPost](ctx, c, EndpointForumPosts, nil)
}

// ForumComments lists one post's comments. Posts and comments key on UUIDs,
// unlike the rest of the API.
func (c *Client) ForumComments(ctx context.Context, postID string) ([]model.ForumComment, error) {
	q := url.Values{"post": []string{postID}}
	return fetchList[model.ForumComment](ctx, c, EndpointForumComments, q)
}

// Resident scoping: the server filters collections by the acting user via
// query parameters; admins fetch unscoped lists.

func ScopeFlatsByResident(userID int) url.Values {
	return url.Values{"resident": []string{strconv.Itoa(userID)}}
}

func ScopeVehiclesByResident(username string) url.Values {
	return url.Values{"resident__username": []string{username}}
}

func ScopeComplaintsByAuthor(username string) url.Values {
	return url.Values{"author__username": []string{username}}
}

func ScopeBillsByOwner(username string) url.Values {
	return url.Values{"flat__owner__username": []string{username}}
}

func ScopeCameraRequestsByRequester(username string) url.Values {
	return url.Values{"requester__username": []string{username}}
}

// --- Writes (JSON endpoints) ---

type UserPayload struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

func (c *Client) CreateUser(ctx context.Context, p UserPayload) error {
	_, err := c.submitJSON(ctx, http.MethodPost, EndpointUsers, p)
	return err
}

type FlatPayload struct {
	FlatNumber  string   `json:"flat_number"`
	Floor       *int     `json:"floor"`
	AreaSqft    *int     `json:"area_sqft"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Building    string   `json:"building"`
	MonthlyRent *float64 `json:"monthly_rent"`
}

func (c *Client) CreateFlat(ctx context.Context, p FlatPayload) error {
	_, err := c.submitJSON(ctx, http.MethodPost, EndpointFlats, p)
	return err
}

type AssignFlatPayload struct {
	FlatID         int    `json:"flat_id"`
	AssignmentType string `json:"assignment_type"`
	Notes          string `json:"notes,omitempty"`
}

func (c *Client) AssignFlat(ctx context.Context, userID int, p AssignFlatPayload) error {
	_, err := c.submitJSON(ctx, http.MethodPost, endpointAssignFlat(userID), p)
	return err
}

func (c *Client) RemoveFromFlat(ctx context.Context, userID, flatID int) error {
	payload := map[string]int{"flat_id": flatID}
	_, err := c.submitJSON(ctx, http.MethodPost, endpointRemoveFromFlat(userID), payload)
	return err
}

func (c *Client) ResetPassword(ctx context.Context, userID int, newPassword string) error {
	payload := map[string]string{"new_password": newPassword}
	_, err := c.submitJSON(ctx, http.MethodPost, endpointResetPassword(userID), payload)
	return err
}

type NotificationPayload struct {
	Title            string `json:"title"`
	Message          string `json:"message"`
	Priority         string `json:"priority"`
	NotificationType string `json:"notification_type"`
	Recipients       []int  `json:"recipients"`
}

func (c *Client) CreateNotification(ctx context.Context, p NotificationPayload) error {
	_, err := c.submitJSON(ctx, http.MethodPost, EndpointNotifications, p)
	return err
}

// MarkNotificationRead is the one fire-and-forget write: the view flips the
// local record optimistically and swallows a failure here.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID int) error {
	_, err := c.submitJSON(ctx, http.MethodPost, endpointNotificationRead(notificationID), nil)
	return err
}

type ForumPostPayload struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category int    `json:"category"`
	PostType string `json:"post_type"`
}

func (c *Client) CreateForumPost(ctx context.Context, p ForumPostPayload) error {
	_, err := c.submitJSON(ctx, http.MethodPost, EndpointForumPosts, p)
	return err
}

// --- Writes (multipart endpoints) ---
//
// The receiving contract for these endpoints is multipart/form-data even
// when no file is attached.

type BillPayload struct {
	FlatID    int
	BillType  string
	Amount    string
	BillMonth int
	BillYear  int
	DueDate   string
}

func (c *Client) CreateBill(ctx context.Context, p BillPayload) error {
	fields := []formField{
		{"flat_id", strconv.Itoa(p.FlatID)},
		{"bill_type", p.BillType},
		{"amount", p.Amount},
		{"bill_month", strconv.Itoa(p.BillMonth)},
		{"bill_year", strconv.Itoa(p.BillYear)},
		{"due_date", p.DueDate},
		{"status", "unpaid"},
	}
	_, err := c.submitForm(ctx, http.MethodPost, EndpointBills, fields)
	return err
}

type ComplaintPayload struct {
	Title       string
	Description string
	Priority    string
	Category    string
	FlatID      int
}

func (c *Client) CreateComplaint(ctx context.Context, p ComplaintPayload) error {
	fields := []formField{
		{"title", p.Title},
		{"description", p.Description},
		{"priority", p.Priority},
		{"category", p.Category},
		{"flat_id", strconv.Itoa(p.FlatID)},
	}
	_, err := c.submitForm(ctx, http.MethodPost, EndpointComplaints, fields)
	return err
}

type VehiclePayload struct {
	VehicleNumber string
	VehicleType   string
	Brand         string
	Color         string
}

func (c *Client) CreateVehicle(ctx context.Context, p VehiclePayload) error {
	fields := []formField{
		{"vehicle_number", p.VehicleNumber},
		{"vehicle_type", p.VehicleType},
		{"brand", p.Brand},
		{"color", p.Color},
	}
	_, err := c.submitForm(ctx, http.MethodPost, EndpointVehicles, fields)
	return err
}

type CameraRequestPayload struct {
	Reason        string
	RequestedDate string
	DurationHours int
	FlatID        int
}

func (c *Client) CreateCameraRequest(ctx context.Context, p CameraRequestPayload) error {
	fields := []formField{
		{"reason", p.Reason},
		{"requested_date", p.RequestedDate},
		{"duration_hours", strconv.Itoa(p.DurationHours)},
		{"flat_id", strconv.Itoa(p.FlatID)},
	}
	_, err := c.submitForm(ctx, http.MethodPost, EndpointCameraRequests, fields)
	return err
}

// UpdateComplaintStatus transitions a complaint. Resolving stamps
// resolved_at and carries the admin's free-text response.
func (c *Client) UpdateComplaintStatus(ctx context.Context, complaintID int, status, adminResponse string) error {
	fields := []formField{
		{"status", status},
		{"admin_response", adminResponse},
	}
	if status == "resolved" {
		fields = append(fields, formField{"resolved_at", time.Now().UTC().Format(time.RFC3339)})
	}
	_, err := c.submitForm(ctx, http.MethodPost, endpointComplaintStatus(complaintID), fields)
	return err
}

// DecideCameraRequest approves or rejects a camera-access request. The
// access link accompanies approvals only.
func (c *Client) DecideCameraRequest(ctx context.Context, requestID int, status, accessLink string) error {
	fields := []formField{{"status", status}}
	if accessLink != "" {
		fields = append(fields, formField{"access_link", accessLink})
	}
	_, err := c.submitForm(ctx, http.MethodPatch, endpointCameraRequest(requestID), fields)
	return err
}

// PayBill marks a bill paid, stamping the payment timestamp client-side the
// way the product always has.
func (c *Client) PayBill(ctx context.Context, billID int) error {
	fields := []formField{
		{"status", "paid"},
		{"payment_date", time.Now().UTC().Format(time.RFC3339)},
	}
	_, err := c.submitForm(ctx, http.MethodPatch, endpointBill(billID), fields)
	return err
}

type ProfilePayload struct {
	FirstName            string
	LastName             string
	Email                string
	Phone                string
	EmergencyContact     string
	EmergencyContactName string
}

func (c *Client) UpdateProfile(ctx context.Context, p ProfilePayload) error {
	fields := []formField{
		{"first_name", p.FirstName},
		{"last_name", p.LastName},
		{"email", p.Email},
		{"phone", p.Phone},
		{"emergency_contact", p.EmergencyContact},
		{"emergency_contact_name", p.EmergencyContactName},
	}
	_, err := c.submitForm(ctx, http.MethodPut, EndpointProfileUpdate, fields)
	return err
}
