// Package export converts loaded lists to CSV text. The header row comes
// from the record's field names; values embedding the separator or a quote
// are quoted with embedded quotes doubled, everything else stays bare.
package export

import (
	"encoding/csv"
	"fmt"
	"reflect"
	"strings"

	"nconnect-cli/internal/model"
)

// Marshal renders a slice of uniformly-shaped records. Field names (or their
// json tag, when present) form the header in declaration order; non-string
// fields use their default textual representation. Nil pointers render as
// empty cells.
func Marshal[T any](records []T) (string, error) {
	var t T
	rt := reflect.TypeOf(t)
	if rt == nil || rt.Kind() != reflect.Struct {
		return "", fmt.Errorf("export: records must be structs, got %T", t)
	}

	var header []string
	var idx []int
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		header = append(header, columnName(f))
		idx = append(idx, i)
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, rec := range records {
		rv := reflect.ValueOf(rec)
		row := make([]string, len(idx))
		for j, i := range idx {
			row[j] = cell(rv.Field(i))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

func columnName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name
	}
	if c := strings.IndexByte(tag, ','); c >= 0 {
		tag = tag[:c]
	}
	if tag == "" {
		return f.Name
	}
	return tag
}

func cell(v reflect.Value) string {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

// The per-resource row types flatten nested records (flat refs, user refs)
// into the columns an exported table should carry.

type userRow struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`
}

func Users(users []model.User) (string, error) {
	rows := make([]userRow, len(users))
	for i, u := range users {
		rows[i] = userRow{u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.IsActive}
	}
	return Marshal(rows)
}

type flatRow struct {
	ID         int    `json:"id"`
	FlatNumber string `json:"flat_number"`
	Building   string `json:"building"`
	Bedrooms   int    `json:"bedrooms"`
	Bathrooms  int    `json:"bathrooms"`
	Rent       string `json:"monthly_rent"`
	IsOccupied bool   `json:"is_occupied"`
	Owner      string `json:"owner"`
}

func Flats(flats []model.Flat) (string, error) {
	rows := make([]flatRow, len(flats))
	for i, f := range flats {
		owner := ""
		if f.Owner != nil {
			owner = f.Owner.Username
		}
		rows[i] = flatRow{f.ID, f.FlatNumber, f.Building, f.Bedrooms, f.Bathrooms, f.MonthlyRent, f.IsOccupied, owner}
	}
	return Marshal(rows)
}

type billRow struct {
	ID          int    `json:"id"`
	Flat        string `json:"flat"`
	BillType    string `json:"bill_type"`
	Amount      string `json:"amount"`
	Month       int    `json:"bill_month"`
	Year        int    `json:"bill_year"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status"`
	PaymentDate string `json:"payment_date"`
}

func Bills(bills []model.Bill) (string, error) {
	rows := make([]billRow, len(bills))
	for i, b := range bills {
		paid := ""
		if b.PaymentDate != nil {
			paid = *b.PaymentDate
		}
		rows[i] = billRow{b.ID, b.Flat.FlatNumber, b.BillType, b.Amount, b.BillMonth, b.BillYear, b.DueDate, b.Status, paid}
	}
	return Marshal(rows)
}

type complaintRow struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
	Author   string `json:"author"`
	Flat     string `json:"flat"`
	Created  string `json:"created_at"`
}

func Complaints(complaints []model.Complaint) (string, error) {
	rows := make([]complaintRow, len(complaints))
	for i, c := range complaints {
		author, flat := "", ""
		if c.Author != nil {
			author = c.Author.Username
		}
		if c.Flat != nil {
			flat = c.Flat.FlatNumber
		}
		rows[i] = complaintRow{c.ID, c.Title, c.Category, c.Priority, c.Status, author, flat, c.CreatedAt}
	}
	return Marshal(rows)
}

type vehicleRow struct {
	ID            int    `json:"id"`
	VehicleNumber string `json:"vehicle_number"`
	VehicleType   string `json:"vehicle_type"`
	Brand         string `json:"brand"`
	Color         string `json:"color"`
	Resident      string `json:"resident"`
	IsActive      bool   `json:"is_active"`
}

func Vehicles(vehicles []model.Vehicle) (string, error) {
	rows := make([]vehicleRow, len(vehicles))
	for i, v := range vehicles {
		resident := ""
		if v.Resident != nil {
			resident = v.Resident.Username
		}
		rows[i] = vehicleRow{v.ID, v.VehicleNumber, v.VehicleType, v.Brand, v.Color, resident, v.IsActive}
	}
	return Marshal(rows)
}
