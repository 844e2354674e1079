// Package derive computes display-time values from loaded lists: dashboard
// statistics and search/status/priority filtered views. Everything here is a
// pure synchronous pass over the slices the caller already holds; nothing is
// fetched or cached.
package derive

import (
	"strconv"
	"strings"

	"nconnect-cli/internal/model"
)

// ParseAmount coerces a money field to a number for aggregation. Amounts
// arrive as decimal strings; missing or unparseable values count as zero so
// one bad row never poisons a total.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// Tolerate trailing junk by parsing the leading numeric prefix.
	end := 0
	seenDot := false
	for i, r := range s {
		if r == '-' && i == 0 {
			end++
			continue
		}
		if r == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		if r < '0' || r > '9' {
			break
		}
		end = i + 1
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return f
}

// SumAmounts totals bill amounts.
func SumAmounts(bills []model.Bill) float64 {
	var total float64
	for _, b := range bills {
		total += ParseAmount(b.Amount)
	}
	return total
}

// AdminStats are the figures on the admin overview tab.
type AdminStats struct {
	TotalUsers            int
	TotalFlats            int
	OccupiedFlats         int
	TotalVehicles         int
	PendingComplaints     int
	OverdueBills          int
	PendingCameraRequests int
	ActiveNotifications   int
	TotalRevenue          float64
}

func ComputeAdminStats(users []model.User, flats []model.Flat, bills []model.Bill,
	complaints []model.Complaint, vehicles []model.Vehicle,
	cameraRequests []model.CameraRequest, notifications []model.Notification) AdminStats {

	st := AdminStats{
		TotalUsers:          len(users),
		TotalFlats:          len(flats),
		TotalVehicles:       len(vehicles),
		ActiveNotifications: len(notifications),
		TotalRevenue:        SumAmounts(bills),
	}
	for _, f := range flats {
		if f.IsOccupied {
			st.OccupiedFlats++
		}
	}
	for _, c := range complaints {
		if c.Status != "resolved" {
			st.PendingComplaints++
		}
	}
	for _, b := range bills {
		if b.Status == "overdue" {
			st.OverdueBills++
		}
	}
	for _, r := range cameraRequests {
		if r.Status == "pending" {
			st.PendingCameraRequests++
		}
	}
	return st
}

// ResidentStats are the figures on the resident overview tab.
type ResidentStats struct {
	TotalComplaints     int
	PendingComplaints   int
	TotalBills          int
	UnpaidBills         int
	TotalVehicles       int
	UnreadNotifications int
}

func ComputeResidentStats(bills []model.Bill, complaints []model.Complaint,
	vehicles []model.Vehicle, notifications []model.Notification) ResidentStats {

	st := ResidentStats{
		TotalComplaints: len(complaints),
		TotalBills:      len(bills),
		TotalVehicles:   len(vehicles),
	}
	for _, c := range complaints {
		if c.Status != "resolved" {
			st.PendingComplaints++
		}
	}
	for _, b := range bills {
		if b.Status != "paid" {
			st.UnpaidBills++
		}
	}
	for _, n := range notifications {
		if !n.IsRead {
			st.UnreadNotifications++
		}
	}
	return st
}

// contains is case-insensitive substring match; an empty needle matches
// everything.
func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func matchAny(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if contains(f, needle) {
			return true
		}
	}
	return false
}

// FilterUsers matches the search text against username or email.
func FilterUsers(users []model.User, search string) []model.User {
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if matchAny(search, u.Username, u.Email) {
			out = append(out, u)
		}
	}
	return out
}

// FilterFlats matches flat number or building.
func FilterFlats(flats []model.Flat, search string) []model.Flat {
	out := make([]model.Flat, 0, len(flats))
	for _, f := range flats {
		if matchAny(search, f.FlatNumber, f.Building) {
			out = append(out, f)
		}
	}
	return out
}

// FilterComplaints matches title or category, then applies the status and
// priority filters (empty filter means "all").
func FilterComplaints(complaints []model.Complaint, search, status, priority string) []model.Complaint {
	out := make([]model.Complaint, 0, len(complaints))
	for _, c := range complaints {
		if !matchAny(search, c.Title, c.Category) {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		if priority != "" && c.Priority != priority {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FilterBills matches bill type or flat number, then the status filter.
func FilterBills(bills []model.Bill, search, status string) []model.Bill {
	out := make([]model.Bill, 0, len(bills))
	for _, b := range bills {
		if !matchAny(search, b.BillType, b.Flat.FlatNumber) {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, b)
	}
	return out
}

// FilterVehicles matches plate number or owning resident's username.
func FilterVehicles(vehicles []model.Vehicle, search string) []model.Vehicle {
	out := make([]model.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		resident := ""
		if v.Resident != nil {
			resident = v.Resident.Username
		}
		if matchAny(search, v.VehicleNumber, resident) {
			out = append(out, v)
		}
	}
	return out
}

// FilterNotifications matches title or message body.
func FilterNotifications(notifications []model.Notification, search string) []model.Notification {
	out := make([]model.Notification, 0, len(notifications))
	for _, n := range notifications {
		if matchAny(search, n.Title, n.Message) {
			out = append(out, n)
		}
	}
	return out
}

// FilterCameraRequests applies the status filter only.
func FilterCameraRequests(reqs []model.CameraRequest, status string) []model.CameraRequest {
	out := make([]model.CameraRequest, 0, len(reqs))
	for _, r := range reqs {
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterForumPosts matches title or content, then the category filter
// (zero means "all").
func FilterForumPosts(posts []model.ForumPost, search string, category int) []model.ForumPost {
	out := make([]model.ForumPost, 0, len(posts))
	for _, p := range posts {
		if !matchAny(search, p.Title, p.Content) {
			continue
		}
		if category != 0 && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}
