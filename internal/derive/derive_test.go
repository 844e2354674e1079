package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nconnect-cli/internal/model"
)

func bills(amounts ...string) []model.Bill {
	out := make([]model.Bill, len(amounts))
	for i, a := range amounts {
		out[i].Amount = a
	}
	return out
}

func TestSumAmountsTreatsBadValuesAsZero(t *testing.T) {
	tests := []struct {
		name    string
		amounts []string
		want    float64
	}{
		{name: "mixed", amounts: []string{"100", "", "50.5"}, want: 150.5},
		{name: "all empty", amounts: []string{"", ""}, want: 0},
		{name: "unparseable", amounts: []string{"abc", "10"}, want: 10},
		{name: "trailing junk", amounts: []string{"12.5 INR"}, want: 12.5},
		{name: "negative adjustment", amounts: []string{"100", "-25"}, want: 75},
		{name: "none", amounts: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SumAmounts(bills(tt.amounts...)), 1e-9)
		})
	}
}

func TestComputeAdminStats(t *testing.T) {
	st := ComputeAdminStats(
		[]model.User{{ID: 1}, {ID: 2}},
		[]model.Flat{{IsOccupied: true}, {IsOccupied: false}, {IsOccupied: true}},
		[]model.Bill{{Status: "overdue", Amount: "100"}, {Status: "paid", Amount: "200.50"}},
		[]model.Complaint{{Status: "pending"}, {Status: "in_progress"}, {Status: "resolved"}},
		[]model.Vehicle{{ID: 1}},
		[]model.CameraRequest{{Status: "pending"}, {Status: "approved"}},
		[]model.Notification{{ID: 1}},
	)

	assert.Equal(t, 2, st.TotalUsers)
	assert.Equal(t, 3, st.TotalFlats)
	assert.Equal(t, 2, st.OccupiedFlats)
	assert.Equal(t, 2, st.PendingComplaints, "everything not resolved is pending")
	assert.Equal(t, 1, st.OverdueBills)
	assert.Equal(t, 1, st.PendingCameraRequests)
	assert.InDelta(t, 300.50, st.TotalRevenue, 1e-9)
}

func TestComputeResidentStats(t *testing.T) {
	st := ComputeResidentStats(
		[]model.Bill{{Status: "unpaid"}, {Status: "overdue"}, {Status: "paid"}},
		[]model.Complaint{{Status: "resolved"}, {Status: "pending"}},
		[]model.Vehicle{{ID: 1}, {ID: 2}},
		[]model.Notification{{IsRead: true}, {IsRead: false}, {IsRead: false}},
	)

	assert.Equal(t, 2, st.UnpaidBills, "unpaid and overdue both count")
	assert.Equal(t, 1, st.PendingComplaints)
	assert.Equal(t, 2, st.TotalVehicles)
	assert.Equal(t, 2, st.UnreadNotifications)
}

func TestFilterComplaints(t *testing.T) {
	list := []model.Complaint{
		{Title: "Water leak", Category: "plumbing", Status: "pending", Priority: "high"},
		{Title: "Broken light", Category: "electrical", Status: "pending", Priority: "low"},
		{Title: "Leaking tap", Category: "plumbing", Status: "resolved", Priority: "low"},
	}

	// Empty filters pass everything through.
	assert.Len(t, FilterComplaints(list, "", "", ""), 3)

	// Search is case-insensitive substring on title or category.
	got := FilterComplaints(list, "LEAK", "", "")
	assert.Len(t, got, 2)

	got = FilterComplaints(list, "plumbing", "", "")
	assert.Len(t, got, 2)

	// Status filter is exact equality.
	got = FilterComplaints(list, "", "pending", "")
	assert.Len(t, got, 2)

	// Search and filters combine.
	got = FilterComplaints(list, "leak", "pending", "high")
	assert.Len(t, got, 1)
	assert.Equal(t, "Water leak", got[0].Title)
}

func TestFilterBills(t *testing.T) {
	list := []model.Bill{
		{BillType: "maintenance", Status: "unpaid", Flat: model.FlatRef{FlatNumber: "A-101"}},
		{BillType: "water", Status: "paid", Flat: model.FlatRef{FlatNumber: "B-202"}},
	}

	assert.Len(t, FilterBills(list, "a-101", ""), 1)
	assert.Len(t, FilterBills(list, "", "paid"), 1)
	assert.Empty(t, FilterBills(list, "water", "unpaid"))
}

func TestFilterVehiclesMatchesResident(t *testing.T) {
	list := []model.Vehicle{
		{VehicleNumber: "KA-01-1234", Resident: &model.UserRef{Username: "amara"}},
		{VehicleNumber: "KA-02-9999"},
	}

	assert.Len(t, FilterVehicles(list, "amara"), 1)
	assert.Len(t, FilterVehicles(list, "ka-0"), 2)
	assert.Len(t, FilterVehicles(list, ""), 2)
}

func TestFilterUsersAndFlats(t *testing.T) {
	users := []model.User{
		{Username: "amara", Email: "amara@example.com"},
		{Username: "bela", Email: "bela@other.org"},
	}
	assert.Len(t, FilterUsers(users, "example"), 1)
	assert.Len(t, FilterUsers(users, "A"), 2)

	flats := []model.Flat{
		{FlatNumber: "A-101", Building: "North"},
		{FlatNumber: "B-202", Building: "South"},
	}
	assert.Len(t, FilterFlats(flats, "north"), 1)
	assert.Len(t, FilterFlats(flats, "B-2"), 1)
}
