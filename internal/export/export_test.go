package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nconnect-cli/internal/model"
)

func TestMarshalQuotesOnlyWhenNeeded(t *testing.T) {
	type rec struct {
		A int    `json:"a"`
		B string `json:"b"`
	}

	got, err := Marshal([]rec{{1, "x,y"}, {2, "z"}})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\"x,y\"\n2,z\n", got)
}

func TestMarshalDoublesEmbeddedQuotes(t *testing.T) {
	type rec struct {
		Note string `json:"note"`
	}

	got, err := Marshal([]rec{{`he said "hi"`}})
	require.NoError(t, err)
	assert.Equal(t, "note\n\"he said \"\"hi\"\"\"\n", got)
}

func TestMarshalHeaderFallsBackToFieldName(t *testing.T) {
	type rec struct {
		Plain   string
		Tagged  string `json:"tagged,omitempty"`
		private string
	}
	_ = rec{private: ""}

	got, err := Marshal([]rec{})
	require.NoError(t, err)
	assert.Equal(t, "Plain,tagged\n", got, "unexported fields are skipped")
}

func TestBillsFlattenNestedRecords(t *testing.T) {
	paid := "2026-08-01T10:00:00Z"
	got, err := Bills([]model.Bill{
		{ID: 1, Flat: model.FlatRef{FlatNumber: "A-101"}, BillType: "maintenance",
			Amount: "1200.50", BillMonth: 8, BillYear: 2026, DueDate: "2026-09-10",
			Status: "paid", PaymentDate: &paid},
		{ID: 2, Flat: model.FlatRef{FlatNumber: "B-202"}, BillType: "water",
			Amount: "300", Status: "unpaid"},
	})
	require.NoError(t, err)

	assert.Contains(t, got, "id,flat,bill_type,amount,bill_month,bill_year,due_date,status,payment_date\n")
	assert.Contains(t, got, "1,A-101,maintenance,1200.50,8,2026,2026-09-10,paid,2026-08-01T10:00:00Z\n")
	assert.Contains(t, got, "2,B-202,water,300,0,0,,unpaid,\n")
}

func TestVehiclesHandleMissingResident(t *testing.T) {
	got, err := Vehicles([]model.Vehicle{
		{ID: 1, VehicleNumber: "KA-01-1234", VehicleType: "car", Resident: &model.UserRef{Username: "amara"}, IsActive: true},
		{ID: 2, VehicleNumber: "KA-02-9999", VehicleType: "bike"},
	})
	require.NoError(t, err)
	assert.Contains(t, got, "KA-01-1234,car,,,amara,true\n")
	assert.Contains(t, got, "KA-02-9999,bike,,,,false\n")
}
