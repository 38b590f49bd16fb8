package reservation

import (
	"testing"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/Kilat-Rental/service-reservation/internal/platform/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 12, 20, 10, 0, 0, 0, time.UTC)

func testVehicle(availability vehicle.Availability) vehicle.Vehicle {
	return vehicle.Vehicle{
		ID:           uuid.New(),
		Name:         "Toyota Avanza",
		DailyRate:    600,
		Transmission: vehicle.TransmissionAutomatic,
		FuelType:     vehicle.FuelPetrol,
		Seats:        7,
		Color:        "silver",
		Availability: availability,
	}
}

func validDetails() Details {
	return Details{
		RenterName:    "Siti Rahma",
		RenterPhone:   "+62 812 555 0101",
		LicenseNumber: "SIM-7781-2211",
		PickupDate:    date(2025, 1, 1),
		ReturnDate:    date(2025, 1, 4),
	}
}

func TestNewBookingDraft(t *testing.T) {
	identity := Identity{UserID: uuid.New(), Name: "Siti Rahma", Phone: "+62 812 555 0101"}
	d, err := NewBookingDraft(testVehicle(vehicle.AvailabilityAvailable), identity, testNow)
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, d.Status())
	assert.Equal(t, "Siti Rahma", d.Details().RenterName)
	assert.True(t, d.Identifiers().IsZero())

	_, err = NewBookingDraft(vehicle.Vehicle{}, identity, testNow)
	assert.True(t, apperr.IsValidation(err))
}

func TestBookingDraft_QuoteFollowsInputs(t *testing.T) {
	d, err := NewBookingDraft(testVehicle(vehicle.AvailabilityAvailable), Identity{}, testNow)
	require.NoError(t, err)
	assert.False(t, d.Quote().IsValid)

	require.NoError(t, d.UpdateDetails(validDetails(), testNow))
	assert.Equal(t, int64(1800), d.Quote().Total)

	changed := validDetails()
	changed.ReturnDate = date(2025, 1, 2)
	require.NoError(t, d.UpdateDetails(changed, testNow))
	assert.Equal(t, 1, d.Quote().Days)
	assert.Equal(t, int64(600), d.Quote().Total)
}

func TestBookingDraft_ValidateDetails(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Details)
		wantErr bool
	}{
		{"valid", func(*Details) {}, false},
		{"missing name", func(d *Details) { d.RenterName = "  " }, true},
		{"missing phone", func(d *Details) { d.RenterPhone = "" }, true},
		{"missing license", func(d *Details) { d.LicenseNumber = "" }, true},
		{"missing pickup", func(d *Details) { d.PickupDate = time.Time{} }, true},
		{"return before pickup", func(d *Details) { d.ReturnDate = date(2024, 12, 31) }, true},
		{"same day", func(d *Details) { d.ReturnDate = d.PickupDate }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewBookingDraft(testVehicle(vehicle.AvailabilityAvailable), Identity{}, testNow)
			require.NoError(t, err)

			details := validDetails()
			tt.mutate(&details)
			require.NoError(t, d.UpdateDetails(details, testNow))

			err = d.ValidateDetails()
			if tt.wantErr {
				assert.True(t, apperr.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBookingDraft_SubmissionLifecycle(t *testing.T) {
	gen := NewIdentifierGenerator(clock.NewFixed(testNow), nil)
	d, err := NewBookingDraft(testVehicle(vehicle.AvailabilityAvailable), Identity{}, testNow)
	require.NoError(t, err)

	require.NoError(t, d.beginSubmission(gen, testNow))
	ids := d.Identifiers()
	assert.False(t, ids.IsZero())
	assert.Equal(t, StatusSubmitting, d.Status())
	assert.False(t, d.IsEditable())

	assert.Error(t, d.UpdateDetails(validDetails(), testNow))
	assert.Error(t, d.SetPaymentMethod(PaymentCard, testNow))
	assert.Error(t, d.beginSubmission(gen, testNow))

	require.NoError(t, d.markFailed("connection reset", testNow))
	assert.Equal(t, "connection reset", d.LastError())
	assert.True(t, d.IsEditable())

	require.NoError(t, d.beginSubmission(gen, testNow))
	assert.Equal(t, ids, d.Identifiers())
	assert.Equal(t, 2, d.Attempts())

	require.NoError(t, d.markConfirmed(testNow))
	assert.Equal(t, StatusConfirmed, d.Status())
	assert.Error(t, d.beginSubmission(gen, testNow))
}

func TestBookingDraft_Record(t *testing.T) {
	identity := Identity{UserID: uuid.New(), Email: "siti@example.com"}
	v := testVehicle(vehicle.AvailabilityAvailable)
	d, err := NewBookingDraft(v, identity, testNow)
	require.NoError(t, err)
	require.NoError(t, d.UpdateDetails(validDetails(), testNow))
	require.NoError(t, d.SetPaymentMethod(PaymentBankTransfer, testNow))

	rec := d.Record(identity)

	assert.Equal(t, v.ID, rec.VehicleID)
	assert.Equal(t, identity.UserID, rec.UserID)
	assert.Equal(t, "siti@example.com", rec.RenterEmail)
	assert.Equal(t, 3, rec.Days)
	assert.Equal(t, int64(1800), rec.Total)
	assert.Equal(t, PaymentBankTransfer, rec.PaymentMethod)
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod("cash_on_pickup")
	require.NoError(t, err)
	assert.Equal(t, PaymentCashOnPickup, m)

	_, err = ParsePaymentMethod("crypto")
	assert.True(t, apperr.IsValidation(err))
}

func TestReservationRequest(t *testing.T) {
	v := testVehicle(vehicle.AvailabilityUnavailable)
	r, err := NewReservationRequest(v, Identity{Name: "Budi"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Budi", r.Details().RenterName)
	assert.True(t, apperr.IsValidation(r.Validate()))

	require.NoError(t, r.Update(ReservationDetails{
		RenterName:        "Budi",
		RenterPhone:       "0812",
		DesiredPickupDate: date(2025, 2, 1),
	}, testNow))
	require.NoError(t, r.Validate())
	assert.Equal(t, int64(600), r.EstimatedTotal())

	ret := date(2025, 2, 3)
	require.NoError(t, r.Update(ReservationDetails{
		RenterName:        "Budi",
		RenterPhone:       "0812",
		DesiredPickupDate: date(2025, 2, 1),
		DesiredReturnDate: &ret,
	}, testNow))
	assert.Equal(t, int64(1200), r.EstimatedTotal())

	before := date(2025, 1, 20)
	require.NoError(t, r.Update(ReservationDetails{
		RenterName:        "Budi",
		RenterPhone:       "0812",
		DesiredPickupDate: date(2025, 2, 1),
		DesiredReturnDate: &before,
	}, testNow))
	assert.True(t, apperr.IsValidation(r.Validate()))
	assert.Zero(t, r.EstimatedTotal())
}
