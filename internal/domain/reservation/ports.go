package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Identity is the signed-in renter, or the zero value for an anonymous session.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone"`
}

// IsAuthenticated reports whether the identity was resolved.
func (i Identity) IsAuthenticated() bool { return i.UserID != uuid.Nil }

// BookingRecord is the serialized draft sent to the booking gateway.
type BookingRecord struct {
	BookingID     string        `json:"booking_id"`
	ReferenceCode string        `json:"reference_code"`
	DraftID       uuid.UUID     `json:"draft_id"`
	VehicleID     uuid.UUID     `json:"vehicle_id"`
	VehicleName   string        `json:"vehicle_name"`
	DailyRate     int64         `json:"daily_rate"`
	UserID        uuid.UUID     `json:"user_id"`
	RenterName    string        `json:"renter_name"`
	RenterPhone   string        `json:"renter_phone"`
	RenterEmail   string        `json:"renter_email,omitempty"`
	LicenseNumber string        `json:"license_number"`
	PickupDate    time.Time     `json:"pickup_date"`
	ReturnDate    time.Time     `json:"return_date"`
	Days          int           `json:"days"`
	Total         int64         `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// BookingReceipt is the confirmation data assigned by the backend.
type BookingReceipt struct {
	ConfirmationID string    `json:"confirmation_id"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

// ConfirmedBooking is a booking record the backend accepted.
type ConfirmedBooking struct {
	BookingRecord
	Confirmation BookingReceipt `json:"confirmation"`
}

// SameTerms reports whether two records book the same vehicle, dates and price.
func (r BookingRecord) SameTerms(o BookingRecord) bool {
	return r.DraftID == o.DraftID &&
		r.VehicleID == o.VehicleID &&
		r.PickupDate.Equal(o.PickupDate) &&
		r.ReturnDate.Equal(o.ReturnDate) &&
		r.DailyRate == o.DailyRate &&
		r.Days == o.Days &&
		r.Total == o.Total &&
		r.PaymentMethod == o.PaymentMethod
}

// ReservationRecord is the serialized fallback request.
type ReservationRecord struct {
	ID                uuid.UUID  `json:"id"`
	VehicleID         uuid.UUID  `json:"vehicle_id"`
	VehicleName       string     `json:"vehicle_name"`
	UserID            uuid.UUID  `json:"user_id"`
	RenterName        string     `json:"renter_name"`
	RenterPhone       string     `json:"renter_phone"`
	DesiredPickupDate time.Time  `json:"desired_pickup_date"`
	DesiredReturnDate *time.Time `json:"desired_return_date,omitempty"`
	EstimatedTotal    int64      `json:"estimated_total"`
	CreatedAt         time.Time  `json:"created_at"`
}

// BookingGateway creates bookings in the backing store. When the booking id
// already exists for the same draft, the stored booking is returned as is.
type BookingGateway interface {
	CreateBooking(ctx context.Context, record BookingRecord) (ConfirmedBooking, error)
}

// ReservationGateway creates fallback reservations in the backing store.
type ReservationGateway interface {
	CreateReservation(ctx context.Context, record ReservationRecord) error
}

// ReceiptEmitter turns a confirmed booking into a downloadable artifact.
type ReceiptEmitter interface {
	Emit(ctx context.Context, booking ConfirmedBooking) error
}

// EventPublisher announces workflow outcomes to other services.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, booking ConfirmedBooking) error
	PublishReservationCreated(ctx context.Context, record ReservationRecord) error
}

// Severity grades a user-facing notice.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Reporter delivers notices to the user. Report must not block.
type Reporter interface {
	Report(message string, severity Severity)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(message string, severity Severity)

func (f ReporterFunc) Report(message string, severity Severity) { f(message, severity) }

// Notice is a reported message as seen by the client.
type Notice struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}
