package reservation

import "context"

// PaymentSummary aggregates confirmed bookings for one payment method.
type PaymentSummary struct {
	PaymentMethod PaymentMethod `json:"payment_method"`
	Count         int64         `json:"count"`
	Total         int64         `json:"total"`
}

// BookingRepository defines the persistence contract for confirmed bookings.
type BookingRepository interface {
	BookingGateway

	// FindByBookingID retrieves a booking by its human-readable booking id.
	FindByBookingID(ctx context.Context, bookingID string) (*ConfirmedBooking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]ConfirmedBooking, int64, error)

	// SummarizeByPaymentMethod returns booking counts and totals grouped by payment method (admin).
	SummarizeByPaymentMethod(ctx context.Context) ([]PaymentSummary, error)
}

// ReservationRepository defines the persistence contract for fallback reservations.
type ReservationRepository interface {
	ReservationGateway

	// ListAll retrieves all reservations with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]ReservationRecord, int64, error)
}
