package receipt

import "context"

// Repository defines persistence for rendered receipts.
type Repository interface {
	Save(ctx context.Context, receipt *Receipt) error
	FindByBookingID(ctx context.Context, bookingID string) (*Receipt, error)
}
