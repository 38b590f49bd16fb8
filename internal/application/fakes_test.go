package application

import (
	"context"
	"sync"
	"time"

	receiptDomain "github.com/Kilat-Rental/service-reservation/internal/domain/receipt"
	"github.com/Kilat-Rental/service-reservation/internal/domain/reservation"
	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeCatalog struct {
	mu       sync.Mutex
	vehicles map[uuid.UUID]vehicle.Vehicle
	err      error
}

func newFakeCatalog(vs ...vehicle.Vehicle) *fakeCatalog {
	c := &fakeCatalog{vehicles: make(map[uuid.UUID]vehicle.Vehicle)}
	for _, v := range vs {
		c.vehicles[v.ID] = v
	}
	return c
}

func (c *fakeCatalog) FindByID(ctx context.Context, id uuid.UUID) (vehicle.Vehicle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return vehicle.Vehicle{}, c.err
	}
	v, ok := c.vehicles[id]
	if !ok {
		return vehicle.Vehicle{}, apperr.NewNotFoundError("Vehicle", id.String())
	}
	return v, nil
}

func (c *fakeCatalog) List(ctx context.Context, filter vehicle.Filter, page, limit int) ([]vehicle.Vehicle, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, 0, c.err
	}
	var out []vehicle.Vehicle
	for _, v := range c.vehicles {
		if filter.AvailableOnly && v.Availability != vehicle.AvailabilityAvailable {
			continue
		}
		if filter.Transmission != "" && v.Transmission != filter.Transmission {
			continue
		}
		out = append(out, v)
	}
	return out, int64(len(out)), nil
}

func (c *fakeCatalog) UpdateAvailability(ctx context.Context, id uuid.UUID, a vehicle.Availability) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vehicles[id]
	if !ok {
		return apperr.NewNotFoundError("Vehicle", id.String())
	}
	c.vehicles[id] = v.WithAvailability(a)
	return nil
}

type fakeBookings struct {
	mu        sync.Mutex
	records   []reservation.BookingRecord
	err       error
	summaries []reservation.PaymentSummary
}

func (b *fakeBookings) CreateBooking(ctx context.Context, rec reservation.BookingRecord) (reservation.ConfirmedBooking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return reservation.ConfirmedBooking{}, b.err
	}
	b.records = append(b.records, rec)
	return reservation.ConfirmedBooking{
		BookingRecord: rec,
		Confirmation:  reservation.BookingReceipt{ConfirmationID: "CNF-" + rec.BookingID, ConfirmedAt: testNow},
	}, nil
}

func (b *fakeBookings) FindByBookingID(ctx context.Context, id string) (*reservation.ConfirmedBooking, error) {
	return nil, apperr.NewNotFoundError("Booking", id)
}

func (b *fakeBookings) ListAll(ctx context.Context, page, limit int) ([]reservation.ConfirmedBooking, int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]reservation.ConfirmedBooking, 0, len(b.records))
	for _, r := range b.records {
		out = append(out, reservation.ConfirmedBooking{BookingRecord: r})
	}
	return out, int64(len(out)), nil
}

func (b *fakeBookings) SummarizeByPaymentMethod(ctx context.Context) ([]reservation.PaymentSummary, error) {
	return b.summaries, b.err
}

type fakeReservations struct {
	mu      sync.Mutex
	records []reservation.ReservationRecord
}

func (r *fakeReservations) CreateReservation(ctx context.Context, rec reservation.ReservationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeReservations) ListAll(ctx context.Context, page, limit int) ([]reservation.ReservationRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]reservation.ReservationRecord(nil), r.records...), int64(len(r.records)), nil
}

type memoryReceipts struct {
	mu    sync.Mutex
	byID  map[string]*receiptDomain.Receipt
	saves int
}

func newMemoryReceipts() *memoryReceipts {
	return &memoryReceipts{byID: make(map[string]*receiptDomain.Receipt)}
}

func (m *memoryReceipts) Save(ctx context.Context, rc *receiptDomain.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[rc.BookingID()] = rc
	m.saves++
	return nil
}

func (m *memoryReceipts) FindByBookingID(ctx context.Context, id string) (*receiptDomain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rc, ok := m.byID[id]
	if !ok {
		return nil, apperr.NewNotFoundError("Receipt", id)
	}
	return rc, nil
}
