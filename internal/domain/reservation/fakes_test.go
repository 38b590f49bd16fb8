package reservation

import (
	"context"
	"sync"
)

type fakeBookingGateway struct {
	mu      sync.Mutex
	calls   []BookingRecord
	errs    []error
	stored  map[string]ConfirmedBooking
	started chan struct{}
	release chan struct{}
}

func (g *fakeBookingGateway) CreateBooking(ctx context.Context, rec BookingRecord) (ConfirmedBooking, error) {
	g.mu.Lock()
	g.calls = append(g.calls, rec)
	var err error
	if len(g.errs) > 0 {
		err, g.errs = g.errs[0], g.errs[1:]
	}
	existing, replay := g.stored[rec.BookingID]
	started, release := g.started, g.release
	g.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return ConfirmedBooking{}, err
	}
	if replay {
		return existing, nil
	}
	return ConfirmedBooking{
		BookingRecord: rec,
		Confirmation:  BookingReceipt{ConfirmationID: "CNF-" + rec.BookingID, ConfirmedAt: testNow},
	}, nil
}

func (g *fakeBookingGateway) Calls() []BookingRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]BookingRecord(nil), g.calls...)
}

type fakeReservationGateway struct {
	mu    sync.Mutex
	calls []ReservationRecord
	err   error
}

func (g *fakeReservationGateway) CreateReservation(ctx context.Context, rec ReservationRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, rec)
	return g.err
}

type fakeReceipts struct {
	mu      sync.Mutex
	emitted []ConfirmedBooking
	err     error
}

func (r *fakeReceipts) Emit(ctx context.Context, b ConfirmedBooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.emitted = append(r.emitted, b)
	return nil
}

type fakeEvents struct {
	mu           sync.Mutex
	confirmed    []ConfirmedBooking
	reservations []ReservationRecord
}

func (e *fakeEvents) PublishBookingConfirmed(ctx context.Context, b ConfirmedBooking) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.confirmed = append(e.confirmed, b)
	return nil
}

func (e *fakeEvents) PublishReservationCreated(ctx context.Context, r ReservationRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reservations = append(e.reservations, r)
	return nil
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Report(message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Message: message, Severity: severity})
}

func (r *noticeRecorder) Last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}

func (r *noticeRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}
