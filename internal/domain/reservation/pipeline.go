package reservation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"go.uber.org/zap"
)

// ErrSubmissionInProgress is returned when a request for the same draft is still outstanding.
var ErrSubmissionInProgress = apperr.NewConflictError("submission already in progress")

// SubmitResult is the outcome of a successful booking submission.
// ReceiptErr is set when the receipt could not be produced; the booking stands.
// Replayed is set when the backend already held this booking on different terms
// and Booking carries the stored terms.
type SubmitResult struct {
	Booking    ConfirmedBooking
	ReceiptErr error
	Replayed   bool
}

// Pipeline sends finalized records to the backend, one request per invocation.
type Pipeline struct {
	bookings     BookingGateway
	reservations ReservationGateway
	receipts     ReceiptEmitter
	events       EventPublisher
	timeout      time.Duration
	logger       *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewPipeline creates a Pipeline. receipts and events may be nil.
func NewPipeline(
	bookings BookingGateway,
	reservations ReservationGateway,
	receipts ReceiptEmitter,
	events EventPublisher,
	timeout time.Duration,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		bookings:     bookings,
		reservations: reservations,
		receipts:     receipts,
		events:       events,
		timeout:      timeout,
		logger:       logger,
		inFlight:     make(map[string]struct{}),
	}
}

// SubmitBooking creates the booking, emits its receipt and publishes booking.confirmed.
// Concurrent calls for the same draft return ErrSubmissionInProgress without a request.
func (p *Pipeline) SubmitBooking(ctx context.Context, record BookingRecord) (SubmitResult, error) {
	key := "booking:" + record.DraftID.String()
	if !p.acquire(key) {
		return SubmitResult{}, ErrSubmissionInProgress
	}
	defer p.release(key)

	callCtx, cancel := p.outbound(ctx)
	booking, err := p.bookings.CreateBooking(callCtx, record)
	cancel()
	if err != nil {
		p.logger.Warn("booking submission failed",
			zap.String("booking_id", record.BookingID),
			zap.Error(err),
		)
		return SubmitResult{}, classify(err, "booking request failed")
	}

	result := SubmitResult{Booking: booking}
	if !booking.SameTerms(record) {
		result.Replayed = true
		p.logger.Warn("booking already stored with different terms",
			zap.String("booking_id", record.BookingID),
			zap.Int("submitted_days", record.Days),
			zap.Int("stored_days", booking.Days),
			zap.Int64("submitted_total", record.Total),
			zap.Int64("stored_total", booking.Total),
		)
	}

	if p.receipts != nil {
		emitCtx, cancel := p.outbound(ctx)
		if err := p.receipts.Emit(emitCtx, result.Booking); err != nil {
			p.logger.Error("failed to emit receipt",
				zap.String("booking_id", record.BookingID),
				zap.Error(err),
			)
			result.ReceiptErr = err
		}
		cancel()
	}

	if p.events != nil {
		if err := p.events.PublishBookingConfirmed(context.WithoutCancel(ctx), result.Booking); err != nil {
			p.logger.Error("failed to publish booking confirmed event",
				zap.String("booking_id", record.BookingID),
				zap.Error(err),
			)
		}
	}

	p.logger.Info("booking confirmed",
		zap.String("booking_id", record.BookingID),
		zap.String("reference_code", booking.ReferenceCode),
		zap.Int64("total", booking.Total),
	)
	return result, nil
}

// SubmitReservation creates the fallback reservation and publishes reservation.created.
func (p *Pipeline) SubmitReservation(ctx context.Context, record ReservationRecord) error {
	key := "reservation:" + record.ID.String()
	if !p.acquire(key) {
		return ErrSubmissionInProgress
	}
	defer p.release(key)

	callCtx, cancel := p.outbound(ctx)
	err := p.reservations.CreateReservation(callCtx, record)
	cancel()
	if err != nil {
		p.logger.Warn("reservation submission failed",
			zap.String("reservation_id", record.ID.String()),
			zap.Error(err),
		)
		return classify(err, "reservation request failed")
	}

	if p.events != nil {
		if err := p.events.PublishReservationCreated(context.WithoutCancel(ctx), record); err != nil {
			p.logger.Error("failed to publish reservation created event",
				zap.String("reservation_id", record.ID.String()),
				zap.Error(err),
			)
		}
	}

	p.logger.Info("reservation created",
		zap.String("reservation_id", record.ID.String()),
		zap.String("vehicle_id", record.VehicleID.String()),
	)
	return nil
}

func (p *Pipeline) acquire(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[key]; busy {
		return false
	}
	p.inFlight[key] = struct{}{}
	return true
}

func (p *Pipeline) release(key string) {
	p.mu.Lock()
	delete(p.inFlight, key)
	p.mu.Unlock()
}

// outbound detaches from the caller's cancellation: an abandoned session stops
// waiting, the request itself runs to completion or timeout.
func (p *Pipeline) outbound(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if p.timeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, p.timeout)
}

// classify keeps classified gateway errors and turns everything else into a network error.
func classify(err error, message string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.NewNetworkError(message+": timed out", err)
	}
	return apperr.NewNetworkError(message, err)
}
