package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/domain/reservation"
	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/Kilat-Rental/service-reservation/internal/platform/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// StartSessionRequest opens a session, optionally deep-linked to a vehicle.
type StartSessionRequest struct {
	VehicleID *uuid.UUID `json:"vehicle_id"`
}

// SelectVehicleRequest chooses the vehicle at the first step.
type SelectVehicleRequest struct {
	VehicleID uuid.UUID `json:"vehicle_id" binding:"required"`
}

// ChooseBranchRequest answers an availability branch.
type ChooseBranchRequest struct {
	Choice string `json:"choice" binding:"required"`
}

// UpdateDetailsRequest carries the renter fields. Dates are YYYY-MM-DD or RFC 3339.
type UpdateDetailsRequest struct {
	RenterName    string `json:"renter_name"`
	RenterPhone   string `json:"renter_phone"`
	LicenseNumber string `json:"license_number"`
	PickupDate    string `json:"pickup_date"`
	ReturnDate    string `json:"return_date"`
}

// SetPaymentRequest chooses the payment method.
type SetPaymentRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// UpdateReservationRequest carries the fallback form fields.
type UpdateReservationRequest struct {
	RenterName        string `json:"renter_name"`
	RenterPhone       string `json:"renter_phone"`
	DesiredPickupDate string `json:"desired_pickup_date"`
	DesiredReturnDate string `json:"desired_return_date"`
}

// SessionResult is the response of every session operation.
type SessionResult struct {
	Session    reservation.SessionView `json:"session"`
	Transition *reservation.Transition `json:"transition,omitempty"`
	Quote      *reservation.Quote      `json:"quote,omitempty"`
	Notices    []reservation.Notice    `json:"notices"`
}

// SessionError is a failed session operation together with the notices the
// session reported before failing.
type SessionError struct {
	Err     error
	Notices []reservation.Notice
}

func (e *SessionError) Error() string { return e.Err.Error() }

func (e *SessionError) Unwrap() error { return e.Err }

// inbox collects the notices a session reports during one call.
type inbox struct {
	mu      sync.Mutex
	notices []reservation.Notice
}

func (b *inbox) Report(message string, severity reservation.Severity) {
	b.mu.Lock()
	b.notices = append(b.notices, reservation.Notice{Message: message, Severity: severity})
	b.mu.Unlock()
}

func (b *inbox) drain() []reservation.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	if out == nil {
		out = []reservation.Notice{}
	}
	return out
}

type sessionEntry struct {
	session *reservation.Session
	inbox   *inbox
}

// SessionService keeps the in-memory registry of reservation sessions.
type SessionService struct {
	catalog     vehicle.Catalog
	pipeline    *reservation.Pipeline
	resolver    reservation.Resolver
	identifiers *reservation.IdentifierGenerator
	clock       clock.Clock
	idleTTL     time.Duration
	logger      *zap.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionEntry
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	catalog vehicle.Catalog,
	pipeline *reservation.Pipeline,
	resolver reservation.Resolver,
	identifiers *reservation.IdentifierGenerator,
	clk clock.Clock,
	idleTTL time.Duration,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		catalog:     catalog,
		pipeline:    pipeline,
		resolver:    resolver,
		identifiers: identifiers,
		clock:       clk,
		idleTTL:     idleTTL,
		logger:      logger,
		sessions:    make(map[uuid.UUID]*sessionEntry),
	}
}

// StartSession opens a session. With a vehicle id the vehicle is selected immediately.
func (s *SessionService) StartSession(ctx context.Context, identity reservation.Identity, req StartSessionRequest) (*SessionResult, error) {
	var selected *vehicle.Vehicle
	if req.VehicleID != nil {
		v, err := s.findVehicle(ctx, *req.VehicleID)
		if err != nil {
			return nil, err
		}
		selected = &v
	}

	box := &inbox{}
	sess := reservation.NewSession(uuid.New(), identity, reservation.SessionDeps{
		Resolver:    s.resolver,
		Identifiers: s.identifiers,
		Pipeline:    s.pipeline,
		Reporter:    box,
		Clock:       s.clock,
	})
	if selected != nil {
		if err := sess.SelectVehicle(*selected); err != nil {
			return nil, err
		}
	}

	entry := &sessionEntry{session: sess, inbox: box}
	s.mu.Lock()
	s.sessions[sess.ID()] = entry
	s.mu.Unlock()

	s.logger.Info("reservation session started",
		zap.String("session_id", sess.ID().String()),
		zap.Bool("authenticated", identity.IsAuthenticated()),
		zap.Bool("deep_link", selected != nil),
	)
	return s.result(entry, nil, nil), nil
}

// GetSession returns the current snapshot.
func (s *SessionService) GetSession(ctx context.Context, sessionID uuid.UUID, identity reservation.Identity) (*SessionResult, error) {
	return s.do(sessionID, identity, func(*reservation.Session) (*reservation.Transition, *reservation.Quote, error) {
		return nil, nil, nil
	})
}

// CancelSession ends a session and discards its draft.
func (s *SessionService) CancelSession(ctx context.Context, sessionID uuid.UUID, identity reservation.Identity) error {
	if _, err := s.lookup(sessionID, identity); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.logger.Info("reservation session cancelled", zap.String("session_id", sessionID.String()))
	return nil
}

// SelectVehicle looks the vehicle up in the catalog and selects it.
func (s *SessionService) SelectVehicle(ctx context.Context, sessionID uuid.UUID, identity reservation.Identity, req SelectVehicleRequest) (*SessionResult, error) {
	if _, err := s.lookup(sessionID, identity); err != nil {
		return nil, err
	}
	v, err := s.findVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	return s.do(sessionID, identity, func(sess *reservation.Session) (*reservation.Transition, *reservation.Quote, error) {
		return nil, nil, sess.SelectVehicle(v)
	})
}

// Next advances the session.
func (s *SessionService) Next(ctx context.Context, sessionID uuid.UUID, identity reservation.Identity) (*SessionResult, error) {
	return s.do(sessionID, identity, transition((*reservation.Session).Next))
}

// Back returns to the previous step.
func (s *SessionService) Back(ctx context.Context, sessionID uuid.UUID, identity reservation.Identity) (*SessionResult, error) {
	return s.do(sessionID, identity, transition((*reservation.Session).Back))
}

// ReturnToSelection goes back to vehicle selection, discarding entered data.
func (s *SessionService) ReturnToSelection(ctx context.Context, sessionID uuid.UUID, identity reservation.Identity) (*SessionResult, error) {
	return s.do(sessionID, identity, transition((*reservation.Session).ReturnToSelection))
}

// Restart discards the draft and starts a new one for the same vehicle.
func (s *SessionService) Restart(ctx context.Context, sessionID uuid.UUID, identity reservation.Identity) (*SessionResult, error) {
	return s.do(sessionID, identity, transition((*reservation.Session).Restart))
}

// ChooseBranch answers a pending availability branch.
func (s *SessionService) ChooseBranch(ctx context.Context, sessionID uuid.UUID, identity reservation.Identity, req ChooseBranchRequest) (*SessionResult, error) {
	choice, err := reservation.ParseBranchChoice(req.Choice)
	if err != nil {
		return nil, apperr.NewValidationError(err.Error())
	}
	return s.do(sessionID, identity, func(sess *reservation.Session) (*reservation.Transition, *reservation.Quote, error) {
		tr, err := sess.ChooseBranch(choice)
		return &tr, nil, err
	})
}

// UpdateDetails replaces the renter fields and returns the recomputed quote.
func (s *SessionService) UpdateDetails(ctx context.Context, sessionID uuid.UUID, identity reservation.Identity, req UpdateDetailsRequest) (*SessionResult, error) {
	pickup, err := parseDate("pickup_date", req.PickupDate)
	if err != nil {
		return nil, err
	}
	ret, err := parseDate("return_date", req.ReturnDate)
	if err != nil {
		return nil, err
	}
	details := reservation.Details{
		RenterName:    req.RenterName,
		RenterPhone:   req.RenterPhone,
		LicenseNumber: req.LicenseNumber,
		PickupDate:    pickup,
		ReturnDate:    ret,
	}
	return s.do(sessionID, identity, func(sess *reservation.Session) (*reservation.Transition, *reservation.Quote, error) {
		q, err := sess.UpdateDetails(details)
		return nil, &q, err
	})
}

// SetPaymentMethod records the payment method.
func (s *SessionService) SetPaymentMethod(ctx context.Context, sessionID uuid.UUID, identity reservation.Identity, req SetPaymentRequest) (*SessionResult, error) {
	method, err := reservation.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return s.do(sessionID, identity, func(sess *reservation.Session) (*reservation.Transition, *reservation.Quote, error) {
		return nil, nil, sess.SetPaymentMethod(method)
	})
}

// Submit sends the booking. The request outlives ctx; see reservation.Pipeline.
func (s *SessionService) Submit(ctx context.Context, sessionID uuid.UUID, identity reservation.Identity) (*SessionResult, error) {
	return s.do(sessionID, identity, func(sess *reservation.Session) (*reservation.Transition, *reservation.Quote, error) {
		tr, err := sess.Submit(ctx)
		return &tr, nil, err
	})
}

// UpdateReservation replaces the fallback form fields.
func (s *SessionService) UpdateReservation(ctx context.Context, sessionID uuid.UUID, identity reservation.Identity, req UpdateReservationRequest) (*SessionResult, error) {
	pickup, err := parseDate("desired_pickup_date", req.DesiredPickupDate)
	if err != nil {
		return nil, err
	}
	details := reservation.ReservationDetails{
		RenterName:        req.RenterName,
		RenterPhone:       req.RenterPhone,
		DesiredPickupDate: pickup,
	}
	if req.DesiredReturnDate != "" {
		ret, err := parseDate("desired_return_date", req.DesiredReturnDate)
		if err != nil {
			return nil, err
		}
		details.DesiredReturnDate = &ret
	}
	return s.do(sessionID, identity, func(sess *reservation.Session) (*reservation.Transition, *reservation.Quote, error) {
		q, err := sess.UpdateReservation(details)
		return nil, &q, err
	})
}

// SubmitReservation sends the fallback reservation.
func (s *SessionService) SubmitReservation(ctx context.Context, sessionID uuid.UUID, identity reservation.Identity) (*SessionResult, error) {
	return s.do(sessionID, identity, func(sess *reservation.Session) (*reservation.Transition, *reservation.Quote, error) {
		tr, err := sess.SubmitReservation(ctx)
		return &tr, nil, err
	})
}

// ActiveSessions returns the number of live sessions.
func (s *SessionService) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SweepExpired removes sessions idle for longer than the configured TTL.
func (s *SessionService) SweepExpired() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.clock.Now().Add(-s.idleTTL)

	s.mu.Lock()
	removed := 0
	for id, entry := range s.sessions {
		if entry.session.LastActive().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Info("expired reservation sessions removed", zap.Int("count", removed))
	}
	return removed
}

// RunSweeper calls SweepExpired every interval until ctx is cancelled.
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepExpired()
		}
	}
}

type sessionOp func(*reservation.Session) (*reservation.Transition, *reservation.Quote, error)

func transition(fn func(*reservation.Session) (reservation.Transition, error)) sessionOp {
	return func(sess *reservation.Session) (*reservation.Transition, *reservation.Quote, error) {
		tr, err := fn(sess)
		return &tr, nil, err
	}
}

func (s *SessionService) do(sessionID uuid.UUID, identity reservation.Identity, op sessionOp) (*SessionResult, error) {
	entry, err := s.lookup(sessionID, identity)
	if err != nil {
		return nil, err
	}
	tr, q, err := op(entry.session)
	if err != nil {
		if notices := entry.inbox.drain(); len(notices) > 0 {
			return nil, &SessionError{Err: err, Notices: notices}
		}
		return nil, err
	}
	return s.result(entry, tr, q), nil
}

func (s *SessionService) result(entry *sessionEntry, tr *reservation.Transition, q *reservation.Quote) *SessionResult {
	return &SessionResult{
		Session:    entry.session.Snapshot(),
		Transition: tr,
		Quote:      q,
		Notices:    entry.inbox.drain(),
	}
}

// lookup enforces ownership. An anonymous session is claimed by the first
// signed-in caller, which lets a renter sign in mid-workflow.
func (s *SessionService) lookup(sessionID uuid.UUID, identity reservation.Identity) (*sessionEntry, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, apperr.NewNotFoundError("Session", sessionID.String())
	}

	owner := entry.session.Identity()
	switch {
	case owner.IsAuthenticated() && !identity.IsAuthenticated():
		return nil, apperr.NewUnauthenticatedError("sign in to continue this session")
	case owner.IsAuthenticated() && owner.UserID != identity.UserID:
		return nil, apperr.NewForbiddenError("session belongs to another renter")
	case !owner.IsAuthenticated() && identity.IsAuthenticated():
		entry.session.AttachIdentity(identity)
		s.logger.Info("identity attached to reservation session",
			zap.String("session_id", sessionID.String()),
			zap.String("user_id", identity.UserID.String()),
		)
	}
	return entry, nil
}

func (s *SessionService) findVehicle(ctx context.Context, id uuid.UUID) (vehicle.Vehicle, error) {
	v, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return vehicle.Vehicle{}, catalogError(err)
	}
	return v, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339. An empty value is a zero time.
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperr.NewValidationError(fmt.Sprintf("%s must be a date (YYYY-MM-DD)", field))
	}
	return t.UTC(), nil
}
