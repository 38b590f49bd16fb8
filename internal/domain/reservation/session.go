package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/Kilat-Rental/service-reservation/internal/platform/clock"
	"github.com/google/uuid"
)

// Transition describes the effect of a workflow action. From == To when the
// action was refused or branched.
type Transition struct {
	From   Step        `json:"from"`
	To     Step        `json:"to"`
	Branch *Resolution `json:"branch,omitempty"`
}

// SessionDeps are the collaborators a Session drives.
type SessionDeps struct {
	Resolver    Resolver
	Identifiers *IdentifierGenerator
	Pipeline    *Pipeline
	Reporter    Reporter
	Clock       clock.Clock
}

// Session is the reservation workflow state machine for one renter.
// It owns its draft exclusively; outbound calls run without holding the lock.
type Session struct {
	mu   sync.Mutex
	deps SessionDeps

	id       uuid.UUID
	identity Identity
	step     Step

	draft         *BookingDraft
	reservation   *ReservationRequest
	pendingBranch *Resolution

	confirmed            *ConfirmedBooking
	reservationConfirmed *ReservationRecord

	createdAt  time.Time
	lastActive time.Time
}

// NewSession creates a session at SelectVehicle. identity may be anonymous.
func NewSession(id uuid.UUID, identity Identity, deps SessionDeps) *Session {
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}
	if deps.Reporter == nil {
		deps.Reporter = ReporterFunc(func(string, Severity) {})
	}
	if deps.Identifiers == nil {
		deps.Identifiers = NewIdentifierGenerator(deps.Clock, nil)
	}
	now := deps.Clock.Now()
	return &Session{
		deps:       deps,
		id:         id,
		identity:   identity,
		step:       StepSelectVehicle,
		createdAt:  now,
		lastActive: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Identity returns the identity the session acts for.
func (s *Session) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// LastActive returns the time of the last operation.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Step returns the current workflow step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// SelectVehicle chooses v and starts a fresh draft, discarding any previous one.
func (s *Session) SelectVehicle(v vehicle.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.touch()

	if s.step != StepSelectVehicle {
		return s.refuse(apperr.NewInvalidStateMessage("return to vehicle selection to change the vehicle"))
	}
	draft, err := NewBookingDraft(v, s.identity, now)
	if err != nil {
		return s.refuse(err)
	}
	s.draft = draft
	s.reservation = nil
	s.pendingBranch = nil
	return nil
}

// Next advances one step. At SelectVehicle an unavailable vehicle yields a branch
// instead of a move; the caller must then ChooseBranch.
func (s *Session) Next() (Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	from := s.step
	to, ok := nextStep(from, ActionNext)
	if !ok {
		return Transition{From: from, To: from}, s.refuse(s.nextRefusal(from))
	}

	switch from {
	case StepSelectVehicle:
		if s.draft == nil {
			return Transition{From: from, To: from}, s.refuse(apperr.NewValidationError("select a vehicle first"))
		}
		res := s.deps.Resolver.Resolve(s.draft.Vehicle())
		if res.IsBranch() {
			s.pendingBranch = &res
			conflict := apperr.NewAvailabilityConflict(
				fmt.Sprintf("%s is not available right now. Join the reservation list or pick another vehicle.", res.Vehicle.Name),
			)
			s.deps.Reporter.Report(conflict.Error(), SeverityWarning)
			return Transition{From: from, To: from, Branch: &res}, nil
		}
		s.pendingBranch = nil
	case StepEnterDetails:
		if err := s.draft.ValidateDetails(); err != nil {
			return Transition{From: from, To: from}, s.refuse(err)
		}
	}

	s.step = to
	return Transition{From: from, To: to}, nil
}

func (s *Session) nextRefusal(from Step) error {
	switch from {
	case StepPayment:
		return apperr.NewInvalidStateMessage("submit the booking to continue")
	case StepReservationFallback:
		return apperr.NewInvalidStateMessage("submit the reservation to continue")
	}
	return apperr.NewInvalidStateError(from.String(), string(ActionNext))
}

// Back returns to the previous step. Refused from terminal steps and mid-submission.
func (s *Session) Back() (Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	from := s.step
	if s.submitting() {
		return Transition{From: from, To: from}, s.refuse(ErrSubmissionInProgress)
	}
	to, ok := nextStep(from, ActionBack)
	if !ok {
		return Transition{From: from, To: from}, s.refuse(apperr.NewInvalidStateError(from.String(), string(ActionBack)))
	}
	if from == StepReservationFallback {
		s.reservation = nil
	}
	s.step = to
	return Transition{From: from, To: to}, nil
}

// ChooseBranch resolves a pending availability branch.
func (s *Session) ChooseBranch(choice BranchChoice) (Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.touch()

	from := s.step
	if s.pendingBranch == nil || from != StepSelectVehicle {
		return Transition{From: from, To: from}, s.refuse(apperr.NewInvalidStateMessage("no availability decision is pending"))
	}

	switch choice {
	case ChoiceEnterReservation:
		to, _ := nextStep(from, ActionEnterReservation)
		req, err := NewReservationRequest(s.pendingBranch.Vehicle, s.identity, now)
		if err != nil {
			return Transition{From: from, To: from}, s.refuse(err)
		}
		s.reservation = req
		s.pendingBranch = nil
		s.step = to
		return Transition{From: from, To: to}, nil
	case ChoiceReturnToSelection:
		s.discard()
		return Transition{From: from, To: StepSelectVehicle}, nil
	default:
		return Transition{From: from, To: from}, s.refuse(apperr.NewValidationError(fmt.Sprintf("invalid branch choice: %s", choice)))
	}
}

// ReturnToSelection goes back to SelectVehicle and discards all entered data.
func (s *Session) ReturnToSelection() (Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	from := s.step
	if s.submitting() {
		return Transition{From: from, To: from}, s.refuse(ErrSubmissionInProgress)
	}
	to, ok := nextStep(from, ActionReturnToSelection)
	if !ok {
		return Transition{From: from, To: from}, s.refuse(apperr.NewInvalidStateError(from.String(), StepSelectVehicle.String()))
	}
	s.discard()
	s.step = to
	return Transition{From: from, To: to}, nil
}

// UpdateDetails replaces the renter fields at EnterDetails and returns the fresh quote.
func (s *Session) UpdateDetails(details Details) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.touch()

	if s.step != StepEnterDetails {
		return Quote{}, s.refuse(apperr.NewInvalidStateMessage("renter details can only be edited at the details step"))
	}
	if err := s.draft.UpdateDetails(details, now); err != nil {
		return Quote{}, s.refuse(err)
	}
	return s.draft.Quote(), nil
}

// SetPaymentMethod records the payment method at Payment.
func (s *Session) SetPaymentMethod(method PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.touch()

	if s.step != StepPayment {
		return s.refuse(apperr.NewInvalidStateMessage("payment method can only be chosen at the payment step"))
	}
	if err := s.draft.SetPaymentMethod(method, now); err != nil {
		return s.refuse(err)
	}
	return nil
}

// Submit sends the draft to the booking gateway. Identifiers are assigned on the
// first attempt and reused by every retry of the same draft.
func (s *Session) Submit(ctx context.Context) (Transition, error) {
	s.mu.Lock()
	now := s.touch()
	from := s.step

	if from != StepPayment {
		s.mu.Unlock()
		return Transition{From: from, To: from}, s.refuse(apperr.NewInvalidStateError(from.String(), StepConfirmation.String()))
	}
	if s.draft.Status() == StatusSubmitting {
		s.mu.Unlock()
		return Transition{From: from, To: from}, ErrSubmissionInProgress
	}
	if !s.identity.IsAuthenticated() {
		s.mu.Unlock()
		return Transition{From: from, To: from}, s.refuse(apperr.NewUnauthenticatedError("sign in to complete your booking"))
	}
	if err := s.draft.ValidateDetails(); err != nil {
		s.mu.Unlock()
		return Transition{From: from, To: from}, s.refuse(err)
	}
	if err := s.draft.ValidatePayment(); err != nil {
		s.mu.Unlock()
		return Transition{From: from, To: from}, s.refuse(err)
	}
	if err := s.draft.beginSubmission(s.deps.Identifiers, now); err != nil {
		s.mu.Unlock()
		return Transition{From: from, To: from}, s.refuse(err)
	}
	draft := s.draft
	record := draft.Record(s.identity)
	s.mu.Unlock()

	result, err := s.deps.Pipeline.SubmitBooking(ctx, record)

	s.mu.Lock()
	defer s.mu.Unlock()
	now = s.touch()

	if err != nil {
		if errors.Is(err, ErrSubmissionInProgress) {
			return Transition{From: from, To: from}, err
		}
		_ = draft.markFailed(apperr.PublicMessage(err), now)
		s.deps.Reporter.Report(
			fmt.Sprintf("Booking %s could not be submitted. Please try again.", record.BookingID),
			SeverityError,
		)
		return Transition{From: from, To: from}, err
	}

	_ = draft.markConfirmed(now)
	to, _ := nextStep(from, ActionConfirm)
	s.step = to
	s.confirmed = &result.Booking
	s.deps.Reporter.Report(
		fmt.Sprintf("Booking %s confirmed. Reference %s.", record.BookingID, record.ReferenceCode),
		SeverityInfo,
	)
	if result.Replayed {
		s.deps.Reporter.Report(
			fmt.Sprintf("Booking %s was already confirmed with the details from your earlier attempt.", record.BookingID),
			SeverityWarning,
		)
	}
	if result.ReceiptErr != nil {
		s.deps.Reporter.Report("Your booking is confirmed but the receipt is not available yet.", SeverityWarning)
	}
	return Transition{From: from, To: to}, nil
}

// Restart discards the draft and starts a new one for the same vehicle at SelectVehicle.
// The new draft receives new identifiers when it is submitted.
func (s *Session) Restart() (Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.touch()

	from := s.step
	switch {
	case s.draft == nil || from == StepReservationFallback:
		return Transition{From: from, To: from}, s.refuse(apperr.NewInvalidStateMessage("there is no booking draft to restart"))
	case from.IsTerminal():
		return Transition{From: from, To: from}, s.refuse(apperr.NewInvalidStateError(from.String(), StepSelectVehicle.String()))
	case s.submitting():
		return Transition{From: from, To: from}, s.refuse(ErrSubmissionInProgress)
	}

	draft, err := NewBookingDraft(s.draft.Vehicle(), s.identity, now)
	if err != nil {
		return Transition{From: from, To: from}, s.refuse(err)
	}
	s.draft = draft
	s.pendingBranch = nil
	s.step = StepSelectVehicle
	return Transition{From: from, To: StepSelectVehicle}, nil
}

// UpdateReservation replaces the fallback form fields and returns the fresh quote.
func (s *Session) UpdateReservation(details ReservationDetails) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.touch()

	if s.step != StepReservationFallback {
		return Quote{}, s.refuse(apperr.NewInvalidStateMessage("no reservation is being prepared"))
	}
	if err := s.reservation.Update(details, now); err != nil {
		return Quote{}, s.refuse(err)
	}
	return s.reservation.Quote(), nil
}

// SubmitReservation sends the fallback request. Anonymous renters may reserve.
func (s *Session) SubmitReservation(ctx context.Context) (Transition, error) {
	s.mu.Lock()
	now := s.touch()
	from := s.step

	if from != StepReservationFallback {
		s.mu.Unlock()
		return Transition{From: from, To: from}, s.refuse(apperr.NewInvalidStateError(from.String(), StepReservationConfirmed.String()))
	}
	req := s.reservation
	if req.submitting {
		s.mu.Unlock()
		return Transition{From: from, To: from}, ErrSubmissionInProgress
	}
	if err := req.Validate(); err != nil {
		s.mu.Unlock()
		return Transition{From: from, To: from}, s.refuse(err)
	}
	req.submitting = true
	record := req.Record(s.identity, now)
	s.mu.Unlock()

	err := s.deps.Pipeline.SubmitReservation(ctx, record)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	req.submitting = false

	if err != nil {
		if !errors.Is(err, ErrSubmissionInProgress) {
			s.deps.Reporter.Report("Your reservation could not be submitted. Please try again.", SeverityError)
		}
		return Transition{From: from, To: from}, err
	}

	req.submitted = true
	to, _ := nextStep(from, ActionConfirmReservation)
	s.step = to
	s.reservationConfirmed = &record
	s.deps.Reporter.Report(
		fmt.Sprintf("You are on the list for %s. We will contact you at %s.", record.VehicleName, record.RenterPhone),
		SeverityInfo,
	)
	return Transition{From: from, To: to}, nil
}

// AttachIdentity records a sign-in that happened mid-session. Empty renter
// fields are prefilled; entered data is kept.
func (s *Session) AttachIdentity(identity Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.touch()

	s.identity = identity
	if s.draft != nil {
		s.draft.prefill(identity, now)
	}
}

func (s *Session) submitting() bool {
	if s.draft != nil && s.draft.Status() == StatusSubmitting {
		return true
	}
	return s.reservation != nil && s.reservation.submitting
}

func (s *Session) discard() {
	s.draft = nil
	s.reservation = nil
	s.pendingBranch = nil
}

func (s *Session) touch() time.Time {
	s.lastActive = s.deps.Clock.Now()
	return s.lastActive
}

// refuse reports err to the user and returns it.
func (s *Session) refuse(err error) error {
	s.deps.Reporter.Report(apperr.PublicMessage(err), severityFor(err))
	return err
}

func severityFor(err error) Severity {
	switch apperr.KindOf(err) {
	case apperr.KindNetwork, apperr.KindInternal:
		return SeverityError
	default:
		return SeverityWarning
	}
}
