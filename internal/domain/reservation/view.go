package reservation

import (
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
	"github.com/google/uuid"
)

// SessionView is a read-only snapshot of a session.
type SessionView struct {
	ID                      uuid.UUID          `json:"id"`
	Step                    Step               `json:"step"`
	StepNumber              int                `json:"step_number"`
	Authenticated           bool               `json:"authenticated"`
	Vehicle                 *vehicle.Vehicle   `json:"vehicle,omitempty"`
	Draft                   *DraftView         `json:"draft,omitempty"`
	PendingBranch           *Resolution        `json:"pending_branch,omitempty"`
	Reservation             *ReservationView   `json:"reservation,omitempty"`
	Confirmation            *ConfirmedBooking  `json:"confirmation,omitempty"`
	ReservationConfirmation *ReservationRecord `json:"reservation_confirmation,omitempty"`
	CreatedAt               time.Time          `json:"created_at"`
	LastActive              time.Time          `json:"last_active"`
}

// DraftView is the client representation of a BookingDraft.
type DraftView struct {
	ID            uuid.UUID     `json:"id"`
	Status        DraftStatus   `json:"status"`
	RenterName    string        `json:"renter_name"`
	RenterPhone   string        `json:"renter_phone"`
	LicenseNumber string        `json:"license_number"`
	PickupDate    *time.Time    `json:"pickup_date,omitempty"`
	ReturnDate    *time.Time    `json:"return_date,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	Quote         Quote         `json:"quote"`
	BookingID     string        `json:"booking_id,omitempty"`
	ReferenceCode string        `json:"reference_code,omitempty"`
	Attempts      int           `json:"attempts"`
	LastError     string        `json:"last_error,omitempty"`
}

// ReservationView is the client representation of a ReservationRequest.
type ReservationView struct {
	ID                uuid.UUID  `json:"id"`
	RenterName        string     `json:"renter_name"`
	RenterPhone       string     `json:"renter_phone"`
	DesiredPickupDate *time.Time `json:"desired_pickup_date,omitempty"`
	DesiredReturnDate *time.Time `json:"desired_return_date,omitempty"`
	Quote             Quote      `json:"quote"`
	EstimatedTotal    int64      `json:"estimated_total"`
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := SessionView{
		ID:            s.id,
		Step:          s.step,
		StepNumber:    s.step.Number(),
		Authenticated: s.identity.IsAuthenticated(),
		CreatedAt:     s.createdAt,
		LastActive:    s.lastActive,
	}

	if s.draft != nil {
		v := s.draft.Vehicle()
		view.Vehicle = &v
		view.Draft = toDraftView(s.draft)
	}
	if s.reservation != nil {
		v := s.reservation.Vehicle()
		view.Vehicle = &v
		view.Reservation = toReservationView(s.reservation)
	}
	if s.pendingBranch != nil {
		b := *s.pendingBranch
		view.PendingBranch = &b
	}
	if s.confirmed != nil {
		c := *s.confirmed
		view.Confirmation = &c
	}
	if s.reservationConfirmed != nil {
		r := *s.reservationConfirmed
		view.ReservationConfirmation = &r
	}
	return view
}

func toDraftView(d *BookingDraft) *DraftView {
	details := d.Details()
	ids := d.Identifiers()
	return &DraftView{
		ID:            d.ID(),
		Status:        d.Status(),
		RenterName:    details.RenterName,
		RenterPhone:   details.RenterPhone,
		LicenseNumber: details.LicenseNumber,
		PickupDate:    optionalTime(details.PickupDate),
		ReturnDate:    optionalTime(details.ReturnDate),
		PaymentMethod: d.PaymentMethod(),
		Quote:         d.Quote(),
		BookingID:     ids.BookingID,
		ReferenceCode: ids.ReferenceCode,
		Attempts:      d.Attempts(),
		LastError:     d.LastError(),
	}
}

func toReservationView(r *ReservationRequest) *ReservationView {
	details := r.Details()
	return &ReservationView{
		ID:                r.ID(),
		RenterName:        details.RenterName,
		RenterPhone:       details.RenterPhone,
		DesiredPickupDate: optionalTime(details.DesiredPickupDate),
		DesiredReturnDate: details.DesiredReturnDate,
		Quote:             r.Quote(),
		EstimatedTotal:    r.EstimatedTotal(),
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
