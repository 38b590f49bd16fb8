package reservation

import (
	"strings"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/google/uuid"
)

// ReservationDetails are the fields of the fallback form.
type ReservationDetails struct {
	RenterName        string
	RenterPhone       string
	DesiredPickupDate time.Time
	DesiredReturnDate *time.Time
}

// ReservationRequest is the waitlist entry created when a vehicle cannot be booked.
type ReservationRequest struct {
	id         uuid.UUID
	vehicle    vehicle.Vehicle
	details    ReservationDetails
	submitting bool
	submitted  bool

	createdAt time.Time
	updatedAt time.Time
}

// NewReservationRequest creates a request for v, prefilled from the identity.
func NewReservationRequest(v vehicle.Vehicle, identity Identity, now time.Time) (*ReservationRequest, error) {
	if v.IsZero() {
		return nil, apperr.NewValidationError("vehicle is required")
	}
	return &ReservationRequest{
		id:      uuid.New(),
		vehicle: v,
		details: ReservationDetails{
			RenterName:  identity.Name,
			RenterPhone: identity.Phone,
		},
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ID returns the request's unique identifier.
func (r *ReservationRequest) ID() uuid.UUID { return r.id }

// Vehicle returns the requested vehicle.
func (r *ReservationRequest) Vehicle() vehicle.Vehicle { return r.vehicle }

// Details returns the form fields.
func (r *ReservationRequest) Details() ReservationDetails { return r.details }

// IsSubmitted reports whether the request reached the backend.
func (r *ReservationRequest) IsSubmitted() bool { return r.submitted }

// Quote prices the desired window. Without a return date it is a one-day quote.
func (r *ReservationRequest) Quote() Quote {
	ret := r.details.DesiredPickupDate
	if r.details.DesiredReturnDate != nil {
		ret = *r.details.DesiredReturnDate
	}
	return CalculateQuote(r.vehicle.DailyRate, r.details.DesiredPickupDate, ret)
}

// EstimatedTotal returns the quote total, 0 while the window is invalid.
func (r *ReservationRequest) EstimatedTotal() int64 { return r.Quote().Total }

// Update replaces the form fields.
func (r *ReservationRequest) Update(details ReservationDetails, now time.Time) error {
	if r.submitting || r.submitted {
		return apperr.NewInvalidStateMessage("reservation was already submitted")
	}
	details.RenterName = strings.TrimSpace(details.RenterName)
	details.RenterPhone = strings.TrimSpace(details.RenterPhone)
	r.details = details
	r.updatedAt = now
	return nil
}

// Validate checks the fields required before submission.
func (r *ReservationRequest) Validate() error {
	var missing []string
	if r.details.RenterName == "" {
		missing = append(missing, "renter name")
	}
	if r.details.RenterPhone == "" {
		missing = append(missing, "renter phone")
	}
	if r.details.DesiredPickupDate.IsZero() {
		missing = append(missing, "desired pickup date")
	}
	if len(missing) > 0 {
		return apperr.NewValidationError(strings.Join(missing, ", ") + " required")
	}
	if !r.Quote().IsValid {
		return apperr.NewValidationError("desired return date must not be before desired pickup date")
	}
	return nil
}

// Record serializes the request for the reservation gateway.
func (r *ReservationRequest) Record(identity Identity, now time.Time) ReservationRecord {
	return ReservationRecord{
		ID:                r.id,
		VehicleID:         r.vehicle.ID,
		VehicleName:       r.vehicle.Name,
		UserID:            identity.UserID,
		RenterName:        r.details.RenterName,
		RenterPhone:       r.details.RenterPhone,
		DesiredPickupDate: r.details.DesiredPickupDate,
		DesiredReturnDate: r.details.DesiredReturnDate,
		EstimatedTotal:    r.EstimatedTotal(),
		CreatedAt:         now,
	}
}
