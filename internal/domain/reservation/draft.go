package reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/google/uuid"
)

// PaymentMethod is how the renter intends to pay. It is recorded, not settled.
type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCashOnPickup PaymentMethod = "cash_on_pickup"
)

// IsValid returns true if the payment method is recognized.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCard, PaymentBankTransfer, PaymentCashOnPickup:
		return true
	}
	return false
}

// ParsePaymentMethod converts a string to a PaymentMethod, returning an error if invalid.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.IsValid() {
		return "", apperr.NewValidationError(fmt.Sprintf("invalid payment method: %s", s))
	}
	return m, nil
}

// Details are the renter fields entered at EnterDetails.
type Details struct {
	RenterName    string
	RenterPhone   string
	LicenseNumber string
	PickupDate    time.Time
	ReturnDate    time.Time
}

func (d Details) normalized() Details {
	d.RenterName = strings.TrimSpace(d.RenterName)
	d.RenterPhone = strings.TrimSpace(d.RenterPhone)
	d.LicenseNumber = strings.TrimSpace(d.LicenseNumber)
	return d
}

// BookingDraft is the session-scoped record accumulated across the workflow.
type BookingDraft struct {
	id            uuid.UUID
	vehicle       vehicle.Vehicle
	details       Details
	paymentMethod PaymentMethod
	identifiers   Identifiers
	status        DraftStatus
	attempts      int
	lastError     string

	createdAt time.Time
	updatedAt time.Time
}

// NewBookingDraft creates a draft for v, prefilled from the identity when one is known.
func NewBookingDraft(v vehicle.Vehicle, identity Identity, now time.Time) (*BookingDraft, error) {
	if v.IsZero() {
		return nil, apperr.NewValidationError("vehicle is required")
	}
	return &BookingDraft{
		id:      uuid.New(),
		vehicle: v,
		details: Details{
			RenterName:  identity.Name,
			RenterPhone: identity.Phone,
		},
		status:    StatusDraft,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// --- Getters ---

// ID returns the draft's unique identifier.
func (d *BookingDraft) ID() uuid.UUID { return d.id }

// Vehicle returns the selected vehicle.
func (d *BookingDraft) Vehicle() vehicle.Vehicle { return d.vehicle }

// Details returns the renter fields.
func (d *BookingDraft) Details() Details { return d.details }

// PaymentMethod returns the selected payment method, or "" if none.
func (d *BookingDraft) PaymentMethod() PaymentMethod { return d.paymentMethod }

// Identifiers returns the assigned identifiers, zero until the first submission.
func (d *BookingDraft) Identifiers() Identifiers { return d.identifiers }

// Status returns the submission status.
func (d *BookingDraft) Status() DraftStatus { return d.status }

// Attempts returns how many submissions were started.
func (d *BookingDraft) Attempts() int { return d.attempts }

// LastError returns the reason of the last failed submission.
func (d *BookingDraft) LastError() string { return d.lastError }

// CreatedAt returns the creation timestamp.
func (d *BookingDraft) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (d *BookingDraft) UpdatedAt() time.Time { return d.updatedAt }

// Quote prices the current inputs.
func (d *BookingDraft) Quote() Quote {
	return CalculateQuote(d.vehicle.DailyRate, d.details.PickupDate, d.details.ReturnDate)
}

// IsEditable reports whether fields may change.
func (d *BookingDraft) IsEditable() bool {
	return d.status != StatusSubmitting && d.status != StatusConfirmed
}

// --- Behavior ---

// UpdateDetails replaces the renter fields.
func (d *BookingDraft) UpdateDetails(details Details, now time.Time) error {
	if !d.IsEditable() {
		return apperr.NewInvalidStateMessage(fmt.Sprintf("booking draft is %s and cannot be edited", d.status))
	}
	d.details = details.normalized()
	d.updatedAt = now
	return nil
}

// SetPaymentMethod records the payment method.
func (d *BookingDraft) SetPaymentMethod(method PaymentMethod, now time.Time) error {
	if !d.IsEditable() {
		return apperr.NewInvalidStateMessage(fmt.Sprintf("booking draft is %s and cannot be edited", d.status))
	}
	if !method.IsValid() {
		return apperr.NewValidationError(fmt.Sprintf("invalid payment method: %s", method))
	}
	d.paymentMethod = method
	d.updatedAt = now
	return nil
}

// ValidateDetails checks everything EnterDetails requires before Payment.
func (d *BookingDraft) ValidateDetails() error {
	var missing []string
	if d.details.RenterName == "" {
		missing = append(missing, "renter name")
	}
	if d.details.RenterPhone == "" {
		missing = append(missing, "renter phone")
	}
	if d.details.LicenseNumber == "" {
		missing = append(missing, "license number")
	}
	if len(missing) > 0 {
		return apperr.NewValidationError(strings.Join(missing, ", ") + " required")
	}
	if d.details.PickupDate.IsZero() || d.details.ReturnDate.IsZero() {
		return apperr.NewValidationError("pickup and return dates are required")
	}
	if !d.Quote().IsValid {
		return apperr.NewValidationError("return date must not be before pickup date")
	}
	return nil
}

// ValidatePayment checks that a payment method was chosen.
func (d *BookingDraft) ValidatePayment() error {
	if d.paymentMethod == "" {
		return apperr.NewValidationError("payment method is required")
	}
	return nil
}

// beginSubmission locks the draft and assigns identifiers on the first attempt only.
func (d *BookingDraft) beginSubmission(gen *IdentifierGenerator, now time.Time) error {
	if !d.status.CanTransitionTo(StatusSubmitting) {
		return apperr.NewInvalidStateError(string(d.status), string(StatusSubmitting))
	}
	if d.identifiers.IsZero() {
		ids, err := gen.Generate()
		if err != nil {
			return apperr.NewInternalError("failed to assign booking identifiers", err)
		}
		d.identifiers = ids
	}
	d.status = StatusSubmitting
	d.attempts++
	d.lastError = ""
	d.updatedAt = now
	return nil
}

func (d *BookingDraft) markConfirmed(now time.Time) error {
	if !d.status.CanTransitionTo(StatusConfirmed) {
		return apperr.NewInvalidStateError(string(d.status), string(StatusConfirmed))
	}
	d.status = StatusConfirmed
	d.updatedAt = now
	return nil
}

func (d *BookingDraft) markFailed(reason string, now time.Time) error {
	if !d.status.CanTransitionTo(StatusFailed) {
		return apperr.NewInvalidStateError(string(d.status), string(StatusFailed))
	}
	d.status = StatusFailed
	d.lastError = reason
	d.updatedAt = now
	return nil
}

// Record serializes the draft for the booking gateway.
func (d *BookingDraft) Record(identity Identity) BookingRecord {
	q := d.Quote()
	return BookingRecord{
		BookingID:     d.identifiers.BookingID,
		ReferenceCode: d.identifiers.ReferenceCode,
		DraftID:       d.id,
		VehicleID:     d.vehicle.ID,
		VehicleName:   d.vehicle.Name,
		DailyRate:     d.vehicle.DailyRate,
		UserID:        identity.UserID,
		RenterName:    d.details.RenterName,
		RenterPhone:   d.details.RenterPhone,
		RenterEmail:   identity.Email,
		LicenseNumber: d.details.LicenseNumber,
		PickupDate:    d.details.PickupDate,
		ReturnDate:    d.details.ReturnDate,
		Days:          q.Days,
		Total:         q.Total,
		PaymentMethod: d.paymentMethod,
	}
}

// prefill fills empty renter fields from a newly attached identity.
func (d *BookingDraft) prefill(identity Identity, now time.Time) {
	if !d.IsEditable() {
		return
	}
	if d.details.RenterName == "" {
		d.details.RenterName = identity.Name
	}
	if d.details.RenterPhone == "" {
		d.details.RenterPhone = identity.Phone
	}
	d.updatedAt = now
}
