package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "rental.booking.events"
	TopicCatalogEvents = "rental.catalog.events"
)

// Event types.
const (
	BookingConfirmed           = "rental.booking.confirmed"
	ReservationCreated         = "rental.reservation.created"
	VehicleAvailabilityChanged = "rental.vehicle.availability_changed"
)

// Source identifies this service on published envelopes.
const Source = "service-reservation"

// BookingConfirmedEvent is published after the booking gateway accepts a booking.
type BookingConfirmedEvent struct {
	BookingID      string    `json:"booking_id"`
	ReferenceCode  string    `json:"reference_code"`
	ConfirmationID string    `json:"confirmation_id"`
	VehicleID      uuid.UUID `json:"vehicle_id"`
	UserID         uuid.UUID `json:"user_id"`
	PickupDate     time.Time `json:"pickup_date"`
	ReturnDate     time.Time `json:"return_date"`
	Days           int       `json:"days"`
	Total          int64     `json:"total"`
	PaymentMethod  string    `json:"payment_method"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

// ReservationCreatedEvent is published for a fallback reservation.
type ReservationCreatedEvent struct {
	ReservationID     uuid.UUID  `json:"reservation_id"`
	VehicleID         uuid.UUID  `json:"vehicle_id"`
	UserID            *uuid.UUID `json:"user_id,omitempty"`
	DesiredPickupDate time.Time  `json:"desired_pickup_date"`
	DesiredReturnDate *time.Time `json:"desired_return_date,omitempty"`
	EstimatedTotal    int64      `json:"estimated_total"`
	CreatedAt         time.Time  `json:"created_at"`
}

// VehicleAvailabilityChangedEvent is consumed from the catalog owner.
type VehicleAvailabilityChangedEvent struct {
	VehicleID    uuid.UUID `json:"vehicle_id"`
	Availability string    `json:"availability"`
	ChangedAt    time.Time `json:"changed_at"`
}
