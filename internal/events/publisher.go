package events

import (
	"context"

	"github.com/Kilat-Rental/service-reservation/internal/domain/reservation"
	"github.com/Kilat-Rental/service-reservation/internal/platform/kafka"
	"github.com/google/uuid"
)

// EventSink writes an envelope to a topic. *kafka.Producer satisfies it.
type EventSink interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// Publisher maps workflow outcomes to CloudEvents on the booking topic.
type Publisher struct {
	sink EventSink
}

// NewPublisher creates a new Publisher.
func NewPublisher(sink EventSink) *Publisher {
	return &Publisher{sink: sink}
}

// PublishBookingConfirmed publishes rental.booking.confirmed.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, b reservation.ConfirmedBooking) error {
	evt := BookingConfirmedEvent{
		BookingID:      b.BookingID,
		ReferenceCode:  b.ReferenceCode,
		ConfirmationID: b.Confirmation.ConfirmationID,
		VehicleID:      b.VehicleID,
		UserID:         b.UserID,
		PickupDate:     b.PickupDate,
		ReturnDate:     b.ReturnDate,
		Days:           b.Days,
		Total:          b.Total,
		PaymentMethod:  string(b.PaymentMethod),
		ConfirmedAt:    b.Confirmation.ConfirmedAt,
	}
	return p.publish(ctx, BookingConfirmed, b.BookingID, evt)
}

// PublishReservationCreated publishes rental.reservation.created.
func (p *Publisher) PublishReservationCreated(ctx context.Context, r reservation.ReservationRecord) error {
	evt := ReservationCreatedEvent{
		ReservationID:     r.ID,
		VehicleID:         r.VehicleID,
		DesiredPickupDate: r.DesiredPickupDate,
		DesiredReturnDate: r.DesiredReturnDate,
		EstimatedTotal:    r.EstimatedTotal,
		CreatedAt:         r.CreatedAt,
	}
	if r.UserID != uuid.Nil {
		uid := r.UserID
		evt.UserID = &uid
	}
	return p.publish(ctx, ReservationCreated, r.ID.String(), evt)
}

func (p *Publisher) publish(ctx context.Context, eventType, subject string, data interface{}) error {
	ce, err := kafka.NewCloudEvent(Source, eventType, data)
	if err != nil {
		return err
	}
	ce.Subject = subject
	return p.sink.PublishEvent(ctx, TopicBookingEvents, ce)
}
