//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/application"
	"github.com/Kilat-Rental/service-reservation/internal/domain/reservation"
	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
	rentalEvents "github.com/Kilat-Rental/service-reservation/internal/events"
	"github.com/Kilat-Rental/service-reservation/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Seeded by 000002_seed_vehicles.
var (
	avanzaID = uuid.MustParse("7b0f3c9e-1d2a-4c55-9a01-2f6b1c3e4d01")
	brioID   = uuid.MustParse("7b0f3c9e-1d2a-4c55-9a01-2f6b1c3e4d02")
)

// TestBookingSubmission_PersistsAndPublishes drives a session to Confirmation and
// checks the booking row, the stored receipt and the booking.confirmed event.
func TestBookingSubmission_PersistsAndPublishes(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupReservationStack(t, infra)
	defer stack.CleanupProducer()

	ctx := context.Background()
	renter := reservation.Identity{UserID: uuid.New(), Name: "Sari Dewi", Phone: "+62811000111"}

	res, err := stack.Sessions.StartSession(ctx, renter, application.StartSessionRequest{VehicleID: &avanzaID})
	require.NoError(t, err)
	sid := res.Session.ID

	_, err = stack.Sessions.Next(ctx, sid, renter)
	require.NoError(t, err)
	_, err = stack.Sessions.Next(ctx, sid, renter)
	require.NoError(t, err)
	_, err = stack.Sessions.UpdateDetails(ctx, sid, renter, application.UpdateDetailsRequest{
		RenterName: "Sari Dewi", RenterPhone: "+62811000111", LicenseNumber: "SIM-1234",
		PickupDate: "2026-03-10", ReturnDate: "2026-03-13",
	})
	require.NoError(t, err)
	_, err = stack.Sessions.Next(ctx, sid, renter)
	require.NoError(t, err)
	_, err = stack.Sessions.SetPaymentMethod(ctx, sid, renter, application.SetPaymentRequest{PaymentMethod: "card"})
	require.NoError(t, err)

	res, err = stack.Sessions.Submit(ctx, sid, renter)
	require.NoError(t, err)
	require.NotNil(t, res.Session.Confirmation)
	bookingID := res.Session.Confirmation.BookingID

	var model repository.BookingModel
	require.NoError(t, infra.DB.Where("booking_number = ?", bookingID).First(&model).Error)
	assert.Equal(t, int64(1_050_000), model.Total)
	assert.Equal(t, 3, model.Days)

	var receipts int64
	require.NoError(t, infra.DB.Model(&repository.ReceiptModel{}).Where("booking_number = ?", bookingID).Count(&receipts).Error)
	assert.Equal(t, int64(1), receipts)

	ce := consumeOneEvent(t, infra.KafkaBrokers, rentalEvents.TopicBookingEvents, rentalEvents.BookingConfirmed, 15*time.Second)
	var evt rentalEvents.BookingConfirmedEvent
	require.NoError(t, ce.ParseData(&evt))
	assert.Equal(t, bookingID, evt.BookingID)
	assert.Equal(t, renter.UserID, evt.UserID)
}

// TestAvailabilityChanged_UpdatesCatalog verifies that a catalog event flips a
// vehicle's availability and that the cached entry is refreshed.
func TestAvailabilityChanged_UpdatesCatalog(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupReservationStack(t, infra)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Warm the cache with the unavailable state.
	v, err := stack.Catalog.GetVehicle(ctx, brioID)
	require.NoError(t, err)
	require.Equal(t, vehicle.AvailabilityUnavailable, v.Availability)

	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	publishTestEvent(t, infra.KafkaBrokers, rentalEvents.TopicCatalogEvents, "service-catalog",
		rentalEvents.VehicleAvailabilityChanged, rentalEvents.VehicleAvailabilityChangedEvent{
			VehicleID:    brioID,
			Availability: "available",
			ChangedAt:    time.Now().UTC(),
		})

	require.Eventually(t, func() bool {
		v, err := stack.Catalog.GetVehicle(ctx, brioID)
		return err == nil && v.Availability == vehicle.AvailabilityAvailable
	}, 15*time.Second, 200*time.Millisecond, "vehicle availability did not change")
}
