package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/domain/reservation"
	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/Kilat-Rental/service-reservation/internal/platform/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sessionFixture struct {
	svc          *SessionService
	clock        *clock.Manual
	catalog      *fakeCatalog
	bookings     *fakeBookings
	reservations *fakeReservations
	receipts     *memoryReceipts
	available    vehicle.Vehicle
	unavailable  vehicle.Vehicle
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	available := vehicle.Vehicle{
		ID: uuid.New(), Name: "Toyota Avanza", DailyRate: 350_000,
		Transmission: vehicle.TransmissionManual, FuelType: vehicle.FuelPetrol,
		Seats: 7, Availability: vehicle.AvailabilityAvailable,
	}
	unavailable := vehicle.Vehicle{
		ID: uuid.New(), Name: "Honda Brio", DailyRate: 250_000,
		Transmission: vehicle.TransmissionAutomatic, FuelType: vehicle.FuelPetrol,
		Seats: 5, Availability: vehicle.AvailabilityUnavailable,
	}

	f := &sessionFixture{
		clock:        clock.NewManual(testNow),
		catalog:      newFakeCatalog(available, unavailable),
		bookings:     &fakeBookings{},
		reservations: &fakeReservations{},
		receipts:     newMemoryReceipts(),
		available:    available,
		unavailable:  unavailable,
	}
	logger := zap.NewNop()
	receipts := NewReceiptService(f.receipts, logger)
	pipeline := reservation.NewPipeline(f.bookings, f.reservations, receipts, nil, time.Second, logger)
	ids := reservation.NewIdentifierGenerator(f.clock, nil)
	f.svc = NewSessionService(f.catalog, pipeline, reservation.NewResolver(true), ids, f.clock, 30*time.Minute, logger)
	return f
}

func renter() reservation.Identity {
	return reservation.Identity{UserID: uuid.New(), Name: "Sari Dewi", Phone: "+62811000111", Email: "sari@example.com"}
}

func TestSessionService_CompleteBooking(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := renter()

	res, err := f.svc.StartSession(ctx, id, StartSessionRequest{VehicleID: &f.available.ID})
	require.NoError(t, err)
	sid := res.Session.ID
	assert.Equal(t, reservation.StepSelectVehicle, res.Session.Step)
	require.NotNil(t, res.Session.Draft)
	assert.Equal(t, "Sari Dewi", res.Session.Draft.RenterName)

	res, err = f.svc.Next(ctx, sid, id)
	require.NoError(t, err)
	assert.Equal(t, reservation.StepReviewSpecs, res.Session.Step)
	_, err = f.svc.Next(ctx, sid, id)
	require.NoError(t, err)

	res, err = f.svc.UpdateDetails(ctx, sid, id, UpdateDetailsRequest{
		RenterName:    "Sari Dewi",
		RenterPhone:   "+62811000111",
		LicenseNumber: "SIM-1234",
		PickupDate:    "2026-03-10",
		ReturnDate:    "2026-03-13",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Quote)
	assert.Equal(t, 3, res.Quote.Days)
	assert.Equal(t, int64(1_050_000), res.Quote.Total)

	res, err = f.svc.Next(ctx, sid, id)
	require.NoError(t, err)
	assert.Equal(t, reservation.StepPayment, res.Session.Step)
	_, err = f.svc.SetPaymentMethod(ctx, sid, id, SetPaymentRequest{PaymentMethod: "card"})
	require.NoError(t, err)

	res, err = f.svc.Submit(ctx, sid, id)
	require.NoError(t, err)
	assert.Equal(t, reservation.StepConfirmation, res.Session.Step)
	require.NotNil(t, res.Session.Confirmation)
	require.Len(t, f.bookings.records, 1)
	assert.Equal(t, int64(1_050_000), f.bookings.records[0].Total)

	_, err = f.receipts.FindByBookingID(ctx, res.Session.Confirmation.BookingID)
	assert.NoError(t, err)
	require.NotEmpty(t, res.Notices)
	assert.Equal(t, reservation.SeverityInfo, res.Notices[0].Severity)
}

func TestSessionService_UnavailableBranchToReservation(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	anon := reservation.Identity{}

	res, err := f.svc.StartSession(ctx, anon, StartSessionRequest{})
	require.NoError(t, err)
	sid := res.Session.ID

	_, err = f.svc.SelectVehicle(ctx, sid, anon, SelectVehicleRequest{VehicleID: f.unavailable.ID})
	require.NoError(t, err)

	res, err = f.svc.Next(ctx, sid, anon)
	require.NoError(t, err)
	assert.Equal(t, reservation.StepSelectVehicle, res.Session.Step)
	require.NotNil(t, res.Transition)
	require.NotNil(t, res.Transition.Branch)
	require.NotEmpty(t, res.Notices)
	assert.Equal(t, reservation.SeverityWarning, res.Notices[0].Severity)

	res, err = f.svc.ChooseBranch(ctx, sid, anon, ChooseBranchRequest{Choice: "enter_reservation"})
	require.NoError(t, err)
	assert.Equal(t, reservation.StepReservationFallback, res.Session.Step)

	_, err = f.svc.UpdateReservation(ctx, sid, anon, UpdateReservationRequest{
		RenterName:        "Budi",
		RenterPhone:       "+62812000222",
		DesiredPickupDate: "2026-04-01",
	})
	require.NoError(t, err)

	res, err = f.svc.SubmitReservation(ctx, sid, anon)
	require.NoError(t, err)
	assert.Equal(t, reservation.StepReservationConfirmed, res.Session.Step)
	require.Len(t, f.reservations.records, 1)
	assert.Equal(t, f.unavailable.ID, f.reservations.records[0].VehicleID)
}

func TestSessionService_Ownership(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	owner := renter()

	res, err := f.svc.StartSession(ctx, owner, StartSessionRequest{})
	require.NoError(t, err)
	sid := res.Session.ID

	_, err = f.svc.GetSession(ctx, sid, renter())
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.svc.GetSession(ctx, sid, reservation.Identity{})
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	_, err = f.svc.GetSession(ctx, uuid.New(), owner)
	assert.True(t, apperr.IsNotFound(err))
}

func TestSessionService_SignInAttachesIdentity(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	res, err := f.svc.StartSession(ctx, reservation.Identity{}, StartSessionRequest{})
	require.NoError(t, err)
	assert.False(t, res.Session.Authenticated)

	id := renter()
	res, err = f.svc.GetSession(ctx, res.Session.ID, id)
	require.NoError(t, err)
	assert.True(t, res.Session.Authenticated)

	_, err = f.svc.GetSession(ctx, res.Session.ID, renter())
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestSessionService_InvalidInput(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := renter()

	_, err := f.svc.StartSession(ctx, id, StartSessionRequest{VehicleID: ptr(uuid.New())})
	assert.True(t, apperr.IsNotFound(err))

	res, err := f.svc.StartSession(ctx, id, StartSessionRequest{VehicleID: &f.available.ID})
	require.NoError(t, err)
	sid := res.Session.ID

	_, err = f.svc.ChooseBranch(ctx, sid, id, ChooseBranchRequest{Choice: "maybe"})
	assert.True(t, apperr.IsValidation(err))

	_, err = f.svc.SetPaymentMethod(ctx, sid, id, SetPaymentRequest{PaymentMethod: "crypto"})
	assert.True(t, apperr.IsValidation(err))

	_, err = f.svc.UpdateDetails(ctx, sid, id, UpdateDetailsRequest{PickupDate: "next tuesday"})
	assert.True(t, apperr.IsValidation(err))
}

func TestSessionService_FailedSubmitKeepsNotices(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := renter()
	f.bookings.err = errors.New("dial tcp 10.0.0.5:5432: connection refused")

	res, err := f.svc.StartSession(ctx, id, StartSessionRequest{VehicleID: &f.available.ID})
	require.NoError(t, err)
	sid := res.Session.ID
	_, err = f.svc.Next(ctx, sid, id)
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, sid, id)
	require.NoError(t, err)
	_, err = f.svc.UpdateDetails(ctx, sid, id, UpdateDetailsRequest{
		RenterName: "Sari Dewi", RenterPhone: "+62811000111", LicenseNumber: "SIM-1234",
		PickupDate: "2026-03-10", ReturnDate: "2026-03-11",
	})
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, sid, id)
	require.NoError(t, err)
	_, err = f.svc.SetPaymentMethod(ctx, sid, id, SetPaymentRequest{PaymentMethod: "card"})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, sid, id)
	require.Error(t, err)
	assert.True(t, apperr.IsNetwork(err))

	var sessErr *SessionError
	require.ErrorAs(t, err, &sessErr)
	require.Len(t, sessErr.Notices, 1)
	assert.Equal(t, reservation.SeverityError, sessErr.Notices[0].Severity)
	assert.Contains(t, sessErr.Notices[0].Message, "could not be submitted")

	res, err = f.svc.GetSession(ctx, sid, id)
	require.NoError(t, err)
	assert.Empty(t, res.Notices)
	assert.Equal(t, "booking request failed", res.Session.Draft.LastError)
}

func TestSessionService_CatalogOutageIsNetworkError(t *testing.T) {
	f := newSessionFixture(t)
	f.catalog.err = errors.New("connection refused")

	_, err := f.svc.StartSession(context.Background(), renter(), StartSessionRequest{VehicleID: &f.available.ID})
	assert.True(t, apperr.IsNetwork(err))
}

func TestSessionService_SweepExpired(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.svc.StartSession(ctx, renter(), StartSessionRequest{})
	require.NoError(t, err)
	f.clock.Advance(20 * time.Minute)
	fresh, err := f.svc.StartSession(ctx, reservation.Identity{}, StartSessionRequest{})
	require.NoError(t, err)
	f.clock.Advance(15 * time.Minute)

	assert.Equal(t, 1, f.svc.SweepExpired())
	assert.Equal(t, 1, f.svc.ActiveSessions())
	_, err = f.svc.GetSession(ctx, fresh.Session.ID, reservation.Identity{})
	assert.NoError(t, err)
}

func TestSessionService_CancelSession(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	id := renter()

	res, err := f.svc.StartSession(ctx, id, StartSessionRequest{})
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelSession(ctx, res.Session.ID, id))
	assert.Equal(t, 0, f.svc.ActiveSessions())
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("pickup_date", "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDate("pickup_date", "2026-03-10T08:00:00+07:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC), d)

	d, err = parseDate("pickup_date", " ")
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}

func ptr[T any](v T) *T { return &v }
