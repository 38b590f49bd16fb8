package application

import (
	"context"

	"github.com/Kilat-Rental/service-reservation/internal/domain/reservation"
	"go.uber.org/zap"
)

// BookingStatsDTO holds aggregate booking statistics.
type BookingStatsDTO struct {
	TotalBookings   int64                        `json:"total_bookings"`
	TotalRevenue    int64                        `json:"total_revenue"`
	ByPaymentMethod []reservation.PaymentSummary `json:"by_payment_method"`
	ActiveSessions  int                          `json:"active_sessions"`
}

// AdminService serves staff-facing read models.
type AdminService struct {
	bookings     reservation.BookingRepository
	reservations reservation.ReservationRepository
	logger       *zap.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(bookings reservation.BookingRepository, reservations reservation.ReservationRepository, logger *zap.Logger) *AdminService {
	return &AdminService{bookings: bookings, reservations: reservations, logger: logger}
}

// ListBookings returns all confirmed bookings with pagination.
func (s *AdminService) ListBookings(ctx context.Context, page, limit int) ([]reservation.ConfirmedBooking, int64, error) {
	return s.bookings.ListAll(ctx, page, limit)
}

// ListReservations returns all fallback reservations with pagination.
func (s *AdminService) ListReservations(ctx context.Context, page, limit int) ([]reservation.ReservationRecord, int64, error) {
	return s.reservations.ListAll(ctx, page, limit)
}

// GetBookingStats returns booking counts and revenue by payment method.
func (s *AdminService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	summaries, err := s.bookings.SummarizeByPaymentMethod(ctx)
	if err != nil {
		return nil, err
	}

	stats := &BookingStatsDTO{ByPaymentMethod: summaries}
	for _, sm := range summaries {
		stats.TotalBookings += sm.Count
		stats.TotalRevenue += sm.Total
	}
	return stats, nil
}
