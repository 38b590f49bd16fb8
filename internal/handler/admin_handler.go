package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kilat-Rental/service-reservation/internal/application"
	"github.com/Kilat-Rental/service-reservation/internal/platform/auth"
	"github.com/Kilat-Rental/service-reservation/internal/platform/response"
)

// AdminHandler handles staff requests for bookings and reservations.
type AdminHandler struct {
	service  *application.AdminService
	sessions *application.SessionService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *application.AdminService, sessions *application.SessionService) *AdminHandler {
	return &AdminHandler{service: service, sessions: sessions}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(auth.AuthMiddleware(jwtManager), auth.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/reservations", h.ListReservations)
		admin.GET("/stats/bookings", h.BookingStats)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.service.ListBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// ListReservations handles GET /api/v1/admin/reservations.
func (h *AdminHandler) ListReservations(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.service.ListReservations(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	stats.ActiveSessions = h.sessions.ActiveSessions()
	response.Success(c, stats)
}
