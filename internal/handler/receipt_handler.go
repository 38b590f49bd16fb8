package handler

import (
	"fmt"
	"net/http"

	"github.com/Kilat-Rental/service-reservation/internal/application"
	"github.com/Kilat-Rental/service-reservation/internal/platform/auth"
	"github.com/Kilat-Rental/service-reservation/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReceiptHandler serves rendered booking receipts.
type ReceiptHandler struct {
	service *application.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(service *application.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{service: service}
}

// RegisterRoutes registers receipt routes.
func (h *ReceiptHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	receipts := r.Group("/api/v1/bookings")
	receipts.Use(auth.AuthMiddleware(jwtManager))
	{
		receipts.GET("/:booking_id/receipt", h.DownloadReceipt)
	}
}

// DownloadReceipt handles GET /api/v1/bookings/:booking_id/receipt.
func (h *ReceiptHandler) DownloadReceipt(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		response.Unauthorized(c, "invalid subject")
		return
	}

	rc, err := h.service.GetReceipt(c.Request.Context(), c.Param("booking_id"), userID, claims.Role == auth.RoleAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rc.FileName()))
	c.Data(http.StatusOK, rc.ContentType(), rc.Content())
}
