package handler

import (
	"github.com/Kilat-Rental/service-reservation/internal/application"
	"github.com/Kilat-Rental/service-reservation/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogHandler serves the read-only vehicle catalog.
type CatalogHandler struct {
	service *application.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers catalog routes. The catalog is public.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	vehicles := r.Group("/api/v1/vehicles")
	{
		vehicles.GET("", h.ListVehicles)
		vehicles.GET("/:id", h.GetVehicle)
	}
}

// ListVehicles handles GET /api/v1/vehicles.
func (h *CatalogHandler) ListVehicles(c *gin.Context) {
	page, limit := parsePagination(c)
	q := application.ListVehiclesQuery{
		Transmission:  c.Query("transmission"),
		FuelType:      c.Query("fuel_type"),
		AvailableOnly: c.Query("available") == "true",
		Page:          page,
		Limit:         limit,
	}

	items, total, err := h.service.ListVehicles(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// GetVehicle handles GET /api/v1/vehicles/:id.
func (h *CatalogHandler) GetVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	v, err := h.service.GetVehicle(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, v)
}
