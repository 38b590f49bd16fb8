package handler

import (
	"strconv"

	"github.com/Kilat-Rental/service-reservation/internal/domain/reservation"
	"github.com/Kilat-Rental/service-reservation/internal/platform/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}

// identityFrom maps verified claims to a workflow identity. No claims is anonymous.
func identityFrom(c *gin.Context) reservation.Identity {
	claims, ok := auth.GetClaims(c)
	if !ok {
		return reservation.Identity{}
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return reservation.Identity{}
	}
	return reservation.Identity{
		UserID: userID,
		Name:   claims.Name,
		Email:  claims.Email,
		Phone:  claims.Phone,
	}
}
