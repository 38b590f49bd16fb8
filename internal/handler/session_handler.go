package handler

import (
	"context"
	"errors"

	"github.com/Kilat-Rental/service-reservation/internal/application"
	"github.com/Kilat-Rental/service-reservation/internal/domain/reservation"
	"github.com/Kilat-Rental/service-reservation/internal/platform/auth"
	"github.com/Kilat-Rental/service-reservation/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler exposes the reservation workflow over HTTP.
type SessionHandler struct {
	service *application.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(service *application.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// RegisterRoutes registers session routes. Sign-in is optional until submission.
func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	sessions := r.Group("/api/v1/sessions")
	sessions.Use(auth.OptionalAuthMiddleware(jwtManager))
	{
		sessions.POST("", h.StartSession)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.CancelSession)
		sessions.PUT("/:id/vehicle", h.SelectVehicle)
		sessions.POST("/:id/next", h.simple((*application.SessionService).Next))
		sessions.POST("/:id/back", h.simple((*application.SessionService).Back))
		sessions.POST("/:id/branch", h.ChooseBranch)
		sessions.POST("/:id/return-to-selection", h.simple((*application.SessionService).ReturnToSelection))
		sessions.PUT("/:id/details", h.UpdateDetails)
		sessions.PUT("/:id/payment", h.SetPaymentMethod)
		sessions.POST("/:id/submit", h.simple((*application.SessionService).Submit))
		sessions.POST("/:id/restart", h.simple((*application.SessionService).Restart))
		sessions.PUT("/:id/reservation", h.UpdateReservation)
		sessions.POST("/:id/reservation/submit", h.simple((*application.SessionService).SubmitReservation))
	}
}

// StartSession handles POST /api/v1/sessions. An optional vehicle_id deep-links to a vehicle.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req application.StartSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.service.StartSession(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetSession handles GET /api/v1/sessions/:id.
func (h *SessionHandler) GetSession(c *gin.Context) {
	h.simple((*application.SessionService).GetSession)(c)
}

// CancelSession handles DELETE /api/v1/sessions/:id.
func (h *SessionHandler) CancelSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.service.CancelSession(c.Request.Context(), id, identityFrom(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"cancelled": true})
}

// SelectVehicle handles PUT /api/v1/sessions/:id/vehicle.
func (h *SessionHandler) SelectVehicle(c *gin.Context) {
	var req application.SelectVehicleRequest
	withBody(c, &req, func(ctx context.Context, id uuid.UUID, who reservation.Identity) (*application.SessionResult, error) {
		return h.service.SelectVehicle(ctx, id, who, req)
	})
}

// ChooseBranch handles POST /api/v1/sessions/:id/branch.
func (h *SessionHandler) ChooseBranch(c *gin.Context) {
	var req application.ChooseBranchRequest
	withBody(c, &req, func(ctx context.Context, id uuid.UUID, who reservation.Identity) (*application.SessionResult, error) {
		return h.service.ChooseBranch(ctx, id, who, req)
	})
}

// UpdateDetails handles PUT /api/v1/sessions/:id/details.
func (h *SessionHandler) UpdateDetails(c *gin.Context) {
	var req application.UpdateDetailsRequest
	withBody(c, &req, func(ctx context.Context, id uuid.UUID, who reservation.Identity) (*application.SessionResult, error) {
		return h.service.UpdateDetails(ctx, id, who, req)
	})
}

// SetPaymentMethod handles PUT /api/v1/sessions/:id/payment.
func (h *SessionHandler) SetPaymentMethod(c *gin.Context) {
	var req application.SetPaymentRequest
	withBody(c, &req, func(ctx context.Context, id uuid.UUID, who reservation.Identity) (*application.SessionResult, error) {
		return h.service.SetPaymentMethod(ctx, id, who, req)
	})
}

// UpdateReservation handles PUT /api/v1/sessions/:id/reservation.
func (h *SessionHandler) UpdateReservation(c *gin.Context) {
	var req application.UpdateReservationRequest
	withBody(c, &req, func(ctx context.Context, id uuid.UUID, who reservation.Identity) (*application.SessionResult, error) {
		return h.service.UpdateReservation(ctx, id, who, req)
	})
}

type sessionAction func(*application.SessionService, context.Context, uuid.UUID, reservation.Identity) (*application.SessionResult, error)

// simple adapts a body-less session operation to a gin handler.
func (h *SessionHandler) simple(action sessionAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := sessionID(c)
		if !ok {
			return
		}
		result, err := action(h.service, c.Request.Context(), id, identityFrom(c))
		if err != nil {
			sessionFailure(c, err)
			return
		}
		response.Success(c, result)
	}
}

func withBody(c *gin.Context, req interface{}, call func(context.Context, uuid.UUID, reservation.Identity) (*application.SessionResult, error)) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := call(c.Request.Context(), id, identityFrom(c))
	if err != nil {
		sessionFailure(c, err)
		return
	}
	response.Success(c, result)
}

// sessionFailure writes err along with any notices the session reported.
func sessionFailure(c *gin.Context, err error) {
	var sessErr *application.SessionError
	if errors.As(err, &sessErr) {
		response.ErrorWithData(c, err, gin.H{"notices": sessErr.Notices})
		return
	}
	response.Error(c, err)
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}
