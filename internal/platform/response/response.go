// Package response writes the service's JSON envelope.
package response

import (
	"net/http"

	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Meta carries pagination details.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Success writes 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Accepted writes 202 with data.
func Accepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, Envelope{Success: true, Data: data})
}

// Paginated writes 200 with a page of items.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Meta:    &Meta{Total: total, Page: page, Limit: limit, TotalPages: pages},
	})
}

// BadRequest writes 400 with a validation message.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, string(apperr.KindValidation), message, false)
}

// Unauthorized writes 401.
func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, string(apperr.KindUnauthenticated), message, false)
}

// Forbidden writes 403.
func Forbidden(c *gin.Context, message string) {
	abort(c, http.StatusForbidden, string(apperr.KindForbidden), message, false)
}

// Error maps err to an HTTP status by its apperr kind.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	abort(c, StatusFor(kind), string(kind), apperr.PublicMessage(err), apperr.Retryable(err))
}

// ErrorWithData is Error with a data payload alongside the error body.
func ErrorWithData(c *gin.Context, err error, data interface{}) {
	kind := apperr.KindOf(err)
	c.AbortWithStatusJSON(StatusFor(kind), Envelope{
		Success: false,
		Data:    data,
		Error: &ErrorBody{
			Code:      string(kind),
			Message:   apperr.PublicMessage(err),
			Retryable: apperr.Retryable(err),
		},
	})
}

// StatusFor returns the HTTP status used for an error kind.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict, apperr.KindAvailabilityConflict:
		return http.StatusConflict
	case apperr.KindInvalidState:
		return http.StatusUnprocessableEntity
	case apperr.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, status int, code, message string, retryable bool) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Retryable: retryable},
	})
}
