package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/soundprediction/scholia"
	"github.com/soundprediction/scholia/pkg/server/dto"
	"github.com/soundprediction/scholia/pkg/types"
)

// statusFor maps a domain error onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrNodeNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, types.ErrMissingTable),
		errors.Is(err, types.ErrMissingField),
		errors.Is(err, types.ErrInvalidValue),
		errors.Is(err, types.ErrUnknownVariant),
		errors.Is(err, types.ErrEmptyUniqueID):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, scholia.ErrNoStore),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	c.JSON(status, dto.ErrorResponse{
		Error:   code,
		Message: err.Error(),
		Code:    status,
	})
}

func writeBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "invalid_request",
		Message: message,
		Code:    http.StatusBadRequest,
	})
}

func writeUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
		Error:   "unavailable",
		Message: "scholia client not initialized",
		Code:    http.StatusServiceUnavailable,
	})
}
