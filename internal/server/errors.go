package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/parsererror"
	"fjacquet/finance-dashboard/internal/store"
)

// statusFor maps an error to the HTTP status reported to the client.
func statusFor(err error) int {
	var (
		storeErr  *store.StoreError
		invalid   *parsererror.InvalidFileError
		empty     *parsererror.EmptyInputError
		noRecords *parsererror.NoValidRecordsError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &invalid):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &empty), errors.As(err, &noRecords):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.As(err, &storeErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// abort writes {"error": message} with the mapped status. The message is the
// error text unchanged.
func (s *Server) abort(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request error", logging.F("path", c.FullPath()))
	} else {
		s.logger.Debug("Request rejected",
			logging.F("path", c.FullPath()),
			logging.F("status", status),
			logging.F(logging.FieldError, err.Error()))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
