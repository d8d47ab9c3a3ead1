package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
)

// ErrorHandler centralizes translation of handler errors into HTTP
// responses, dispatching on the dberrors taxonomy (spec.md §4.L) rather
// than letting individual handlers pick status codes.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		requestID := c.GetString("request_id")
		status, message := classify(err)

		c.JSON(status, gin.H{
			"error":      message,
			"request_id": requestID,
		})
	}
}

func classify(err error) (int, string) {
	switch {
	case dberrors.IsNotFound(err):
		return http.StatusNotFound, "resource not found"
	case dberrors.IsInvalidState(err):
		return http.StatusConflict, "invalid state transition"
	case dberrors.IsConstraintViolation(err):
		return http.StatusBadRequest, "constraint violation"
	case dberrors.IsPermissionDenied(err):
		return http.StatusForbidden, "permission denied"
	case dberrors.IsInvalidRequest(err):
		return http.StatusBadRequest, "invalid request"
	case dberrors.IsDependencyGone(err):
		return http.StatusBadGateway, "dependency gone"
	case dberrors.IsTransientFailure(err):
		return http.StatusServiceUnavailable, "upstream temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
