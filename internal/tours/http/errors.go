package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
	"github.com/ambi360/ambi360-backend/internal/validation"
)

// writeError maps domain errors to status codes. Unknown errors are logged
// and answered with fallback.
func writeError(c *gin.Context, err error, fallback string) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation failed", "details": verr.Fields})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNoFields), errors.Is(err, domain.ErrNotNavigable):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrCycleDetected):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("route", c.FullPath()).Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": fallback})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}
