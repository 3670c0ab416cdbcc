package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pedro5g/forfly/internal/core"
	"github.com/pedro5g/forfly/internal/logging"
	"github.com/pedro5g/forfly/internal/orders"
)

// respondError maps domain errors to status codes. notFound is the message
// used when the thing the route is about does not exist.
func respondError(c *gin.Context, err error, notFound string) {
	var te *orders.TransitionError
	switch {
	case errors.As(err, &te):
		c.JSON(http.StatusBadRequest, gin.H{"error": te.Message})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, core.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, core.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
	case errors.Is(err, core.ErrProductNotFound),
		errors.Is(err, core.ErrInvalidOrder),
		errors.Is(err, core.ErrPeriodTooLarge),
		errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrAuthLinkExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		logging.From(c).Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
