package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/basketloom-cli/internal/basket"
	"github.com/KaramelBytes/basketloom-cli/internal/table"
)

// Error kinds beyond those defined by basket.
const (
	kindBadRequest = "bad_request"
	kindNotFound   = "not_found"
	kindTimeout    = "timeout"
)

func writeError(c *gin.Context, status int, msg, kind, field string) {
	c.AbortWithStatusJSON(status, basket.Outcome{Error: msg, Kind: kind, Field: field})
}

func writeNotFound(c *gin.Context, what string) {
	writeError(c, http.StatusNotFound, what+" not found", kindNotFound, "")
}

// writeAnalysisError maps analysis failures onto HTTP statuses.
func writeAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, table.ErrColumnNotFound):
		writeError(c, http.StatusBadRequest, err.Error(), basket.KindInvalidConfig, "transaction_column")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "analysis timed out", kindTimeout, "")
	case basket.IsConfigError(err):
		o := basket.NewOutcome(nil, err)
		c.AbortWithStatusJSON(http.StatusBadRequest, o)
	case basket.IsInsufficientData(err):
		o := basket.NewOutcome(nil, err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, o)
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, basket.NewOutcome(nil, err))
	}
}
