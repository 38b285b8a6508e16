package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/subledger/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondError writes the JSON error body for a service failure.
// Internal errors are logged with their cause but reported generically.
func respondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	logger.Warn(op+" rejected", slog.String("error", err.Error()), slog.Int("status", status))
	body := gin.H{"error": err.Error()}
	var balanceErr *apperrors.BalanceError
	if errors.As(err, &balanceErr) {
		body["totalDebit"] = balanceErr.TotalDebit
		body["totalCredit"] = balanceErr.TotalCredit
	}
	c.JSON(status, body)
}
