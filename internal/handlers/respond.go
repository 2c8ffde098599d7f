package handlers

import (
	"log/slog"
	"net/http"

	"propdesk/internal/apperr"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to its HTTP shape. Anything outside the
// taxonomy is logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"error": apperr.MessageOf(err)})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
}
