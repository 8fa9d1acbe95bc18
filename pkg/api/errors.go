package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/one-dragon/onedragon-agent/pkg/config"
)

// writeError maps runtime errors to HTTP error responses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, config.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, config.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, config.ErrValidation), errors.Is(err, config.ErrInvalidReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, config.ErrReservedID), errors.Is(err, config.ErrNotPermitted):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, config.ErrOverloaded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		slog.Error("Unexpected error handling request", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
