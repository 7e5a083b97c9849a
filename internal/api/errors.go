package api

import (
	"errors"
	"net/http"

	"github.com/bulletin-board-api/internal/legacy"
	"github.com/bulletin-board-api/internal/repository"
	"github.com/bulletin-board-api/internal/service"
	"github.com/bulletin-board-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// respondError maps service errors to HTTP responses. Anything unmapped is
// logged and reported as a 500 with the given message.
func respondError(c *gin.Context, log zerolog.Logger, err error, msg string) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": verrs})
	case errors.Is(err, legacy.ErrUnknownCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCategoryNotFound), errors.Is(err, service.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicateCategory):
		c.JSON(http.StatusConflict, gin.H{"error": "category already exists"})
	case errors.Is(err, service.ErrInvalidPassword):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
