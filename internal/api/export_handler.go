package api

import (
	"net/http"

	"github.com/bulletin-board-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /v1/exports?resource=...&format=...&category=...
// Streams a board backup directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	ctx := c.Request.Context()

	resource := c.Query("resource")
	if resource == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource parameter is required (posts, comments)"})
		return
	}
	if resource != service.ResourcePosts && resource != service.ResourceComments {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource must be one of: posts, comments"})
		return
	}

	format := c.DefaultQuery("format", service.FormatNDJSON)
	if format != service.FormatNDJSON && format != service.FormatJSON {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json"})
		return
	}

	category := c.Query("category")

	h.log.Info().
		Str("resource", resource).
		Str("format", format).
		Str("category", category).
		Msg("Starting streaming export")

	var err error
	switch resource {
	case service.ResourcePosts:
		err = h.services.Export.StreamPosts(ctx, c.Writer, format, category)
	case service.ResourceComments:
		err = h.services.Export.StreamComments(ctx, c.Writer, format, category)
	}

	if err != nil {
		h.log.Error().Err(err).Str("resource", resource).Msg("Export failed")
		// Can't return error JSON after streaming has started
		return
	}
}
