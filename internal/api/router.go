package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bulletin-board-api/internal/config"
	"github.com/bulletin-board-api/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const serviceName = "bulletin-board-api"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	if cfg.Server.RateLimitPerMinute > 0 {
		router.Use(newRateLimiter(cfg.Server.RateLimitPerMinute).middleware())
	}

	if cfg.Import.RestoreImageDir != "" && cfg.Import.RestoreImagePrefix != "" {
		router.Static(strings.TrimSuffix(cfg.Import.RestoreImagePrefix, "/"), cfg.Import.RestoreImageDir)
	}

	// Handlers
	importHandler := NewImportHandler(services, cfg, log)
	exportHandler := NewExportHandler(services, log)
	boardHandler := NewBoardHandler(services, log)

	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services))

	v1 := router.Group("/v1")
	{
		categories := v1.Group("/categories")
		{
			categories.GET("", boardHandler.ListCategories)
			categories.POST("", boardHandler.CreateCategory)
			categories.PATCH("/:id", boardHandler.UpdateCategory)
			categories.DELETE("/:id", boardHandler.DeleteCategory)
		}

		posts := v1.Group("/posts")
		{
			posts.GET("", boardHandler.ListPosts)
			posts.POST("", boardHandler.CreatePost)
			posts.GET("/:id", boardHandler.GetPost)
			posts.DELETE("/:id", boardHandler.DeletePost)
			posts.POST("/:id/comments", boardHandler.AddComment)
		}

		imports := v1.Group("/imports")
		{
			imports.POST("", importHandler.CreateImport)
			imports.GET("/:job_id", importHandler.GetImportStatus)
			imports.GET("/:job_id/errors", importHandler.GetImportErrors)
		}

		v1.GET("/exports", exportHandler.StreamExport)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   serviceName,
	})
}

// metricsHandler reports board content counts
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		categoriesCount, _ := services.Export.GetCount(ctx, service.ResourceCategories)
		postsCount, _ := services.Export.GetCount(ctx, service.ResourcePosts)
		commentsCount, _ := services.Export.GetCount(ctx, service.ResourceComments)

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"categories": categoriesCount,
				"posts":      postsCount,
				"comments":   commentsCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Idempotency-Key", "X-Post-Password"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// RegisterReadiness adds GET /ready, which fails while the database is unreachable
func RegisterReadiness(router *gin.Engine, db Pinger) {
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}
