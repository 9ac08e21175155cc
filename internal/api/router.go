package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/garment-catalog-api/internal/config"
	"github.com/garment-catalog-api/internal/service"
)

// callerIDKey is the context key holding the verified caller identity
const callerIDKey = "caller_id"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	articleHandler := NewArticleHandler(services, cfg, log)
	optionHandler := NewOptionHandler(services, cfg, log)
	exportHandler := NewExportHandler(services, log)

	// Health check and metrics
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services))

	// Stored article images
	router.Static("/uploads", cfg.Upload.Dir)

	// Authenticated API; the caller identity is verified upstream
	api := router.Group("/api")
	api.Use(identityMiddleware())
	{
		articles := api.Group("/articles")
		{
			articles.GET("", articleHandler.List)
			articles.POST("", articleHandler.Create)
			articles.GET("/stats", articleHandler.Stats)
			articles.GET("/export", exportHandler.Stream)
			articles.POST("/bulk", articleHandler.Bulk)
			articles.GET("/:id", articleHandler.Get)
			articles.PUT("/:id", articleHandler.Update)
			articles.DELETE("/:id", articleHandler.Delete)
		}

		options := api.Group("/options")
		{
			options.GET("", optionHandler.GetAll)
			options.POST("/:type", optionHandler.Mutate)
			options.POST("/:type/:category", optionHandler.Mutate)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "garment-catalog-api",
	})
}

// metricsHandler returns catalog row counts
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		articleCount, _ := services.Article.Count(ctx)
		optionCount, _ := services.Option.Count(ctx)

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"articles": articleCount,
				"options":  optionCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// identityMiddleware extracts the verified caller identity set by the
// upstream gateway. Authentication itself happens outside this service.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, envelope{
				Success: false,
				Message: "missing caller identity",
			})
			c.Abort()
			return
		}
		c.Set(callerIDKey, userID)
		c.Next()
	}
}

// callerID returns the verified caller identity for the current request
func callerID(c *gin.Context) string {
	return c.GetString(callerIDKey)
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, envelope{
					Success: false,
					Message: "internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
