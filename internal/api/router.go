package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/athabaska/Gazprom-power/internal/middleware"
)

// RequestTimeout bounds every control API request.
const RequestTimeout = 10 * time.Second

// NewRouter builds the Gin engine serving the control API under /api/v1 and
// the Swagger UI under /swagger. Probes are mounted separately by HealthHandler.
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		requestTimeout(RequestTimeout),
	)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	v1.GET("/status", handler.GetStatus)
	v1.POST("/pause", handler.Pause)
	v1.POST("/continue", handler.Continue)

	extractions := v1.Group("/extractions")
	extractions.GET("", handler.ListExtractions)
	extractions.POST("", handler.TriggerExtraction)

	return router
}

func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
