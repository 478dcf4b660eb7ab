package handler

import (
	"net/http"
	"runtime/debug"

	"review-bot-go/internal/controller"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRouter(reviewController *controller.ReviewController, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(CustomRecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))

	router.GET("/", reviewController.Index)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze-pr", reviewController.AnalyzePR)
		v1.GET("/status/:task_id", reviewController.GetStatus)
		v1.GET("/results/:task_id", reviewController.GetResults)
		v1.GET("/health", reviewController.Health)
	}

	return router
}

func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger.Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)
		c.Next()
	}
}

func CustomRecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("stack", string(debug.Stack())),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
