// Package router wires handlers and middleware into the gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"docextract/internal/handler"
	"docextract/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	log *zap.Logger,
	allowedOrigins []string,
	chatH *handler.ChatHandler,
	interpretH *handler.InterpretHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks and metrics
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.POST("/interpret", interpretH.Interpret)

	conversations := v1.Group("/conversations")
	conversations.POST("", chatH.Create)
	conversations.GET("/:id", chatH.Get)
	conversations.GET("/:id/messages", chatH.ListMessages)
	conversations.POST("/:id/messages", chatH.SendMessage)
	conversations.POST("/:id/uploads", chatH.Upload)

	messages := conversations.Group("/:id/messages/:messageId")
	messages.GET("/render", chatH.Render)
	messages.GET("/export/:kind", chatH.Export)
	messages.GET("/attachment", chatH.Attachment)

	return r
}
