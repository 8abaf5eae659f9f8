package server

import (
	"github.com/gin-gonic/gin"

	"github.com/amrrdev/officetext/internal/auth"
	"github.com/amrrdev/officetext/internal/handler"
	"github.com/amrrdev/officetext/internal/routes"
)

func NewServer(documentHandler *handler.DocumentHandler, healthHandler *handler.HealthHandler, authMiddleware *auth.Middleware) *gin.Engine {
	g := gin.Default()

	g.GET("/healthz", healthHandler.Healthz)
	g.GET("/readyz", healthHandler.Readyz)

	api := g.Group("/api/v1")
	routes.RegisterRoutes(api, documentHandler, authMiddleware)
	return g
}
