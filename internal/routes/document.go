package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/amrrdev/officetext/internal/auth"
	"github.com/amrrdev/officetext/internal/handler"
)

func RegisterRoutes(router *gin.RouterGroup, documentHandler *handler.DocumentHandler, authMiddleware *auth.Middleware) {
	router.POST("/invoke", authMiddleware.RequireAuth(), documentHandler.Invoke)

	document := router.Group("/documents")
	document.Use(authMiddleware.RequireAuth())
	{
		document.POST("/extract", documentHandler.Extract)
		document.GET("/status", documentHandler.Status)
		document.GET("/processed", documentHandler.ListProcessed)
		document.GET("/originals", documentHandler.ListOriginals)
		document.POST("/download-url", documentHandler.GetDownloadUrl)
		document.POST("/enqueue", documentHandler.Enqueue)
	}
}
