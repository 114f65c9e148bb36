package handlers

import (
	"github.com/alimgiray/copyrite/internal/services"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the HTTP routes
func NewRouter(aliasService *services.AliasService, reportService *services.ReportService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	aliasHandler := NewAliasHandler(aliasService, reportService)
	healthHandler := NewHealthHandler()

	router.GET("/health", healthHandler.HealthCheck)
	router.NoRoute(healthHandler.NotFound)

	projects := router.Group("/projects/:id")
	{
		projects.GET("/aliases", aliasHandler.ListAliases)
		projects.POST("/aliases", aliasHandler.CreateAlias)
		projects.PUT("/aliases/:alias_id", aliasHandler.UpdateAlias)
		projects.DELETE("/aliases/:alias_id", aliasHandler.DeleteAlias)
		projects.POST("/contributions/resolve", aliasHandler.ResolveContributions)
	}

	return router
}
