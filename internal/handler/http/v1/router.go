package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршрут Health-check доступен без ключа
	api.GET("/system/health", h.healthCheck)

	var protected []gin.HandlerFunc
	if len(h.cfg.APIKeys) > 0 {
		protected = append(protected, APIKeyAuthMiddleware(h.cfg, h.logger))
	}

	incidents := api.Group("/incidents", protected...)
	{
		incidents.POST("", h.createIncident)
		incidents.GET("", h.listIncidents)
		incidents.GET("/stats", h.getStats)
		incidents.GET("/:id", h.getIncident)
		incidents.PUT("/:id", h.updateIncident)
		incidents.DELETE("/:id", h.deleteIncident)
	}

	users := api.Group("/users", protected...)
	{
		users.GET("", h.listUsers)
		users.GET("/stats", h.getUserStats)
		users.GET("/:id", h.getUser)
		users.PUT("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
	}

	api.Group("/analytics", protected...).GET("/dashboard", h.getDashboard)
}
