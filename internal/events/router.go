package events

import (
	"tickethub/internal/shared/middleware"
	"tickethub/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupEventRoutes configures all event-related routes
func SetupEventRoutes(rg *gin.RouterGroup, controller *Controller) {
	eventRoutes := rg.Group("/events")
	{
		// Public browsing
		eventRoutes.GET("", controller.ListEvents)
		eventRoutes.GET("/:id", controller.GetEvent)

		// Organizer operations
		organizer := eventRoutes.Group("")
		organizer.Use(middleware.JWTAuth(), middleware.RequireRoles(string(users.RoleOrganizer), string(users.RoleAdmin)))
		{
			organizer.POST("", controller.CreateEvent)
			organizer.POST("/:id/publish", controller.PublishEvent)
			organizer.POST("/:id/cancel", controller.CancelEvent)
		}
	}
}
