package tickettypes

import (
	"tickethub/internal/shared/middleware"
	"tickethub/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupTicketTypeRoutes configures ticket type management and availability routes
func SetupTicketTypeRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public availability read-model, keyed by event
	rg.GET("/events/:id/availability", controller.GetAvailability)

	ticketTypeRoutes := rg.Group("/ticket-types")
	ticketTypeRoutes.Use(middleware.JWTAuth(), middleware.RequireRoles(string(users.RoleOrganizer), string(users.RoleAdmin)))
	{
		ticketTypeRoutes.POST("", controller.CreateTicketType)
		ticketTypeRoutes.POST("/:id/activate", controller.ActivateTicketType)
		ticketTypeRoutes.POST("/:id/pause", controller.PauseTicketType)
		ticketTypeRoutes.POST("/:id/resume", controller.ResumeTicketType)
		ticketTypeRoutes.POST("/:id/cancel", controller.CancelTicketType)
	}
}
