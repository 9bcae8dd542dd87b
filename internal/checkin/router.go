package checkin

import (
	"tickethub/internal/shared/middleware"
	"tickethub/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupCheckInRoutes configures check-in protocol routes
func SetupCheckInRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Owners regenerate their own credential; the service re-checks access.
	authed := rg.Group("/bookings")
	authed.Use(middleware.JWTAuth())
	{
		authed.POST("/:id/credential", controller.IssueCredential)
	}

	gate := rg.Group("")
	gate.Use(middleware.JWTAuth(), middleware.RequireRoles(string(users.RoleOrganizer), string(users.RoleAdmin)))
	{
		gate.POST("/bookings/:id/check-in", controller.CheckIn)
		gate.POST("/bookings/:id/undo-check-in", controller.UndoCheckIn)
		gate.POST("/check-in/verify", controller.Verify)
		gate.POST("/check-in/bulk", controller.BulkCheckIn)
	}
}
