package transfers

import (
	"tickethub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupTransferRoutes configures transfer protocol routes
func SetupTransferRoutes(rg *gin.RouterGroup, controller *Controller) {
	transferRoutes := rg.Group("/bookings")
	transferRoutes.Use(middleware.JWTAuth())
	{
		transferRoutes.POST("/:id/transfer/initiate", controller.InitiateTransfer)
		transferRoutes.POST("/transfer/accept", controller.AcceptTransfer)
		transferRoutes.DELETE("/:id/transfer", controller.CancelTransfer)
	}
}
