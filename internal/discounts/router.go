package discounts

import (
	"tickethub/internal/shared/middleware"
	"tickethub/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupDiscountRoutes configures discount code routes
func SetupDiscountRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Buyers may dry-run a code before checkout.
	rg.POST("/discount-codes/preview", controller.PreviewDiscount)

	managed := rg.Group("")
	managed.Use(middleware.JWTAuth(), middleware.RequireRoles(string(users.RoleOrganizer), string(users.RoleAdmin)))
	{
		managed.POST("/discount-codes", controller.CreateDiscountCode)
		managed.POST("/discount-codes/:id/deactivate", controller.DeactivateDiscountCode)
		managed.GET("/events/:id/discount-codes", controller.ListDiscountCodes)
	}
}
