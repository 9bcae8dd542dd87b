package bookings

import (
	"tickethub/internal/shared/middleware"
	"tickethub/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures booking routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookingRoutes := rg.Group("/bookings")
	bookingRoutes.Use(middleware.JWTAuth())
	{
		bookingRoutes.POST("", controller.CreateBooking)
		bookingRoutes.GET("", controller.GetMyBookings)
		bookingRoutes.GET("/:id", controller.GetBooking)
		bookingRoutes.POST("/:id/cancel", controller.CancelBooking)
	}

	managed := rg.Group("/events/:id/bookings")
	managed.Use(middleware.JWTAuth(), middleware.RequireRoles(string(users.RoleOrganizer), string(users.RoleAdmin)))
	{
		managed.GET("", controller.GetEventBookings)
	}
}
