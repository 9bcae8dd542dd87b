package payments

import (
	"net/http"

	"tickethub/internal/shared/middleware"
	"tickethub/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type simulateRequest struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
	CardToken string `json:"card_token" binding:"required"`
}

// SetupPaymentRoutes configures payment bridge routes. The simulate endpoint
// only exists in development deployments.
func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller, provider Provider, devMode bool) {
	rg.POST("/webhooks/payments", controller.HandleWebhook)

	if devMode && provider != nil {
		dev := rg.Group("/payments")
		dev.Use(middleware.JWTAuth())
		dev.POST("/simulate", func(ctx *gin.Context) {
			var req simulateRequest
			if err := ctx.ShouldBindJSON(&req); err != nil {
				response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
				return
			}
			bookingID, err := uuid.Parse(req.BookingID)
			if err != nil {
				response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
				return
			}
			if err := provider.Charge(ctx.Request.Context(), bookingID, req.CardToken); err != nil {
				response.RespondJSON(ctx, "error", http.StatusConflict, "Payment simulation failed", nil, err.Error())
				return
			}
			response.RespondJSON(ctx, "success", http.StatusOK, "Payment simulated", nil, nil)
		})
	}
}
