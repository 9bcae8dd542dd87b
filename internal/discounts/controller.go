package discounts

import (
	"errors"
	"net/http"

	"tickethub/internal/shared/authz"
	"tickethub/internal/shared/middleware"
	"tickethub/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateDiscountCode handles POST /api/v1/discount-codes
func (c *Controller) CreateDiscountCode(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	var req CreateDiscountCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	code, err := c.service.CreateDiscountCode(ctx.Request.Context(), actor, req)
	if err != nil {
		if errors.Is(err, authz.ErrForbidden) {
			response.RespondJSON(ctx, "error", http.StatusForbidden, "Forbidden", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to create discount code", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Discount code created successfully", code.ToResponse(), nil)
}

// ListDiscountCodes handles GET /api/v1/events/:id/discount-codes
func (c *Controller) ListDiscountCodes(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, nil)
		return
	}

	codes, err := c.service.ListDiscountCodes(ctx.Request.Context(), actor, eventID)
	if err != nil {
		if errors.Is(err, authz.ErrForbidden) {
			response.RespondJSON(ctx, "error", http.StatusForbidden, "Forbidden", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to list discount codes", nil, err.Error())
		return
	}

	result := make([]DiscountCodeResponse, 0, len(codes))
	for i := range codes {
		result = append(result, codes[i].ToResponse())
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Discount codes retrieved successfully", gin.H{
		"discount_codes": result,
	}, nil)
}

// DeactivateDiscountCode handles POST /api/v1/discount-codes/:id/deactivate
func (c *Controller) DeactivateDiscountCode(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid discount code ID", nil, nil)
		return
	}

	if err := c.service.DeactivateDiscountCode(ctx.Request.Context(), actor, id); err != nil {
		if errors.Is(err, authz.ErrForbidden) {
			response.RespondJSON(ctx, "error", http.StatusForbidden, "Forbidden", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to deactivate discount code", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Discount code deactivated successfully", nil, nil)
}

// PreviewDiscount handles POST /api/v1/discount-codes/preview
func (c *Controller) PreviewDiscount(ctx *gin.Context) {
	var req PreviewDiscountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, nil)
		return
	}

	subtotal, err := decimal.NewFromString(req.Subtotal)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid subtotal", nil, nil)
		return
	}

	result, err := c.service.Preview(ctx.Request.Context(), eventID, req.Code, subtotal, req.TicketCount)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to preview discount", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Discount preview calculated", result, nil)
}

func currentActor(ctx *gin.Context) (authz.Actor, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		return authz.Actor{}, false
	}
	return authz.Actor{
		UserID: userID,
		Role:   middleware.CurrentUserRole(ctx),
	}, true
}
