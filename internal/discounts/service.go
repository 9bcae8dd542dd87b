package discounts

import (
	"context"
	"fmt"
	"time"

	"tickethub/internal/events"
	"tickethub/internal/shared/authz"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PreviewResult is the outcome of a dry-run discount check before checkout.
type PreviewResult struct {
	Valid          bool            `json:"valid"`
	Reason         string          `json:"reason,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type Service interface {
	CreateDiscountCode(ctx context.Context, actor authz.Actor, req CreateDiscountCodeRequest) (*DiscountCode, error)
	ListDiscountCodes(ctx context.Context, actor authz.Actor, eventID uuid.UUID) ([]DiscountCode, error)
	DeactivateDiscountCode(ctx context.Context, actor authz.Actor, id uuid.UUID) error
	Preview(ctx context.Context, eventID uuid.UUID, code string, subtotal decimal.Decimal, ticketCount int) (*PreviewResult, error)
}

type service struct {
	repo       Repository
	eventRepo  events.Repository
	authorizer authz.Authorizer
}

func NewService(repo Repository, eventRepo events.Repository, authorizer authz.Authorizer) Service {
	return &service{
		repo:       repo,
		eventRepo:  eventRepo,
		authorizer: authorizer,
	}
}

func (s *service) CreateDiscountCode(ctx context.Context, actor authz.Actor, req CreateDiscountCodeRequest) (*DiscountCode, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}

	if err := s.authorize(ctx, actor, eventID); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(req.DiscountAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid discount amount: %w", err)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("discount amount must not be negative")
	}

	discountType := DiscountType(req.DiscountType)
	if !discountType.IsValid() {
		return nil, fmt.Errorf("invalid discount type: %s", req.DiscountType)
	}

	code := &DiscountCode{
		EventID:        eventID,
		Code:           req.Code,
		DiscountType:   discountType,
		DiscountAmount: amount,
		StartsAt:       req.StartsAt,
		ExpiresAt:      req.ExpiresAt,
		MaxUses:        req.MaxUses,
		MinTicketCount: req.MinTicketCount,
		IsActive:       true,
	}
	if req.MaxDiscount != nil {
		maxDiscount, err := decimal.NewFromString(*req.MaxDiscount)
		if err != nil {
			return nil, fmt.Errorf("invalid max discount: %w", err)
		}
		code.MaxDiscount = decimal.NewNullDecimal(maxDiscount)
	}

	if err := s.repo.Create(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to create discount code: %w", err)
	}
	return code, nil
}

func (s *service) ListDiscountCodes(ctx context.Context, actor authz.Actor, eventID uuid.UUID) ([]DiscountCode, error) {
	if err := s.authorize(ctx, actor, eventID); err != nil {
		return nil, err
	}
	return s.repo.GetByEventID(ctx, eventID)
}

func (s *service) DeactivateDiscountCode(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	code, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, code.EventID); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, id, false)
}

// Preview runs the stateless validation and calculation without consuming a
// use; the authoritative redemption happens inside the booking transaction.
func (s *service) Preview(ctx context.Context, eventID uuid.UUID, codeValue string, subtotal decimal.Decimal, ticketCount int) (*PreviewResult, error) {
	code, err := s.repo.GetByCode(ctx, eventID, codeValue)
	if err != nil {
		if err == ErrDiscountNotFound {
			return &PreviewResult{Valid: false, Reason: err.Error(), DiscountAmount: decimal.Zero}, nil
		}
		return nil, err
	}

	if err := Validate(code, eventID, time.Now()); err != nil {
		return &PreviewResult{Valid: false, Reason: err.Error(), DiscountAmount: decimal.Zero}, nil
	}

	return &PreviewResult{
		Valid:          true,
		DiscountAmount: CalculateDiscount(code, subtotal, ticketCount),
	}, nil
}

func (s *service) authorize(ctx context.Context, actor authz.Actor, eventID uuid.UUID) error {
	allowed, err := s.authorizer.CanManageEvent(ctx, actor, eventID)
	if err != nil {
		return err
	}
	if !allowed {
		return authz.ErrForbidden
	}
	return nil
}
