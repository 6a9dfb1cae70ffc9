package service

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/domain"
	"github.com/nexusshop/orderapi/internal/repository"
	"github.com/nexusshop/orderapi/pkg/errors"
)

// AffiliateService records commissions for orders attributed to partners
type AffiliateService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewAffiliateService creates a new affiliate service
func NewAffiliateService(repos *repository.Repositories, logger *zap.Logger) *AffiliateService {
	return &AffiliateService{
		repos:  repos,
		logger: logger,
	}
}

// Convert attributes a settled order to an affiliate partner and records
// the commission. Business rejections (unknown code, self-referral,
// duplicate conversion) come back as Success=false with a message;
// errors are reserved for infrastructure failures.
func (s *AffiliateService) Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error) {
	order, err := s.repos.Order.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	partner, reject, err := s.resolvePartner(ctx, order, req.AffiliateCode)
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &ConvertResult{Success: false, Message: reject}, nil
	}

	if strings.EqualFold(partner.Email, order.CustomerEmail) {
		s.logger.Warn("Rejecting self-referral conversion",
			zap.String("order_id", order.ID.String()),
			zap.String("affiliate_code", partner.Code),
		)
		return &ConvertResult{Success: false, Message: "self-referral is not eligible for commission"}, nil
	}

	exists, err := s.repos.AffiliateCommission.ExistsForOrderAndAffiliate(ctx, order.ID, partner.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &ConvertResult{Success: false, Message: "commission already recorded for this order"}, nil
	}

	// Commission is earned on merchandise only, never on shipping
	orderAmount := order.Total - order.ShippingCost
	if orderAmount < 0 {
		orderAmount = 0
	}
	commissionAmount := math.Round(orderAmount*partner.CommissionRate) / 100

	commission := &domain.AffiliateCommission{
		OrderID:          order.ID,
		AffiliateID:      partner.ID,
		ClickID:          req.ClickID,
		OrderAmount:      orderAmount,
		CommissionRate:   partner.CommissionRate,
		CommissionAmount: commissionAmount,
		Currency:         order.Currency,
		Status:           domain.CommissionStatusPending,
	}
	if err := s.repos.AffiliateCommission.Create(ctx, commission); err != nil {
		if _, ok := err.(*errors.ErrDuplicate); ok {
			// Lost the race against a concurrent conversion; the unique
			// index guarantees only one row exists.
			return &ConvertResult{Success: false, Message: "commission already recorded for this order"}, nil
		}
		return nil, err
	}

	if req.ClickID != nil {
		if err := s.repos.AffiliateClick.MarkConverted(ctx, *req.ClickID, order.ID); err != nil {
			s.logger.Error("Failed to mark click converted",
				zap.String("click_id", req.ClickID.String()),
				zap.Error(err),
			)
		}
	}

	if order.AffiliateID == nil {
		if err := s.repos.Order.SetAffiliateID(ctx, order.ID, partner.ID); err != nil {
			s.logger.Error("Failed to attribute order to affiliate",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Affiliate commission recorded",
		zap.String("order_id", order.ID.String()),
		zap.String("affiliate_code", partner.Code),
		zap.Float64("commission_amount", commissionAmount),
	)

	return &ConvertResult{
		Success:          true,
		Message:          "commission recorded",
		CommissionID:     commission.ID,
		CommissionAmount: commissionAmount,
		AffiliateCode:    partner.Code,
	}, nil
}

// resolvePartner finds the partner to credit: the order's stored
// attribution wins over the code supplied with the request. An empty
// reject string means the partner is usable.
func (s *AffiliateService) resolvePartner(ctx context.Context, order *domain.Order, code string) (*domain.AffiliatePartner, string, error) {
	if order.AffiliateID != nil {
		partner, err := s.repos.Affiliate.GetByID(ctx, *order.AffiliateID)
		if err != nil {
			return nil, "", err
		}
		if partner.Status != domain.AffiliateStatusActive {
			return nil, "affiliate account is not active", nil
		}
		return partner, "", nil
	}

	if code == "" {
		return nil, "order has no affiliate attribution", nil
	}

	partner, err := s.repos.Affiliate.GetActiveByCode(ctx, code)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return nil, "unknown or inactive affiliate code", nil
		}
		return nil, "", err
	}
	return partner, "", nil
}
