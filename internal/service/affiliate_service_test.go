package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusshop/orderapi/internal/domain"
)

func addAffiliate(repos *fakeAffiliateRepo, code string, rate float64) *domain.AffiliatePartner {
	partner := &domain.AffiliatePartner{
		ID:             uuid.New(),
		Code:           code,
		Name:           "Tech Reviews",
		Email:          "partners@techreviews.example",
		CommissionRate: rate,
		Status:         domain.AffiliateStatusActive,
	}
	repos.partners[partner.ID] = partner
	return partner
}

func TestConvert(t *testing.T) {
	logger := zap.NewNop()

	t.Run("computes commission on the total minus shipping", func(t *testing.T) {
		repos, orders, _ := newTestRepos()
		addAffiliate(repos.Affiliate.(*fakeAffiliateRepo), "TECH10", 10)

		order, _ := testOrder(104.99, 5.00)
		orders.add(order)

		svc := NewAffiliateService(repos, logger)
		result, err := svc.Convert(context.Background(), ConvertRequest{
			OrderID:       order.ID,
			AffiliateCode: "TECH10",
		})
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if !result.Success {
			t.Fatalf("expected success, got: %s", result.Message)
		}
		// 99.99 * 10% rounded to cents
		if result.CommissionAmount != 10.00 {
			t.Errorf("expected commission 10.00, got %v", result.CommissionAmount)
		}
		if order.AffiliateID == nil {
			t.Error("order was not attributed to the affiliate")
		}
	})

	t.Run("rounds half-cent amounts to the nearest cent", func(t *testing.T) {
		repos, orders, _ := newTestRepos()
		addAffiliate(repos.Affiliate.(*fakeAffiliateRepo), "TECH15", 15)

		order, _ := testOrder(33.33, 0)
		orders.add(order)

		svc := NewAffiliateService(repos, logger)
		result, err := svc.Convert(context.Background(), ConvertRequest{
			OrderID:       order.ID,
			AffiliateCode: "TECH15",
		})
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		// 33.33 * 15% = 4.9995 -> 5.00
		if result.CommissionAmount != 5.00 {
			t.Errorf("expected commission 5.00, got %v", result.CommissionAmount)
		}
	})

	t.Run("rejects unknown affiliate codes", func(t *testing.T) {
		repos, orders, _ := newTestRepos()
		order, _ := testOrder(50, 0)
		orders.add(order)

		svc := NewAffiliateService(repos, logger)
		result, err := svc.Convert(context.Background(), ConvertRequest{
			OrderID:       order.ID,
			AffiliateCode: "NOPE",
		})
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if result.Success {
			t.Error("expected rejection for unknown code")
		}
	})

	t.Run("rejects orders with no attribution", func(t *testing.T) {
		repos, orders, _ := newTestRepos()
		order, _ := testOrder(50, 0)
		orders.add(order)

		svc := NewAffiliateService(repos, logger)
		result, err := svc.Convert(context.Background(), ConvertRequest{OrderID: order.ID})
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if result.Success {
			t.Error("expected rejection without attribution")
		}
	})

	t.Run("rejects self-referrals", func(t *testing.T) {
		repos, orders, _ := newTestRepos()
		partner := addAffiliate(repos.Affiliate.(*fakeAffiliateRepo), "SELF", 10)

		order, _ := testOrder(50, 0)
		order.CustomerEmail = partner.Email
		orders.add(order)

		svc := NewAffiliateService(repos, logger)
		result, err := svc.Convert(context.Background(), ConvertRequest{
			OrderID:       order.ID,
			AffiliateCode: "SELF",
		})
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if result.Success {
			t.Error("expected self-referral rejection")
		}
	})

	t.Run("records at most one commission per order", func(t *testing.T) {
		repos, orders, _ := newTestRepos()
		addAffiliate(repos.Affiliate.(*fakeAffiliateRepo), "ONCE", 10)

		order, _ := testOrder(50, 0)
		orders.add(order)

		svc := NewAffiliateService(repos, logger)
		first, err := svc.Convert(context.Background(), ConvertRequest{
			OrderID:       order.ID,
			AffiliateCode: "ONCE",
		})
		if err != nil || !first.Success {
			t.Fatalf("first conversion should succeed: %v %+v", err, first)
		}

		second, err := svc.Convert(context.Background(), ConvertRequest{
			OrderID:       order.ID,
			AffiliateCode: "ONCE",
		})
		if err != nil {
			t.Fatalf("second conversion errored: %v", err)
		}
		if second.Success {
			t.Error("expected duplicate conversion to be rejected")
		}
	})

	t.Run("prefers the order's stored attribution over the request code", func(t *testing.T) {
		repos, orders, _ := newTestRepos()
		affiliates := repos.Affiliate.(*fakeAffiliateRepo)
		stored := addAffiliate(affiliates, "STORED", 20)
		addAffiliate(affiliates, "OTHER", 5)

		order, _ := testOrder(100, 0)
		order.AffiliateID = &stored.ID
		orders.add(order)

		svc := NewAffiliateService(repos, logger)
		result, err := svc.Convert(context.Background(), ConvertRequest{
			OrderID:       order.ID,
			AffiliateCode: "OTHER",
		})
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if result.AffiliateCode != "STORED" {
			t.Errorf("expected stored attribution to win, got %s", result.AffiliateCode)
		}
		if result.CommissionAmount != 20.00 {
			t.Errorf("expected commission 20.00, got %v", result.CommissionAmount)
		}
	})

	t.Run("marks the click converted", func(t *testing.T) {
		repos, orders, _ := newTestRepos()
		addAffiliate(repos.Affiliate.(*fakeAffiliateRepo), "CLICK", 10)

		order, _ := testOrder(50, 0)
		orders.add(order)

		clickID := uuid.New()
		svc := NewAffiliateService(repos, logger)
		result, err := svc.Convert(context.Background(), ConvertRequest{
			OrderID:       order.ID,
			AffiliateCode: "CLICK",
			ClickID:       &clickID,
		})
		if err != nil || !result.Success {
			t.Fatalf("conversion should succeed: %v %+v", err, result)
		}

		clicks := repos.AffiliateClick.(*fakeClickRepo)
		if clicks.converted[clickID] != order.ID {
			t.Error("click was not marked converted")
		}
	})

	t.Run("rejects inactive stored attribution", func(t *testing.T) {
		repos, orders, _ := newTestRepos()
		partner := addAffiliate(repos.Affiliate.(*fakeAffiliateRepo), "GONE", 10)
		partner.Status = domain.AffiliateStatusInactive

		order, _ := testOrder(50, 0)
		order.AffiliateID = &partner.ID
		orders.add(order)

		svc := NewAffiliateService(repos, logger)
		result, err := svc.Convert(context.Background(), ConvertRequest{OrderID: order.ID})
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if result.Success {
			t.Error("expected rejection for inactive affiliate")
		}
	})
}
