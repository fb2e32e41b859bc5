package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stackbill/stackbill/internal/clock"
	paymentdomain "github.com/stackbill/stackbill/internal/payment/domain"
	plandomain "github.com/stackbill/stackbill/internal/plan/domain"
	"github.com/stackbill/stackbill/internal/subscription/domain"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	PlanSvc plandomain.Service
	Gateway paymentdomain.Gateway
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	planSvc plandomain.Service
	gateway paymentdomain.Gateway
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("subscription.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		planSvc: p.PlanSvc,
		gateway: p.Gateway,
	}
}

func (s *Service) UserPlanDetails(ctx context.Context, userID string) (*domain.UserPlanDetails, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	current, err := s.repo.FindCurrentByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotSubscribed
	}
	details := s.details(ctx, current)
	return &details, nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.UserPlanDetails, error) {
	rows, err := s.repo.ListAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserPlanDetails, 0, len(rows))
	for i := range rows {
		out = append(out, s.details(ctx, &rows[i]))
	}
	return out, nil
}

func (s *Service) Cancel(ctx context.Context, userID string, planID int64) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrInvalidUser
	}
	current, err := s.repo.FindCurrentByUser(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrNotSubscribed
	}
	if planID != 0 && current.PlanID != planID {
		return domain.ErrPlanMismatch
	}
	if current.Status == domain.StatusCancelled {
		return domain.ErrAlreadyCancelled
	}

	if sub := current.StripeSubscriptionID; sub != "" {
		if err := s.gateway.CancelSubscription(ctx, sub); err != nil {
			return err
		}
	}

	current.Status = domain.StatusCancelled
	current.NextBillingDate = nil
	current.UpdatedAt = s.clock.Now(ctx)
	if err := s.repo.Update(ctx, s.db, current); err != nil {
		return err
	}

	s.log.Info("subscription cancelled",
		zap.String("user_id", userID),
		zap.Int64("plan_id", current.PlanID),
	)
	return nil
}

func (s *Service) Activate(ctx context.Context, req domain.ActivateRequest) (*domain.UserPlan, error) {
	return s.ActivateTx(ctx, s.db, req)
}

func (s *Service) ActivateTx(ctx context.Context, db *gorm.DB, req domain.ActivateRequest) (*domain.UserPlan, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	cycle := req.BillingCycle
	if cycle == "" {
		cycle = domain.CycleMonthly
	}
	if cycle != domain.CycleMonthly && cycle != domain.CycleAnnual {
		return nil, domain.ErrInvalidCycle
	}
	if _, err := s.planSvc.Get(ctx, req.PlanID); err != nil {
		return nil, err
	}

	now := s.clock.Now(ctx)
	next := nextBillingDate(now, cycle)

	// When db is already a transaction gorm nests via savepoint, so
	// Activate and ActivateTx share one body.
	var out *domain.UserPlan
	err := db.Transaction(func(tx *gorm.DB) error {
		// A previously active plan is superseded, not deleted; the
		// dashboard shows only the current row.
		if current, err := s.repo.FindCurrentByUser(ctx, tx, userID); err != nil {
			return err
		} else if current != nil && current.PlanID != req.PlanID {
			current.Status = domain.StatusCancelled
			current.NextBillingDate = nil
			current.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, current); err != nil {
				return err
			}
		}

		existing, err := s.repo.FindByUserAndPlan(ctx, tx, userID, req.PlanID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Status = domain.StatusActive
			existing.BillingCycle = cycle
			existing.StripeCustomerID = req.StripeCustomerID
			existing.StripeSubscriptionID = req.StripeSubscriptionID
			existing.NextBillingDate = &next
			applyCard(existing, req)
			existing.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, existing); err != nil {
				return err
			}
			out = existing
			return nil
		}

		created := &domain.UserPlan{
			ID:                   s.genID.Generate().Int64(),
			UserID:               userID,
			PlanID:               req.PlanID,
			Status:               domain.StatusActive,
			BillingCycle:         cycle,
			StripeCustomerID:     req.StripeCustomerID,
			StripeSubscriptionID: req.StripeSubscriptionID,
			NextBillingDate:      &next,
			CardBrand:            req.CardBrand,
			CardLast4:            req.CardLast4,
			CardExpiry:           req.CardExpiry,
			NameOnCard:           req.NameOnCard,
			Country:              req.Country,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := s.repo.Insert(ctx, tx, created); err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("subscription activated",
		zap.String("user_id", userID),
		zap.Int64("plan_id", req.PlanID),
		zap.String("billing_cycle", string(cycle)),
	)
	return out, nil
}

// details joins the user plan row with its catalog entry. A missing
// catalog entry (plan removed after subscription) degrades to the ids
// the row already carries.
func (s *Service) details(ctx context.Context, row *domain.UserPlan) domain.UserPlanDetails {
	d := domain.UserPlanDetails{
		PlanID:          row.PlanID,
		PlanStatus:      string(row.Status),
		BillingCycle:    string(row.BillingCycle),
		NextBillingDate: row.NextBillingDate,
		LastFourDigits:  row.CardLast4,
		ExpiryDate:      row.CardExpiry,
		NameOnCard:      row.NameOnCard,
		Country:         row.Country,
		PaymentMethod:   row.CardBrand,
		UserID:          row.UserID,
	}

	plan, err := s.planSvc.Get(ctx, row.PlanID)
	if err != nil {
		s.log.Warn("user plan references unknown catalog entry",
			zap.Int64("plan_id", row.PlanID), zap.Error(err))
		d.PlanName = "Plan " + strconv.FormatInt(row.PlanID, 10)
		return d
	}

	d.PlanName = plan.Name
	d.PlanSubtitle = plan.Subtitle
	price := plan.MonthlyPrice
	if row.BillingCycle == domain.CycleAnnual {
		price = plan.AnnualPrice
	}
	d.PlanPrice = strconv.FormatFloat(price, 'f', 2, 64)
	return d
}

func applyCard(plan *domain.UserPlan, req domain.ActivateRequest) {
	if req.CardBrand != "" {
		plan.CardBrand = req.CardBrand
	}
	if req.CardLast4 != "" {
		plan.CardLast4 = req.CardLast4
	}
	if req.CardExpiry != "" {
		plan.CardExpiry = req.CardExpiry
	}
	if req.NameOnCard != "" {
		plan.NameOnCard = req.NameOnCard
	}
	if req.Country != "" {
		plan.Country = req.Country
	}
}

func nextBillingDate(from time.Time, cycle domain.BillingCycle) time.Time {
	if cycle == domain.CycleAnnual {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}
