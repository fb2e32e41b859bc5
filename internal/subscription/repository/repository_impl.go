package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/stackbill/stackbill/internal/subscription/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plan *domain.UserPlan) error {
	return db.WithContext(ctx).Create(plan).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, plan *domain.UserPlan) error {
	if plan == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE user_plans
		 SET plan_id = ?, status = ?, billing_cycle = ?, stripe_customer_id = ?, stripe_subscription_id = ?,
		     next_billing_date = ?, card_brand = ?, card_last4 = ?, card_expiry = ?, name_on_card = ?, country = ?, updated_at = ?
		 WHERE id = ?`,
		plan.PlanID,
		plan.Status,
		plan.BillingCycle,
		plan.StripeCustomerID,
		plan.StripeSubscriptionID,
		plan.NextBillingDate,
		plan.CardBrand,
		plan.CardLast4,
		plan.CardExpiry,
		plan.NameOnCard,
		plan.Country,
		plan.UpdatedAt,
		plan.ID,
	).Error
}

func (r *repo) FindCurrentByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.UserPlan, error) {
	var p domain.UserPlan
	err := db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []domain.SubscriptionStatus{
			domain.StatusActive,
			domain.StatusTrial,
			domain.StatusPastDue,
		}).
		Order("updated_at desc").
		Take(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindByUserAndPlan(ctx context.Context, db *gorm.DB, userID string, planID int64) (*domain.UserPlan, error) {
	var p domain.UserPlan
	err := db.WithContext(ctx).
		Where("user_id = ? AND plan_id = ?", userID, planID).
		Order("updated_at desc").
		Take(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]domain.UserPlan, error) {
	var items []domain.UserPlan
	if err := db.WithContext(ctx).Order("updated_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
