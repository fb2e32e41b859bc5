package seed

import (
	"context"
	"errors"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	accountdomain "github.com/stackbill/stackbill/internal/account/domain"
	plandomain "github.com/stackbill/stackbill/internal/plan/domain"
)

const (
	defaultAdminID      = "admin"
	defaultAdminEmail   = "admin@stackbill.io"
	defaultAdminDisplay = "StackBill Admin"
)

type planSeed struct {
	name         string
	subtitle     string
	description  string
	monthlyPrice float64
	annualPrice  float64
	isPopular    bool
	features     []string
}

var defaultPlans = []planSeed{
	{
		name:         "Basic",
		subtitle:     "For individuals getting started",
		monthlyPrice: 9,
		annualPrice:  90,
		description:  "Everything you need to run a small project with a single workspace.",
		features: []string{
			"1 workspace",
			"Community support",
			"Basic usage reports",
		},
	},
	{
		name:         "Pro",
		subtitle:     "For growing teams",
		monthlyPrice: 29,
		annualPrice:  290,
		isPopular:    true,
		description:  "Advanced collaboration and priority support for teams that ship weekly.",
		features: []string{
			"Unlimited workspaces",
			"Priority email support",
			"Advanced analytics",
			"Custom integrations",
		},
	},
	{
		name:         "Enterprise",
		subtitle:     "For large organizations",
		monthlyPrice: 99,
		annualPrice:  990,
		description:  "Dedicated support, custom contracts and compliance controls at scale.",
		features: []string{
			"Everything in Pro",
			"Dedicated account manager",
			"SSO and audit logs",
			"Custom SLAs",
		},
	},
}

// EnsureDefaults seeds the plan catalog and the bootstrap admin user.
// Safe to run repeatedly; existing rows are left untouched.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	now := time.Now().UTC()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureAdminUser(tx, now); err != nil {
			return err
		}
		for _, seed := range defaultPlans {
			if err := ensurePlan(tx, seed, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureAdminUser(tx *gorm.DB, now time.Time) error {
	var count int64
	if err := tx.Model(&accountdomain.User{}).
		Where("id = ?", defaultAdminID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Create(&accountdomain.User{
		ID:          defaultAdminID,
		Email:       defaultAdminEmail,
		DisplayName: defaultAdminDisplay,
		IsAdmin:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}).Error
}

func ensurePlan(tx *gorm.DB, seed planSeed, now time.Time) error {
	planSlug := slug.Make(seed.name)

	var count int64
	if err := tx.Model(&plandomain.Plan{}).
		Where("slug = ?", planSlug).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	plan := &plandomain.Plan{
		Name:         seed.name,
		Slug:         planSlug,
		Subtitle:     seed.subtitle,
		Description:  seed.description,
		MonthlyPrice: seed.monthlyPrice,
		AnnualPrice:  seed.annualPrice,
		IsPopular:    seed.isPopular,
		Status:       plandomain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.Create(plan).Error; err != nil {
		return err
	}

	for _, text := range seed.features {
		row := &plandomain.PlanFeatureRow{
			PlanID:      plan.ID,
			Description: text,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
	}
	return nil
}
