package domain

import "time"

type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusTrial     SubscriptionStatus = "trial"
	StatusPending   SubscriptionStatus = "pending"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusPastDue   SubscriptionStatus = "past_due"
)

type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleAnnual  BillingCycle = "annual"
)

// UserPlan ties a portal user to a subscription plan plus the card
// summary shown on the dashboard. One row per user/plan pairing; the
// most recent active row is the user's current plan.
type UserPlan struct {
	ID                   int64              `gorm:"column:id;primaryKey"`
	UserID               string             `gorm:"column:user_id;index"`
	PlanID               int64              `gorm:"column:plan_id;index"`
	Status               SubscriptionStatus `gorm:"column:status"`
	BillingCycle         BillingCycle       `gorm:"column:billing_cycle"`
	StripeCustomerID     string             `gorm:"column:stripe_customer_id"`
	StripeSubscriptionID string             `gorm:"column:stripe_subscription_id"`
	NextBillingDate      *time.Time         `gorm:"column:next_billing_date"`
	CardBrand            string             `gorm:"column:card_brand"`
	CardLast4            string             `gorm:"column:card_last4"`
	CardExpiry           string             `gorm:"column:card_expiry"`
	NameOnCard           string             `gorm:"column:name_on_card"`
	Country              string             `gorm:"column:country"`
	CreatedAt            time.Time          `gorm:"column:created_at"`
	UpdatedAt            time.Time          `gorm:"column:updated_at"`
}

func (UserPlan) TableName() string { return "user_plans" }
