package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	// UserPlanDetails returns the user's current plan joined with the
	// plan catalog entry and card summary.
	UserPlanDetails(ctx context.Context, userID string) (*UserPlanDetails, error)
	// ListAll returns every user plan, for the admin dashboard.
	ListAll(ctx context.Context) ([]UserPlanDetails, error)
	// Cancel cancels the user's subscription to a plan. The provider
	// subscription is cancelled first; the local row flips only after
	// the provider confirms.
	Cancel(ctx context.Context, userID string, planID int64) error
	// Activate writes or replaces the user's plan after a confirmed
	// payment.
	Activate(ctx context.Context, req ActivateRequest) (*UserPlan, error)
	// ActivateTx is Activate running against a transaction the caller
	// owns, so activation commits or rolls back with the caller's
	// other writes.
	ActivateTx(ctx context.Context, tx *gorm.DB, req ActivateRequest) (*UserPlan, error)
}

type ActivateRequest struct {
	UserID               string
	PlanID               int64
	BillingCycle         BillingCycle
	StripeCustomerID     string
	StripeSubscriptionID string
	CardBrand            string
	CardLast4            string
	CardExpiry           string
	NameOnCard           string
	Country              string
}

// UserPlanDetails is the dashboard-facing projection of a user plan.
type UserPlanDetails struct {
	PlanID          int64      `json:"planId"`
	PlanName        string     `json:"planName"`
	PlanSubtitle    string     `json:"planSubtitle,omitempty"`
	PlanPrice       string     `json:"planPrice"`
	PlanStatus      string     `json:"planStatus"`
	BillingCycle    string     `json:"billingCycle,omitempty"`
	NextBillingDate *time.Time `json:"nextBillingDate"`
	LastFourDigits  string     `json:"lastFourDigits"`
	ExpiryDate      string     `json:"expiryDate"`
	NameOnCard      string     `json:"nameOnCard"`
	Country         string     `json:"country"`
	PaymentMethod   string     `json:"paymentMethod"`
	UserID          string     `json:"userId"`
}

var (
	ErrNotSubscribed    = errors.New("user_not_subscribed")
	ErrPlanMismatch     = errors.New("plan_mismatch")
	ErrAlreadyCancelled = errors.New("subscription_already_cancelled")
	ErrInvalidUser      = errors.New("invalid_user")
	ErrInvalidCycle     = errors.New("invalid_billing_cycle")
)
