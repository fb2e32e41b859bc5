package domain

import "time"

type PaymentStatus string

const (
	StatusSucceeded PaymentStatus = "succeeded"
	StatusPending   PaymentStatus = "pending"
	StatusFailed    PaymentStatus = "failed"
)

// PaymentRecord is written when a checkout settles. It binds the Stripe
// payment intent and subscription to the portal user and plan so the
// confirmation page can be rendered without another provider round-trip.
type PaymentRecord struct {
	ID                int64         `gorm:"column:id;primaryKey"`
	PaymentIntentID   string        `gorm:"column:payment_intent_id;index"`
	UserProfileID     string        `gorm:"column:user_profile_id;index"`
	UserID            string        `gorm:"column:user_id;index"`
	CustomerID        string        `gorm:"column:customer_id"`
	SubscriptionID    string        `gorm:"column:subscription_id"`
	OldSubscriptionID string        `gorm:"column:old_subscription_id"`
	PlanID            int64         `gorm:"column:plan_id"`
	Amount            float64       `gorm:"column:amount"`
	Currency          string        `gorm:"column:currency"`
	Status            PaymentStatus `gorm:"column:status"`
	CreatedAt         time.Time     `gorm:"column:created_at"`
	UpdatedAt         time.Time     `gorm:"column:updated_at"`
}

func (PaymentRecord) TableName() string { return "payment_records" }

// Card is the provider-side payment method summary shown in the billing
// management view.
type Card struct {
	PaymentMethodID string `json:"paymentMethodId"`
	Brand           string `json:"brand"`
	Last4           string `json:"last4"`
	ExpMonth        int64  `json:"expMonth"`
	ExpYear         int64  `json:"expYear"`
	IsDefault       bool   `json:"isDefault"`
}

// Intent is the client-facing slice of a created payment intent.
type Intent struct {
	ID           string `json:"paymentIntentId"`
	ClientSecret string `json:"clientSecret"`
	CustomerID   string `json:"customerId"`
}
