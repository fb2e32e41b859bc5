package domain

import (
	"context"
	"errors"
)

type Service interface {
	// CreateIntent ensures a provider customer exists for the user and
	// opens a payment intent for the checkout amount.
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)

	// RecordPayment persists the settled payment and returns the stored
	// record. Called by the confirmation flow after Stripe reports
	// success.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentRecord, error)

	PaymentDetails(ctx context.Context, paymentIntentID string) (*PaymentRecord, error)
	PaymentConfirmation(ctx context.Context, userProfileID string) (*PaymentRecord, error)

	ListCards(ctx context.Context, userID string) ([]Card, error)
	SetDefaultCard(ctx context.Context, userID, paymentMethodID string) error
	DefaultCard(ctx context.Context, userID string) (string, error)
	DeleteCard(ctx context.Context, userID, paymentMethodID string) error
}

type CreateIntentRequest struct {
	UserID          string  `json:"userId"`
	PlanID          int64   `json:"planId"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	PlanName        string  `json:"planName"`
	BillingCycle    string  `json:"billingCycle"`
	CustomerName    string  `json:"customerName"`
	CustomerEmail   string  `json:"customerEmail"`
	CustomerCountry string  `json:"customerCountry"`
}

type RecordPaymentRequest struct {
	PaymentIntentID   string  `json:"paymentId"`
	UserProfileID     string  `json:"userProfileId"`
	UserID            string  `json:"userId"`
	CustomerID        string  `json:"customerId"`
	SubscriptionID    string  `json:"subscriptionId"`
	OldSubscriptionID string  `json:"oldSubscriptionId"`
	PlanID            int64   `json:"planId"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
}

var (
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidUser     = errors.New("invalid_user")
	ErrNoCustomer      = errors.New("no_provider_customer")
	ErrNotFound        = errors.New("payment_not_found")
	ErrCardNotFound    = errors.New("card_not_found")
)
