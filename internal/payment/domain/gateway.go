package domain

import "context"

// CustomerProfile identifies and describes a payer at the provider.
type CustomerProfile struct {
	UserID  string
	Email   string
	Name    string
	Country string
}

type IntentParams struct {
	CustomerID   string
	Amount       float64
	Currency     string
	PlanID       int64
	PlanName     string
	BillingCycle string
	UserID       string
}

// Gateway is the payment provider boundary. The Stripe implementation
// lives in the stripe package; tests substitute a mock.
type Gateway interface {
	// EnsureCustomer returns the provider customer id for the user,
	// creating the customer when none exists yet.
	EnsureCustomer(ctx context.Context, profile CustomerProfile) (string, error)

	CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error)

	ListCards(ctx context.Context, customerID string) ([]Card, error)
	DetachCard(ctx context.Context, paymentMethodID string) error
	SetDefaultCard(ctx context.Context, customerID, paymentMethodID string) error
	DefaultCard(ctx context.Context, customerID string) (string, error)

	CancelSubscription(ctx context.Context, subscriptionID string) error
}
