// Package stripe implements the payment gateway against the Stripe API.
package stripe

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"go.uber.org/zap"

	"github.com/stackbill/stackbill/internal/payment/domain"
)

type Gateway struct {
	api *client.API
	log *zap.Logger
}

func NewGateway(secretKey string, log *zap.Logger) *Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Gateway{
		api: api,
		log: log.Named("payment.stripe"),
	}
}

// EnsureCustomer searches Stripe for a customer tagged with the portal
// user id before creating one, so retried checkouts never mint
// duplicate customers.
func (g *Gateway) EnsureCustomer(ctx context.Context, profile domain.CustomerProfile) (string, error) {
	if strings.TrimSpace(profile.UserID) == "" {
		return "", domain.ErrInvalidUser
	}

	searchParams := &stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{
			Query:   fmt.Sprintf("metadata['user_id']:'%s'", profile.UserID),
			Context: ctx,
		},
	}
	iter := g.api.Customers.Search(searchParams)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", err
	}

	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(profile.Email),
		Name:   stripe.String(profile.Name),
	}
	params.AddMetadata("user_id", profile.UserID)
	if profile.Country != "" {
		params.AddMetadata("country", profile.Country)
	}

	customer, err := g.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	g.log.Info("stripe customer created", zap.String("user_id", profile.UserID))
	return customer.ID, nil
}

func (g *Gateway) CreatePaymentIntent(ctx context.Context, p domain.IntentParams) (*domain.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(toMinorUnits(p.Amount)),
		Currency: stripe.String(strings.ToLower(p.Currency)),
		Customer: stripe.String(p.CustomerID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("user_id", p.UserID)
	params.AddMetadata("plan_id", strconv.FormatInt(p.PlanID, 10))
	params.AddMetadata("plan_name", p.PlanName)
	params.AddMetadata("billing_cycle", p.BillingCycle)

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return &domain.Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		CustomerID:   p.CustomerID,
	}, nil
}

func (g *Gateway) ListCards(ctx context.Context, customerID string) ([]domain.Card, error) {
	defaultID, err := g.DefaultCard(ctx, customerID)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentMethodListParams{
		ListParams: stripe.ListParams{Context: ctx},
		Customer:   stripe.String(customerID),
		Type:       stripe.String(string(stripe.PaymentMethodTypeCard)),
	}

	var cards []domain.Card
	iter := g.api.PaymentMethods.List(params)
	for iter.Next() {
		pm := iter.PaymentMethod()
		if pm.Card == nil {
			continue
		}
		cards = append(cards, domain.Card{
			PaymentMethodID: pm.ID,
			Brand:           string(pm.Card.Brand),
			Last4:           pm.Card.Last4,
			ExpMonth:        pm.Card.ExpMonth,
			ExpYear:         pm.Card.ExpYear,
			IsDefault:       pm.ID == defaultID,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

func (g *Gateway) DetachCard(ctx context.Context, paymentMethodID string) error {
	_, err := g.api.PaymentMethods.Detach(paymentMethodID, &stripe.PaymentMethodDetachParams{
		Params: stripe.Params{Context: ctx},
	})
	return err
}

func (g *Gateway) SetDefaultCard(ctx context.Context, customerID, paymentMethodID string) error {
	_, err := g.api.Customers.Update(customerID, &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	})
	return err
}

func (g *Gateway) DefaultCard(ctx context.Context, customerID string) (string, error) {
	customer, err := g.api.Customers.Get(customerID, &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return "", err
	}
	if customer.InvoiceSettings == nil || customer.InvoiceSettings.DefaultPaymentMethod == nil {
		return "", nil
	}
	return customer.InvoiceSettings.DefaultPaymentMethod.ID, nil
}

func (g *Gateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	_, err := g.api.Subscriptions.Cancel(subscriptionID, &stripe.SubscriptionCancelParams{
		Params: stripe.Params{Context: ctx},
	})
	return err
}

// toMinorUnits converts a decimal amount to the integer minor units
// Stripe expects.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
