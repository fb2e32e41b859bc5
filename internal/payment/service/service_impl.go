package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/stackbill/stackbill/internal/account/domain"
	"github.com/stackbill/stackbill/internal/clock"
	invoicedomain "github.com/stackbill/stackbill/internal/invoice/domain"
	"github.com/stackbill/stackbill/internal/payment/domain"
	plandomain "github.com/stackbill/stackbill/internal/plan/domain"
	subscriptiondomain "github.com/stackbill/stackbill/internal/subscription/domain"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Gateway domain.Gateway

	AccountSvc      accountdomain.Service
	PlanSvc         plandomain.Service
	InvoiceSvc      invoicedomain.Service
	SubscriptionSvc subscriptiondomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	gateway domain.Gateway

	accountSvc      accountdomain.Service
	planSvc         plandomain.Service
	invoiceSvc      invoicedomain.Service
	subscriptionSvc subscriptiondomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("payment.service"),
		genID:           p.GenID,
		clock:           p.Clock,
		repo:            p.Repo,
		gateway:         p.Gateway,
		accountSvc:      p.AccountSvc,
		planSvc:         p.PlanSvc,
		invoiceSvc:      p.InvoiceSvc,
		subscriptionSvc: p.SubscriptionSvc,
	}
}

func (s *Service) CreateIntent(ctx context.Context, req domain.CreateIntentRequest) (*domain.Intent, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	currency := strings.TrimSpace(req.Currency)
	if len(currency) != 3 {
		return nil, domain.ErrInvalidCurrency
	}

	user, err := s.accountSvc.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.gateway.EnsureCustomer(ctx, domain.CustomerProfile{
		UserID:  user.ID,
		Email:   firstNonEmpty(req.CustomerEmail, user.Email),
		Name:    firstNonEmpty(req.CustomerName, user.DisplayName),
		Country: firstNonEmpty(req.CustomerCountry, user.Country),
	})
	if err != nil {
		return nil, err
	}
	if customerID != user.StripeCustomerID {
		if err := s.accountSvc.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
			s.log.Warn("failed to persist stripe customer id",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, domain.IntentParams{
		CustomerID:   customerID,
		Amount:       req.Amount,
		Currency:     currency,
		PlanID:       req.PlanID,
		PlanName:     req.PlanName,
		BillingCycle: req.BillingCycle,
		UserID:       user.ID,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment intent created",
		zap.String("user_id", user.ID),
		zap.Int64("plan_id", req.PlanID),
		zap.String("billing_cycle", req.BillingCycle),
	)
	return intent, nil
}

// RecordPayment persists the settled checkout, issues the invoice,
// cancels the replaced provider subscription when one is given, and
// activates the user's plan. The local record and invoice are the
// source of truth for the confirmation page.
func (s *Service) RecordPayment(ctx context.Context, req domain.RecordPaymentRequest) (*domain.PaymentRecord, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	intentID := strings.TrimSpace(req.PaymentIntentID)
	if intentID == "" {
		return nil, domain.ErrNotFound
	}

	// Replays of the confirmation callback return the existing record.
	if existing, err := s.repo.FindByIntentID(ctx, s.db, intentID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	plan, err := s.planSvc.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	cycle := subscriptiondomain.CycleMonthly
	if plan.AnnualPrice > 0 && req.Amount == plan.AnnualPrice {
		cycle = subscriptiondomain.CycleAnnual
	}
	amount := req.Amount
	if amount == 0 {
		amount = plan.MonthlyPrice
		if cycle == subscriptiondomain.CycleAnnual {
			amount = plan.AnnualPrice
		}
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	// Provider reads happen before the transaction; provider writes
	// after it. Only local state sits inside.
	card := s.defaultCardSummary(ctx, req.CustomerID)

	now := s.clock.Now(ctx)
	record := &domain.PaymentRecord{
		ID:                s.genID.Generate().Int64(),
		PaymentIntentID:   intentID,
		UserProfileID:     strings.TrimSpace(req.UserProfileID),
		UserID:            userID,
		CustomerID:        req.CustomerID,
		SubscriptionID:    req.SubscriptionID,
		OldSubscriptionID: req.OldSubscriptionID,
		PlanID:            req.PlanID,
		Amount:            amount,
		Currency:          currency,
		Status:            domain.StatusSucceeded,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// Record, invoice, and activation commit together. A partial write
	// would otherwise trip the replay guard on retry and leave the
	// payer without their plan.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, record); err != nil {
			return err
		}

		if _, err := s.invoiceSvc.CreateTx(ctx, tx, invoicedomain.CreateRequest{
			UserID:          userID,
			PlanID:          plan.ID,
			PlanName:        plan.Name,
			Amount:          amount,
			Currency:        currency,
			Status:          invoicedomain.StatusPaid,
			PaymentIntentID: intentID,
		}); err != nil {
			return err
		}

		_, err := s.subscriptionSvc.ActivateTx(ctx, tx, subscriptiondomain.ActivateRequest{
			UserID:               userID,
			PlanID:               plan.ID,
			BillingCycle:         cycle,
			StripeCustomerID:     req.CustomerID,
			StripeSubscriptionID: req.SubscriptionID,
			CardBrand:            card.Brand,
			CardLast4:            card.Last4,
			CardExpiry:           cardExpiry(card),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if old := strings.TrimSpace(req.OldSubscriptionID); old != "" {
		if err := s.gateway.CancelSubscription(ctx, old); err != nil {
			s.log.Warn("failed to cancel replaced subscription",
				zap.String("subscription_id", old), zap.Error(err))
		}
	}

	s.log.Info("payment recorded",
		zap.String("payment_intent_id", intentID),
		zap.String("user_id", userID),
		zap.Int64("plan_id", plan.ID),
	)
	return record, nil
}

func (s *Service) PaymentDetails(ctx context.Context, paymentIntentID string) (*domain.PaymentRecord, error) {
	record, err := s.repo.FindByIntentID(ctx, s.db, strings.TrimSpace(paymentIntentID))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (s *Service) PaymentConfirmation(ctx context.Context, userProfileID string) (*domain.PaymentRecord, error) {
	record, err := s.repo.FindLatestByProfile(ctx, s.db, strings.TrimSpace(userProfileID))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (s *Service) ListCards(ctx context.Context, userID string) ([]domain.Card, error) {
	customerID, err := s.customerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if customerID == "" {
		return []domain.Card{}, nil
	}
	return s.gateway.ListCards(ctx, customerID)
}

func (s *Service) SetDefaultCard(ctx context.Context, userID, paymentMethodID string) error {
	customerID, err := s.customerID(ctx, userID)
	if err != nil {
		return err
	}
	if customerID == "" {
		return domain.ErrNoCustomer
	}
	return s.gateway.SetDefaultCard(ctx, customerID, paymentMethodID)
}

func (s *Service) DefaultCard(ctx context.Context, userID string) (string, error) {
	customerID, err := s.customerID(ctx, userID)
	if err != nil {
		return "", err
	}
	if customerID == "" {
		return "", nil
	}
	return s.gateway.DefaultCard(ctx, customerID)
}

func (s *Service) DeleteCard(ctx context.Context, userID, paymentMethodID string) error {
	customerID, err := s.customerID(ctx, userID)
	if err != nil {
		return err
	}
	if customerID == "" {
		return domain.ErrNoCustomer
	}

	cards, err := s.gateway.ListCards(ctx, customerID)
	if err != nil {
		return err
	}
	owned := false
	for _, card := range cards {
		if card.PaymentMethodID == paymentMethodID {
			owned = true
			break
		}
	}
	if !owned {
		return domain.ErrCardNotFound
	}
	return s.gateway.DetachCard(ctx, paymentMethodID)
}

func (s *Service) customerID(ctx context.Context, userID string) (string, error) {
	user, err := s.accountSvc.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.StripeCustomerID, nil
}

func (s *Service) defaultCardSummary(ctx context.Context, customerID string) domain.Card {
	if customerID == "" {
		return domain.Card{}
	}
	defaultID, err := s.gateway.DefaultCard(ctx, customerID)
	if err != nil || defaultID == "" {
		return domain.Card{}
	}
	cards, err := s.gateway.ListCards(ctx, customerID)
	if err != nil {
		return domain.Card{}
	}
	for _, card := range cards {
		if card.PaymentMethodID == defaultID {
			return card
		}
	}
	return domain.Card{}
}

func cardExpiry(card domain.Card) string {
	if card.ExpMonth == 0 || card.ExpYear == 0 {
		return ""
	}
	return fmt.Sprintf("%02d/%02d", card.ExpMonth, card.ExpYear%100)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
