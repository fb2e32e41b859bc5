package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stackbill/stackbill/internal/clock"
	paymentdomain "github.com/stackbill/stackbill/internal/payment/domain"
	plandomain "github.com/stackbill/stackbill/internal/plan/domain"
	planrepo "github.com/stackbill/stackbill/internal/plan/repository"
	planservice "github.com/stackbill/stackbill/internal/plan/service"
	"github.com/stackbill/stackbill/internal/subscription/domain"
	"github.com/stackbill/stackbill/internal/subscription/repository"
	"github.com/stackbill/stackbill/internal/subscription/service"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) EnsureCustomer(ctx context.Context, profile paymentdomain.CustomerProfile) (string, error) {
	args := m.Called(ctx, profile)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreatePaymentIntent(ctx context.Context, params paymentdomain.IntentParams) (*paymentdomain.Intent, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentdomain.Intent), args.Error(1)
}

func (m *MockGateway) ListCards(ctx context.Context, customerID string) ([]paymentdomain.Card, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]paymentdomain.Card), args.Error(1)
}

func (m *MockGateway) DetachCard(ctx context.Context, paymentMethodID string) error {
	return m.Called(ctx, paymentMethodID).Error(0)
}

func (m *MockGateway) SetDefaultCard(ctx context.Context, customerID, paymentMethodID string) error {
	return m.Called(ctx, customerID, paymentMethodID).Error(0)
}

func (m *MockGateway) DefaultCard(ctx context.Context, customerID string) (string, error) {
	args := m.Called(ctx, customerID)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	return m.Called(ctx, subscriptionID).Error(0)
}

func setup(t *testing.T) (domain.Service, *MockGateway, int64) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&plandomain.Plan{},
		&plandomain.PlanFeatureRow{},
		&domain.UserPlan{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	fixed := clock.Fixed{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	planSvc := planservice.New(planservice.Params{
		DB: db, Log: log, Clock: fixed, Repo: planrepo.Provide(),
	})
	outcome, err := planSvc.Save(context.Background(), plandomain.SaveRequest{
		PlanTitle:       "Pro Plan",
		PlanSubtitle:    "For growing teams",
		PlanDescription: "Advanced collaboration for teams that ship weekly.",
		AmountPerMonth:  29,
		AmountPerYear:   290,
		AddedFeatures:   []string{"Priority support"},
	})
	require.NoError(t, err)

	gateway := new(MockGateway)
	svc := service.New(service.Params{
		DB: db, Log: log, GenID: node, Clock: fixed,
		Repo: repository.Provide(), PlanSvc: planSvc, Gateway: gateway,
	})
	return svc, gateway, outcome.Plan.ID
}

func TestActivateAndUserPlanDetails(t *testing.T) {
	svc, _, planID := setup(t)
	ctx := context.Background()

	plan, err := svc.Activate(ctx, domain.ActivateRequest{
		UserID:               "user-1",
		PlanID:               planID,
		BillingCycle:         domain.CycleAnnual,
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: "sub_1",
		CardBrand:            "visa",
		CardLast4:            "4242",
		CardExpiry:           "12/28",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, plan.Status)
	require.NotNil(t, plan.NextBillingDate)
	assert.Equal(t, 2027, plan.NextBillingDate.Year())

	details, err := svc.UserPlanDetails(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Pro Plan", details.PlanName)
	assert.Equal(t, "290.00", details.PlanPrice)
	assert.Equal(t, "annual", details.BillingCycle)
	assert.Equal(t, "4242", details.LastFourDigits)
	assert.Equal(t, "visa", details.PaymentMethod)
}

func TestActivateUnknownPlan(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Activate(context.Background(), domain.ActivateRequest{
		UserID: "user-1",
		PlanID: 999,
	})
	assert.ErrorIs(t, err, plandomain.ErrNotFound)
}

func TestActivateDefaultsToMonthly(t *testing.T) {
	svc, _, planID := setup(t)

	plan, err := svc.Activate(context.Background(), domain.ActivateRequest{
		UserID: "user-1",
		PlanID: planID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CycleMonthly, plan.BillingCycle)

	_, err = svc.Activate(context.Background(), domain.ActivateRequest{
		UserID:       "user-2",
		PlanID:       planID,
		BillingCycle: domain.BillingCycle("weekly"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCycle)
}

func TestCancelCallsProviderFirst(t *testing.T) {
	svc, gateway, planID := setup(t)
	ctx := context.Background()

	_, err := svc.Activate(ctx, domain.ActivateRequest{
		UserID:               "user-1",
		PlanID:               planID,
		StripeSubscriptionID: "sub_1",
	})
	require.NoError(t, err)

	gateway.On("CancelSubscription", mock.Anything, "sub_1").Return(nil).Once()

	require.NoError(t, svc.Cancel(ctx, "user-1", planID))
	gateway.AssertExpectations(t)

	_, err = svc.UserPlanDetails(ctx, "user-1")
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)

	err = svc.Cancel(ctx, "user-1", planID)
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)
}

func TestCancelProviderFailureKeepsLocalState(t *testing.T) {
	svc, gateway, planID := setup(t)
	ctx := context.Background()

	_, err := svc.Activate(ctx, domain.ActivateRequest{
		UserID:               "user-1",
		PlanID:               planID,
		StripeSubscriptionID: "sub_1",
	})
	require.NoError(t, err)

	gateway.On("CancelSubscription", mock.Anything, "sub_1").
		Return(assert.AnError).Once()

	err = svc.Cancel(ctx, "user-1", planID)
	require.Error(t, err)

	details, err := svc.UserPlanDetails(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "active", details.PlanStatus)
}

func TestCancelPlanMismatch(t *testing.T) {
	svc, _, planID := setup(t)
	ctx := context.Background()

	_, err := svc.Activate(ctx, domain.ActivateRequest{UserID: "user-1", PlanID: planID})
	require.NoError(t, err)

	err = svc.Cancel(ctx, "user-1", planID+1)
	assert.ErrorIs(t, err, domain.ErrPlanMismatch)
}

func TestReactivateUpdatesExistingRow(t *testing.T) {
	svc, _, planID := setup(t)
	ctx := context.Background()

	first, err := svc.Activate(ctx, domain.ActivateRequest{UserID: "user-1", PlanID: planID})
	require.NoError(t, err)

	second, err := svc.Activate(ctx, domain.ActivateRequest{
		UserID:       "user-1",
		PlanID:       planID,
		BillingCycle: domain.CycleAnnual,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.CycleAnnual, second.BillingCycle)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "user-1", all[0].UserID)
}
