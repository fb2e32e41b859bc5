package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	accountdomain "github.com/stackbill/stackbill/internal/account/domain"
	accountrepo "github.com/stackbill/stackbill/internal/account/repository"
	accountservice "github.com/stackbill/stackbill/internal/account/service"
	auditdomain "github.com/stackbill/stackbill/internal/audit/domain"
	auditrepo "github.com/stackbill/stackbill/internal/audit/repository"
	auditservice "github.com/stackbill/stackbill/internal/audit/service"
	"github.com/stackbill/stackbill/internal/clock"
	"github.com/stackbill/stackbill/internal/config"
	invoicedomain "github.com/stackbill/stackbill/internal/invoice/domain"
	invoicerepo "github.com/stackbill/stackbill/internal/invoice/repository"
	invoiceservice "github.com/stackbill/stackbill/internal/invoice/service"
	"github.com/stackbill/stackbill/internal/observability"
	paymentdomain "github.com/stackbill/stackbill/internal/payment/domain"
	paymentrepo "github.com/stackbill/stackbill/internal/payment/repository"
	paymentservice "github.com/stackbill/stackbill/internal/payment/service"
	plandomain "github.com/stackbill/stackbill/internal/plan/domain"
	planrepo "github.com/stackbill/stackbill/internal/plan/repository"
	planservice "github.com/stackbill/stackbill/internal/plan/service"
	"github.com/stackbill/stackbill/internal/server"
	subscriptiondomain "github.com/stackbill/stackbill/internal/subscription/domain"
	subscriptionrepo "github.com/stackbill/stackbill/internal/subscription/repository"
	subscriptionservice "github.com/stackbill/stackbill/internal/subscription/service"
	ticketdomain "github.com/stackbill/stackbill/internal/ticket/domain"
	ticketrepo "github.com/stackbill/stackbill/internal/ticket/repository"
	ticketservice "github.com/stackbill/stackbill/internal/ticket/service"
)

const testAPIKey = "test-api-key"

type stubGateway struct{}

func (stubGateway) EnsureCustomer(context.Context, paymentdomain.CustomerProfile) (string, error) {
	return "cus_test", nil
}
func (stubGateway) CreatePaymentIntent(context.Context, paymentdomain.IntentParams) (*paymentdomain.Intent, error) {
	return &paymentdomain.Intent{ID: "pi_test", ClientSecret: "secret", CustomerID: "cus_test"}, nil
}
func (stubGateway) ListCards(context.Context, string) ([]paymentdomain.Card, error) {
	return []paymentdomain.Card{}, nil
}
func (stubGateway) DetachCard(context.Context, string) error            { return nil }
func (stubGateway) SetDefaultCard(context.Context, string, string) error { return nil }
func (stubGateway) DefaultCard(context.Context, string) (string, error) { return "", nil }
func (stubGateway) CancelSubscription(context.Context, string) error    { return nil }

func newTestEngine(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&accountdomain.User{},
		&plandomain.Plan{},
		&plandomain.PlanFeatureRow{},
		&subscriptiondomain.UserPlan{},
		&paymentdomain.PaymentRecord{},
		&invoicedomain.Invoice{},
		&ticketdomain.Ticket{},
		&auditdomain.AuditLog{},
	))

	log := zap.NewNop()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fixed := clock.Fixed{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	gateway := stubGateway{}

	planSvc := planservice.New(planservice.Params{
		DB: db, Log: log, Clock: fixed, Repo: planrepo.Provide(),
	})
	accountSvc := accountservice.New(accountservice.Params{
		DB: db, Log: log, Clock: fixed, Repo: accountrepo.Provide(),
	})
	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB: db, Log: log, GenID: node, Clock: fixed, Repo: invoicerepo.Provide(),
	})
	subscriptionSvc := subscriptionservice.New(subscriptionservice.Params{
		DB: db, Log: log, GenID: node, Clock: fixed,
		Repo: subscriptionrepo.Provide(), PlanSvc: planSvc, Gateway: gateway,
	})
	paymentSvc := paymentservice.New(paymentservice.Params{
		DB: db, Log: log, GenID: node, Clock: fixed,
		Repo: paymentrepo.Provide(), Gateway: gateway,
		AccountSvc: accountSvc, PlanSvc: planSvc,
		InvoiceSvc: invoiceSvc, SubscriptionSvc: subscriptionSvc,
	})
	ticketSvc := ticketservice.New(ticketservice.Params{
		DB: db, Log: log, GenID: node, Clock: fixed, Repo: ticketrepo.Provide(),
	})
	auditSvc := auditservice.New(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: fixed, Repo: auditrepo.Provide(),
	})

	cfg := config.Config{}
	cfg.Server.Addr = ":0"
	cfg.Server.APIKey = testAPIKey

	srv := server.New(server.Params{
		Cfg: cfg, Log: log, DB: db, Metrics: observability.NewHTTPMetrics(),
		PlanSvc: planSvc, SubscriptionSvc: subscriptionSvc, PaymentSvc: paymentSvc,
		InvoiceSvc: invoiceSvc, TicketSvc: ticketSvc, AccountSvc: accountSvc,
		AuditSvc: auditSvc,
	})
	return server.NewEngine(srv), db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if apiKey != "" {
		req.Header.Set("APIKey", apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func savePlanRequest() map[string]any {
	return map[string]any{
		"PlanTitle":       "Pro Plan",
		"PlanSubtitle":    "For growing teams",
		"PlanDescription": "Advanced collaboration for teams that ship weekly.",
		"AmountPerMonth":  29.0,
		"AmountPerYear":   290.0,
		"addedFeatures":   []string{"Priority support"},
	}
}

func TestAPIKeyRequired(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/node/plans", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decodeBody(t, rec)["message"])

	rec = doJSON(t, engine, http.MethodGet, "/api/node/plans", nil, "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/node/plans", nil, testAPIKey)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzIsPublic(t *testing.T) {
	engine, _ := newTestEngine(t)
	rec := doJSON(t, engine, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSavePlanRoundTrip(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/node/createplan", savePlanRequest(), testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Plan created successfully!", body["message"])
	plan := body["plan"].(map[string]any)
	planID := int64(plan["id"].(float64))
	assert.Equal(t, "Pro Plan", plan["name"])

	rec = doJSON(t, engine, http.MethodGet, "/api/node/plans", nil, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)
	plans := decodeBody(t, rec)["plans"].([]any)
	assert.Len(t, plans, 1)

	rec = doJSON(t, engine, http.MethodGet, "/api/node/plan/1", nil, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)["plan"].(map[string]any)
	assert.Equal(t, float64(planID), got["id"])
}

func TestSavePlanValidationFailure(t *testing.T) {
	engine, _ := newTestEngine(t)

	req := savePlanRequest()
	req["PlanTitle"] = "ab"
	req["AmountPerMonth"] = -5.0

	rec := doJSON(t, engine, http.MethodPost, "/api/node/createplan", req, testAPIKey)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Validation failed", body["message"])
	errs := body["errors"].(map[string]any)
	name := errs["name"].(map[string]any)
	assert.Equal(t, "too_short", name["code"])
	price := errs["monthlyPrice"].(map[string]any)
	assert.Equal(t, "negative", price["code"])
}

func TestGetPlanBadID(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/node/plan/abc", nil, testAPIKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid plan id", decodeBody(t, rec)["message"])

	rec = doJSON(t, engine, http.MethodGet, "/api/node/plan/999", nil, testAPIKey)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Plan not found", decodeBody(t, rec)["message"])
}

func TestUserPlanWithoutSubscription(t *testing.T) {
	engine, db := newTestEngine(t)
	require.NoError(t, db.Create(&accountdomain.User{ID: "user-1", Email: "u@example.com"}).Error)

	rec := doJSON(t, engine, http.MethodGet, "/api/node/userplan?userId=user-1", nil, testAPIKey)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No active subscription", decodeBody(t, rec)["message"])
}

func TestCreateTicketValidation(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/node/ticket", map[string]any{
		"userId":   "user-1",
		"subject":  "",
		"category": "",
		"message":  "short",
	}, testAPIKey)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	errs := body["errors"].(map[string]any)
	assert.Equal(t, "Subject is required", errs["subject"])
	assert.Equal(t, "Message must be at least 10 characters", errs["message"])

	rec = doJSON(t, engine, http.MethodPost, "/api/node/ticket", map[string]any{
		"userId":   "user-1",
		"subject":  "Billing question",
		"category": "billing",
		"message":  "I was charged twice this month",
	}, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Support ticket submitted successfully", decodeBody(t, rec)["message"])
}

func TestIsAdmin(t *testing.T) {
	engine, db := newTestEngine(t)
	require.NoError(t, db.Create(&accountdomain.User{ID: "admin-1", IsAdmin: true}).Error)
	require.NoError(t, db.Create(&accountdomain.User{ID: "user-1"}).Error)

	rec := doJSON(t, engine, http.MethodGet, "/api/node/isadmin?userId=admin-1", nil, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["isAdmin"])

	rec = doJSON(t, engine, http.MethodGet, "/api/node/isadmin?userId=user-1", nil, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["isAdmin"])
}

func TestDeletePlanWritesAudit(t *testing.T) {
	engine, db := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/node/createplan", savePlanRequest(), testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, engine, http.MethodDelete, "/api/node/plan/1", nil, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&auditdomain.AuditLog{}).
		Where("action = ?", auditdomain.ActionPlanDeleted).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
