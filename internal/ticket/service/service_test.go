package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stackbill/stackbill/internal/clock"
	"github.com/stackbill/stackbill/internal/ticket/domain"
	"github.com/stackbill/stackbill/internal/ticket/repository"
	"github.com/stackbill/stackbill/internal/ticket/service"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Ticket{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.Fixed{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		Repo:  repository.Provide(),
	})
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{
		UserID:   "user-1",
		Subject:  "   ",
		Category: "",
		Message:  "too short",
	})
	require.Error(t, err)

	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "Subject is required", errs["subject"])
	assert.Equal(t, "Please select a category", errs["category"])
	assert.Equal(t, "Message must be at least 10 characters", errs["message"])
}

func TestCreateRequiresUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		Subject:  "Billing question",
		Category: domain.CategoryBilling,
		Message:  "I was charged twice this month",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		UserID:   "user-1",
		Subject:  "  Billing question  ",
		Category: domain.CategoryBilling,
		Message:  "I was charged twice this month",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Billing question", created.Subject)
	assert.Equal(t, string(domain.StatusOpen), created.Status)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "user-1", got.UserID)
}

func TestListFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateRequest{
		UserID:   "user-1",
		Subject:  "Invoice missing",
		Category: domain.CategoryBilling,
		Message:  "My February invoice never arrived",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{
		UserID:   "user-2",
		Subject:  "Password reset loop",
		Category: domain.CategoryAccount,
		Message:  "The reset link keeps sending me back to login",
	})
	require.NoError(t, err)

	all, err := svc.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bySubject, err := svc.List(ctx, domain.ListFilter{Subject: "invoice"})
	require.NoError(t, err)
	require.Len(t, bySubject, 1)
	assert.Equal(t, first.ID, bySubject[0].ID)

	bySearch, err := svc.List(ctx, domain.ListFilter{Search: "reset link"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "user-2", bySearch[0].UserID)

	byID, err := svc.List(ctx, domain.ListFilter{TicketID: first.ID})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, first.ID, byID[0].ID)

	byUser, err := svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, first.ID, byUser[0].ID)
}

func TestUpdateStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		UserID:   "user-1",
		Subject:  "Sync is slow",
		Category: domain.CategoryTechnical,
		Message:  "Usage data lags by several hours",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, created.ID, domain.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusResolved), updated.Status)

	resolved, err := svc.List(ctx, domain.ListFilter{Status: domain.StatusResolved})
	require.NoError(t, err)
	assert.Len(t, resolved, 1)

	_, err = svc.UpdateStatus(ctx, created.ID, domain.TicketStatus("bogus"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, 424242, domain.StatusClosed)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
