package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stackbill/stackbill/internal/clock"
	"github.com/stackbill/stackbill/internal/plan/domain"
	"github.com/stackbill/stackbill/internal/plan/repository"
	"github.com/stackbill/stackbill/internal/plan/service"
	subscriptiondomain "github.com/stackbill/stackbill/internal/subscription/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Plan{},
		&domain.PlanFeatureRow{},
		&subscriptiondomain.UserPlan{},
	))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, cache *redis.Client) domain.Service {
	t.Helper()
	return service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.Fixed{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		Repo:  repository.Provide(),
		Cache: cache,
	})
}

func validSave() domain.SaveRequest {
	return domain.SaveRequest{
		PlanTitle:       "Pro Plan",
		PlanSubtitle:    "For growing teams",
		PlanDescription: "Advanced collaboration for teams that ship weekly.",
		AmountPerMonth:  29,
		AmountPerYear:   290,
		AddedFeatures:   []string{"Priority support", "Advanced analytics"},
	}
}

func TestSaveCreatesPlanWithFeatures(t *testing.T) {
	svc := newTestService(t, newTestDB(t), nil)
	ctx := context.Background()

	outcome, err := svc.Save(ctx, validSave())
	require.NoError(t, err)

	assert.True(t, outcome.Created)
	assert.Equal(t, "Plan created successfully!", outcome.Message)
	require.NotNil(t, outcome.Plan)
	assert.Equal(t, "Pro Plan", outcome.Plan.Name)
	assert.Equal(t, "pro-plan", outcome.Plan.Slug)
	assert.Equal(t, domain.StatusDraft, outcome.Plan.Status)
	require.Len(t, outcome.Plan.Features, 2)
	assert.Equal(t, "Priority support", outcome.Plan.Features[0].Text)
}

func TestSaveMetadataRoundTrip(t *testing.T) {
	svc := newTestService(t, newTestDB(t), nil)
	ctx := context.Background()

	req := validSave()
	req.Metadata = map[string]any{"badge": "Most popular", "campaign": "spring"}
	outcome, err := svc.Save(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Most popular", outcome.Plan.Metadata["badge"])

	got, err := svc.Get(ctx, outcome.Plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "spring", got.Metadata["campaign"])

	// An update without metadata leaves the stored labels alone.
	update := validSave()
	update.PlanID = outcome.Plan.ID
	update.AddedFeatures = nil
	updated, err := svc.Save(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, "Most popular", updated.Plan.Metadata["badge"])

	// Providing metadata replaces the whole map.
	update.Metadata = map[string]any{"badge": "Best value"}
	updated, err = svc.Save(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, "Best value", updated.Plan.Metadata["badge"])
	assert.NotContains(t, updated.Plan.Metadata, "campaign")
}

func TestSaveRejectsInvalidFields(t *testing.T) {
	svc := newTestService(t, newTestDB(t), nil)

	req := validSave()
	req.PlanTitle = "ab"
	req.AmountPerMonth = -1

	_, err := svc.Save(context.Background(), req)
	require.Error(t, err)

	var fields domain.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "too_short", fields["name"].Code)
	assert.Equal(t, "negative", fields["monthlyPrice"].Code)
}

func TestSaveAppliesFeatureDiff(t *testing.T) {
	svc := newTestService(t, newTestDB(t), nil)
	ctx := context.Background()

	created, err := svc.Save(ctx, validSave())
	require.NoError(t, err)
	planID := created.Plan.ID
	keepID := created.Plan.Features[0].ID
	dropID := created.Plan.Features[1].ID

	update := validSave()
	update.PlanID = planID
	update.AddedFeatures = []string{"Custom integrations"}
	update.DeletedFeatureIDs = []int64{dropID}
	update.UpdatedFeatures = []domain.FeatureUpdate{
		{FeatureID: keepID, Description: "24/7 priority support"},
	}

	outcome, err := svc.Save(ctx, update)
	require.NoError(t, err)

	assert.False(t, outcome.Created)
	assert.Equal(t, "Plan updated successfully!", outcome.Message)

	texts := map[string]bool{}
	for _, f := range outcome.Plan.Features {
		texts[f.Text] = true
	}
	assert.Len(t, outcome.Plan.Features, 2)
	assert.True(t, texts["24/7 priority support"])
	assert.True(t, texts["Custom integrations"])
	assert.False(t, texts["Advanced analytics"])
}

func TestSaveUnknownPlanID(t *testing.T) {
	svc := newTestService(t, newTestDB(t), nil)

	req := validSave()
	req.PlanID = 999

	_, err := svc.Save(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListCachesUnfilteredCatalog(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db := newTestDB(t)
	svc := newTestService(t, db, cache)
	ctx := context.Background()

	_, err = svc.Save(ctx, validSave())
	require.NoError(t, err)

	plans, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.True(t, mr.Exists("plans:catalog"))

	// A save invalidates the cached catalog.
	second := validSave()
	second.PlanTitle = "Enterprise"
	_, err = svc.Save(ctx, second)
	require.NoError(t, err)
	assert.False(t, mr.Exists("plans:catalog"))

	plans, err = svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, plans, 2)
}

func TestListStatusFilterBypassesCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := newTestService(t, newTestDB(t), cache)
	ctx := context.Background()

	created, err := svc.Save(ctx, validSave())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, created.Plan.ID, domain.StatusActive)
	require.NoError(t, err)

	active, err := svc.List(ctx, domain.ListRequest{Status: domain.StatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.False(t, mr.Exists("plans:catalog"))
}

func TestDeleteGuardsSubscribers(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	created, err := svc.Save(ctx, validSave())
	require.NoError(t, err)
	planID := created.Plan.ID

	require.NoError(t, db.Create(&subscriptiondomain.UserPlan{
		ID:     1,
		UserID: "user-1",
		PlanID: planID,
		Status: subscriptiondomain.StatusActive,
	}).Error)

	err = svc.Delete(ctx, planID)
	assert.ErrorIs(t, err, domain.ErrHasSubscribers)

	count, err := svc.SubscriberCount(ctx, planID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Cancelled subscriptions do not block deletion.
	require.NoError(t, db.Exec(
		`UPDATE user_plans SET status = ? WHERE plan_id = ?`,
		subscriptiondomain.StatusCancelled, planID,
	).Error)
	require.NoError(t, svc.Delete(ctx, planID))

	_, err = svc.Get(ctx, planID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatusValidation(t *testing.T) {
	svc := newTestService(t, newTestDB(t), nil)
	ctx := context.Background()

	created, err := svc.Save(ctx, validSave())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, created.Plan.ID, domain.PlanStatus("bogus"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	resp, err := svc.UpdateStatus(ctx, created.Plan.ID, domain.StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, resp.Status)
}
