package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stackbill/stackbill/internal/clock"
	"github.com/stackbill/stackbill/internal/plan/domain"
)

const (
	planCatalogCacheKey = "plans:catalog"
	planCatalogCacheTTL = 5 * time.Minute
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
	Cache *redis.Client `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
	cache *redis.Client
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("plan.service"),
		clock: p.Clock,
		repo:  p.Repo,
		cache: p.Cache,
	}
}

// Save validates the request, then applies the categorized feature diff
// and the scalar fields in a single transaction. There is no partial
// application: a failure rolls the whole save back, and the last
// successful write wins when two editors race.
func (s *Service) Save(ctx context.Context, req domain.SaveRequest) (*domain.SaveOutcome, error) {
	if errs := domain.ValidatePlanFields(req.PlanTitle, req.PlanSubtitle, req.PlanDescription, req.AmountPerMonth, req.AmountPerYear); errs != nil {
		return nil, errs
	}

	now := s.clock.Now(ctx)
	created := req.PlanID == 0
	var plan *domain.Plan

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if created {
			plan = &domain.Plan{
				Name:         strings.TrimSpace(req.PlanTitle),
				Slug:         slug.Make(req.PlanTitle),
				Subtitle:     strings.TrimSpace(req.PlanSubtitle),
				Description:  strings.TrimSpace(req.PlanDescription),
				MonthlyPrice: req.AmountPerMonth,
				AnnualPrice:  req.AmountPerYear,
				IsPopular:    req.IsPopular,
				Status:       domain.StatusDraft,
				Metadata:     datatypes.JSONMap(req.Metadata),
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := s.repo.Create(ctx, tx, plan); err != nil {
				return err
			}
		} else {
			existing, err := s.repo.FindByID(ctx, tx, req.PlanID)
			if err != nil {
				return err
			}
			if existing == nil {
				return domain.ErrNotFound
			}
			existing.Name = strings.TrimSpace(req.PlanTitle)
			existing.Slug = slug.Make(req.PlanTitle)
			existing.Subtitle = strings.TrimSpace(req.PlanSubtitle)
			existing.Description = strings.TrimSpace(req.PlanDescription)
			existing.MonthlyPrice = req.AmountPerMonth
			existing.AnnualPrice = req.AmountPerYear
			existing.IsPopular = req.IsPopular
			if req.Metadata != nil {
				existing.Metadata = datatypes.JSONMap(req.Metadata)
			}
			existing.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, existing); err != nil {
				return err
			}
			plan = existing
		}

		if err := s.repo.InsertFeatures(ctx, tx, plan.ID, req.AddedFeatures); err != nil {
			return err
		}
		if err := s.repo.DeleteFeatures(ctx, tx, plan.ID, req.DeletedFeatureIDs); err != nil {
			return err
		}
		for _, update := range req.UpdatedFeatures {
			if err := s.repo.UpdateFeatureText(ctx, tx, plan.ID, update.FeatureID, update.Description); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)

	resp, err := s.response(ctx, plan)
	if err != nil {
		return nil, err
	}

	message := "Plan updated successfully!"
	if created {
		message = "Plan created successfully!"
	}
	s.log.Info("plan saved",
		zap.Int64("plan_id", plan.ID),
		zap.Bool("created", created),
		zap.Int("added", len(req.AddedFeatures)),
		zap.Int("deleted", len(req.DeletedFeatureIDs)),
		zap.Int("updated", len(req.UpdatedFeatures)),
	)
	return &domain.SaveOutcome{Created: created, Message: message, Plan: resp}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Response, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	plan, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	return s.response(ctx, plan)
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	unfiltered := req.Status == "" && strings.TrimSpace(req.Search) == ""
	if unfiltered {
		if cached, ok := s.cachedCatalog(ctx); ok {
			return cached, nil
		}
	}

	plans, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Response, 0, len(plans))
	for i := range plans {
		resp, err := s.response(ctx, &plans[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}

	if unfiltered {
		s.storeCatalog(ctx, out)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}
	plan, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if plan == nil {
		return domain.ErrNotFound
	}

	subscribers, err := s.repo.CountSubscribers(ctx, s.db, id)
	if err != nil {
		return err
	}
	if subscribers > 0 {
		return domain.ErrHasSubscribers
	}

	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	s.log.Info("plan deleted", zap.Int64("plan_id", id))
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.PlanStatus) (*domain.Response, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	plan, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}

	plan.Status = status
	plan.UpdatedAt = s.clock.Now(ctx)
	if err := s.repo.Update(ctx, s.db, plan); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return s.response(ctx, plan)
}

func (s *Service) SubscriberCount(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, domain.ErrInvalidID
	}
	plan, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	if plan == nil {
		return 0, domain.ErrNotFound
	}
	return s.repo.CountSubscribers(ctx, s.db, id)
}

func (s *Service) response(ctx context.Context, plan *domain.Plan) (*domain.Response, error) {
	rows, err := s.repo.FindFeatures(ctx, s.db, plan.ID)
	if err != nil {
		return nil, err
	}
	features := make([]domain.FeatureResponse, 0, len(rows))
	for _, row := range rows {
		features = append(features, domain.FeatureResponse{ID: row.ID, Text: row.Description})
	}
	return &domain.Response{
		ID:           plan.ID,
		Name:         plan.Name,
		Slug:         plan.Slug,
		Subtitle:     plan.Subtitle,
		Description:  plan.Description,
		MonthlyPrice: plan.MonthlyPrice,
		AnnualPrice:  plan.AnnualPrice,
		IsPopular:    plan.IsPopular,
		Status:       plan.Status,
		Metadata:     map[string]any(plan.Metadata),
		Features:     features,
	}, nil
}

func (s *Service) cachedCatalog(ctx context.Context) ([]domain.Response, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, planCatalogCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var out []domain.Response
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (s *Service) storeCatalog(ctx context.Context, plans []domain.Response) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(plans)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, planCatalogCacheKey, payload, planCatalogCacheTTL).Err(); err != nil {
		s.log.Warn("plan catalog cache write failed", zap.Error(err))
	}
}

func (s *Service) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, planCatalogCacheKey).Err(); err != nil {
		s.log.Warn("plan catalog cache invalidation failed", zap.Error(err))
	}
}
