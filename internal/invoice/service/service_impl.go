package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stackbill/stackbill/internal/clock"
	"github.com/stackbill/stackbill/internal/invoice/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	return s.CreateTx(ctx, s.db, req)
}

func (s *Service) CreateTx(ctx context.Context, tx *gorm.DB, req domain.CreateRequest) (*domain.Response, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	status := req.Status
	if status == "" {
		status = domain.StatusPaid
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	now := s.clock.Now(ctx)
	id := s.genID.Generate().Int64()
	inv := &domain.Invoice{
		ID:              id,
		Number:          fmt.Sprintf("INV-%d", id),
		UserID:          userID,
		PlanID:          req.PlanID,
		PlanName:        req.PlanName,
		Amount:          req.Amount,
		Currency:        strings.ToUpper(req.Currency),
		Status:          status,
		PaymentIntentID: req.PaymentIntentID,
		IssuedAt:        now,
		CreatedAt:       now,
	}
	if err := s.repo.Insert(ctx, tx, inv); err != nil {
		return nil, err
	}

	s.log.Info("invoice issued",
		zap.String("number", inv.Number),
		zap.String("user_id", userID),
		zap.Int64("plan_id", req.PlanID),
	)
	resp := toResponse(inv)
	return &resp, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Response, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	return s.list(ctx, domain.ListFilter{UserID: userID})
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Response, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.list(ctx, filter)
}

func (s *Service) list(ctx context.Context, filter domain.ListFilter) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Response, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	return out, nil
}

func toResponse(inv *domain.Invoice) domain.Response {
	return domain.Response{
		ID:       inv.ID,
		Number:   inv.Number,
		UserID:   inv.UserID,
		PlanID:   inv.PlanID,
		PlanName: inv.PlanName,
		Amount:   inv.Amount,
		Currency: inv.Currency,
		Status:   inv.Status,
		IssuedAt: inv.IssuedAt,
	}
}
