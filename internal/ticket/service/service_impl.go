package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stackbill/stackbill/internal/clock"
	"github.com/stackbill/stackbill/internal/ticket/domain"
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
		log:   p.Log.Named("ticket.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	if errs := req.Validate(); errs != nil {
		return nil, errs
	}

	now := s.clock.Now(ctx)
	ticket := &domain.Ticket{
		ID:        s.genID.Generate().Int64(),
		UserID:    userID,
		Subject:   strings.TrimSpace(req.Subject),
		Category:  strings.TrimSpace(req.Category),
		Message:   strings.TrimSpace(req.Message),
		Status:    domain.StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, ticket); err != nil {
		return nil, err
	}

	s.log.Info("support ticket created",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("user_id", userID),
		zap.String("category", ticket.Category),
	)
	resp := ticket.Response()
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Response, error) {
	ticket, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, domain.ErrNotFound
	}
	resp := ticket.Response()
	return &resp, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Response, error) {
	tickets, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Response, 0, len(tickets))
	for i := range tickets {
		out = append(out, tickets[i].Response())
	}
	return out, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Response, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	return s.List(ctx, domain.ListFilter{UserID: userID})
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) (*domain.Response, error) {
	switch status {
	case domain.StatusOpen, domain.StatusInProgress, domain.StatusResolved, domain.StatusClosed:
	default:
		return nil, domain.ErrInvalidStatus
	}
	ticket, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, domain.ErrNotFound
	}

	ticket.Status = status
	ticket.UpdatedAt = s.clock.Now(ctx)
	if err := s.repo.UpdateStatus(ctx, s.db, ticket); err != nil {
		return nil, err
	}

	s.log.Info("support ticket status changed",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("status", string(status)),
	)
	resp := ticket.Response()
	return &resp, nil
}
