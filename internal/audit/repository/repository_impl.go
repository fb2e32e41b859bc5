package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/stackbill/stackbill/internal/audit/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, log *domain.AuditLog) error {
	return db.WithContext(ctx).Create(log).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.AuditLog, error) {
	stmt := db.WithContext(ctx).Model(&domain.AuditLog{})
	if filter.ActorID != "" {
		stmt = stmt.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		stmt = stmt.Where("action = ?", filter.Action)
	}
	if filter.Entity != "" {
		stmt = stmt.Where("entity = ?", filter.Entity)
	}
	if !filter.Since.IsZero() {
		stmt = stmt.Where("created_at >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		stmt = stmt.Where("created_at < ?", filter.Until)
	}
	var items []domain.AuditLog
	if err := stmt.Order("created_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListForExport(ctx context.Context, db *gorm.DB, req domain.ExportRequest) ([]domain.AuditLog, error) {
	stmt := db.WithContext(ctx).Model(&domain.AuditLog{}).
		Where("created_at >= ? AND created_at < ?", req.StartDate, req.EndDate)
	if len(req.Actions) > 0 {
		stmt = stmt.Where("action IN ?", req.Actions)
	}
	var items []domain.AuditLog
	if err := stmt.Order("created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
