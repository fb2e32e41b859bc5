package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/stackbill/stackbill/internal/invoice/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Invoice, error) {
	stmt := db.WithContext(ctx).Model(&domain.Invoice{})
	if filter.UserID != "" {
		stmt = stmt.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		stmt = stmt.Where(
			"LOWER(number) LIKE ? OR LOWER(user_id) LIKE ? OR LOWER(plan_name) LIKE ?",
			like, like, like,
		)
	}

	var items []domain.Invoice
	if err := stmt.Order("issued_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
