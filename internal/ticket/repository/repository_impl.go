package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/stackbill/stackbill/internal/ticket/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, ticket *domain.Ticket) error {
	return db.WithContext(ctx).Create(ticket).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Ticket, error) {
	var t domain.Ticket
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&t).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Ticket, error) {
	stmt := db.WithContext(ctx).Model(&domain.Ticket{})
	if filter.UserID != "" {
		stmt = stmt.Where("user_id = ?", filter.UserID)
	}
	if filter.TicketID != 0 {
		stmt = stmt.Where("id = ?", filter.TicketID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if subject := strings.TrimSpace(filter.Subject); subject != "" {
		stmt = stmt.Where("LOWER(subject) LIKE ?", "%"+strings.ToLower(subject)+"%")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		stmt = stmt.Where(
			"LOWER(subject) LIKE ? OR LOWER(message) LIKE ? OR LOWER(user_id) LIKE ? OR CAST(id AS TEXT) LIKE ?",
			like, like, like, like,
		)
	}
	var items []domain.Ticket
	if err := stmt.Order("created_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, ticket *domain.Ticket) error {
	if ticket == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE support_tickets SET status = ?, updated_at = ? WHERE id = ?`,
		ticket.Status,
		ticket.UpdatedAt,
		ticket.ID,
	).Error
}
