package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/stackbill/stackbill/internal/account/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("id = ?", userID).Take(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, user *domain.User) error {
	if user == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE users
		 SET email = ?, display_name = ?, country = ?, is_admin = ?, stripe_customer_id = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email,
		user.DisplayName,
		user.Country,
		user.IsAdmin,
		user.StripeCustomerID,
		user.UpdatedAt,
		user.ID,
	).Error
}
