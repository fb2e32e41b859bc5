package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *PaymentRecord) error
	FindByIntentID(ctx context.Context, db *gorm.DB, paymentIntentID string) (*PaymentRecord, error)
	FindLatestByProfile(ctx context.Context, db *gorm.DB, userProfileID string) (*PaymentRecord, error)
}
