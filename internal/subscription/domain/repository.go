package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, plan *UserPlan) error
	Update(ctx context.Context, db *gorm.DB, plan *UserPlan) error
	FindCurrentByUser(ctx context.Context, db *gorm.DB, userID string) (*UserPlan, error)
	FindByUserAndPlan(ctx context.Context, db *gorm.DB, userID string, planID int64) (*UserPlan, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]UserPlan, error)
}
