package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, plan *Plan) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Plan, error)
	List(ctx context.Context, db *gorm.DB, filter ListRequest) ([]Plan, error)
	Update(ctx context.Context, db *gorm.DB, plan *Plan) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error

	FindFeatures(ctx context.Context, db *gorm.DB, planID int64) ([]PlanFeatureRow, error)
	InsertFeatures(ctx context.Context, db *gorm.DB, planID int64, texts []string) error
	DeleteFeatures(ctx context.Context, db *gorm.DB, planID int64, ids []int64) error
	UpdateFeatureText(ctx context.Context, db *gorm.DB, planID, featureID int64, text string) error

	CountSubscribers(ctx context.Context, db *gorm.DB, planID int64) (int64, error)
}
