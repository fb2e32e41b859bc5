package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/stackbill/stackbill/internal/plan/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).Create(plan).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Plan, error) {
	var p domain.Plan
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Plan, error) {
	stmt := db.WithContext(ctx).Model(&domain.Plan{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	var items []domain.Plan
	if err := stmt.Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	if plan == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE plans
		 SET name = ?, slug = ?, subtitle = ?, description = ?, monthly_price = ?, annual_price = ?, is_popular = ?, status = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		plan.Name,
		plan.Slug,
		plan.Subtitle,
		plan.Description,
		plan.MonthlyPrice,
		plan.AnnualPrice,
		plan.IsPopular,
		plan.Status,
		plan.Metadata,
		plan.UpdatedAt,
		plan.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	if err := db.WithContext(ctx).Exec(`DELETE FROM plan_features WHERE plan_id = ?`, id).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(`DELETE FROM plans WHERE id = ?`, id).Error
}

func (r *repo) FindFeatures(ctx context.Context, db *gorm.DB, planID int64) ([]domain.PlanFeatureRow, error) {
	var rows []domain.PlanFeatureRow
	err := db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) InsertFeatures(ctx context.Context, db *gorm.DB, planID int64, texts []string) error {
	if len(texts) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]domain.PlanFeatureRow, 0, len(texts))
	for _, text := range texts {
		rows = append(rows, domain.PlanFeatureRow{
			PlanID:      planID,
			Description: text,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return db.WithContext(ctx).Create(&rows).Error
}

func (r *repo) DeleteFeatures(ctx context.Context, db *gorm.DB, planID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Exec(`DELETE FROM plan_features WHERE plan_id = ? AND id IN ?`, planID, ids).Error
}

func (r *repo) UpdateFeatureText(ctx context.Context, db *gorm.DB, planID, featureID int64, text string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE plan_features SET description = ?, updated_at = ? WHERE plan_id = ? AND id = ?`,
		text,
		time.Now().UTC(),
		planID,
		featureID,
	).Error
}

func (r *repo) CountSubscribers(ctx context.Context, db *gorm.DB, planID int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM user_plans WHERE plan_id = ? AND status = 'active'`,
		planID,
	).Scan(&count).Error
	return count, err
}
