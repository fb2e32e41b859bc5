package domain

import (
	"time"

	"gorm.io/datatypes"
)

type PlanStatus string

const (
	StatusActive   PlanStatus = "active"
	StatusInactive PlanStatus = "inactive"
	StatusDraft    PlanStatus = "draft"
)

func (s PlanStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDraft:
		return true
	}
	return false
}

type Plan struct {
	ID           int64              `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string             `gorm:"column:name"`
	Slug         string             `gorm:"column:slug;index"`
	Subtitle     string             `gorm:"column:subtitle"`
	Description  string             `gorm:"column:description"`
	MonthlyPrice float64            `gorm:"column:monthly_price"`
	AnnualPrice  float64            `gorm:"column:annual_price"`
	IsPopular    bool               `gorm:"column:is_popular"`
	Status       PlanStatus         `gorm:"column:status"`
	Metadata     datatypes.JSONMap  `gorm:"column:metadata"`
	CreatedAt    time.Time          `gorm:"column:created_at"`
	UpdatedAt    time.Time          `gorm:"column:updated_at"`
}

func (Plan) TableName() string { return "plans" }

// PlanFeatureRow is a single bullet-point capability persisted against a plan.
type PlanFeatureRow struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PlanID      int64     `gorm:"column:plan_id;index"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (PlanFeatureRow) TableName() string { return "plan_features" }

// Feature is the in-memory editing representation of a plan feature.
//
// A feature with New=true always has ID=nil; a feature loaded from the
// backend carries its persisted id and New=false. The one exception is a
// feature whose backend representation was a bare string: it comes back
// with ID=nil and New=false, and can never be matched by id for update
// or delete.
type Feature struct {
	ID      *int64 `json:"id"`
	Text    string `json:"text"`
	Deleted bool   `json:"isDeleted"`
	New     bool   `json:"isNew"`
}
