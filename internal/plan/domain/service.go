package domain

import (
	"context"
	"errors"
)

type Service interface {
	Save(ctx context.Context, req SaveRequest) (*SaveOutcome, error)
	Get(ctx context.Context, id int64) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status PlanStatus) (*Response, error)
	SubscriberCount(ctx context.Context, id int64) (int64, error)
}

// SaveRequest is the wire contract for saving a plan. PlanID 0 means
// create; any other value edits the existing plan. The field casing is
// part of the contract and is consumed as-is by the portal frontend.
type SaveRequest struct {
	PlanID            int64           `json:"planID"`
	PlanTitle         string          `json:"PlanTitle"`
	PlanSubtitle      string          `json:"PlanSubtitle"`
	PlanDescription   string          `json:"PlanDescription"`
	IsPopular         bool            `json:"IsPopular"`
	AmountPerMonth    float64         `json:"AmountPerMonth"`
	AmountPerYear     float64         `json:"AmountPerYear"`
	AddedFeatures     []string        `json:"addedFeatures"`
	DeletedFeatureIDs []int64         `json:"deletedFeatureIds"`
	UpdatedFeatures   []FeatureUpdate `json:"updatedFeatures"`
	// Metadata holds free-form labels carried on the plan (badge text,
	// campaign tags). nil leaves existing metadata untouched; an empty
	// map clears it.
	Metadata map[string]any `json:"metadata,omitempty"`
}

type FeatureUpdate struct {
	FeatureID   int64  `json:"featureId"`
	Description string `json:"Description"`
}

// SaveOutcome reports a completed save. Created distinguishes the
// "created" vs "updated" phrasing shown to the user.
type SaveOutcome struct {
	Created bool      `json:"created"`
	Message string    `json:"message"`
	Plan    *Response `json:"plan"`
}

type ListRequest struct {
	Status PlanStatus
	Search string
}

type Response struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Slug         string            `json:"slug"`
	Subtitle     string            `json:"subtitle"`
	Description  string            `json:"description"`
	MonthlyPrice float64           `json:"monthlyPrice"`
	AnnualPrice  float64           `json:"annualPrice"`
	IsPopular    bool              `json:"isPopular"`
	Status       PlanStatus        `json:"status"`
	Metadata     map[string]any    `json:"metadata,omitempty"`
	Features     []FeatureResponse `json:"features"`
}

type FeatureResponse struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

var (
	ErrNotFound       = errors.New("plan_not_found")
	ErrInvalidID      = errors.New("invalid_plan_id")
	ErrInvalidStatus  = errors.New("invalid_plan_status")
	ErrHasSubscribers = errors.New("plan_has_subscribers")
)
