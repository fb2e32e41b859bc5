package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	StatusPaid    InvoiceStatus = "paid"
	StatusPending InvoiceStatus = "pending"
	StatusFailed  InvoiceStatus = "failed"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusFailed:
		return true
	}
	return false
}

type Invoice struct {
	ID              int64         `gorm:"column:id;primaryKey"`
	Number          string        `gorm:"column:number;uniqueIndex"`
	UserID          string        `gorm:"column:user_id;index"`
	PlanID          int64         `gorm:"column:plan_id"`
	PlanName        string        `gorm:"column:plan_name"`
	Amount          float64       `gorm:"column:amount"`
	Currency        string        `gorm:"column:currency"`
	Status          InvoiceStatus `gorm:"column:status"`
	PaymentIntentID string        `gorm:"column:payment_intent_id"`
	IssuedAt        time.Time     `gorm:"column:issued_at"`
	CreatedAt       time.Time     `gorm:"column:created_at"`
}

func (Invoice) TableName() string { return "invoices" }

type Response struct {
	ID       int64         `json:"id"`
	Number   string        `json:"invoiceNumber"`
	UserID   string        `json:"userId"`
	PlanID   int64         `json:"planId"`
	PlanName string        `json:"planName"`
	Amount   float64       `json:"amount"`
	Currency string        `json:"currency"`
	Status   InvoiceStatus `json:"status"`
	IssuedAt time.Time     `json:"issuedAt"`
}

type CreateRequest struct {
	UserID          string
	PlanID          int64
	PlanName        string
	Amount          float64
	Currency        string
	Status          InvoiceStatus
	PaymentIntentID string
}

// ListFilter narrows the admin invoice listing. Search matches the
// invoice number, user id, and plan name case-insensitively.
type ListFilter struct {
	UserID string
	Status InvoiceStatus
	Search string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	// CreateTx issues the invoice inside a transaction the caller
	// owns, so the invoice commits or rolls back with the caller's
	// other writes.
	CreateTx(ctx context.Context, tx *gorm.DB, req CreateRequest) (*Response, error)
	ListByUser(ctx context.Context, userID string) ([]Response, error)
	List(ctx context.Context, filter ListFilter) ([]Response, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Invoice, error)
}

var (
	ErrInvalidUser   = errors.New("invalid_user")
	ErrInvalidStatus = errors.New("invalid_invoice_status")
)
