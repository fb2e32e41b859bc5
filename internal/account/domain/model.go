package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// User mirrors the identity provider's subject plus the portal-side
// attributes. The id is the external auth subject, not a local
// surrogate.
type User struct {
	ID               string    `gorm:"column:id;primaryKey"`
	Email            string    `gorm:"column:email"`
	DisplayName      string    `gorm:"column:display_name"`
	Country          string    `gorm:"column:country"`
	IsAdmin          bool      `gorm:"column:is_admin"`
	StripeCustomerID string    `gorm:"column:stripe_customer_id"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string { return "users" }

type Service interface {
	Get(ctx context.Context, userID string) (*User, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, userID string) (*User, error)
	Update(ctx context.Context, db *gorm.DB, user *User) error
}

var (
	ErrNotFound  = errors.New("user_not_found")
	ErrInvalidID = errors.New("invalid_user_id")
)
