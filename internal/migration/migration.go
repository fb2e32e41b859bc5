package migration

import (
	"context"
	"errors"

	"gorm.io/gorm"

	accountdomain "github.com/stackbill/stackbill/internal/account/domain"
	auditdomain "github.com/stackbill/stackbill/internal/audit/domain"
	invoicedomain "github.com/stackbill/stackbill/internal/invoice/domain"
	paymentdomain "github.com/stackbill/stackbill/internal/payment/domain"
	plandomain "github.com/stackbill/stackbill/internal/plan/domain"
	subscriptiondomain "github.com/stackbill/stackbill/internal/subscription/domain"
	ticketdomain "github.com/stackbill/stackbill/internal/ticket/domain"
)

// RunMigrations brings the schema up to date. On postgres an advisory
// lock serializes concurrent migrator instances; sqlite runs
// single-writer anyway.
func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	if db.Dialector.Name() == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		ctx := context.Background()
		release, err := lockSchema(ctx, sqlDB)
		if err != nil {
			return err
		}
		defer func() {
			_ = release(ctx)
		}()
	}

	return db.AutoMigrate(
		&accountdomain.User{},
		&plandomain.Plan{},
		&plandomain.PlanFeatureRow{},
		&subscriptiondomain.UserPlan{},
		&paymentdomain.PaymentRecord{},
		&invoicedomain.Invoice{},
		&ticketdomain.Ticket{},
		&auditdomain.AuditLog{},
	)
}
