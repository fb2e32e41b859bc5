package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/stackbill/stackbill/internal/account"
	"github.com/stackbill/stackbill/internal/audit"
	"github.com/stackbill/stackbill/internal/clock"
	"github.com/stackbill/stackbill/internal/config"
	"github.com/stackbill/stackbill/internal/invoice"
	"github.com/stackbill/stackbill/internal/migration"
	"github.com/stackbill/stackbill/internal/observability"
	"github.com/stackbill/stackbill/internal/payment"
	"github.com/stackbill/stackbill/internal/plan"
	"github.com/stackbill/stackbill/internal/redis"
	"github.com/stackbill/stackbill/internal/seed"
	"github.com/stackbill/stackbill/internal/server"
	"github.com/stackbill/stackbill/internal/subscription"
	"github.com/stackbill/stackbill/internal/ticket"
	"github.com/stackbill/stackbill/pkg/db"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "stackbill",
		Short:   "StackBill billing portal CLI",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd(), newServeCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(fx.Invoke(func(db *gorm.DB) error {
				return migration.RunMigrations(db)
			}))
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the default plan catalog and admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(fx.Invoke(func(db *gorm.DB) error {
				return seed.EnsureDefaults(db)
			}))
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations and seeds, then start the portal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runOnce(fx.Invoke(func(db *gorm.DB) error {
				if err := migration.RunMigrations(db); err != nil {
					return err
				}
				return seed.EnsureDefaults(db)
			}))
			if err != nil {
				return err
			}
			runServe()
			return nil
		},
	}
}

// runOnce starts a minimal fx app, runs the invoked work during
// startup, and tears the app down again.
func runOnce(work fx.Option) error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		work,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	return app.Stop(context.Background())
}

func runServe() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		account.Module,
		plan.Module,
		subscription.Module,
		payment.Module,
		invoice.Module,
		ticket.Module,
		audit.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
