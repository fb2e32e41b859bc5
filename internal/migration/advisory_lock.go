package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// schemaLockKey serializes schema migrations across instances via
// pg_advisory_lock. The value is fnv32a("stackbill.schema"); any
// stable key works as long as every migrator agrees on it.
const schemaLockKey int64 = 2537357303

type releaseFunc func(ctx context.Context) error

// lockSchema takes the migration advisory lock without blocking. A
// held lock means another instance is migrating; the caller should
// fail fast rather than queue behind it.
func lockSchema(ctx context.Context, db *sql.DB) (releaseFunc, error) {
	if db == nil {
		return nil, errors.New("schema lock requires a database handle")
	}

	var acquired bool
	if err := db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", schemaLockKey).Scan(&acquired); err != nil {
		return nil, fmt.Errorf("take schema lock: %w", err)
	}
	if !acquired {
		return nil, errors.New("schema lock held by another migrator")
	}

	return func(ctx context.Context) error {
		var released bool
		if err := db.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", schemaLockKey).Scan(&released); err != nil {
			return fmt.Errorf("release schema lock: %w", err)
		}
		if !released {
			return errors.New("schema lock was not held by this session")
		}
		return nil
	}, nil
}
