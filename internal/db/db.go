// Package db provides PostgreSQL storage for students, companies and applications.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/placement-cell/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool

	// beforePlaceStudent runs inside the application transition transaction just
	// before the student row is marked placed. Tests use it to inject failures.
	beforePlaceStudent func(ctx context.Context) error
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// withTx runs fn inside a transaction. Commit and rollback use a context that
// survives cancellation of ctx, so an abandoned request never leaves the unit
// half applied. Errors that are not domain errors come back as *types.ErrAtomicity.
func (db *DB) withTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return &types.ErrAtomicity{Op: op, Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	finish := context.WithoutCancel(ctx)
	defer func() { _ = tx.Rollback(finish) }()

	if err := fn(tx); err != nil {
		if isDomainError(err) {
			return err
		}
		return &types.ErrAtomicity{Op: op, Err: err}
	}

	if err := tx.Commit(finish); err != nil {
		return &types.ErrAtomicity{Op: op, Err: fmt.Errorf("failed to commit transaction: %w", err)}
	}
	return nil
}

func isDomainError(err error) bool {
	var (
		notFound *types.ErrNotFound
		conflict *types.ErrConflict
		invalid  *types.ErrInvalidState
		atomic   *types.ErrAtomicity
	)
	return errors.As(err, &notFound) || errors.As(err, &conflict) ||
		errors.As(err, &invalid) || errors.As(err, &atomic)
}

// isUniqueViolation reports whether err is a Postgres unique_violation,
// optionally restricted to one constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// isForeignKeyViolation reports whether err is a Postgres foreign_key_violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
