// Package postgres owns the database handle and the single place where
// store-level error codes are interpreted. Handlers never sniff pq codes;
// stores call Classify and services translate the sentinel.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"tably/pkg/platform/sentinel"
)

// undefinedTable is the postgres error code raised when a relation has not
// been migrated yet. The API surfaces it as 503 missing_table so clients can
// tell "feature not provisioned" apart from a generic failure.
const undefinedTable = "42P01"

// Open connects to PostgreSQL and verifies the connection.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Classify wraps driver errors with the matching infrastructure sentinel.
// sql.ErrNoRows becomes ErrNotFound; undefined_table becomes ErrMissingTable.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case undefinedTable:
			return fmt.Errorf("%w: %s", sentinel.ErrMissingTable, pqErr.Message)
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", sentinel.ErrConflict, pqErr.Message)
		}
	}
	return err
}
