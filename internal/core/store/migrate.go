package store

import (
	"context"
	"errors"
	"fmt"
)

var libsqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS forms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		owner_email TEXT NOT NULL,
		honeypot_field TEXT NOT NULL DEFAULT '_website',
		created_at INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS submissions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		form_id TEXT NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
		fields TEXT NOT NULL,
		remote_addr TEXT,
		user_agent TEXT,
		is_spam INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_form ON submissions(form_id, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_spam ON submissions(form_id, is_spam);`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS forms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		owner_email TEXT NOT NULL,
		honeypot_field TEXT NOT NULL DEFAULT '_website',
		created_at BIGINT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS submissions (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		form_id TEXT NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
		fields TEXT NOT NULL,
		remote_addr TEXT,
		user_agent TEXT,
		is_spam INTEGER NOT NULL DEFAULT 0,
		created_at BIGINT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_form ON submissions(form_id, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_spam ON submissions(form_id, is_spam);`,
}

// Migrate ensures the required database tables exist for the active driver.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	schema := libsqlSchema
	if s.driver == driverPostgres {
		schema = postgresSchema
	}

	for _, stmt := range schema {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	return nil
}
