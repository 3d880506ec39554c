package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/formsink/formsink/internal/core"
)

// CreateForm registers a new form, assigning an identifier and creation
// timestamp when unset.
func (s *Store) CreateForm(ctx context.Context, form *core.Form) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if form == nil {
		return errors.New("form is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(form.OwnerEmail) == "" {
		return errors.New("form owner email is required")
	}
	if form.ID == "" {
		form.ID = uuid.NewString()
	}
	if form.HoneypotField == "" {
		form.HoneypotField = core.DefaultHoneypotField
	}
	if form.CreatedAt.IsZero() {
		form.CreatedAt = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx, s.rebind(`
		INSERT INTO forms (id, name, owner_email, honeypot_field, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), form.ID, form.Name, form.OwnerEmail, form.HoneypotField, form.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("store form: %w", err)
	}

	return nil
}

// GetForm resolves a form by identifier. Returns core.ErrFormNotFound when
// absent.
func (s *Store) GetForm(ctx context.Context, id string) (*core.Form, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, core.ErrFormNotFound
	}

	var (
		form      core.Form
		createdAt int64
	)

	row := s.DB.QueryRowContext(ctx, s.rebind(`
		SELECT id, name, owner_email, honeypot_field, created_at
		FROM forms
		WHERE id = ?
	`), id)

	if err := row.Scan(&form.ID, &form.Name, &form.OwnerEmail, &form.HoneypotField, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrFormNotFound
		}
		return nil, fmt.Errorf("fetch form: %w", err)
	}

	form.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &form, nil
}

// ListForms returns all registered forms, newest first.
func (s *Store) ListForms(ctx context.Context) ([]core.Form, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, owner_email, honeypot_field, created_at
		FROM forms
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	forms := make([]core.Form, 0)
	for rows.Next() {
		var (
			form      core.Form
			createdAt int64
		)
		if err := rows.Scan(&form.ID, &form.Name, &form.OwnerEmail, &form.HoneypotField, &createdAt); err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		form.CreatedAt = time.Unix(createdAt, 0).UTC()
		forms = append(forms, form)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}

	return forms, nil
}

// DeleteForm removes a form and all of its submissions in one transaction.
// Returns core.ErrFormNotFound when the form does not exist.
func (s *Store) DeleteForm(ctx context.Context, id string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	// Explicit cascade keeps both backends honest regardless of foreign-key
	// enforcement settings.
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM submissions WHERE form_id = ?`), id); err != nil {
		return fmt.Errorf("delete form submissions: %w", err)
	}

	result, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM forms WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	if affected == 0 {
		return core.ErrFormNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete form: %w", err)
	}

	return nil
}
