package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/formsink/formsink/internal/core"
)

// CreateSubmission appends a submission to the form's log. The identifier and
// creation timestamp are assigned here when unset, so the stored record is
// the authoritative one. Returns core.ErrFormNotFound when the referenced
// form does not exist.
func (s *Store) CreateSubmission(ctx context.Context, sub *core.Submission) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if sub == nil {
		return errors.New("submission is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureFormExists(ctx, sub.FormID); err != nil {
		return err
	}

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	fieldsJSON, err := json.Marshal(sub.Fields)
	if err != nil {
		return fmt.Errorf("encode submission fields: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, s.rebind(`
		INSERT INTO submissions (id, form_id, fields, remote_addr, user_agent, is_spam, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), sub.ID, sub.FormID, string(fieldsJSON), sub.RemoteAddr, sub.UserAgent, boolToInt(sub.IsSpam), sub.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("store submission: %w", err)
	}

	return nil
}

// ListSubmissions returns a form's submissions newest first. The seq column
// breaks timestamp ties in reverse insertion order, so listings stay stable
// under coarse timestamp resolution. Spam entries are excluded unless
// includeSpam is set.
func (s *Store) ListSubmissions(ctx context.Context, formID string, includeSpam bool) ([]core.Submission, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureFormExists(ctx, formID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, form_id, fields, remote_addr, user_agent, is_spam, created_at
		FROM submissions
		WHERE form_id = ?`
	if !includeSpam {
		query += ` AND is_spam = 0`
	}
	query += ` ORDER BY created_at DESC, seq DESC`

	rows, err := s.DB.QueryContext(ctx, s.rebind(query), formID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	subs := make([]core.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	return subs, nil
}

// CountSubmissions counts a form's submissions, optionally filtered by spam
// flag (nil means no filter) and by a trailing recency bound (nil means no
// bound). The recency cutoff is evaluated against the clock at call time.
func (s *Store) CountSubmissions(ctx context.Context, formID string, spamOnly *bool, since *time.Duration) (int, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureFormExists(ctx, formID); err != nil {
		return 0, err
	}

	query := `SELECT COUNT(*) FROM submissions WHERE form_id = ?`
	args := []any{formID}

	if spamOnly != nil {
		query += ` AND is_spam = ?`
		args = append(args, boolToInt(*spamOnly))
	}
	if since != nil {
		query += ` AND created_at >= ?`
		args = append(args, time.Now().UTC().Add(-*since).Unix())
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, s.rebind(query), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}

	return count, nil
}

func (s *Store) ensureFormExists(ctx context.Context, formID string) error {
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return core.ErrFormNotFound
	}

	var one int
	err := s.DB.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM forms WHERE id = ?`), formID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrFormNotFound
	}
	if err != nil {
		return fmt.Errorf("check form: %w", err)
	}
	return nil
}

func scanSubmission(rows *sql.Rows) (core.Submission, error) {
	var (
		sub        core.Submission
		fieldsJSON string
		remoteAddr sql.NullString
		userAgent  sql.NullString
		isSpam     int
		createdAt  int64
	)

	if err := rows.Scan(&sub.ID, &sub.FormID, &fieldsJSON, &remoteAddr, &userAgent, &isSpam, &createdAt); err != nil {
		return core.Submission{}, fmt.Errorf("scan submission: %w", err)
	}

	if fieldsJSON != "" {
		if err := json.Unmarshal([]byte(fieldsJSON), &sub.Fields); err != nil {
			return core.Submission{}, fmt.Errorf("decode submission fields: %w", err)
		}
	}

	sub.RemoteAddr = remoteAddr.String
	sub.UserAgent = userAgent.String
	sub.IsSpam = isSpam != 0
	sub.CreatedAt = time.Unix(createdAt, 0).UTC()

	return sub, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
