package core

import (
	"context"
	"errors"
	"time"
)

// DefaultHoneypotField is the honeypot field name used when a form does not
// configure its own.
const DefaultHoneypotField = "_website"

// ErrFormNotFound is returned by the form registry and submission store when
// the referenced form does not exist.
var ErrFormNotFound = errors.New("form not found")

// Form is a registered submission target. Forms are owned by the registry;
// the ingestion pipeline only reads them.
type Form struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	OwnerEmail    string    `json:"owner_email"`
	HoneypotField string    `json:"honeypot_field"`
	CreatedAt     time.Time `json:"created_at"`
}

// Honeypot returns the configured honeypot field name, falling back to the
// default when unset.
func (f Form) Honeypot() string {
	if f.HoneypotField == "" {
		return DefaultHoneypotField
	}
	return f.HoneypotField
}

// Label returns the human-facing name used in notifications and listings.
func (f Form) Label() string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

// Submission is one recorded instance of data sent to a form. Submissions are
// created exactly once by the ingestion pipeline and never modified.
type Submission struct {
	ID         string            `json:"id"`
	FormID     string            `json:"form_id"`
	Fields     map[string]string `json:"fields"`
	RemoteAddr string            `json:"remote_addr,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	IsSpam     bool              `json:"is_spam"`
	CreatedAt  time.Time         `json:"created_at"`
}

// FormStats is the aggregate view rendered on dashboards.
type FormStats struct {
	Total       int `json:"total"`
	SpamCount   int `json:"spam_count"`
	RecentCount int `json:"recent_count"`
}

// Outcome is the caller-visible result of one ingestion attempt.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeRateLimited
	OutcomeNotFound
	OutcomeInternalError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeInternalError:
		return "internal_error"
	default:
		return "unknown"
	}
}

// FormRegistry resolves forms by identifier. GetForm returns ErrFormNotFound
// when no form exists under the given identifier.
type FormRegistry interface {
	GetForm(ctx context.Context, id string) (*Form, error)
}

// SubmissionStore is the durable submission log consumed by the ingestion
// pipeline and the stats engine.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, sub *Submission) error
	CountSubmissions(ctx context.Context, formID string, spamOnly *bool, since *time.Duration) (int, error)
}

// Notifier emits a best-effort alert for a stored submission. Implementations
// swallow their own errors; the pipeline never inspects the result.
type Notifier interface {
	Dispatch(ctx context.Context, recipient, formLabel string, sub Submission)
}
