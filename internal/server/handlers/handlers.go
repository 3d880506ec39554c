// Package handlers contains the HTTP handlers for the formsink API. The
// handlers decode transport payloads, run the core components, and encode
// outcomes; all policy lives in internal/core.
package handlers

import (
	"context"
	"net/http"

	"github.com/formsink/formsink/internal/core"
	apperrors "github.com/formsink/formsink/internal/errors"
)

// Ingester runs the submission ingestion pipeline.
type Ingester interface {
	Ingest(ctx context.Context, req core.IngestRequest) core.IngestResult
}

// FormStore is the slice of the store the handlers read and write.
type FormStore interface {
	CreateForm(ctx context.Context, form *core.Form) error
	GetForm(ctx context.Context, id string) (*core.Form, error)
	ListForms(ctx context.Context) ([]core.Form, error)
	DeleteForm(ctx context.Context, id string) error
	ListSubmissions(ctx context.Context, formID string, includeSpam bool) ([]core.Submission, error)
}

// StatsProvider computes aggregate counts for the dashboard endpoints.
type StatsProvider interface {
	Stats(ctx context.Context, formID string) (core.FormStats, error)
}

// Handlers bundles the API handlers and their collaborators.
type Handlers struct {
	pipeline   Ingester
	store      FormStore
	stats      StatsProvider
	adminToken string
}

// New wires the handler set.
func New(pipeline Ingester, store FormStore, stats StatsProvider, adminToken string) *Handlers {
	return &Handlers{
		pipeline:   pipeline,
		store:      store,
		stats:      stats,
		adminToken: adminToken,
	}
}

var defaultHTTPErrorResponder = func(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}

var httpErrorResponder = defaultHTTPErrorResponder

// SetHTTPErrorResponder allows the server package to inject the centralized
// error handler.
func SetHTTPErrorResponder(responder func(http.ResponseWriter, *http.Request, error)) {
	if responder == nil {
		httpErrorResponder = defaultHTTPErrorResponder
		return
	}
	httpErrorResponder = responder
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	httpErrorResponder(w, r, err)
}
