package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/formsink/formsink/internal/core"
	apperrors "github.com/formsink/formsink/internal/errors"
)

// maxSubmissionBody bounds inbound submission payloads at 1 MiB.
const maxSubmissionBody = 1 << 20

// SubmitResponse is the uniform acknowledgment for accepted submissions.
// Spam and legitimate submissions share this exact shape: the response is
// visible to the submitting bot, and a distinguishable reply would let it
// adapt.
type SubmitResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// Submit handles POST /v1/forms/{formID}/submissions.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	fields, err := decodeSubmissionFields(r)
	if err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	result := h.pipeline.Ingest(r.Context(), core.IngestRequest{
		FormID:     formID,
		Fields:     fields,
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})

	switch result.Outcome {
	case core.OutcomeAccepted:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(SubmitResponse{Success: true, ID: result.Submission.ID})
	case core.OutcomeRateLimited:
		respondWithError(w, r, apperrors.NewRateLimitedError("too many submissions, slow down"))
	case core.OutcomeNotFound:
		respondWithError(w, r, apperrors.NewNotFoundError("form not found"))
	default:
		respondWithError(w, r, apperrors.NewInternalError("submission could not be stored"))
	}
}

// ListSubmissions handles GET /v1/forms/{formID}/submissions.
func (h *Handlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	includeSpam := parseBoolParam(r.URL.Query().Get("include_spam"))

	subs, err := h.store.ListSubmissions(r.Context(), formID, includeSpam)
	if err != nil {
		if errors.Is(err, core.ErrFormNotFound) {
			respondWithError(w, r, apperrors.NewNotFoundError("form not found"))
			return
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "listing submissions failed"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"submissions": subs,
		"count":       len(subs),
	})
}

// Stats handles GET /v1/forms/{formID}/stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	stats, err := h.stats.Stats(r.Context(), formID)
	if err != nil {
		if errors.Is(err, core.ErrFormNotFound) {
			respondWithError(w, r, apperrors.NewNotFoundError("form not found"))
			return
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "computing stats failed"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

// decodeSubmissionFields flattens a JSON object or a form-encoded body into a
// string map. Field content is caller-controlled and opaque; no validation
// beyond the honeypot check happens downstream.
func decodeSubmissionFields(r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxSubmissionBody)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid json body: %w", err)
		}

		fields := make(map[string]string, len(raw))
		for name, value := range raw {
			fields[name] = stringifyField(value)
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}

	fields := make(map[string]string, len(r.PostForm))
	for name, values := range r.PostForm {
		if len(values) > 0 {
			fields[name] = values[0]
		}
	}
	return fields, nil
}

// stringifyField renders a JSON value as a string. Scalars print naturally;
// nested structures keep their JSON form.
func stringifyField(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool, float64:
		return fmt.Sprint(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

func parseBoolParam(value string) bool {
	switch strings.ToLower(value) {
	case "1", "t", "true", "y", "yes":
		return true
	default:
		return false
	}
}
