package handlers

import (
	"crypto/hmac"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/formsink/formsink/internal/core"
	apperrors "github.com/formsink/formsink/internal/errors"
)

// createFormRequest is the payload for registering a form.
type createFormRequest struct {
	Name          string `json:"name"`
	OwnerEmail    string `json:"owner_email"`
	HoneypotField string `json:"honeypot_field"`
}

// CreateForm handles POST /v1/forms.
func (h *Handlers) CreateForm(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondWithError(w, r, apperrors.NewUnauthorizedError("admin token required"))
		return
	}

	var req createFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("invalid json body"))
		return
	}
	if strings.TrimSpace(req.OwnerEmail) == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("owner_email is required"))
		return
	}

	form := &core.Form{
		Name:          req.Name,
		OwnerEmail:    req.OwnerEmail,
		HoneypotField: req.HoneypotField,
	}
	if err := h.store.CreateForm(r.Context(), form); err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "form could not be stored"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(form)
}

// GetForm handles GET /v1/forms/{formID}.
func (h *Handlers) GetForm(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondWithError(w, r, apperrors.NewUnauthorizedError("admin token required"))
		return
	}

	form, err := h.store.GetForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		if errors.Is(err, core.ErrFormNotFound) {
			respondWithError(w, r, apperrors.NewNotFoundError("form not found"))
			return
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "form lookup failed"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(form)
}

// ListForms handles GET /v1/forms.
func (h *Handlers) ListForms(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondWithError(w, r, apperrors.NewUnauthorizedError("admin token required"))
		return
	}

	forms, err := h.store.ListForms(r.Context())
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "listing forms failed"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"forms": forms,
		"count": len(forms),
	})
}

// DeleteForm handles DELETE /v1/forms/{formID}. Deleting a form also deletes
// its submissions.
func (h *Handlers) DeleteForm(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondWithError(w, r, apperrors.NewUnauthorizedError("admin token required"))
		return
	}

	if err := h.store.DeleteForm(r.Context(), chi.URLParam(r, "formID")); err != nil {
		if errors.Is(err, core.ErrFormNotFound) {
			respondWithError(w, r, apperrors.NewNotFoundError("form not found"))
			return
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "form deletion failed"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorized checks the single shared-secret bearer token guarding the
// registry endpoints. An unset token disables them entirely.
func (h *Handlers) authorized(r *http.Request) bool {
	if h.adminToken == "" {
		return false
	}

	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}

	return hmac.Equal([]byte(token), []byte(h.adminToken))
}
