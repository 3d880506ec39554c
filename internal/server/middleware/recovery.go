package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/formsink/formsink/internal/observability"
)

// Recovery converts handler panics into structured 500 responses.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				envelope := errors.NewErrorEnvelope("INTERNAL_ERROR", fmt.Sprintf("panic: %v", rec)).
					WithCorrelationID(GetRequestID(r.Context()))
				envelope, _ = envelope.WithSeverity(errors.SeverityCritical)

				if logger := observability.ServerLogger; logger != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("request_id", envelope.CorrelationID),
						zap.String("stack", string(debug.Stack())))
				}

				writePanicResponse(w, envelope)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// writePanicResponse writes the 500 directly instead of going through the
// central responder, which lives in a package that imports this one.
func writePanicResponse(w http.ResponseWriter, envelope *errors.ErrorEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":       envelope.Code,
			"message":    "internal server error",
			"request_id": envelope.CorrelationID,
		},
	})
}
