// Package notify emits best-effort submission alerts. Delivery failures are
// logged and swallowed; by the time a dispatcher runs, the submission is
// already committed, and durability wins over alerting.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/formsink/formsink/internal/core"
)

// LogDispatcher writes the alert to the log. Used when no SMTP relay is
// configured.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher returns a dispatcher that logs alerts instead of sending
// them.
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogDispatcher{logger: logger}
}

// Dispatch implements core.Notifier.
func (d *LogDispatcher) Dispatch(_ context.Context, recipient, formLabel string, sub core.Submission) {
	d.logger.Info("new submission",
		zap.String("recipient", recipient),
		zap.String("form", formLabel),
		zap.String("submission_id", sub.ID),
		zap.Bool("spam", sub.IsSpam),
		zap.String("summary", summarize(formLabel, sub)))
}

// summarize renders the human-readable alert body: the form label, the
// submitted fields in stable order, and the request origin.
func summarize(formLabel string, sub core.Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Form: %s\n", formLabel)
	fmt.Fprintf(&b, "Submission: %s\n", sub.ID)
	if sub.IsSpam {
		b.WriteString("Flagged as spam (honeypot triggered)\n")
	}
	if sub.RemoteAddr != "" {
		fmt.Fprintf(&b, "IP: %s\n", sub.RemoteAddr)
	}
	if sub.UserAgent != "" {
		fmt.Fprintf(&b, "Client: %s\n", sub.UserAgent)
	}

	names := make([]string, 0, len(sub.Fields))
	for name := range sub.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("\n")
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\n", name, sub.Fields[name])
	}

	return b.String()
}
