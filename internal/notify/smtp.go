package notify

import (
	"context"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/jordan-wright/email"
	"go.uber.org/zap"

	"github.com/formsink/formsink/internal/config"
	"github.com/formsink/formsink/internal/core"
)

// SMTPDispatcher delivers submission alerts over SMTP.
type SMTPDispatcher struct {
	cfg    config.NotifyConfig
	logger *zap.Logger

	// send is swappable in tests.
	send func(e *email.Email, smtpCfg config.SMTPConfig) error
}

// NewSMTPDispatcher returns a dispatcher delivering through the configured
// relay.
func NewSMTPDispatcher(cfg config.NotifyConfig, logger *zap.Logger) *SMTPDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPDispatcher{
		cfg:    cfg,
		logger: logger,
		send:   sendSMTP,
	}
}

// Dispatch implements core.Notifier. Errors never escape: composition or
// delivery failures are logged at warn and dropped.
func (d *SMTPDispatcher) Dispatch(_ context.Context, recipient, formLabel string, sub core.Submission) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Warn("notification dispatch panicked",
				zap.Any("panic", rec),
				zap.String("submission_id", sub.ID))
		}
	}()

	if strings.TrimSpace(recipient) == "" {
		d.logger.Warn("notification skipped: form has no owner address",
			zap.String("form", formLabel),
			zap.String("submission_id", sub.ID))
		return
	}

	subject := strings.TrimSpace(d.cfg.SubjectPrefix + " New submission: " + formLabel)

	e := email.NewEmail()
	e.From = d.cfg.From
	e.To = []string{recipient}
	e.Subject = subject
	e.Text = []byte(summarize(formLabel, sub))

	if err := d.send(e, d.cfg.SMTP); err != nil {
		d.logger.Warn("notification delivery failed",
			zap.String("recipient", recipient),
			zap.String("form", formLabel),
			zap.String("submission_id", sub.ID),
			zap.Error(err))
		return
	}

	d.logger.Debug("notification delivered",
		zap.String("recipient", recipient),
		zap.String("submission_id", sub.ID))
}

func sendSMTP(e *email.Email, cfg config.SMTPConfig) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	if cfg.SSL {
		return e.SendWithTLS(addr, auth, nil)
	}
	return e.Send(addr, auth)
}
