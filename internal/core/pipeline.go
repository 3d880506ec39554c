package core

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// IngestRequest is one decoded inbound submission, produced by the transport
// layer.
type IngestRequest struct {
	FormID     string
	Fields     map[string]string
	RemoteAddr string
	UserAgent  string
}

// IngestResult reports the outcome of one ingestion attempt. Submission is
// set only for OutcomeAccepted.
type IngestResult struct {
	Outcome    Outcome
	Submission *Submission
}

// Pipeline runs the fixed ingestion sequence for every inbound submission:
// rate-limit admission, form resolution, spam classification, durable write,
// then a detached best-effort notification.
type Pipeline struct {
	limiter  *RateLimiter
	registry FormRegistry
	store    SubmissionStore
	notifier Notifier
	logger   *zap.Logger
}

// NewPipeline wires the pipeline's collaborators. notifier may be nil, in
// which case no alerts are emitted.
func NewPipeline(limiter *RateLimiter, registry FormRegistry, store SubmissionStore, notifier Notifier, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		limiter:  limiter,
		registry: registry,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Ingest processes one submission attempt. The rate limiter is consulted
// before the form lookup, so floods against unknown form IDs still burn
// window slots for that key. Spam submissions are stored and acknowledged
// exactly like legitimate ones; the caller-visible result never reveals the
// classification.
func (p *Pipeline) Ingest(ctx context.Context, req IngestRequest) IngestResult {
	if !p.limiter.Admit(req.FormID) {
		p.logger.Info("submission rate limited", zap.String("form_id", req.FormID))
		return IngestResult{Outcome: OutcomeRateLimited}
	}

	form, err := p.registry.GetForm(ctx, req.FormID)
	if err != nil {
		if errors.Is(err, ErrFormNotFound) {
			return IngestResult{Outcome: OutcomeNotFound}
		}
		p.logger.Error("form lookup failed",
			zap.String("form_id", req.FormID),
			zap.Error(err))
		return IngestResult{Outcome: OutcomeInternalError}
	}

	sub := &Submission{
		FormID:     form.ID,
		Fields:     req.Fields,
		RemoteAddr: req.RemoteAddr,
		UserAgent:  req.UserAgent,
		IsSpam:     ClassifySpam(form.Honeypot(), req.Fields),
	}

	if err := p.store.CreateSubmission(ctx, sub); err != nil {
		// The form can disappear between lookup and write.
		if errors.Is(err, ErrFormNotFound) {
			return IngestResult{Outcome: OutcomeNotFound}
		}
		p.logger.Error("submission write failed",
			zap.String("form_id", form.ID),
			zap.Error(err))
		return IngestResult{Outcome: OutcomeInternalError}
	}

	if p.notifier != nil {
		// The write is already committed; delivery runs detached on a fresh
		// context so a client disconnect cannot cancel it, and its outcome is
		// never awaited.
		stored := *sub
		go p.notifier.Dispatch(context.Background(), form.OwnerEmail, form.Label(), stored)
	}

	return IngestResult{Outcome: OutcomeAccepted, Submission: sub}
}
