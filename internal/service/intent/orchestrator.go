package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
	"github.com/seu-repo/vox-assistant/internal/observability/telemetry"
)

// SingleExecutor runs one intent with its audit trail.
type SingleExecutor interface {
	Execute(ctx context.Context, userID, sessionID, transcript string, in domain.Intent) (domain.ExecutionOutcome, error)
}

// Orchestrator runs the intents of one utterance strictly in order. A failing
// step never stops the steps after it.
type Orchestrator struct {
	executor SingleExecutor
	log      *zap.Logger
}

func NewOrchestrator(executor SingleExecutor, log *zap.Logger) *Orchestrator {
	return &Orchestrator{executor: executor, log: log}
}

func (o *Orchestrator) ExecuteAll(ctx context.Context, userID, sessionID, transcript string, intents []domain.Intent) (*domain.AggregatedOutcome, error) {
	runnable := make([]domain.Intent, 0, len(intents))
	for _, in := range intents {
		if strings.TrimSpace(in.Kind.String()) != "" {
			runnable = append(runnable, in)
		}
	}
	if len(runnable) == 0 {
		return nil, domain.NewValidationError("intents", "no intent with a kind to execute")
	}

	ctx, span := telemetry.Tracer().Start(ctx, "intent.execute_batch", trace.WithAttributes(
		attribute.Int("steps", len(runnable)),
		attribute.String("user_id", userID),
	))
	defer span.End()

	agg := &domain.AggregatedOutcome{Steps: make([]domain.StepResult, 0, len(runnable))}
	for i, in := range runnable {
		out := o.step(ctx, userID, sessionID, transcript, in)
		o.log.Debug("batch step finished",
			zap.Int("step", i+1),
			zap.String("intent", in.Kind.String()),
			zap.Bool("success", out.Success),
		)
		agg.Steps = append(agg.Steps, domain.StepResult{Kind: in.Kind, Outcome: out})
	}

	summarize(agg)
	result := "success"
	if !agg.Success {
		result = "partial"
		if agg.Completed() == 0 {
			result = "failure"
		}
	}
	telemetry.BatchesTotal.WithLabelValues(result).Inc()
	return agg, nil
}

func (o *Orchestrator) step(ctx context.Context, userID, sessionID, transcript string, in domain.Intent) (out domain.ExecutionOutcome) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("batch step panicked", zap.String("intent", in.Kind.String()), zap.Any("panic", r))
			out = domain.Failed(panicMessage)
		}
	}()

	out, err := o.executor.Execute(ctx, userID, sessionID, transcript, in)
	if err != nil {
		o.log.Warn("batch step rejected", zap.String("intent", in.Kind.String()), zap.Error(err))
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return domain.Failed(ve.Error())
		}
		return domain.Failed("The action could not be recorded, so it was not run.")
	}
	return out.Normalize()
}

func summarize(agg *domain.AggregatedOutcome) {
	lines := make([]string, 0, len(agg.Steps))
	for _, s := range agg.Steps {
		if s.Outcome.Success {
			lines = append(lines, fmt.Sprintf("✓ %s: %s", s.Kind, s.Outcome.Detail()))
		} else {
			lines = append(lines, fmt.Sprintf("✗ %s: %s", s.Kind, s.Outcome.Error))
		}
	}

	total, done := len(agg.Steps), agg.Completed()
	agg.Success = done == total
	agg.DisplayResponse = strings.Join(lines, "\n")
	if agg.Success {
		agg.SpokenResponse = fmt.Sprintf("All %d actions completed.", total)
	} else {
		agg.SpokenResponse = fmt.Sprintf("%d of %d actions completed.", done, total)
	}
}
