package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
	"github.com/seu-repo/vox-assistant/internal/observability/telemetry"
	"github.com/seu-repo/vox-assistant/internal/ports"
)

const (
	panicMessage       = "Something went wrong while handling that request."
	auditWriteAttempts = 2
)

// Executor runs one intent and keeps its ActionRecord. Sessions and Queue
// are optional.
type Executor struct {
	dispatcher Dispatcher
	actions    ports.ActionRepository
	sessions   ports.SessionRepository
	queue      ports.MessageQueue
	log        *zap.Logger
	now        func() time.Time
}

func NewExecutor(dispatcher Dispatcher, actions ports.ActionRepository, sessions ports.SessionRepository, queue ports.MessageQueue, log *zap.Logger) *Executor {
	return &Executor{
		dispatcher: dispatcher,
		actions:    actions,
		sessions:   sessions,
		queue:      queue,
		log:        log,
		now:        time.Now,
	}
}

// Execute validates the intent, records it as pending, dispatches it and
// records the terminal status. The returned error is either a
// *domain.ValidationError or a failure to create the audit record; handler
// failures are reported in the outcome.
func (e *Executor) Execute(ctx context.Context, userID, sessionID, transcript string, in domain.Intent) (domain.ExecutionOutcome, error) {
	if strings.TrimSpace(in.Kind.String()) == "" {
		return domain.ExecutionOutcome{}, domain.NewValidationError("intent", "intent kind is required")
	}
	if userID == "" {
		return domain.ExecutionOutcome{}, domain.NewValidationError("user_id", "is required")
	}
	if err := e.checkSession(ctx, userID, sessionID); err != nil {
		return domain.ExecutionOutcome{}, err
	}
	clean, err := in.Clone()
	if err != nil {
		return domain.ExecutionOutcome{}, err
	}

	ctx, span := telemetry.Tracer().Start(ctx, "intent.execute", trace.WithAttributes(
		attribute.String("intent", clean.Kind.String()),
		attribute.String("user_id", userID),
	))
	defer span.End()
	started := time.Now()

	now := e.now()
	record := &domain.ActionRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		SessionID:  sessionID,
		Transcript: transcript,
		IntentKind: clean.Kind,
		Parameters: clean.Parameters,
		Status:     domain.ActionStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if clean.Kind == domain.IntentOther {
		outcome := conversationalOutcome(clean)
		record.Status = domain.ActionStatusConversational
		record.Result = &outcome
		if err := e.actions.Create(ctx, record); err != nil {
			span.RecordError(err)
			return domain.ExecutionOutcome{}, fmt.Errorf("create action record: %w", err)
		}
		e.observe(record, started)
		e.publish(record)
		return outcome, nil
	}

	if err := e.actions.Create(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "audit record not created")
		e.log.Error("failed to create action record",
			zap.String("user_id", userID),
			zap.String("intent", clean.Kind.String()),
			zap.Error(err),
		)
		return domain.ExecutionOutcome{}, fmt.Errorf("create action record: %w", err)
	}

	outcome := e.dispatch(ctx, userID, record.ID, clean).Normalize()

	status := domain.ActionStatusCompleted
	if !outcome.Success {
		status = domain.ActionStatusFailed
		span.SetStatus(codes.Error, outcome.Error)
	}
	e.finish(ctx, record, status, outcome)
	e.observe(record, started)
	e.publish(record)

	return outcome, nil
}

func (e *Executor) checkSession(ctx context.Context, userID, sessionID string) error {
	if sessionID == "" || e.sessions == nil {
		return nil
	}
	session, err := e.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return domain.NewValidationError("session_id", "unknown session")
	}
	if session.UserID != userID {
		return domain.NewValidationError("session_id", "session belongs to another user")
	}
	return nil
}

// dispatch converts a handler panic into a failed outcome.
func (e *Executor) dispatch(ctx context.Context, userID, actionID string, in domain.Intent) (out domain.ExecutionOutcome) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("action handler panicked",
				zap.String("action_id", actionID),
				zap.String("intent", in.Kind.String()),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			out = domain.Failed(panicMessage)
		}
	}()
	return e.dispatcher.Dispatch(ctx, userID, in)
}

// finish writes the terminal status. The write outlives a cancelled request
// so the record never stays pending.
func (e *Executor) finish(ctx context.Context, record *domain.ActionRecord, status domain.ActionStatus, outcome domain.ExecutionOutcome) {
	writeCtx := context.WithoutCancel(ctx)
	record.Status = status
	record.Result = &outcome

	var err error
	for attempt := 1; attempt <= auditWriteAttempts; attempt++ {
		if err = e.actions.UpdateResult(writeCtx, record.ID, status, &outcome); err == nil {
			return
		}
	}
	telemetry.AuditWriteFailuresTotal.Inc()
	e.log.Error("failed to update action record",
		zap.String("action_id", record.ID),
		zap.String("status", string(status)),
		zap.Error(err),
	)
}

func (e *Executor) observe(record *domain.ActionRecord, started time.Time) {
	kind := record.IntentKind.String()
	if !record.IntentKind.Known() {
		kind = "unknown"
	}
	telemetry.IntentExecutionsTotal.WithLabelValues(kind, string(record.Status)).Inc()
	telemetry.IntentLatency.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

func (e *Executor) publish(record *domain.ActionRecord) {
	if e.queue == nil {
		return
	}
	data, err := json.Marshal(domain.ActionEvent{
		ActionID:  record.ID,
		UserID:    record.UserID,
		SessionID: record.SessionID,
		Intent:    record.IntentKind,
		Status:    record.Status,
		Timestamp: e.now(),
	})
	if err != nil {
		e.log.Warn("failed to encode action event", zap.String("action_id", record.ID), zap.Error(err))
		return
	}
	if err := e.queue.Publish(ports.SubjectActionsCompleted, data); err != nil {
		e.log.Warn("failed to publish action event", zap.String("action_id", record.ID), zap.Error(err))
	}
}
