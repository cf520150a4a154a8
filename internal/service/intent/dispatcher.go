package intent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

// Handlers is the set of action handlers, one per executable intent kind.
type Handlers interface {
	CreateTask(ctx context.Context, userID string, p domain.CreateTaskParams) domain.ExecutionOutcome
	GetTasks(ctx context.Context, userID string, p domain.GetTasksParams) domain.ExecutionOutcome
	UpdateTask(ctx context.Context, userID string, p domain.UpdateTaskParams) domain.ExecutionOutcome
	SendEmail(ctx context.Context, userID string, p domain.SendEmailParams) domain.ExecutionOutcome
	Remember(ctx context.Context, userID string, p domain.RememberParams) domain.ExecutionOutcome
	GetWeather(ctx context.Context, userID string, p domain.GetWeatherParams) domain.ExecutionOutcome
	GetNews(ctx context.Context, userID string, p domain.GetNewsParams) domain.ExecutionOutcome
	AddCalendarEvent(ctx context.Context, userID string, p domain.AddCalendarEventParams) domain.ExecutionOutcome
	GetCalendarEvents(ctx context.Context, userID string, p domain.GetCalendarEventsParams) domain.ExecutionOutcome
	TimeblockDay(ctx context.Context, userID string, p domain.TimeblockDayParams) domain.ExecutionOutcome
	CreateNote(ctx context.Context, userID string, p domain.CreateNoteParams) domain.ExecutionOutcome
	GetNotes(ctx context.Context, userID string, p domain.GetNotesParams) domain.ExecutionOutcome
}

// Dispatcher routes one intent to its handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID string, in domain.Intent) domain.ExecutionOutcome
}

// DispatcherFunc adapts a plain function to Dispatcher.
type DispatcherFunc func(ctx context.Context, userID string, in domain.Intent) domain.ExecutionOutcome

func (f DispatcherFunc) Dispatch(ctx context.Context, userID string, in domain.Intent) domain.ExecutionOutcome {
	return f(ctx, userID, in)
}

type HandlerDispatcher struct {
	handlers Handlers
	log      *zap.Logger
}

func NewDispatcher(handlers Handlers, log *zap.Logger) *HandlerDispatcher {
	return &HandlerDispatcher{handlers: handlers, log: log}
}

// Dispatch narrows the parameters to the kind's typed shape and calls its
// handler. Kinds are matched exactly.
func (d *HandlerDispatcher) Dispatch(ctx context.Context, userID string, in domain.Intent) domain.ExecutionOutcome {
	h := d.handlers
	switch in.Kind {
	case domain.IntentCreateTask:
		return handle(ctx, d, userID, in, h.CreateTask)
	case domain.IntentGetTasks:
		return handle(ctx, d, userID, in, h.GetTasks)
	case domain.IntentUpdateTask:
		return handle(ctx, d, userID, in, h.UpdateTask)
	case domain.IntentSendEmail:
		return handle(ctx, d, userID, in, h.SendEmail)
	case domain.IntentRemember:
		return handle(ctx, d, userID, in, h.Remember)
	case domain.IntentGetWeather:
		return handle(ctx, d, userID, in, h.GetWeather)
	case domain.IntentGetNews:
		return handle(ctx, d, userID, in, h.GetNews)
	case domain.IntentAddCalendarEvent:
		return handle(ctx, d, userID, in, h.AddCalendarEvent)
	case domain.IntentGetCalendarEvents:
		return handle(ctx, d, userID, in, h.GetCalendarEvents)
	case domain.IntentTimeblockDay:
		return handle(ctx, d, userID, in, h.TimeblockDay)
	case domain.IntentCreateNote:
		return handle(ctx, d, userID, in, h.CreateNote)
	case domain.IntentGetNotes:
		return handle(ctx, d, userID, in, h.GetNotes)
	case domain.IntentOther:
		return conversationalOutcome(in)
	default:
		d.log.Warn("unknown intent kind", zap.String("intent", in.Kind.String()), zap.String("user_id", userID))
		return domain.Failed(fmt.Sprintf("Unknown intent %q.", in.Kind))
	}
}

func handle[P any, PP interface {
	*P
	domain.Params
}](ctx context.Context, d *HandlerDispatcher, userID string, in domain.Intent, fn func(context.Context, string, P) domain.ExecutionOutcome) domain.ExecutionOutcome {
	var p P
	if err := domain.DecodeParams(in.Parameters, PP(&p)); err != nil {
		d.log.Info("rejected intent parameters",
			zap.String("intent", in.Kind.String()),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return domain.Failed(fmt.Sprintf("Invalid %s request: %v.", in.Kind, err))
	}
	return fn(ctx, userID, p)
}

// conversationalOutcome answers a non-actionable utterance with the
// extractor's own reply.
func conversationalOutcome(in domain.Intent) domain.ExecutionOutcome {
	reply := in.NaturalLanguageResponse
	if reply == "" {
		reply = "I'm not sure how to help with that."
	}
	return domain.ExecutionOutcome{Success: true, Response: reply}
}
