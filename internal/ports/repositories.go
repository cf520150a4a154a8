package ports

import (
	"context"
	"time"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

// ActionRepository is the audit trail. Records are never deleted here.
type ActionRepository interface {
	Create(ctx context.Context, record *domain.ActionRecord) error
	UpdateResult(ctx context.Context, id string, status domain.ActionStatus, result *domain.ExecutionOutcome) error
	FindByID(ctx context.Context, id string) (*domain.ActionRecord, error)
	// ListBySession returns the most recent records of a session in insertion order.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.ActionRecord, error)
	// CountTerminalSince counts terminal records of one kind across all users.
	CountTerminalSince(ctx context.Context, kind domain.IntentKind, since time.Time) (int64, error)
}

type TaskRepository interface {
	Save(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	// FindByUser returns tasks newest first.
	FindByUser(ctx context.Context, userID string, filter domain.TaskFilter) ([]domain.Task, error)
}

type NoteRepository interface {
	Save(ctx context.Context, note *domain.Note) error
	// FindByUser returns notes newest first.
	FindByUser(ctx context.Context, userID string) ([]domain.Note, error)
}

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	Save(ctx context.Context, profile *domain.Profile) error
	// AppendKnowledge concatenates entry to the knowledge base without
	// overwriting concurrent appends.
	AppendKnowledge(ctx context.Context, userID, entry string) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	FindByID(ctx context.Context, id string) (*domain.Session, error)
}

type IntegrationRepository interface {
	FindActive(ctx context.Context, userID, provider string) (*domain.Integration, error)
	Save(ctx context.Context, integration *domain.Integration) error
}
