package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

// MockActionRepository keeps records in memory unless a Func override is set.
type MockActionRepository struct {
	CreateFunc             func(ctx context.Context, record *domain.ActionRecord) error
	UpdateResultFunc       func(ctx context.Context, id string, status domain.ActionStatus, result *domain.ExecutionOutcome) error
	FindByIDFunc           func(ctx context.Context, id string) (*domain.ActionRecord, error)
	ListBySessionFunc      func(ctx context.Context, sessionID string, limit int) ([]domain.ActionRecord, error)
	CountTerminalSinceFunc func(ctx context.Context, kind domain.IntentKind, since time.Time) (int64, error)

	mu      sync.Mutex
	Records []*domain.ActionRecord
	Updates map[string]int
}

func NewMockActionRepository() *MockActionRepository {
	return &MockActionRepository{Updates: make(map[string]int)}
}

func (m *MockActionRepository) Create(ctx context.Context, record *domain.ActionRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	m.Records = append(m.Records, &cp)
	return nil
}

func (m *MockActionRepository) UpdateResult(ctx context.Context, id string, status domain.ActionStatus, result *domain.ExecutionOutcome) error {
	if m.UpdateResultFunc != nil {
		return m.UpdateResultFunc(ctx, id, status, result)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Updates == nil {
		m.Updates = make(map[string]int)
	}
	for _, r := range m.Records {
		if r.ID == id {
			r.Status = status
			r.Result = result
			m.Updates[id]++
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockActionRepository) FindByID(ctx context.Context, id string) (*domain.ActionRecord, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.Records {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockActionRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.ActionRecord, error) {
	if m.ListBySessionFunc != nil {
		return m.ListBySessionFunc(ctx, sessionID, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ActionRecord
	for _, r := range m.Records {
		if r.SessionID == sessionID {
			out = append(out, *r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *MockActionRepository) CountTerminalSince(ctx context.Context, kind domain.IntentKind, since time.Time) (int64, error) {
	if m.CountTerminalSinceFunc != nil {
		return m.CountTerminalSinceFunc(ctx, kind, since)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.Records {
		if r.IntentKind == kind && r.Status.Terminal() && !r.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// MockTaskRepository is a mock implementation of TaskRepository
type MockTaskRepository struct {
	SaveFunc       func(ctx context.Context, task *domain.Task) error
	UpdateFunc     func(ctx context.Context, task *domain.Task) error
	FindByUserFunc func(ctx context.Context, userID string, filter domain.TaskFilter) ([]domain.Task, error)

	// Tasks is ordered newest first.
	Tasks   []domain.Task
	Updated []domain.Task
}

func (m *MockTaskRepository) Save(ctx context.Context, task *domain.Task) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, task)
	}
	m.Tasks = append([]domain.Task{*task}, m.Tasks...)
	return nil
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, task)
	}
	for i := range m.Tasks {
		if m.Tasks[i].ID == task.ID {
			m.Tasks[i] = *task
		}
	}
	m.Updated = append(m.Updated, *task)
	return nil
}

func (m *MockTaskRepository) FindByUser(ctx context.Context, userID string, filter domain.TaskFilter) ([]domain.Task, error) {
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, userID, filter)
	}
	var out []domain.Task
	for _, t := range m.Tasks {
		if t.UserID != userID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		if filter.ExcludeStatus != "" && t.Status == filter.ExcludeStatus {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// MockNoteRepository is a mock implementation of NoteRepository
type MockNoteRepository struct {
	SaveFunc       func(ctx context.Context, note *domain.Note) error
	FindByUserFunc func(ctx context.Context, userID string) ([]domain.Note, error)

	Notes []domain.Note
}

func (m *MockNoteRepository) Save(ctx context.Context, note *domain.Note) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, note)
	}
	m.Notes = append([]domain.Note{*note}, m.Notes...)
	return nil
}

func (m *MockNoteRepository) FindByUser(ctx context.Context, userID string) ([]domain.Note, error) {
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, userID)
	}
	var out []domain.Note
	for _, n := range m.Notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	FindByUserIDFunc    func(ctx context.Context, userID string) (*domain.Profile, error)
	SaveFunc            func(ctx context.Context, profile *domain.Profile) error
	AppendKnowledgeFunc func(ctx context.Context, userID, entry string) error

	Profiles map[string]*domain.Profile
}

func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	if p, ok := m.Profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *MockProfileRepository) Save(ctx context.Context, profile *domain.Profile) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, profile)
	}
	if m.Profiles == nil {
		m.Profiles = make(map[string]*domain.Profile)
	}
	cp := *profile
	m.Profiles[profile.UserID] = &cp
	return nil
}

func (m *MockProfileRepository) AppendKnowledge(ctx context.Context, userID, entry string) error {
	if m.AppendKnowledgeFunc != nil {
		return m.AppendKnowledgeFunc(ctx, userID, entry)
	}
	if m.Profiles == nil {
		m.Profiles = make(map[string]*domain.Profile)
	}
	p, ok := m.Profiles[userID]
	if !ok {
		p = &domain.Profile{UserID: userID}
		m.Profiles[userID] = p
	}
	p.KnowledgeBase += entry
	p.Version++
	return nil
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	CreateFunc   func(ctx context.Context, session *domain.Session) error
	FindByIDFunc func(ctx context.Context, id string) (*domain.Session, error)

	Sessions map[string]*domain.Session
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	if m.Sessions == nil {
		m.Sessions = make(map[string]*domain.Session)
	}
	cp := *session
	m.Sessions[session.ID] = &cp
	return nil
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	if s, ok := m.Sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// MockIntegrationRepository is a mock implementation of IntegrationRepository
type MockIntegrationRepository struct {
	FindActiveFunc func(ctx context.Context, userID, provider string) (*domain.Integration, error)
	SaveFunc       func(ctx context.Context, integration *domain.Integration) error

	Saved []domain.Integration
}

func (m *MockIntegrationRepository) FindActive(ctx context.Context, userID, provider string) (*domain.Integration, error) {
	if m.FindActiveFunc != nil {
		return m.FindActiveFunc(ctx, userID, provider)
	}
	return nil, nil
}

func (m *MockIntegrationRepository) Save(ctx context.Context, integration *domain.Integration) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, integration)
	}
	m.Saved = append(m.Saved, *integration)
	return nil
}
