package postgres

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewConnection(Options{
		Driver: DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "vox.db"),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestNewConnection_UnknownDriver(t *testing.T) {
	_, err := NewConnection(Options{Driver: "oracle"}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestActionRepository_UpdateResultOnlyOnce(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := NewActionRepository(newTestDB(t), zap.NewNop())
	rec := &domain.ActionRecord{
		ID:         "act-1",
		UserID:     "user-1",
		SessionID:  "session-1",
		IntentKind: domain.IntentCreateTask,
		Parameters: map[string]any{"title": "Buy milk"},
		Status:     domain.ActionStatusPending,
	}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Act
	outcome := &domain.ExecutionOutcome{Success: true, DisplayResponse: "done"}
	first := repo.UpdateResult(ctx, "act-1", domain.ActionStatusCompleted, outcome)
	second := repo.UpdateResult(ctx, "act-1", domain.ActionStatusFailed, &domain.ExecutionOutcome{Error: "late"})

	// Assert
	if first != nil {
		t.Fatalf("expected first update to succeed, got %v", first)
	}
	if !errors.Is(second, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second update, got %v", second)
	}
	got, err := repo.FindByID(ctx, "act-1")
	if err != nil || got == nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != domain.ActionStatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
	if got.Result == nil || got.Result.DisplayResponse != "done" {
		t.Errorf("expected stored result, got %+v", got.Result)
	}
	if got.Parameters["title"] != "Buy milk" {
		t.Errorf("expected parameters round trip, got %v", got.Parameters)
	}
}

func TestActionRepository_FindByIDMissing(t *testing.T) {
	repo := NewActionRepository(newTestDB(t), zap.NewNop())

	got, err := repo.FindByID(context.Background(), "nope")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil record, got %+v", got)
	}
}

func TestActionRepository_ListBySessionKeepsInsertionOrder(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := NewActionRepository(newTestDB(t), zap.NewNop())
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		rec := &domain.ActionRecord{
			ID:         id,
			UserID:     "user-1",
			SessionID:  "session-1",
			IntentKind: domain.IntentOther,
			Status:     domain.ActionStatusConversational,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	_ = repo.Create(ctx, &domain.ActionRecord{ID: "x", UserID: "user-2", SessionID: "session-2", Status: domain.ActionStatusPending})

	// Act
	recs, err := repo.ListBySession(ctx, "session-1", 3)

	// Assert
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var ids []string
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	if strings.Join(ids, ",") != "b,c,d" {
		t.Errorf("expected b,c,d got %v", ids)
	}
}

func TestActionRepository_CountTerminalSince(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := NewActionRepository(newTestDB(t), zap.NewNop())
	midnight := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	seed := []domain.ActionRecord{
		{ID: "1", UserID: "u1", IntentKind: domain.IntentGetWeather, Status: domain.ActionStatusCompleted, CreatedAt: midnight.Add(time.Hour)},
		{ID: "2", UserID: "u2", IntentKind: domain.IntentGetWeather, Status: domain.ActionStatusFailed, CreatedAt: midnight.Add(2 * time.Hour)},
		{ID: "3", UserID: "u1", IntentKind: domain.IntentGetWeather, Status: domain.ActionStatusPending, CreatedAt: midnight.Add(3 * time.Hour)},
		{ID: "4", UserID: "u1", IntentKind: domain.IntentGetWeather, Status: domain.ActionStatusCompleted, CreatedAt: midnight.Add(-time.Hour)},
		{ID: "5", UserID: "u1", IntentKind: domain.IntentCreateTask, Status: domain.ActionStatusCompleted, CreatedAt: midnight.Add(time.Hour)},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// Act
	n, err := repo.CountTerminalSince(ctx, domain.IntentGetWeather, midnight)

	// Assert
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 terminal weather records today, got %d", n)
	}
}

func TestActionRepository_CountTerminalSinceAcrossZones(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := NewActionRepository(newTestDB(t), zap.NewNop())
	newYork := time.FixedZone("EDT", -4*60*60)
	midnight := time.Date(2026, 10, 19, 0, 0, 0, 0, newYork)
	seed := []domain.ActionRecord{
		// 22:00 on the 18th in New York, already the 19th in UTC
		{ID: "1", UserID: "u1", IntentKind: domain.IntentGetWeather, Status: domain.ActionStatusCompleted, CreatedAt: time.Date(2026, 10, 19, 2, 0, 0, 0, time.UTC)},
		{ID: "2", UserID: "u1", IntentKind: domain.IntentGetWeather, Status: domain.ActionStatusCompleted, CreatedAt: time.Date(2026, 10, 19, 0, 30, 0, 0, newYork)},
		{ID: "3", UserID: "u1", IntentKind: domain.IntentGetWeather, Status: domain.ActionStatusCompleted, CreatedAt: time.Date(2026, 10, 18, 23, 59, 0, 0, newYork)},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// Act
	n, err := repo.CountTerminalSince(ctx, domain.IntentGetWeather, midnight)

	// Assert
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected only the record after New York midnight, got %d", n)
	}
}

func TestTaskRepository_FindByUserFilters(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t), zap.NewNop())
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tasks := []domain.Task{
		{ID: "t1", UserID: "user-1", Title: "Old", Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusDone, CreatedAt: base},
		{ID: "t2", UserID: "user-1", Title: "Mid", Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusTodo, CreatedAt: base.Add(time.Minute)},
		{ID: "t3", UserID: "user-1", Title: "New", Priority: domain.TaskPriorityLow, Status: domain.TaskStatusTodo, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "t4", UserID: "user-2", Title: "Other", Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusTodo, CreatedAt: base},
	}
	for i := range tasks {
		if err := repo.Save(ctx, &tasks[i]); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter domain.TaskFilter
		want   string
	}{
		{"all newest first", domain.TaskFilter{}, "t3,t2,t1"},
		{"by status", domain.TaskFilter{Status: domain.TaskStatusTodo}, "t3,t2"},
		{"by priority", domain.TaskFilter{Priority: domain.TaskPriorityHigh}, "t2,t1"},
		{"excluding done", domain.TaskFilter{ExcludeStatus: domain.TaskStatusDone, Priority: domain.TaskPriorityHigh}, "t2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, err := repo.FindByUser(ctx, "user-1", tt.filter)

			// Assert
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			var ids []string
			for _, task := range got {
				ids = append(ids, task.ID)
			}
			if strings.Join(ids, ",") != tt.want {
				t.Errorf("expected %s, got %v", tt.want, ids)
			}
		})
	}
}

func TestTaskRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t), zap.NewNop())
	task := &domain.Task{ID: "t1", UserID: "user-1", Title: "Report", Status: domain.TaskStatusTodo}
	if err := repo.Save(ctx, task); err != nil {
		t.Fatalf("save: %v", err)
	}

	task.Status = domain.TaskStatusDone
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := repo.FindByUser(ctx, "user-1", domain.TaskFilter{Status: domain.TaskStatusDone})
	if len(got) != 1 || got[0].Title != "Report" {
		t.Errorf("expected updated task, got %+v", got)
	}
}

func TestNoteRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDB(t), zap.NewNop())
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_ = repo.Save(ctx, &domain.Note{ID: "n1", UserID: "user-1", Title: "First", Folder: "Work", CreatedAt: base})
	_ = repo.Save(ctx, &domain.Note{ID: "n2", UserID: "user-1", Title: "Second", Folder: "Home", CreatedAt: base.Add(time.Hour)})
	_ = repo.Save(ctx, &domain.Note{ID: "n3", UserID: "user-2", Title: "Foreign", CreatedAt: base})

	notes, err := repo.FindByUser(ctx, "user-1")

	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(notes) != 2 || notes[0].ID != "n2" {
		t.Errorf("expected two notes newest first, got %+v", notes)
	}
}

func TestProfileRepository_AppendKnowledgeCreatesProfile(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := NewProfileRepository(newTestDB(t), zap.NewNop())

	// Act
	err := repo.AppendKnowledge(ctx, "user-1", "\n\n### Contacts\nAna: ana@example.com")

	// Assert
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	p, err := repo.FindByUserID(ctx, "user-1")
	if err != nil || p == nil {
		t.Fatalf("find: %v", err)
	}
	if !strings.Contains(p.KnowledgeBase, "ana@example.com") {
		t.Errorf("expected entry in knowledge base, got %q", p.KnowledgeBase)
	}
	if p.Version != 1 {
		t.Errorf("expected version 1, got %d", p.Version)
	}
}

func TestProfileRepository_AppendKnowledgeKeepsEveryEntry(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := NewProfileRepository(newTestDB(t), zap.NewNop())
	if err := repo.Save(ctx, &domain.Profile{UserID: "user-1", KnowledgeBase: "# Me", Version: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Act
	entries := []string{"\nA", "\nB", "\nC"}
	var wg sync.WaitGroup
	errs := make([]error, len(entries))
	for i, e := range entries {
		wg.Add(1)
		go func(i int, e string) {
			defer wg.Done()
			errs[i] = repo.AppendKnowledge(ctx, "user-1", e)
		}(i, e)
	}
	wg.Wait()

	// Assert
	p, _ := repo.FindByUserID(ctx, "user-1")
	applied := 0
	for i, e := range entries {
		switch {
		case errs[i] == nil:
			applied++
			if !strings.Contains(p.KnowledgeBase, e) {
				t.Errorf("entry %q reported applied but missing", e)
			}
		case !errors.Is(errs[i], domain.ErrConcurrentUpdate):
			t.Errorf("unexpected error: %v", errs[i])
		}
	}
	if p.Version != 1+applied {
		t.Errorf("expected version %d, got %d", 1+applied, p.Version)
	}
	if !strings.HasPrefix(p.KnowledgeBase, "# Me") {
		t.Errorf("existing content overwritten: %q", p.KnowledgeBase)
	}
}

func TestSessionRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(newTestDB(t), zap.NewNop())

	if err := repo.Create(ctx, &domain.Session{ID: "s1", UserID: "user-1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.FindByID(ctx, "s1")
	missing, _ := repo.FindByID(ctx, "s2")

	if err != nil || got == nil || got.UserID != "user-1" {
		t.Errorf("expected session for user-1, got %+v (%v)", got, err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown session")
	}
}

func TestIntegrationRepository_SaveUpserts(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := NewIntegrationRepository(newTestDB(t), zap.NewNop())
	first := &domain.Integration{UserID: "user-1", Provider: domain.ProviderGoogle, AccessToken: "old", RefreshToken: "r", Active: true}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Act
	err := repo.Save(ctx, &domain.Integration{UserID: "user-1", Provider: domain.ProviderGoogle, AccessToken: "new", RefreshToken: "r", Active: true})

	// Assert
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := repo.FindActive(ctx, "user-1", domain.ProviderGoogle)
	if err != nil || got == nil {
		t.Fatalf("find: %v", err)
	}
	if got.AccessToken != "new" {
		t.Errorf("expected refreshed token, got %q", got.AccessToken)
	}
	if got.ID != first.ID {
		t.Errorf("expected the original row to be kept, got id %s", got.ID)
	}
}

func TestIntegrationRepository_InactiveIsNotReturned(t *testing.T) {
	ctx := context.Background()
	repo := NewIntegrationRepository(newTestDB(t), zap.NewNop())
	_ = repo.Save(ctx, &domain.Integration{UserID: "user-1", Provider: domain.ProviderGoogle, AccessToken: "t", Active: false})

	got, err := repo.FindActive(ctx, "user-1", domain.ProviderGoogle)

	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != nil {
		t.Errorf("expected no active integration, got %+v", got)
	}
}
