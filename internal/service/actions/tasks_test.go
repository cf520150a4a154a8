package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

func TestCreateTask_IncludesDueDateOnlyWhenPresent(t *testing.T) {
	tests := []struct {
		name    string
		params  domain.CreateTaskParams
		wantDue bool
	}{
		{"with due date", domain.CreateTaskParams{Title: "Pay rent", Priority: domain.TaskPriorityHigh, DueDate: "Friday"}, true},
		{"without due date", domain.CreateTaskParams{Title: "Pay rent", Priority: domain.TaskPriorityMedium}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t)

			// Act
			out := f.svc.CreateTask(context.Background(), "user-1", tt.params)

			// Assert
			assertSuccess(t, out)
			if got := strings.Contains(out.DisplayResponse, "(due:"); got != tt.wantDue {
				t.Errorf("due date shown = %v, want %v (%q)", got, tt.wantDue, out.DisplayResponse)
			}
			if len(f.tasks.Tasks) != 1 {
				t.Fatalf("expected 1 stored task, got %d", len(f.tasks.Tasks))
			}
			stored := f.tasks.Tasks[0]
			if stored.Status != domain.TaskStatusTodo || stored.UserID != "user-1" {
				t.Errorf("unexpected stored task %+v", stored)
			}
			if out.Data["task_id"] != stored.ID {
				t.Errorf("expected task_id %s in data, got %v", stored.ID, out.Data["task_id"])
			}
		})
	}
}

func TestCreateTask_StorageFailure(t *testing.T) {
	f := newFixture(t)
	f.tasks.SaveFunc = func(ctx context.Context, task *domain.Task) error {
		return errors.New("disk full")
	}

	out := f.svc.CreateTask(context.Background(), "user-1", domain.CreateTaskParams{Title: "x", Priority: domain.TaskPriorityLow})

	assertFailure(t, out, "disk full")
}

func TestGetTasks_NoTasksAtAll(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	out := f.svc.GetTasks(context.Background(), "user-1", domain.GetTasksParams{Status: "todo", Priority: "high"})

	// Assert
	assertSuccess(t, out)
	if !strings.Contains(out.DisplayResponse, "don't have any tasks") {
		t.Errorf("unexpected response %q", out.DisplayResponse)
	}
}

func TestGetTasks_FilteredEmptyIsDistinct(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.tasks.Tasks = []domain.Task{
		{ID: "1", UserID: "user-1", Title: "Buy milk", Priority: domain.TaskPriorityLow, Status: domain.TaskStatusTodo},
	}

	// Act
	out := f.svc.GetTasks(context.Background(), "user-1", domain.GetTasksParams{Status: "todo", Priority: "high"})

	// Assert
	assertSuccess(t, out)
	if strings.Contains(out.DisplayResponse, "don't have any tasks") {
		t.Errorf("filtered-empty should not look like no tasks at all: %q", out.DisplayResponse)
	}
	if !strings.Contains(out.DisplayResponse, "high priority") {
		t.Errorf("expected the filter in the response, got %q", out.DisplayResponse)
	}
}

func TestGetTasks_ListsWithIndicators(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.tasks.Tasks = []domain.Task{
		{ID: "2", UserID: "user-1", Title: "Newest", Priority: domain.TaskPriorityHigh, Status: domain.TaskStatusTodo},
		{ID: "1", UserID: "user-1", Title: "Oldest", Priority: domain.TaskPriorityLow, Status: domain.TaskStatusTodo, DueDate: "Monday"},
		{ID: "0", UserID: "user-1", Title: "Finished", Priority: domain.TaskPriorityLow, Status: domain.TaskStatusDone},
	}

	// Act
	out := f.svc.GetTasks(context.Background(), "user-1", domain.GetTasksParams{Status: "todo"})

	// Assert
	assertSuccess(t, out)
	lines := strings.Split(out.DisplayResponse, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 tasks, got %q", out.DisplayResponse)
	}
	if lines[1] != "🔴 Newest" {
		t.Errorf("unexpected first line %q", lines[1])
	}
	if lines[2] != "🟢 Oldest (due: Monday)" {
		t.Errorf("unexpected second line %q", lines[2])
	}
	if out.SpokenResponse != "You have 2 tasks: Newest and Oldest." {
		t.Errorf("unexpected spoken response %q", out.SpokenResponse)
	}
}

func TestGetTasks_AllShowsStatus(t *testing.T) {
	f := newFixture(t)
	f.tasks.Tasks = []domain.Task{
		{ID: "0", UserID: "user-1", Title: "Finished", Priority: domain.TaskPriorityMedium, Status: domain.TaskStatusDone},
	}

	out := f.svc.GetTasks(context.Background(), "user-1", domain.GetTasksParams{Status: domain.AllStatuses})

	assertSuccess(t, out)
	if !strings.Contains(out.DisplayResponse, "🟡 Finished [completed]") {
		t.Errorf("unexpected response %q", out.DisplayResponse)
	}
}

func TestUpdateTask_MatchesSubstring(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.tasks.Tasks = []domain.Task{
		{ID: "1", UserID: "user-1", Title: "Call dentist", Priority: domain.TaskPriorityMedium, Status: domain.TaskStatusTodo},
		{ID: "2", UserID: "user-1", Title: "Email Bob", Priority: domain.TaskPriorityMedium, Status: domain.TaskStatusTodo},
	}

	// Act
	out := f.svc.UpdateTask(context.Background(), "user-1", domain.UpdateTaskParams{Title: "dentist", Status: "done"})

	// Assert
	assertSuccess(t, out)
	if len(f.tasks.Updated) != 1 {
		t.Fatalf("expected 1 update, got %d", len(f.tasks.Updated))
	}
	updated := f.tasks.Updated[0]
	if updated.Title != "Call dentist" || updated.Status != domain.TaskStatusDone {
		t.Errorf("unexpected update %+v", updated)
	}
}

func TestUpdateTask_SearchTermContainsTitle(t *testing.T) {
	f := newFixture(t)
	f.tasks.Tasks = []domain.Task{
		{ID: "2", UserID: "user-1", Title: "Email Bob", Priority: domain.TaskPriorityMedium, Status: domain.TaskStatusTodo},
	}

	out := f.svc.UpdateTask(context.Background(), "user-1", domain.UpdateTaskParams{Title: "email bob about the invoice", Priority: "high"})

	assertSuccess(t, out)
	if f.tasks.Updated[0].Priority != domain.TaskPriorityHigh {
		t.Errorf("expected high priority, got %s", f.tasks.Updated[0].Priority)
	}
}

func TestUpdateTask_IgnoresDoneTasks(t *testing.T) {
	f := newFixture(t)
	f.tasks.Tasks = []domain.Task{
		{ID: "1", UserID: "user-1", Title: "Call dentist", Status: domain.TaskStatusDone},
	}

	out := f.svc.UpdateTask(context.Background(), "user-1", domain.UpdateTaskParams{Title: "dentist", Status: "todo"})

	assertFailure(t, out, "couldn't find a task")
	if len(f.tasks.Updated) != 0 {
		t.Error("done task must not be updated")
	}
}

func TestUpdateTask_NoMatchListsUpToFiveTitles(t *testing.T) {
	// Arrange
	f := newFixture(t)
	for i := 1; i <= 7; i++ {
		f.tasks.Tasks = append(f.tasks.Tasks, domain.Task{
			ID: fmt.Sprint(i), UserID: "user-1", Title: fmt.Sprintf("Task %d", i), Status: domain.TaskStatusTodo,
		})
	}

	// Act
	out := f.svc.UpdateTask(context.Background(), "user-1", domain.UpdateTaskParams{Title: "gym", Status: "done"})

	// Assert
	assertFailure(t, out, "gym")
	for i := 1; i <= 5; i++ {
		if !strings.Contains(out.Error, fmt.Sprintf("Task %d", i)) {
			t.Errorf("expected suggestion Task %d in %q", i, out.Error)
		}
	}
	if strings.Contains(out.Error, "Task 6") {
		t.Errorf("expected at most 5 suggestions, got %q", out.Error)
	}
}

func TestUpdateTask_NoChanges(t *testing.T) {
	f := newFixture(t)
	f.tasks.Tasks = []domain.Task{
		{ID: "1", UserID: "user-1", Title: "Call dentist", Status: domain.TaskStatusTodo},
		{ID: "2", UserID: "user-1", Title: "Buy milk", Status: domain.TaskStatusTodo},
	}

	out := f.svc.UpdateTask(context.Background(), "user-1", domain.UpdateTaskParams{Title: "dentist"})

	assertFailure(t, out, "what to change")
	if !strings.Contains(out.Error, "Your current tasks: Call dentist, Buy milk") {
		t.Errorf("expected current task titles in %q", out.Error)
	}
	if len(f.tasks.Updated) != 0 {
		t.Error("nothing should be written without changes")
	}
}

func TestJoinSpoken(t *testing.T) {
	tests := []struct {
		items []string
		want  string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "a and b"},
		{[]string{"a", "b", "c"}, "a, b and c"},
		{[]string{"a", "b", "c", "d"}, "a, b and c, plus 1 more"},
	}
	for _, tt := range tests {
		if got := joinSpoken(tt.items, 3); got != tt.want {
			t.Errorf("joinSpoken(%v) = %q, want %q", tt.items, got, tt.want)
		}
	}
}
