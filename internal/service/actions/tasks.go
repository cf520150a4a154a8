package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

const maxTaskSuggestions = 5

func (s *Service) CreateTask(ctx context.Context, userID string, p domain.CreateTaskParams) domain.ExecutionOutcome {
	now := s.now()
	task := &domain.Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     p.Title,
		Priority:  p.Priority,
		Status:    domain.TaskStatusTodo,
		DueDate:   p.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := run(ctx, s, "task store", func(ctx context.Context) error {
		return s.deps.Tasks.Save(ctx, task)
	})
	if err != nil {
		return s.fail(domain.IntentCreateTask, userID, "Failed to create task", err)
	}

	display := fmt.Sprintf("✅ Task created: %s", task.Title)
	spoken := fmt.Sprintf("I've added %s to your tasks", task.Title)
	if task.DueDate != "" {
		display += fmt.Sprintf(" (due: %s)", task.DueDate)
		spoken += fmt.Sprintf(", due %s", task.DueDate)
	}
	return domain.Succeeded(display, spoken+".").WithData("task_id", task.ID)
}

func (s *Service) GetTasks(ctx context.Context, userID string, p domain.GetTasksParams) domain.ExecutionOutcome {
	filter := domain.TaskFilter{Priority: domain.TaskPriority(p.Priority)}
	if p.Status != domain.AllStatuses {
		filter.Status = domain.TaskStatus(p.Status)
	}

	tasks, err := s.findTasks(ctx, userID, filter)
	if err != nil {
		return s.fail(domain.IntentGetTasks, userID, "Failed to load tasks", err)
	}

	if len(tasks) == 0 {
		if filter != (domain.TaskFilter{}) {
			all, err := s.findTasks(ctx, userID, domain.TaskFilter{})
			if err != nil {
				return s.fail(domain.IntentGetTasks, userID, "Failed to load tasks", err)
			}
			if len(all) > 0 {
				msg := fmt.Sprintf("You don't have any %s tasks.", describeFilter(filter))
				return domain.Succeeded("📋 "+msg, msg)
			}
		}
		msg := "You don't have any tasks."
		return domain.Succeeded("📋 "+msg, msg)
	}

	var b strings.Builder
	label := describeFilter(filter)
	if label == "" {
		b.WriteString("📋 Your tasks:")
	} else {
		fmt.Fprintf(&b, "📋 Your %s tasks:", label)
	}
	titles := make([]string, 0, len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(&b, "\n%s %s", t.Priority.Indicator(), t.Title)
		if filter.Status == "" {
			fmt.Fprintf(&b, " [%s]", t.Status.Label())
		}
		if t.DueDate != "" {
			fmt.Fprintf(&b, " (due: %s)", t.DueDate)
		}
		titles = append(titles, t.Title)
	}

	spoken := fmt.Sprintf("You have %d %s: %s.", len(tasks), plural(len(tasks), "task", "tasks"), joinSpoken(titles, maxTaskSuggestions))
	return domain.Succeeded(b.String(), spoken).WithData("count", len(tasks))
}

func (s *Service) UpdateTask(ctx context.Context, userID string, p domain.UpdateTaskParams) domain.ExecutionOutcome {
	open, err := s.findTasks(ctx, userID, domain.TaskFilter{ExcludeStatus: domain.TaskStatusDone})
	if err != nil {
		return s.fail(domain.IntentUpdateTask, userID, "Failed to load tasks", err)
	}

	match := matchTask(open, p.Title)
	if match == nil {
		if len(open) == 0 {
			return domain.Failed(fmt.Sprintf("I couldn't find a task matching %q. You don't have any open tasks.", p.Title))
		}
		return domain.Failed(fmt.Sprintf("I couldn't find a task matching %q. Your current tasks: %s.", p.Title, suggestTitles(open)))
	}
	if !p.HasChanges() {
		return domain.Failed(fmt.Sprintf("Tell me what to change on %q: a new status or priority. Your current tasks: %s.", match.Title, suggestTitles(open)))
	}

	var changes []string
	if p.Status != "" {
		match.Status = domain.TaskStatus(p.Status)
		changes = append(changes, "status: "+match.Status.Label())
	}
	if p.Priority != "" {
		match.Priority = domain.TaskPriority(p.Priority)
		changes = append(changes, "priority: "+string(match.Priority))
	}
	match.UpdatedAt = s.now()

	err = run(ctx, s, "task store", func(ctx context.Context) error {
		return s.deps.Tasks.Update(ctx, match)
	})
	if err != nil {
		return s.fail(domain.IntentUpdateTask, userID, "Failed to update task", err)
	}

	display := fmt.Sprintf("✅ Updated task: %s (%s)", match.Title, strings.Join(changes, ", "))
	spoken := fmt.Sprintf("Updated %s.", match.Title)
	if p.Status != "" {
		spoken = fmt.Sprintf("Marked %s as %s.", match.Title, match.Status.Label())
	}
	return domain.Succeeded(display, spoken).WithData("task_id", match.ID)
}

func (s *Service) findTasks(ctx context.Context, userID string, filter domain.TaskFilter) ([]domain.Task, error) {
	return within(ctx, s, "task store", func(ctx context.Context) ([]domain.Task, error) {
		return s.deps.Tasks.FindByUser(ctx, userID, filter)
	})
}

// matchTask returns the first task whose title contains the search term or is
// contained in it, ignoring case.
func suggestTitles(tasks []domain.Task) string {
	titles := make([]string, 0, maxTaskSuggestions)
	for i := 0; i < len(tasks) && i < maxTaskSuggestions; i++ {
		titles = append(titles, tasks[i].Title)
	}
	return strings.Join(titles, ", ")
}

func matchTask(tasks []domain.Task, search string) *domain.Task {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return nil
	}
	for i := range tasks {
		title := strings.ToLower(strings.TrimSpace(tasks[i].Title))
		if title == "" {
			continue
		}
		if strings.Contains(title, term) || strings.Contains(term, title) {
			t := tasks[i]
			return &t
		}
	}
	return nil
}

func describeFilter(f domain.TaskFilter) string {
	var parts []string
	if f.Priority != "" {
		parts = append(parts, string(f.Priority)+" priority")
	}
	if f.Status != "" {
		parts = append(parts, f.Status.Label())
	}
	return strings.Join(parts, " ")
}

// joinSpoken lists at most limit items the way they read aloud.
func joinSpoken(items []string, limit int) string {
	extra := 0
	if len(items) > limit {
		extra = len(items) - limit
		items = items[:limit]
	}
	var out string
	switch len(items) {
	case 0:
		return ""
	case 1:
		out = items[0]
	default:
		out = strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
	if extra > 0 {
		out += fmt.Sprintf(", plus %d more", extra)
	}
	return out
}
