package domain

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Indicator is the emoji prefix used when listing tasks.
func (p TaskPriority) Indicator() string {
	switch p {
	case TaskPriorityHigh:
		return "🔴"
	case TaskPriorityLow:
		return "🟢"
	default:
		return "🟡"
	}
}

type Task struct {
	ID        string       `json:"id" gorm:"primaryKey"`
	UserID    string       `json:"user_id" gorm:"index"`
	Title     string       `json:"title"`
	Priority  TaskPriority `json:"priority"`
	Status    TaskStatus   `json:"status" gorm:"index"`
	DueDate   string       `json:"due_date,omitempty"`
	CreatedAt time.Time    `json:"created_at" gorm:"index"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TaskFilter narrows a task listing. Empty fields do not filter.
type TaskFilter struct {
	Status        TaskStatus
	Priority      TaskPriority
	ExcludeStatus TaskStatus
}

// ParseTaskStatus accepts the canonical values and the spoken variants the
// intent extractor tends to produce.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "to do", "to-do", "open", "pending":
		return TaskStatusTodo, true
	case "in_progress", "in progress", "in-progress", "started", "doing":
		return TaskStatusInProgress, true
	case "done", "complete", "completed", "finished":
		return TaskStatusDone, true
	}
	return "", false
}

func ParseTaskPriority(s string) (TaskPriority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return TaskPriorityLow, true
	case "medium", "normal":
		return TaskPriorityMedium, true
	case "high", "urgent":
		return TaskPriorityHigh, true
	}
	return "", false
}

// Label is the human wording of a status.
func (s TaskStatus) Label() string {
	switch s {
	case TaskStatusTodo:
		return "to-do"
	case TaskStatusInProgress:
		return "in-progress"
	case TaskStatusDone:
		return "completed"
	}
	return string(s)
}
