package domain

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Params is a typed parameter shape for one intent kind. Validate checks
// required fields and fills defaults in place.
type Params interface {
	Validate() error
}

// DecodeParams narrows an untyped parameter bag into out and validates it.
// Shape mismatches surface as *ValidationError.
func DecodeParams(raw map[string]any, out Params) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return &ValidationError{Field: "parameters", Message: err.Error()}
	}
	return out.Validate()
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}

type CreateTaskParams struct {
	Title    string       `mapstructure:"title"`
	Priority TaskPriority `mapstructure:"priority"`
	DueDate  string       `mapstructure:"due_date"`
}

func (p *CreateTaskParams) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	if err := required("title", p.Title); err != nil {
		return err
	}
	if p.Priority == "" {
		p.Priority = TaskPriorityMedium
		return nil
	}
	prio, ok := ParseTaskPriority(string(p.Priority))
	if !ok {
		return NewValidationError("priority", fmt.Sprintf("unknown priority %q", p.Priority))
	}
	p.Priority = prio
	return nil
}

type GetTasksParams struct {
	Status   string `mapstructure:"status"`
	Priority string `mapstructure:"priority"`
}

// AllStatuses is the status value that lifts the status filter.
const AllStatuses = "all"

func (p *GetTasksParams) Validate() error {
	if p.Status == "" {
		p.Status = string(TaskStatusTodo)
	}
	if !strings.EqualFold(p.Status, AllStatuses) {
		st, ok := ParseTaskStatus(p.Status)
		if !ok {
			return NewValidationError("status", fmt.Sprintf("unknown status %q", p.Status))
		}
		p.Status = string(st)
	} else {
		p.Status = AllStatuses
	}
	if p.Priority != "" {
		prio, ok := ParseTaskPriority(p.Priority)
		if !ok {
			return NewValidationError("priority", fmt.Sprintf("unknown priority %q", p.Priority))
		}
		p.Priority = string(prio)
	}
	return nil
}

type UpdateTaskParams struct {
	Title    string `mapstructure:"title"`
	Status   string `mapstructure:"status"`
	Priority string `mapstructure:"priority"`
}

func (p *UpdateTaskParams) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	if err := required("title", p.Title); err != nil {
		return err
	}
	if p.Status != "" {
		st, ok := ParseTaskStatus(p.Status)
		if !ok {
			return NewValidationError("status", fmt.Sprintf("unknown status %q", p.Status))
		}
		p.Status = string(st)
	}
	if p.Priority != "" {
		prio, ok := ParseTaskPriority(p.Priority)
		if !ok {
			return NewValidationError("priority", fmt.Sprintf("unknown priority %q", p.Priority))
		}
		p.Priority = string(prio)
	}
	return nil
}

// HasChanges reports whether at least one field to update was supplied.
func (p UpdateTaskParams) HasChanges() bool {
	return p.Status != "" || p.Priority != ""
}

type SendEmailParams struct {
	To      string `mapstructure:"to"`
	Subject string `mapstructure:"subject"`
	Body    string `mapstructure:"body"`
}

func (p *SendEmailParams) Validate() error {
	p.To = strings.TrimSpace(p.To)
	if err := required("to", p.To); err != nil {
		return err
	}
	if err := required("body", p.Body); err != nil {
		return err
	}
	if strings.TrimSpace(p.Subject) == "" {
		p.Subject = "(no subject)"
	}
	return nil
}

type RememberParams struct {
	Section string `mapstructure:"section"`
	Content string `mapstructure:"content"`
}

func (p *RememberParams) Validate() error {
	p.Content = strings.TrimSpace(p.Content)
	if err := required("content", p.Content); err != nil {
		return err
	}
	if strings.TrimSpace(p.Section) == "" {
		p.Section = "General"
	}
	return nil
}

type GetWeatherParams struct {
	Location string `mapstructure:"location"`
}

func (p *GetWeatherParams) Validate() error {
	p.Location = strings.TrimSpace(p.Location)
	return nil
}

type GetNewsParams struct {
	Topic string `mapstructure:"topic"`
}

func (p *GetNewsParams) Validate() error { return nil }

type AddCalendarEventParams struct {
	Title       string `mapstructure:"title"`
	StartTime   string `mapstructure:"start_time"`
	EndTime     string `mapstructure:"end_time"`
	Date        string `mapstructure:"date"`
	Location    string `mapstructure:"location"`
	Description string `mapstructure:"description"`
}

func (p *AddCalendarEventParams) Validate() error {
	if err := required("title", p.Title); err != nil {
		return err
	}
	return required("start_time", p.StartTime)
}

type Timeframe string

const (
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
)

type GetCalendarEventsParams struct {
	Date      string    `mapstructure:"date"`
	Timeframe Timeframe `mapstructure:"timeframe"`
}

func (p *GetCalendarEventsParams) Validate() error {
	switch Timeframe(strings.ToLower(string(p.Timeframe))) {
	case "", TimeframeDay, "today":
		p.Timeframe = TimeframeDay
	case TimeframeWeek:
		p.Timeframe = TimeframeWeek
	case TimeframeMonth:
		p.Timeframe = TimeframeMonth
	default:
		return NewValidationError("timeframe", fmt.Sprintf("unknown timeframe %q, use day, week or month", p.Timeframe))
	}
	return nil
}

type TimeBlock struct {
	Title       string `mapstructure:"title"`
	StartTime   string `mapstructure:"start_time"`
	EndTime     string `mapstructure:"end_time"`
	Description string `mapstructure:"description"`
}

type TimeblockDayParams struct {
	Date   string      `mapstructure:"date"`
	Blocks []TimeBlock `mapstructure:"blocks"`
}

func (p *TimeblockDayParams) Validate() error {
	if len(p.Blocks) == 0 {
		return NewValidationError("blocks", "at least one block is required")
	}
	for i, b := range p.Blocks {
		if strings.TrimSpace(b.Title) == "" {
			return NewValidationError(fmt.Sprintf("blocks[%d].title", i), "is required")
		}
	}
	return nil
}

type CreateNoteParams struct {
	Title   string `mapstructure:"title"`
	Content string `mapstructure:"content"`
	Folder  string `mapstructure:"folder"`
}

const derivedTitleLength = 50

func (p *CreateNoteParams) Validate() error {
	p.Content = strings.TrimSpace(p.Content)
	if err := required("content", p.Content); err != nil {
		return err
	}
	if strings.TrimSpace(p.Title) == "" {
		p.Title = Truncate(p.Content, derivedTitleLength)
	}
	if strings.TrimSpace(p.Folder) == "" {
		p.Folder = DefaultNoteFolder
	}
	return nil
}

type GetNotesParams struct {
	Folder string `mapstructure:"folder"`
	Query  string `mapstructure:"query"`
}

func (p *GetNotesParams) Validate() error {
	p.Folder = strings.TrimSpace(p.Folder)
	p.Query = strings.TrimSpace(p.Query)
	return nil
}

// Truncate shortens s to n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
