package domain

import (
	"encoding/json"
	"fmt"
)

// IntentKind selects the action handler for an intent.
type IntentKind string

const (
	IntentCreateTask        IntentKind = "create_task"
	IntentGetTasks          IntentKind = "get_tasks"
	IntentUpdateTask        IntentKind = "update_task"
	IntentSendEmail         IntentKind = "send_email"
	IntentRemember          IntentKind = "remember"
	IntentGetWeather        IntentKind = "get_weather"
	IntentGetNews           IntentKind = "get_news"
	IntentAddCalendarEvent  IntentKind = "add_calendar_event"
	IntentGetCalendarEvents IntentKind = "get_calendar_events"
	IntentTimeblockDay      IntentKind = "timeblock_day"
	IntentCreateNote        IntentKind = "create_note"
	IntentGetNotes          IntentKind = "get_notes"
	IntentOther             IntentKind = "other"
)

// IntentKinds lists every kind the assistant understands, in catalog order.
var IntentKinds = []IntentKind{
	IntentCreateTask,
	IntentGetTasks,
	IntentUpdateTask,
	IntentSendEmail,
	IntentRemember,
	IntentGetWeather,
	IntentGetNews,
	IntentAddCalendarEvent,
	IntentGetCalendarEvents,
	IntentTimeblockDay,
	IntentCreateNote,
	IntentGetNotes,
	IntentOther,
}

// Known reports whether k is part of the intent catalog.
func (k IntentKind) Known() bool {
	for _, known := range IntentKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k IntentKind) String() string {
	return string(k)
}

// Intent is the structured output of the upstream language-understanding step.
type Intent struct {
	Kind                    IntentKind     `json:"intent"`
	NaturalLanguageResponse string         `json:"natural_language_response,omitempty"`
	Parameters              map[string]any `json:"parameters,omitempty"`
}

// Clone returns a deep copy of the intent with parameters normalized to plain
// JSON values. The receiver is never modified.
func (i Intent) Clone() (Intent, error) {
	out := Intent{
		Kind:                    i.Kind,
		NaturalLanguageResponse: i.NaturalLanguageResponse,
		Parameters:              map[string]any{},
	}
	if len(i.Parameters) == 0 {
		return out, nil
	}

	raw, err := json.Marshal(i.Parameters)
	if err != nil {
		return Intent{}, &ValidationError{Field: "parameters", Message: fmt.Sprintf("parameters are not serializable: %v", err)}
	}
	if err := json.Unmarshal(raw, &out.Parameters); err != nil {
		return Intent{}, &ValidationError{Field: "parameters", Message: fmt.Sprintf("parameters are not an object: %v", err)}
	}
	return out, nil
}
