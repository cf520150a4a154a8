package domain

import "time"

type ActionStatus string

const (
	ActionStatusPending        ActionStatus = "pending"
	ActionStatusCompleted      ActionStatus = "completed"
	ActionStatusFailed         ActionStatus = "failed"
	ActionStatusConversational ActionStatus = "conversational"
)

// Terminal reports whether the status is final.
func (s ActionStatus) Terminal() bool {
	return s != ActionStatusPending
}

// ActionRecord is the audit row for one attempted intent. It is created
// pending and updated once to a terminal status.
type ActionRecord struct {
	ID         string            `json:"id" gorm:"primaryKey"`
	UserID     string            `json:"user_id" gorm:"index"`
	SessionID  string            `json:"session_id" gorm:"index"`
	Transcript string            `json:"transcript"`
	IntentKind IntentKind        `json:"intent" gorm:"index"`
	Parameters map[string]any    `json:"parameters" gorm:"serializer:json;type:text"`
	Status     ActionStatus      `json:"status" gorm:"index"`
	Result     *ExecutionOutcome `json:"result,omitempty" gorm:"serializer:json;type:text"`
	CreatedAt  time.Time         `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (ActionRecord) TableName() string {
	return "actions"
}

// ActionEvent is published once an ActionRecord reaches a terminal status.
type ActionEvent struct {
	ActionID  string       `json:"action_id"`
	UserID    string       `json:"user_id"`
	SessionID string       `json:"session_id,omitempty"`
	Intent    IntentKind   `json:"intent"`
	Status    ActionStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
}
