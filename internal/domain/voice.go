package domain

type VoiceResponse struct {
	SessionID            string             `json:"session_id"`
	Transcript           string             `json:"transcript"`
	Text                 string             `json:"text"`
	SpokenText           string             `json:"spoken_text,omitempty"`
	Audio                string             `json:"audio,omitempty"` // audio asset reference
	Intents              []Intent           `json:"intents,omitempty"`
	RequiresConfirmation bool               `json:"requires_confirmation"`
	Outcome              *ExecutionOutcome  `json:"outcome,omitempty"`
	Aggregate            *AggregatedOutcome `json:"aggregate,omitempty"`
}

// PendingBatch is a set of intents waiting for the user's approval.
type PendingBatch struct {
	UserID     string   `json:"user_id"`
	SessionID  string   `json:"session_id"`
	Transcript string   `json:"transcript"`
	Intents    []Intent `json:"intents"`
}
