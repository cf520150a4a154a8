package domain

// ExecutionOutcome is what a handler reports back for one intent.
type ExecutionOutcome struct {
	Success         bool           `json:"success"`
	DisplayResponse string         `json:"display_response,omitempty"`
	SpokenResponse  string         `json:"spoken_response,omitempty"`
	Response        string         `json:"response,omitempty"`
	Error           string         `json:"error,omitempty"`
	Data            map[string]any `json:"data,omitempty"`
}

const (
	fallbackError    = "Something went wrong while handling that request."
	fallbackResponse = "Done."
)

// Succeeded builds a successful outcome with display and spoken text.
func Succeeded(display, spoken string) ExecutionOutcome {
	return ExecutionOutcome{
		Success:         true,
		DisplayResponse: display,
		SpokenResponse:  spoken,
	}
}

// Failed builds a failed outcome carrying a user-facing message.
func Failed(message string) ExecutionOutcome {
	return ExecutionOutcome{Success: false, Error: message}
}

// WithData attaches handler-specific identifiers to the outcome.
func (o ExecutionOutcome) WithData(key string, value any) ExecutionOutcome {
	data := make(map[string]any, len(o.Data)+1)
	for k, v := range o.Data {
		data[k] = v
	}
	data[key] = value
	o.Data = data
	return o
}

// Normalize enforces the outcome invariants: a failure always carries an
// error and a success always carries something to display.
func (o ExecutionOutcome) Normalize() ExecutionOutcome {
	if !o.Success && o.Error == "" {
		o.Error = fallbackError
	}
	if o.Success && o.DisplayResponse == "" && o.Response == "" {
		o.Response = fallbackResponse
	}
	return o
}

// Detail is the text shown to the user for a successful outcome.
func (o ExecutionOutcome) Detail() string {
	if o.DisplayResponse != "" {
		return o.DisplayResponse
	}
	return o.Response
}

// SpeechText is the text handed to speech synthesis.
func (o ExecutionOutcome) SpeechText() string {
	switch {
	case o.SpokenResponse != "":
		return o.SpokenResponse
	case o.Response != "":
		return o.Response
	case o.DisplayResponse != "":
		return o.DisplayResponse
	default:
		return o.Error
	}
}

// StepResult is one line of a multi-intent batch.
type StepResult struct {
	Kind    IntentKind       `json:"intent"`
	Outcome ExecutionOutcome `json:"outcome"`
}

// AggregatedOutcome summarises a multi-intent batch. It is derived and never
// persisted; each step keeps its own ActionRecord.
type AggregatedOutcome struct {
	Success         bool         `json:"success"`
	DisplayResponse string       `json:"display_response"`
	SpokenResponse  string       `json:"spoken_response"`
	Steps           []StepResult `json:"steps"`
}

// Completed counts successful steps.
func (a *AggregatedOutcome) Completed() int {
	n := 0
	for _, s := range a.Steps {
		if s.Outcome.Success {
			n++
		}
	}
	return n
}
