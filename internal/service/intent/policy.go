// Package intent decides whether intents need confirmation, routes them to
// their handlers and keeps the audit trail of every attempt.
package intent

import "github.com/seu-repo/vox-assistant/internal/domain"

// RequiresConfirmation reports whether the batch must be approved by the
// user before it runs. One confirm-required intent gates the whole batch.
func RequiresConfirmation(intents []domain.Intent) bool {
	for _, in := range intents {
		if NeedsConfirmation(in.Kind) {
			return true
		}
	}
	return false
}

// NeedsConfirmation classifies a single kind. Read-only lookups and memory
// appends run immediately; anything else waits for approval, including kinds
// outside the catalog.
func NeedsConfirmation(kind domain.IntentKind) bool {
	switch kind {
	case domain.IntentGetTasks,
		domain.IntentGetNotes,
		domain.IntentGetCalendarEvents,
		domain.IntentGetWeather,
		domain.IntentGetNews,
		domain.IntentRemember,
		domain.IntentOther:
		return false
	case domain.IntentCreateTask,
		domain.IntentUpdateTask,
		domain.IntentSendEmail,
		domain.IntentAddCalendarEvent,
		domain.IntentTimeblockDay,
		domain.IntentCreateNote:
		return true
	default:
		return true
	}
}
