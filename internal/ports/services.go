package ports

import (
	"context"
	"time"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

// TokenProvider returns a valid bearer token for a user's integration.
// It fails with domain.ErrNotConnected when the user never connected the
// provider or the grant was revoked.
type TokenProvider interface {
	AccessToken(ctx context.Context, userID, provider string) (string, error)
}

type CalendarClient interface {
	CreateEvent(ctx context.Context, token string, in domain.EventInput) (*domain.CalendarEvent, error)
	ListEvents(ctx context.Context, token string, timeMin, timeMax time.Time) ([]domain.CalendarEvent, error)
}

// MailClient sends a base64url-encoded RFC 2822 message.
type MailClient interface {
	SendRaw(ctx context.Context, token, raw string) (string, error)
}

type WeatherClient interface {
	Current(ctx context.Context, location string) (*domain.WeatherReport, error)
}

// TimeParser resolves a spoken time of day against a base date.
type TimeParser interface {
	ParseTime(text string, base time.Time) (time.Time, error)
	ParseDate(text string, now time.Time) (time.Time, error)
}

// SpeechSynthesizer turns text into a playable audio reference.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// IntentSource extracts structured intents from a transcript.
type IntentSource interface {
	Extract(ctx context.Context, transcript string, history []domain.ActionRecord) ([]domain.Intent, error)
}
