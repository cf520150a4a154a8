package mocks

import (
	"context"
	"time"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

// MockTokenProvider is a mock implementation of TokenProvider
type MockTokenProvider struct {
	AccessTokenFunc func(ctx context.Context, userID, provider string) (string, error)
}

func (m *MockTokenProvider) AccessToken(ctx context.Context, userID, provider string) (string, error) {
	if m.AccessTokenFunc != nil {
		return m.AccessTokenFunc(ctx, userID, provider)
	}
	return "test-token", nil
}

// MockCalendarClient is a mock implementation of CalendarClient
type MockCalendarClient struct {
	CreateEventFunc func(ctx context.Context, token string, in domain.EventInput) (*domain.CalendarEvent, error)
	ListEventsFunc  func(ctx context.Context, token string, timeMin, timeMax time.Time) ([]domain.CalendarEvent, error)

	Created []domain.EventInput
}

func (m *MockCalendarClient) CreateEvent(ctx context.Context, token string, in domain.EventInput) (*domain.CalendarEvent, error) {
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(ctx, token, in)
	}
	m.Created = append(m.Created, in)
	return &domain.CalendarEvent{
		ID:    "evt-" + in.Title,
		Title: in.Title,
		Start: in.Start,
		End:   in.End,
		Link:  "https://calendar.example/" + in.Title,
	}, nil
}

func (m *MockCalendarClient) ListEvents(ctx context.Context, token string, timeMin, timeMax time.Time) ([]domain.CalendarEvent, error) {
	if m.ListEventsFunc != nil {
		return m.ListEventsFunc(ctx, token, timeMin, timeMax)
	}
	return nil, nil
}

// MockMailClient is a mock implementation of MailClient
type MockMailClient struct {
	SendRawFunc func(ctx context.Context, token, raw string) (string, error)

	Sent []string
}

func (m *MockMailClient) SendRaw(ctx context.Context, token, raw string) (string, error) {
	if m.SendRawFunc != nil {
		return m.SendRawFunc(ctx, token, raw)
	}
	m.Sent = append(m.Sent, raw)
	return "msg-1", nil
}

// MockWeatherClient is a mock implementation of WeatherClient
type MockWeatherClient struct {
	CurrentFunc func(ctx context.Context, location string) (*domain.WeatherReport, error)

	Calls int
}

func (m *MockWeatherClient) Current(ctx context.Context, location string) (*domain.WeatherReport, error) {
	m.Calls++
	if m.CurrentFunc != nil {
		return m.CurrentFunc(ctx, location)
	}
	return &domain.WeatherReport{
		Location:    location,
		Description: "clear sky",
		TempC:       21,
		FeelsLikeC:  20,
		Humidity:    40,
		WindKPH:     8,
	}, nil
}

// MockSpeechSynthesizer is a mock implementation of SpeechSynthesizer
type MockSpeechSynthesizer struct {
	SynthesizeFunc func(ctx context.Context, text string) (string, error)
}

func (m *MockSpeechSynthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text)
	}
	return "audio:" + text, nil
}

// MockIntentSource is a mock implementation of IntentSource
type MockIntentSource struct {
	ExtractFunc func(ctx context.Context, transcript string, history []domain.ActionRecord) ([]domain.Intent, error)
}

func (m *MockIntentSource) Extract(ctx context.Context, transcript string, history []domain.ActionRecord) ([]domain.Intent, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, transcript, history)
	}
	return []domain.Intent{{Kind: domain.IntentOther, NaturalLanguageResponse: "Okay."}}, nil
}
