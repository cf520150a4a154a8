package actions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

func seedWeatherRecords(f *fixture, n int, status domain.ActionStatus, at time.Time) {
	for i := 0; i < n; i++ {
		f.actions.Records = append(f.actions.Records, &domain.ActionRecord{
			ID:         fmt.Sprintf("w-%s-%d-%d", status, at.Unix(), i),
			UserID:     fmt.Sprintf("user-%d", i%7),
			IntentKind: domain.IntentGetWeather,
			Status:     status,
			CreatedAt:  at,
		})
	}
}

func TestGetWeather_DailyCapSoftDeclines(t *testing.T) {
	// Arrange
	f := newFixture(t)
	seedWeatherRecords(f, 100, domain.ActionStatusCompleted, testNow.Add(-time.Hour))

	// Act
	out := f.svc.GetWeather(context.Background(), "someone-else", domain.GetWeatherParams{Location: "Paris"})

	// Assert
	assertSuccess(t, out)
	if out.Data["rate_limited"] != true {
		t.Errorf("expected rate_limited flag, got %v", out.Data)
	}
	if f.weather.Calls != 0 {
		t.Errorf("weather API must not be called, got %d calls", f.weather.Calls)
	}
}

func TestGetWeather_CapIgnoresPendingAndYesterday(t *testing.T) {
	// Arrange
	f := newFixture(t)
	seedWeatherRecords(f, 99, domain.ActionStatusFailed, testNow.Add(-time.Hour))
	seedWeatherRecords(f, 1, domain.ActionStatusPending, testNow)
	seedWeatherRecords(f, 50, domain.ActionStatusCompleted, testNow.Add(-24*time.Hour))

	// Act
	out := f.svc.GetWeather(context.Background(), "user-1", domain.GetWeatherParams{Location: "Paris"})

	// Assert
	assertSuccess(t, out)
	if out.Data["rate_limited"] != nil {
		t.Error("request should not be declined below the cap")
	}
	if f.weather.Calls != 1 {
		t.Errorf("expected 1 weather call, got %d", f.weather.Calls)
	}
}

func TestGetWeather_LocationFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		knowledge string
		want      string
	}{
		{"from knowledge base", "### About me\nI live in New York.\nI like jazz", "New York"},
		{"location label", "location: Lisbon", "Lisbon"},
		{"sentence continues on the same line", "I live in London. I like tea and my sister is Jane", "London"},
		{"city before a comma", "I'm based in Rio de Janeiro, Brazil", "Rio de Janeiro"},
		{"default", "I like jazz", "London"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t)
			f.profiles.Profiles = map[string]*domain.Profile{
				"user-1": {UserID: "user-1", KnowledgeBase: tt.knowledge},
			}
			var asked string
			f.weather.CurrentFunc = func(ctx context.Context, location string) (*domain.WeatherReport, error) {
				asked = location
				return &domain.WeatherReport{Location: location, Description: "rain", TempC: 12.4}, nil
			}

			// Act
			out := f.svc.GetWeather(context.Background(), "user-1", domain.GetWeatherParams{})

			// Assert
			assertSuccess(t, out)
			if asked != tt.want {
				t.Errorf("asked for %q, want %q", asked, tt.want)
			}
		})
	}
}

func TestGetWeather_UsesCache(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	// Act
	first := f.svc.GetWeather(ctx, "user-1", domain.GetWeatherParams{Location: "Paris"})
	second := f.svc.GetWeather(ctx, "user-2", domain.GetWeatherParams{Location: "paris"})

	// Assert
	assertSuccess(t, first)
	assertSuccess(t, second)
	if f.weather.Calls != 1 {
		t.Errorf("expected the second lookup to hit the cache, got %d calls", f.weather.Calls)
	}
	if first.SpokenResponse != second.SpokenResponse {
		t.Errorf("cached response differs: %q vs %q", first.SpokenResponse, second.SpokenResponse)
	}
}

func TestGetWeather_UpstreamError(t *testing.T) {
	f := newFixture(t)
	f.weather.CurrentFunc = func(ctx context.Context, location string) (*domain.WeatherReport, error) {
		return nil, &domain.ExternalServiceError{Service: "openweathermap", StatusCode: 404, Message: "city not found"}
	}

	out := f.svc.GetWeather(context.Background(), "user-1", domain.GetWeatherParams{Location: "Atlantis"})

	assertFailure(t, out, "city not found")
}
