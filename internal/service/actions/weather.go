package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
	"github.com/seu-repo/vox-assistant/internal/observability/telemetry"
	"github.com/seu-repo/vox-assistant/internal/ports"
)

var knowledgeLocation = regexp.MustCompile(`(?im)(?:live in|living in|based in|located in|location(?: is)?:?|city(?: is)?:?)[ \t]+(\p{L}[\p{L}'\-]*(?:[ \t]\p{L}[\p{L}'\-]*){0,3})`)

func (s *Service) GetWeather(ctx context.Context, userID string, p domain.GetWeatherParams) domain.ExecutionOutcome {
	midnight := s.today()
	used, err := within(ctx, s, "action store", func(ctx context.Context) (int64, error) {
		return s.deps.Actions.CountTerminalSince(ctx, domain.IntentGetWeather, midnight)
	})
	if err != nil {
		return s.fail(domain.IntentGetWeather, userID, "Failed to check weather usage", err)
	}
	if used >= int64(s.opts.WeatherDailyLimit) {
		telemetry.WeatherDeclinesTotal.Inc()
		s.log.Info("weather lookup declined, daily limit reached",
			zap.Int64("used", used),
			zap.Int("limit", s.opts.WeatherDailyLimit),
		)
		return domain.Succeeded(
			"🌤️ I've reached my weather lookup limit for today. Please try again tomorrow.",
			"I've checked the weather too many times today. Please try again tomorrow.",
		).WithData("rate_limited", true)
	}

	location := p.Location
	if location == "" {
		location = s.locationFromProfile(ctx, userID)
	}

	report, err := s.weatherFor(ctx, location)
	if err != nil {
		return s.fail(domain.IntentGetWeather, userID, "Failed to get the weather", err)
	}

	display := fmt.Sprintf("🌤️ Weather in %s: %s, %d°C (feels like %d°C), humidity %d%%, wind %d km/h",
		report.Location, report.Description, round(report.TempC), round(report.FeelsLikeC), report.Humidity, round(report.WindKPH))
	spoken := fmt.Sprintf("It's %d degrees with %s in %s.", round(report.TempC), report.Description, report.Location)
	return domain.Succeeded(display, spoken).WithData("location", report.Location)
}

func (s *Service) locationFromProfile(ctx context.Context, userID string) string {
	kb, err := s.knowledgeBase(ctx, userID)
	if err != nil {
		s.log.Warn("knowledge base unavailable for weather location", zap.String("user_id", userID), zap.Error(err))
		return s.opts.DefaultLocation
	}
	if m := knowledgeLocation.FindStringSubmatch(kb); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s.opts.DefaultLocation
}

// weatherFor reads through the cache. Cache failures only cost a lookup.
func (s *Service) weatherFor(ctx context.Context, location string) (*domain.WeatherReport, error) {
	key := "weather:" + strings.ToLower(location)
	if s.deps.Cache != nil {
		cached, err := s.deps.Cache.Get(ctx, key)
		if err == nil {
			var report domain.WeatherReport
			if json.Unmarshal([]byte(cached), &report) == nil {
				return &report, nil
			}
		} else if !errors.Is(err, ports.ErrCacheMiss) {
			s.log.Warn("weather cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	report, err := within(ctx, s, "Weather service", func(ctx context.Context) (*domain.WeatherReport, error) {
		return s.deps.Weather.Current(ctx, location)
	})
	if err != nil {
		return nil, err
	}

	if s.deps.Cache != nil {
		if raw, err := json.Marshal(report); err == nil {
			if err := s.deps.Cache.Set(ctx, key, string(raw), s.opts.WeatherCacheTTL); err != nil {
				s.log.Warn("weather cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return report, nil
}

func round(f float64) int {
	return int(math.Round(f))
}
