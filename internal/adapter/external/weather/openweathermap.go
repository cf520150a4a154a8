package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
	"github.com/seu-repo/vox-assistant/internal/infrastructure/circuitbreaker"
)

const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Client reads current conditions from OpenWeatherMap in metric units.
type Client struct {
	apiKey  string
	baseURL string
	http    *circuitbreaker.HTTPClient
	log     *zap.Logger
}

func NewClient(apiKey, baseURL string, httpClient *circuitbreaker.HTTPClient, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

type currentResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

func (c *Client) Current(ctx context.Context, location string) (*domain.WeatherReport, error) {
	if c.apiKey == "" {
		return nil, errors.New("weather service is not configured")
	}

	q := url.Values{}
	q.Set("q", location)
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var body currentResponse
	if err := c.http.DoJSON(req, &body); err != nil {
		var ext *domain.ExternalServiceError
		if errors.As(err, &ext) && ext.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("I couldn't find weather for %q", location)
		}
		return nil, err
	}

	name := body.Name
	if name == "" {
		name = location
	} else if body.Sys.Country != "" {
		name += ", " + body.Sys.Country
	}
	report := &domain.WeatherReport{
		Location:   name,
		TempC:      round1(body.Main.Temp),
		FeelsLikeC: round1(body.Main.FeelsLike),
		Humidity:   body.Main.Humidity,
		WindKPH:    round1(body.Wind.Speed * 3.6),
	}
	if len(body.Weather) > 0 {
		report.Description = body.Weather[0].Description
	}
	return report, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
