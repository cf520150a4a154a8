package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
	"github.com/seu-repo/vox-assistant/internal/infrastructure/circuitbreaker"
)

const (
	DefaultCalendarURL = "https://www.googleapis.com/calendar/v3"
	maxListedEvents    = 50
)

type CalendarClient struct {
	baseURL string
	http    *circuitbreaker.HTTPClient
	log     *zap.Logger
}

func NewCalendarClient(baseURL string, httpClient *circuitbreaker.HTTPClient, log *zap.Logger) *CalendarClient {
	if baseURL == "" {
		baseURL = DefaultCalendarURL
	}
	return &CalendarClient{
		baseURL: baseURL,
		http:    httpClient,
		log:     log,
	}
}

type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type event struct {
	ID          string    `json:"id,omitempty"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	HTMLLink    string    `json:"htmlLink,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

func (e event) toDomain() domain.CalendarEvent {
	return domain.CalendarEvent{
		ID:          e.ID,
		Title:       e.Summary,
		Start:       e.Start.parse(),
		End:         e.End.parse(),
		Location:    e.Location,
		Description: e.Description,
		Link:        e.HTMLLink,
	}
}

// parse handles timed events (RFC 3339) and all-day events (plain date).
func (t eventTime) parse() time.Time {
	if t.DateTime != "" {
		if ts, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return ts
		}
	}
	if t.Date != "" {
		loc := time.UTC
		if t.TimeZone != "" {
			if l, err := time.LoadLocation(t.TimeZone); err == nil {
				loc = l
			}
		}
		if ts, err := time.ParseInLocation("2006-01-02", t.Date, loc); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func (c *CalendarClient) CreateEvent(ctx context.Context, token string, in domain.EventInput) (*domain.CalendarEvent, error) {
	body, err := json.Marshal(event{
		Summary:     in.Title,
		Description: in.Description,
		Location:    in.Location,
		Start:       eventTime{DateTime: in.Start.Format(time.RFC3339), TimeZone: in.TimeZone},
		End:         eventTime{DateTime: in.End.Format(time.RFC3339), TimeZone: in.TimeZone},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/calendars/primary/events", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var created event
	if err := c.http.DoJSON(req, &created); err != nil {
		return nil, err
	}

	c.log.Debug("calendar event created", zap.String("event_id", created.ID))
	ev := created.toDomain()
	return &ev, nil
}

// ListEvents returns single events overlapping [timeMin, timeMax) in start order.
func (c *CalendarClient) ListEvents(ctx context.Context, token string, timeMin, timeMax time.Time) ([]domain.CalendarEvent, error) {
	q := url.Values{}
	q.Set("timeMin", timeMin.Format(time.RFC3339))
	q.Set("timeMax", timeMax.Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	q.Set("maxResults", fmt.Sprint(maxListedEvents))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/calendars/primary/events?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var page struct {
		Items []event `json:"items"`
	}
	if err := c.http.DoJSON(req, &page); err != nil {
		return nil, err
	}

	events := make([]domain.CalendarEvent, 0, len(page.Items))
	for _, item := range page.Items {
		events = append(events, item.toDomain())
	}
	return events, nil
}
