package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

const (
	calendarNotConnected = "Google Calendar is not connected. Connect it in Settings → Integrations to manage your events."
	defaultEventLength   = 60 * time.Minute
	clockFormat          = "3:04 PM"
	dayFormat            = "Mon, Jan 2"
)

func (s *Service) AddCalendarEvent(ctx context.Context, userID string, p domain.AddCalendarEventParams) domain.ExecutionOutcome {
	day, err := s.resolveDate(p.Date)
	if err != nil {
		return domain.Failed(userMessage(err))
	}
	start, end, err := s.resolveSpan(day, p.StartTime, p.EndTime)
	if err != nil {
		return domain.Failed(userMessage(err))
	}

	token, failure, ok := s.calendarToken(ctx, domain.IntentAddCalendarEvent, userID)
	if !ok {
		return failure
	}

	event, err := withinWrite(ctx, s, "Google Calendar", func(ctx context.Context) (*domain.CalendarEvent, error) {
		return s.deps.Calendar.CreateEvent(ctx, token, domain.EventInput{
			Title:       p.Title,
			Start:       start,
			End:         end,
			Location:    p.Location,
			Description: p.Description,
			TimeZone:    s.opts.Location.String(),
		})
	})
	if err != nil {
		return s.fail(domain.IntentAddCalendarEvent, userID, "Failed to create the event", err)
	}

	display := fmt.Sprintf("📅 Event created: %s on %s, %s - %s",
		p.Title, start.Format(dayFormat), start.Format(clockFormat), end.Format(clockFormat))
	if p.Location != "" {
		display += fmt.Sprintf(" at %s", p.Location)
	}
	spoken := fmt.Sprintf("I've added %s to your calendar on %s at %s.", p.Title, start.Format("Monday"), start.Format(clockFormat))
	return domain.Succeeded(display, spoken).
		WithData("event_id", event.ID).
		WithData("link", event.Link)
}

func (s *Service) GetCalendarEvents(ctx context.Context, userID string, p domain.GetCalendarEventsParams) domain.ExecutionOutcome {
	from, to, period, err := s.eventWindow(p)
	if err != nil {
		return domain.Failed(userMessage(err))
	}

	token, failure, ok := s.calendarToken(ctx, domain.IntentGetCalendarEvents, userID)
	if !ok {
		return failure
	}

	events, err := within(ctx, s, "Google Calendar", func(ctx context.Context) ([]domain.CalendarEvent, error) {
		return s.deps.Calendar.ListEvents(ctx, token, from, to)
	})
	if err != nil {
		return s.fail(domain.IntentGetCalendarEvents, userID, "Failed to load your events", err)
	}
	if len(events) == 0 {
		msg := fmt.Sprintf("You have no events %s.", period)
		return domain.Succeeded("📅 "+msg, msg)
	}

	now := s.now()
	var upcoming []domain.CalendarEvent
	for _, e := range events {
		end := e.End
		if end.IsZero() {
			end = e.Start
		}
		if end.After(now) {
			upcoming = append(upcoming, e)
		}
	}
	if len(upcoming) == 0 {
		msg := fmt.Sprintf("You have no upcoming events %s.", period)
		return domain.Succeeded("📅 "+msg, msg)
	}

	multiDay := p.Date == "" && p.Timeframe != domain.TimeframeDay
	var b strings.Builder
	fmt.Fprintf(&b, "📅 Your events %s:", period)
	titles := make([]string, 0, len(upcoming))
	for _, e := range upcoming {
		start := e.Start.In(s.opts.Location)
		when := start.Format(clockFormat)
		if multiDay {
			when = start.Format(dayFormat) + " " + when
		}
		fmt.Fprintf(&b, "\n• %s - %s", when, e.Title)
		if e.Location != "" {
			fmt.Fprintf(&b, " (%s)", e.Location)
		}
		titles = append(titles, e.Title)
	}
	spoken := fmt.Sprintf("You have %d %s %s: %s.",
		len(upcoming), plural(len(upcoming), "event", "events"), period, joinSpoken(titles, maxTaskSuggestions))
	return domain.Succeeded(b.String(), spoken).WithData("count", len(upcoming))
}

func (s *Service) TimeblockDay(ctx context.Context, userID string, p domain.TimeblockDayParams) domain.ExecutionOutcome {
	day, err := s.resolveDate(p.Date)
	if err != nil {
		return domain.Failed(userMessage(err))
	}

	token, failure, ok := s.calendarToken(ctx, domain.IntentTimeblockDay, userID)
	if !ok {
		return failure
	}

	created := []string{}
	failed := []string{}
	var lines []string
	for _, block := range p.Blocks {
		start, end, err := s.resolveSpan(day, block.StartTime, block.EndTime)
		if err == nil {
			_, err = withinWrite(ctx, s, "Google Calendar", func(ctx context.Context) (*domain.CalendarEvent, error) {
				return s.deps.Calendar.CreateEvent(ctx, token, domain.EventInput{
					Title:       block.Title,
					Start:       start,
					End:         end,
					Description: block.Description,
					TimeZone:    s.opts.Location.String(),
				})
			})
		}
		if err != nil {
			s.log.Warn("time block failed",
				zap.String("user_id", userID),
				zap.String("block", block.Title),
				zap.Error(err),
			)
			failed = append(failed, block.Title)
			continue
		}
		created = append(created, block.Title)
		lines = append(lines, fmt.Sprintf("✓ %s - %s %s", start.Format(clockFormat), end.Format(clockFormat), block.Title))
	}

	if len(created) == 0 {
		out := domain.Failed(fmt.Sprintf("I couldn't create any of your time blocks: %s.", strings.Join(failed, ", ")))
		return out.WithData("created_events", created).WithData("failed_events", failed)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🗓️ Time-blocked %s:\n%s", day.Format(dayFormat), strings.Join(lines, "\n"))
	spoken := fmt.Sprintf("I've added %d %s to your calendar.", len(created), plural(len(created), "time block", "time blocks"))
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\n\n⚠️ Failed to create: %s", strings.Join(failed, ", "))
		spoken += fmt.Sprintf(" %d could not be created.", len(failed))
	}
	return domain.Succeeded(b.String(), spoken).
		WithData("created_events", created).
		WithData("failed_events", failed)
}

// calendarToken returns the bearer token, or the outcome to report when none
// is available.
func (s *Service) calendarToken(ctx context.Context, kind domain.IntentKind, userID string) (string, domain.ExecutionOutcome, bool) {
	token, err := within(ctx, s, "Google", func(ctx context.Context) (string, error) {
		return s.deps.Tokens.AccessToken(ctx, userID, domain.ProviderGoogle)
	})
	if errors.Is(err, domain.ErrNotConnected) {
		return "", domain.Failed(calendarNotConnected), false
	}
	if err != nil {
		return "", s.fail(kind, userID, "Failed to reach Google Calendar", err), false
	}
	return token, domain.ExecutionOutcome{}, true
}

func (s *Service) resolveDate(text string) (time.Time, error) {
	if strings.TrimSpace(text) == "" {
		return s.today(), nil
	}
	return s.deps.Times.ParseDate(text, s.now())
}

// resolveSpan parses start and end on day. A missing or non-positive end
// becomes start plus the default event length.
func (s *Service) resolveSpan(day time.Time, startText, endText string) (time.Time, time.Time, error) {
	start, err := s.deps.Times.ParseTime(startText, day)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end := start.Add(defaultEventLength)
	if strings.TrimSpace(endText) != "" {
		parsed, err := s.deps.Times.ParseTime(endText, day)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if parsed.After(start) {
			end = parsed
		}
	}
	return start, end, nil
}

// eventWindow resolves [from, to). An explicit date wins over the timeframe.
func (s *Service) eventWindow(p domain.GetCalendarEventsParams) (time.Time, time.Time, string, error) {
	if strings.TrimSpace(p.Date) != "" {
		day, err := s.deps.Times.ParseDate(p.Date, s.now())
		if err != nil {
			return time.Time{}, time.Time{}, "", err
		}
		period := "on " + day.Format(dayFormat)
		if day.Equal(s.today()) {
			period = "today"
		}
		return day, day.AddDate(0, 0, 1), period, nil
	}

	today := s.today()
	switch p.Timeframe {
	case domain.TimeframeWeek:
		return today, today.AddDate(0, 0, 7), "this week", nil
	case domain.TimeframeMonth:
		return today, today.AddDate(0, 1, 0), "this month", nil
	default:
		return today, today.AddDate(0, 0, 1), "today", nil
	}
}
