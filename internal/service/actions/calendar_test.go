package actions

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

func TestAddCalendarEvent_DefaultsToOneHour(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	out := f.svc.AddCalendarEvent(context.Background(), "user-1", domain.AddCalendarEventParams{
		Title:     "Dentist",
		StartTime: "3pm",
		Date:      "tomorrow",
	})

	// Assert
	assertSuccess(t, out)
	if len(f.calendar.Created) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.calendar.Created))
	}
	in := f.calendar.Created[0]
	wantStart := time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)
	if !in.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", in.Start, wantStart)
	}
	if in.End.Sub(in.Start) != time.Hour {
		t.Errorf("expected a one hour event, got %v", in.End.Sub(in.Start))
	}
	if in.TimeZone != "UTC" {
		t.Errorf("expected UTC time zone, got %q", in.TimeZone)
	}
}

func TestAddCalendarEvent_ExplicitEnd(t *testing.T) {
	f := newFixture(t)

	out := f.svc.AddCalendarEvent(context.Background(), "user-1", domain.AddCalendarEventParams{
		Title:     "Workshop",
		StartTime: "13:00",
		EndTime:   "16:30",
	})

	assertSuccess(t, out)
	in := f.calendar.Created[0]
	if in.End.Sub(in.Start) != 3*time.Hour+30*time.Minute {
		t.Errorf("unexpected duration %v", in.End.Sub(in.Start))
	}
}

func TestAddCalendarEvent_BadTime(t *testing.T) {
	f := newFixture(t)

	out := f.svc.AddCalendarEvent(context.Background(), "user-1", domain.AddCalendarEventParams{Title: "x", StartTime: "after lunch"})

	assertFailure(t, out, "understand the time")
	if len(f.calendar.Created) != 0 {
		t.Error("no event should be created")
	}
}

func TestAddCalendarEvent_NotConnected(t *testing.T) {
	f := newFixture(t)
	f.tokens.AccessTokenFunc = func(ctx context.Context, userID, provider string) (string, error) {
		return "", domain.ErrNotConnected
	}

	out := f.svc.AddCalendarEvent(context.Background(), "user-1", domain.AddCalendarEventParams{Title: "x", StartTime: "9am"})

	assertFailure(t, out, "Google Calendar is not connected")
}

func TestGetCalendarEvents_EmptyVersusEnded(t *testing.T) {
	ended := domain.CalendarEvent{
		ID:    "1",
		Title: "Standup",
		Start: testNow.Add(-2 * time.Hour),
		End:   testNow.Add(-time.Hour),
	}

	tests := []struct {
		name   string
		events []domain.CalendarEvent
		want   string
	}{
		{"nothing scheduled", nil, "You have no events today."},
		{"only past events", []domain.CalendarEvent{ended}, "You have no upcoming events today."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.calendar.ListEventsFunc = func(ctx context.Context, token string, from, to time.Time) ([]domain.CalendarEvent, error) {
				return tt.events, nil
			}

			out := f.svc.GetCalendarEvents(context.Background(), "user-1", domain.GetCalendarEventsParams{Timeframe: domain.TimeframeDay})

			assertSuccess(t, out)
			if out.SpokenResponse != tt.want {
				t.Errorf("got %q, want %q", out.SpokenResponse, tt.want)
			}
		})
	}
}

func TestGetCalendarEvents_FiltersEndedAndUsesWindow(t *testing.T) {
	// Arrange
	f := newFixture(t)
	var gotFrom, gotTo time.Time
	f.calendar.ListEventsFunc = func(ctx context.Context, token string, from, to time.Time) ([]domain.CalendarEvent, error) {
		gotFrom, gotTo = from, to
		return []domain.CalendarEvent{
			{ID: "1", Title: "Standup", Start: testNow.Add(-2 * time.Hour), End: testNow.Add(-time.Hour)},
			{ID: "2", Title: "Review", Start: testNow.Add(-30 * time.Minute), End: testNow.Add(30 * time.Minute)},
			{ID: "3", Title: "Lunch", Start: testNow.Add(3 * time.Hour), End: testNow.Add(4 * time.Hour), Location: "Cafe"},
		}, nil
	}

	// Act
	out := f.svc.GetCalendarEvents(context.Background(), "user-1", domain.GetCalendarEventsParams{Timeframe: domain.TimeframeWeek})

	// Assert
	assertSuccess(t, out)
	if !gotFrom.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) || !gotTo.Equal(time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected window [%v, %v)", gotFrom, gotTo)
	}
	if strings.Contains(out.DisplayResponse, "Standup") {
		t.Error("ended event should be filtered out")
	}
	if !strings.Contains(out.DisplayResponse, "Review") || !strings.Contains(out.DisplayResponse, "Lunch (Cafe)") {
		t.Errorf("unexpected display %q", out.DisplayResponse)
	}
	if out.Data["count"] != 2 {
		t.Errorf("expected count 2, got %v", out.Data["count"])
	}
}

func TestGetCalendarEvents_DateWinsOverTimeframe(t *testing.T) {
	f := newFixture(t)
	var gotFrom, gotTo time.Time
	f.calendar.ListEventsFunc = func(ctx context.Context, token string, from, to time.Time) ([]domain.CalendarEvent, error) {
		gotFrom, gotTo = from, to
		return nil, nil
	}

	out := f.svc.GetCalendarEvents(context.Background(), "user-1", domain.GetCalendarEventsParams{Date: "friday", Timeframe: domain.TimeframeMonth})

	assertSuccess(t, out)
	wantFrom := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	if !gotFrom.Equal(wantFrom) || gotTo.Sub(gotFrom) != 24*time.Hour {
		t.Errorf("unexpected window [%v, %v)", gotFrom, gotTo)
	}
	if !strings.Contains(out.SpokenResponse, "on Fri, Mar 13") {
		t.Errorf("unexpected response %q", out.SpokenResponse)
	}
}

func TestTimeblockDay_PartialSuccess(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.calendar.CreateEventFunc = func(ctx context.Context, token string, in domain.EventInput) (*domain.CalendarEvent, error) {
		if in.Title == "Email" {
			return nil, errors.New("quota exceeded")
		}
		return &domain.CalendarEvent{ID: in.Title, Title: in.Title, Start: in.Start, End: in.End}, nil
	}
	params := domain.TimeblockDayParams{Blocks: []domain.TimeBlock{
		{Title: "Deep work", StartTime: "9am", EndTime: "11am"},
		{Title: "Email", StartTime: "11am", EndTime: "11:30am"},
		{Title: "Gym", StartTime: "18:00"},
	}}

	// Act
	out := f.svc.TimeblockDay(context.Background(), "user-1", params)

	// Assert
	assertSuccess(t, out)
	created, _ := out.Data["created_events"].([]string)
	failed, _ := out.Data["failed_events"].([]string)
	if len(created) != 2 {
		t.Errorf("expected 2 created events, got %v", created)
	}
	if !reflect.DeepEqual(failed, []string{"Email"}) {
		t.Errorf("expected failed [Email], got %v", failed)
	}
	for _, want := range []string{"Deep work", "Gym", "Failed to create: Email"} {
		if !strings.Contains(out.DisplayResponse, want) {
			t.Errorf("expected %q in %q", want, out.DisplayResponse)
		}
	}
}

func TestTimeblockDay_AllFail(t *testing.T) {
	f := newFixture(t)
	f.calendar.CreateEventFunc = func(ctx context.Context, token string, in domain.EventInput) (*domain.CalendarEvent, error) {
		return nil, errors.New("calendar down")
	}

	out := f.svc.TimeblockDay(context.Background(), "user-1", domain.TimeblockDayParams{Blocks: []domain.TimeBlock{
		{Title: "A", StartTime: "9am"},
		{Title: "B", StartTime: "noonish"},
	}})

	assertFailure(t, out, "A, B")
}
