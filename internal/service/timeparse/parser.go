// Package timeparse resolves the time and date strings produced by the
// intent extractor into absolute timestamps.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

var (
	clock24 = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	clock12 = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\.?$`)
)

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// ParseTime accepts "HH:MM" (24-hour) and "H[:MM] am|pm" and places the time
// on base's calendar day in base's location.
func (p *Parser) ParseTime(text string, base time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(text))

	if m := clock24.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return time.Time{}, invalidTime(text)
		}
		return at(base, hour, minute), nil
	}

	if m := clock12.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 || minute > 59 {
			return time.Time{}, invalidTime(text)
		}
		if m[3] == "p" && hour != 12 {
			hour += 12
		}
		if m[3] == "a" && hour == 12 {
			hour = 0
		}
		return at(base, hour, minute), nil
	}

	return time.Time{}, invalidTime(text)
}

// ParseDate resolves relative day words, weekday names and explicit dates to
// midnight of that day in now's location.
func (p *Parser) ParseDate(text string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	today := StartOfDay(now)

	switch s {
	case "", "today", "tonight":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == "next "+name || s == "this "+name {
			delta := (int(d) - int(today.Weekday()) + 7) % 7
			if delta == 0 && strings.HasPrefix(s, "next ") {
				delta = 7
			}
			return today.AddDate(0, 0, delta), nil
		}
	}

	t, err := dateparse.ParseIn(text, now.Location())
	if err != nil {
		return time.Time{}, domain.NewValidationError("date", fmt.Sprintf("could not understand the date %q", text))
	}
	return StartOfDay(t), nil
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func at(base time.Time, hour, minute int) time.Time {
	y, m, d := base.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, base.Location())
}

func invalidTime(text string) error {
	return domain.NewValidationError("time", fmt.Sprintf("could not understand the time %q, use a form like 14:30 or 2:30 pm", text))
}
