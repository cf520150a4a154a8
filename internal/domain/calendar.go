package domain

import "time"

type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
}

// EventInput is what the calendar collaborator needs to create an event.
type EventInput struct {
	Title       string
	Start       time.Time
	End         time.Time
	Location    string
	Description string
	TimeZone    string
}
