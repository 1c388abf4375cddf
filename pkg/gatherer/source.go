package gatherer

import (
	"context"
	"errors"
	"time"
)

// ErrCalendarUnavailable marks a calendar that could not be reached. The gatherer
// skips such calendars instead of failing the run.
var ErrCalendarUnavailable = errors.New("calendar unavailable")

// CalendarEvent is a raw event as delivered by a calendar. Start and End are either
// a date ("2006-01-02") or a full ISO 8601 date-time.
type CalendarEvent struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Delay holds the delay of a connection in minutes.
type Delay struct {
	Departure int `json:"delay_departure"`
	Arrival   int `json:"delay_arrival"`
}

// RawConnection is one connection record of the schedule source. Times are bare
// "HH:MM" strings without a date.
type RawConnection struct {
	Departure string   `json:"departure"`
	Arrival   string   `json:"arrival"`
	Transfers int      `json:"transfers"`
	Time      string   `json:"time"`
	Products  []string `json:"products"`
	Price     *float64 `json:"price,omitempty"`
	OnTime    *bool    `json:"ontime,omitempty"`
	Delay     Delay    `json:"delay"`
	Canceled  bool     `json:"canceled"`
	Details   string   `json:"details"`
}

// EventSource lists the events of one calendar in a time window.
type EventSource interface {
	FetchEvents(ctx context.Context, calendarID string, start time.Time, duration time.Duration) ([]CalendarEvent, error)
}

// ConnectionSource looks up train connections departing around a point in time.
type ConnectionSource interface {
	FetchConnections(ctx context.Context, origin, destination string, at time.Time) ([]RawConnection, error)
}
