package gatherer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CalendarEntry is a fetched calendar event bound to the calendar it came from.
type CalendarEntry struct {
	Calendar    string
	Start       string
	End         string
	Summary     string
	Description string
	Location    string

	startAt, endAt       time.Time
	startIsDay, endIsDay bool
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseCalendarTime reads a date-time or, failing that, a date. Times without an
// offset are taken to be in loc.
func parseCalendarTime(value string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateTimeLayouts {
		if t, err = time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc), false, nil
		}
	}
	t, err = time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("unrecognised calendar time %q", value)
	}
	return t, true, nil
}

func newCalendarEntry(calendar string, event CalendarEvent, loc *time.Location) (CalendarEntry, error) {
	entry := CalendarEntry{
		Calendar:    calendar,
		Start:       event.Start,
		End:         event.End,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
	}
	var err error
	if entry.startAt, entry.startIsDay, err = parseCalendarTime(event.Start, loc); err != nil {
		return CalendarEntry{}, err
	}
	if entry.endAt, entry.endIsDay, err = parseCalendarTime(event.End, loc); err != nil {
		return CalendarEntry{}, err
	}
	return entry, nil
}

// StartAt is the entry start; all-day entries start at local midnight.
func (e CalendarEntry) StartAt() time.Time { return e.startAt }

// EndAt is the entry end; all-day entries end at local midnight.
func (e CalendarEntry) EndAt() time.Time { return e.endAt }

// HasTimeOfDay reports whether both start and end carry a time of day.
func (e CalendarEntry) HasTimeOfDay() bool {
	return !e.startIsDay && !e.endIsDay
}

// PlannedTravelTime is a travel intent taken from one calendar entry.
type PlannedTravelTime struct {
	Start       time.Time `json:"start" yaml:"start"`
	End         time.Time `json:"end" yaml:"end"`
	Origin      string    `json:"origin" yaml:"origin"`
	Destination string    `json:"destination" yaml:"destination"`
}

// TravelInformation is one concrete connection. Departure and arrival date-times are
// resolved once against ReferenceTime when the value is built.
type TravelInformation struct {
	ReferenceTime  time.Time
	Departure      string
	Arrival        string
	OnTime         bool
	Transfers      int
	Time           string
	Products       []string
	Price          *float64
	DepartureDelay int
	ArrivalDelay   int
	Canceled       bool
	DetailsURL     string

	departureAt time.Time
	arrivalAt   time.Time
}

// NewTravelInformation builds a connection from a raw record, anchoring its bare
// times on reference.
func NewTravelInformation(reference time.Time, raw RawConnection, normalizer TimeNormalizer) (TravelInformation, error) {
	info := TravelInformation{
		ReferenceTime:  reference,
		Departure:      orDefaultClock(raw.Departure),
		Arrival:        orDefaultClock(raw.Arrival),
		OnTime:         raw.OnTime == nil || *raw.OnTime,
		Transfers:      raw.Transfers,
		Time:           orDefaultClock(raw.Time),
		Products:       append([]string(nil), raw.Products...),
		Price:          raw.Price,
		DepartureDelay: raw.Delay.Departure,
		ArrivalDelay:   raw.Delay.Arrival,
		Canceled:       raw.Canceled,
		DetailsURL:     raw.Details,
	}

	var err error
	if info.departureAt, err = normalizer.Resolve(reference, info.Departure); err != nil {
		return TravelInformation{}, fmt.Errorf("departure: %w", err)
	}
	if info.arrivalAt, err = normalizer.Resolve(reference, info.Arrival); err != nil {
		return TravelInformation{}, fmt.Errorf("arrival: %w", err)
	}
	return info, nil
}

func orDefaultClock(v string) string {
	if v == "" {
		return "00:00"
	}
	return v
}

func (t TravelInformation) DepartureAt() time.Time { return t.departureAt }

func (t TravelInformation) ArrivalAt() time.Time { return t.arrivalAt }

// Duration parses the "H:MM" travel time. A bare number is read as hours.
func (t TravelInformation) Duration() (time.Duration, error) {
	parts := strings.Split(t.Time, ":")
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid travel time %q: %w", t.Time, err)
	}
	var minutes int
	if len(parts) > 1 {
		if minutes, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
			return 0, fmt.Errorf("invalid travel time %q: %w", t.Time, err)
		}
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

// Attributes is the presentation view of one connection.
func (t TravelInformation) Attributes() map[string]any {
	return map[string]any{
		"departure":        t.departureAt,
		"arrival":          t.arrivalAt,
		"departure_string": t.Departure,
		"arrival_string":   t.Arrival,
		"ontime":           t.OnTime,
		"transfers":        t.Transfers,
		"time":             t.Time,
		"products":         t.Products,
		"arrival_delay":    t.ArrivalDelay,
		"delay":            t.DepartureDelay,
		"canceled":         t.Canceled,
	}
}

// ConnectionSlot projects the n-th ranked connection of a trip with display defaults
// filled in when the trip has fewer connections.
type ConnectionSlot struct {
	Found          bool
	Start          time.Time
	End            time.Time
	StartString    string
	EndString      string
	Time           string
	DepartureDelay int
	ArrivalDelay   int
	OnTime         bool
	Canceled       bool
	Transfers      int
	Products       []string
}

// PossibleTravelTimes binds a planned trip to its connections ordered by departure.
type PossibleTravelTimes struct {
	Planned     PlannedTravelTime
	Connections []TravelInformation
}

func (p PossibleTravelTimes) Origin() string { return p.Planned.Origin }

func (p PossibleTravelTimes) Destination() string { return p.Planned.Destination }

// Nth returns the n-th ranked connection. Index 0 is the primary connection and
// index 1 the next one.
func (p PossibleTravelTimes) Nth(n int) (TravelInformation, bool) {
	if n < 0 || n >= len(p.Connections) {
		return TravelInformation{}, false
	}
	return p.Connections[n], true
}

// Slot returns the display projection of the n-th connection. Without connections
// the primary slot falls back to the planned start and end.
func (p PossibleTravelTimes) Slot(n int) ConnectionSlot {
	conn, ok := p.Nth(n)
	if !ok {
		slot := ConnectionSlot{
			StartString: "00:00",
			EndString:   "00:00",
			Time:        "00:00",
			OnTime:      true,
			Products:    []string{},
		}
		if n == 0 {
			slot.Start = p.Planned.Start
			slot.End = p.Planned.End
		}
		return slot
	}
	return ConnectionSlot{
		Found:          true,
		Start:          conn.DepartureAt(),
		End:            conn.ArrivalAt(),
		StartString:    conn.Departure,
		EndString:      conn.Arrival,
		Time:           conn.Time,
		DepartureDelay: conn.DepartureDelay,
		ArrivalDelay:   conn.ArrivalDelay,
		OnTime:         conn.OnTime,
		Canceled:       conn.Canceled,
		Transfers:      conn.Transfers,
		Products:       conn.Products,
	}
}

func (p PossibleTravelTimes) Primary() ConnectionSlot { return p.Slot(0) }

func (p PossibleTravelTimes) Secondary() ConnectionSlot { return p.Slot(1) }

// Attributes is the presentation view of the trip and all of its connections.
func (p PossibleTravelTimes) Attributes() map[string]any {
	primary := p.Primary()
	connections := make([]map[string]any, 0, len(p.Connections))
	for _, c := range p.Connections {
		connections = append(connections, c.Attributes())
	}
	return map[string]any{
		"origin":          p.Origin(),
		"destination":     p.Destination(),
		"start":           primary.Start,
		"end":             primary.End,
		"start_string":    primary.StartString,
		"end_string":      primary.EndString,
		"time":            primary.Time,
		"ontime":          primary.OnTime,
		"canceled":        primary.Canceled,
		"products":        primary.Products,
		"departure_delay": primary.DepartureDelay,
		"connections":     connections,
	}
}

// Result holds every resolved trip of one gathering run in calendar order.
type Result struct {
	TravelTimes []PossibleTravelTimes
}

func (r Result) Exists() bool { return len(r.TravelTimes) > 0 }

// Trip returns the n-th resolved trip.
func (r Result) Trip(n int) (PossibleTravelTimes, bool) {
	if n < 0 || n >= len(r.TravelTimes) {
		return PossibleTravelTimes{}, false
	}
	return r.TravelTimes[n], true
}

// Origin of the first trip, or "" when nothing was found.
func (r Result) Origin() string {
	if trip, ok := r.Trip(0); ok {
		return trip.Origin()
	}
	return ""
}

// Destination of the first trip, or "" when nothing was found.
func (r Result) Destination() string {
	if trip, ok := r.Trip(0); ok {
		return trip.Destination()
	}
	return ""
}

// Slot projects the n-th connection of the first trip. Without any trip the slot
// is empty apart from OnTime, which defaults to true.
func (r Result) Slot(n int) ConnectionSlot {
	if trip, ok := r.Trip(0); ok {
		return trip.Slot(n)
	}
	return ConnectionSlot{OnTime: true, Products: []string{}}
}
