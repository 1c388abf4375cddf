package calendar

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"traintracker/pkg/gatherer"

	ics "github.com/arran4/golang-ical"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"
)

// Event is a parsed VEVENT. End is exclusive.
type Event struct {
	UID         string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Summary     string
	Description string
	Location    string
}

// Overlaps reports whether the event intersects [from, to).
func (e Event) Overlaps(from, to time.Time) bool {
	return e.End.After(from) && e.Start.Before(to)
}

// CalendarEvent renders the event the way the gatherer reads it: a bare date for
// all-day events, RFC 3339 otherwise.
func (e Event) CalendarEvent() gatherer.CalendarEvent {
	format := time.RFC3339
	if e.AllDay {
		format = "2006-01-02"
	}
	return gatherer.CalendarEvent{
		Start:       e.Start.Format(format),
		End:         e.End.Format(format),
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
	}
}

const (
	icsDate        = "20060102"
	icsDateTime    = "20060102T150405"
	icsDateTimeUTC = "20060102T150405Z"
	valueDateParam = "DATE"
	tzidParam      = "TZID"
	valueParam     = "VALUE"
)

// Parse reads all events of an iCalendar document sorted by start. Events without a
// usable DTSTART are skipped. Recurrence rules are not expanded.
func Parse(r io.Reader, loc *time.Location) ([]Event, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("invalid iCalendar data: %w", err)
	}

	var events []Event
	for _, ve := range cal.Events() {
		e, err := parseEvent(ve, loc)
		if err != nil {
			log.Warnf("[calendar] skipping event %q: %v", ve.Id(), err)
			continue
		}
		events = append(events, e)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

func parseEvent(ve *ics.VEvent, loc *time.Location) (Event, error) {
	startProp := ve.GetProperty(ics.ComponentPropertyDtStart)
	if startProp == nil {
		return Event{}, fmt.Errorf("missing DTSTART")
	}
	start, allDay, err := parseDateProperty(startProp, loc)
	if err != nil {
		return Event{}, fmt.Errorf("DTSTART: %w", err)
	}

	end := start
	if allDay {
		end = start.AddDate(0, 0, 1)
	}
	if endProp := ve.GetProperty(ics.ComponentPropertyDtEnd); endProp != nil {
		if end, _, err = parseDateProperty(endProp, loc); err != nil {
			return Event{}, fmt.Errorf("DTEND: %w", err)
		}
	}

	return Event{
		UID:         ve.Id(),
		Start:       start,
		End:         end,
		AllDay:      allDay,
		Summary:     norm.NFC.String(textValue(ve, ics.ComponentPropertySummary)),
		Description: textValue(ve, ics.ComponentPropertyDescription),
		Location:    textValue(ve, ics.ComponentPropertyLocation),
	}, nil
}

func textValue(ve *ics.VEvent, prop ics.ComponentProperty) string {
	p := ve.GetProperty(prop)
	if p == nil {
		return ""
	}
	return p.Value
}

// parseDateProperty reads a DATE or DATE-TIME value honouring TZID. Floating times
// are placed in loc.
func parseDateProperty(p *ics.IANAProperty, loc *time.Location) (time.Time, bool, error) {
	value := strings.TrimSpace(p.Value)

	if first(p.ICalParameters[valueParam]) == valueDateParam || len(value) == len(icsDate) {
		t, err := time.ParseInLocation(icsDate, value, loc)
		return t, true, err
	}

	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse(icsDateTimeUTC, value)
		return t.In(loc), false, err
	}

	zone := loc
	if tzid := first(p.ICalParameters[tzidParam]); tzid != "" {
		tz, err := time.LoadLocation(strings.Trim(tzid, `"`))
		if err != nil {
			return time.Time{}, false, fmt.Errorf("unknown time zone %q: %w", tzid, err)
		}
		zone = tz
	}
	t, err := time.ParseInLocation(icsDateTime, value, zone)
	return t.In(loc), false, err
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
