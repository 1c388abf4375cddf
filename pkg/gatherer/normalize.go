package gatherer

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidClock is returned for connection times that are not "HH:MM".
var ErrInvalidClock = errors.New("invalid clock time")

// TimeNormalizer turns bare "HH:MM" connection times into full date-times relative
// to a reference instant.
type TimeNormalizer struct {
	Now      func() time.Time
	Location *time.Location
}

func (n TimeNormalizer) location() *time.Location {
	if n.Location == nil {
		return time.Local
	}
	return n.Location
}

func (n TimeNormalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

// Resolve places clock on the reference's calendar day and moves it to the next day
// when it lies before the reference time of day.
//
// When the reference is already in the past, the comparison uses clock plus one hour:
// the DB schedule answers such queries anchored at the current wall clock and returns
// connections slightly before the requested time.
func (n TimeNormalizer) Resolve(reference time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidClock, clock, err)
	}

	loc := n.location()
	ref := reference.In(loc).Truncate(time.Minute)
	candidate := time.Date(ref.Year(), ref.Month(), ref.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc)

	check := candidate
	if n.now().After(ref) {
		check = check.Add(time.Hour)
	}
	if minuteOfDay(check) < minuteOfDay(ref) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate, nil
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
