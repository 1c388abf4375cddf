package exporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"traintracker/pkg/gatherer"

	ics "github.com/arran4/golang-ical"
)

// GenerateICS writes one event per resolved trip to w. Each event spans the primary
// connection, or the planned times when no connection was found.
func GenerateICS(result gatherer.Result, w io.Writer) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//traintracker//travel export//EN")

	now := time.Now()
	for i, trip := range result.TravelTimes {
		primary := trip.Primary()
		if primary.Start.IsZero() || primary.End.IsZero() {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s-%d@traintracker", primary.Start.UTC().Format("20060102T150405Z"), i))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetModifiedAt(now)
		event.SetStartAt(primary.Start)
		event.SetEndAt(primary.End)
		event.SetSummary(fmt.Sprintf("🚆 %s → %s", trip.Origin(), trip.Destination()))
		event.SetLocation(trip.Origin())
		event.SetDescription(describe(trip))
	}

	return cal.SerializeTo(w)
}

func describe(trip gatherer.PossibleTravelTimes) string {
	if len(trip.Connections) == 0 {
		return "No connection found."
	}

	var b strings.Builder
	for _, c := range trip.Connections {
		fmt.Fprintf(&b, "%s - %s (%s, %d transfers)", c.Departure, c.Arrival, strings.Join(c.Products, ", "), c.Transfers)
		if c.DepartureDelay > 0 {
			fmt.Fprintf(&b, " +%d", c.DepartureDelay)
		}
		if c.Canceled {
			b.WriteString(" CANCELED")
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
