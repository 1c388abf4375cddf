package exporter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"traintracker/pkg/gatherer"
)

func TestGenerateICS(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}

	start := time.Date(2026, 3, 4, 8, 15, 0, 0, loc)
	n := gatherer.TimeNormalizer{Now: func() time.Time { return start.Add(-time.Hour) }, Location: loc}
	conn, err := gatherer.NewTravelInformation(start, gatherer.RawConnection{
		Departure: "08:20",
		Arrival:   "09:45",
		Time:      "1:25",
		Products:  []string{"RE"},
		Delay:     gatherer.Delay{Departure: 4},
		Canceled:  true,
	}, n)
	if err != nil {
		t.Fatalf("failed to build connection: %v", err)
	}

	result := gatherer.Result{TravelTimes: []gatherer.PossibleTravelTimes{
		{
			Planned:     gatherer.PlannedTravelTime{Start: start, End: start.Add(time.Hour), Origin: "Braunschweig Hbf", Destination: "Hannover Hbf"},
			Connections: []gatherer.TravelInformation{conn},
		},
		{
			Planned: gatherer.PlannedTravelTime{Start: start.Add(24 * time.Hour), End: start.Add(25 * time.Hour), Origin: "Hannover Hbf", Destination: "Braunschweig Hbf"},
		},
	}}

	var buf bytes.Buffer
	if err := GenerateICS(result, &buf); err != nil {
		t.Fatalf("GenerateICS failed: %v", err)
	}

	output := buf.String()

	if strings.Count(output, "BEGIN:VEVENT") != 2 {
		t.Errorf("Expected two events, got: \n%s", output)
	}
	if !strings.Contains(output, "SUMMARY:🚆 Braunschweig Hbf → Hannover Hbf") {
		t.Errorf("Expected ICS to contain trip summary, got: \n%s", output)
	}
	if !strings.Contains(output, "LOCATION:Braunschweig Hbf") {
		t.Errorf("Expected ICS to contain origin location")
	}

	// 04-Mar-2026 08:20 Berlin time is 07:20 UTC.
	if !strings.Contains(output, "DTSTART:20260304T072000Z") {
		t.Errorf("Expected start time of the primary connection in ICS (should be UTC), got: \n%s", output)
	}
	// Without connections the planned start is used.
	if !strings.Contains(output, "DTSTART:20260305T071500Z") {
		t.Errorf("Expected planned start for the trip without connections, got: \n%s", output)
	}
	if !strings.Contains(output, "CANCELED") {
		t.Errorf("Expected cancellation in description, got: \n%s", output)
	}
}

func TestGenerateICS_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := GenerateICS(gatherer.Result{}, &buf); err != nil {
		t.Fatalf("GenerateICS failed: %v", err)
	}
	if strings.Contains(buf.String(), "BEGIN:VEVENT") {
		t.Errorf("Expected no events for an empty result")
	}
	if !strings.Contains(buf.String(), "BEGIN:VCALENDAR") {
		t.Errorf("Expected a calendar envelope")
	}
}
