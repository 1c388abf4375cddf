package tui

import (
	"strings"
	"testing"
	"time"

	"traintracker/pkg/transit"
)

func TestRenderJourneys(t *testing.T) {
	dep := time.Date(2026, 3, 4, 8, 20, 0, 0, time.UTC)
	delay := 240
	journeys := []transit.Journey{{
		Legs: []transit.Leg{
			{
				Destination:    transit.Location{Name: "Hannover Hbf"},
				Departure:      dep,
				Arrival:        dep.Add(40 * time.Minute),
				DepartureDelay: &delay,
				Line:           &transit.Line{Name: "RE 70"},
			},
			{
				Destination: transit.Location{Name: "Hannover Kröpcke"},
				Departure:   dep.Add(45 * time.Minute),
				Arrival:     dep.Add(55 * time.Minute),
				Walking:     true,
			},
		},
	}}

	out := RenderJourneys("Braunschweig Hbf", "Hannover Kröpcke", journeys, time.UTC)

	for _, want := range []string{
		"Braunschweig Hbf → Hannover Kröpcke",
		"Option 1",
		"1. [08:20] RE 70 -> Hannover Hbf (Arrive: 09:00)",
		"(+4 min delay)",
		"2. [09:05] Walk🚶 -> Hannover Kröpcke (Arrive: 09:15)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got: \n%s", want, out)
		}
	}
}
