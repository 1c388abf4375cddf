package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"traintracker/pkg/transit"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// RunTransitTUI asks for a destination and shows the next journeys from the
// home station.
func RunTransitTUI() error {
	t, err := loadTracker()
	if err != nil || t == nil {
		return err
	}

	var destination string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Where do you want to go from %s?", t.Config.HomeStation)).
				Placeholder("e.g. Berlin Hbf").
				Value(&destination),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}
	if strings.TrimSpace(destination) == "" {
		fmt.Println("Operation cancelled: No destination provided.")
		return nil
	}

	ctx := context.Background()
	var from, to transit.Location
	var journeys []transit.Journey
	var fetchErr error

	_ = spinner.New().
		Title(fmt.Sprintf("Routing trip from %s to %s...", t.Config.HomeStation, destination)).
		Action(func() {
			if from, fetchErr = t.Transit.ResolveStation(ctx, t.Config.HomeStation); fetchErr != nil {
				return
			}
			if to, fetchErr = t.Transit.ResolveStation(ctx, destination); fetchErr != nil {
				return
			}
			journeys, fetchErr = t.Transit.FetchJourneys(ctx, from.ID, to.ID, time.Now(), t.Config.GathererConfig().MaxResults)
		}).
		Run()

	if fetchErr != nil {
		return fmt.Errorf("could not route journey: %w", fetchErr)
	}

	if len(journeys) == 0 {
		fmt.Println(errorStyle.Render("No routes could be found. It might be too late at night."))
		return nil
	}

	loc, _ := t.Config.Location()
	fmt.Print(RenderJourneys(from.Name, to.Name, journeys, loc))
	return nil
}

// RenderJourneys prints every leg of each journey.
func RenderJourneys(from, to string, journeys []transit.Journey, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	b.WriteString(accentStyle.Render(fmt.Sprintf("\n--- 🧭 %s → %s ---", from, to)) + "\n")

	for n, j := range journeys {
		fmt.Fprintf(&b, "\n%s\n", mutedStyle.Render(fmt.Sprintf("Option %d", n+1)))
		for i, leg := range j.Legs {
			lineName := "Walk🚶"
			if leg.Line != nil {
				lineName = leg.Line.Name
			}

			timeStr := timeStyle.Render(leg.Departure.In(loc).Format("15:04"))
			lineStr := lineStyle.Render(lineName)
			arrStr := mutedStyle.Render("Arrive: " + leg.Arrival.In(loc).Format("15:04"))

			fmt.Fprintf(&b, "%d. [%s] %s -> %s (%s)", i+1, timeStr, lineStr, leg.Destination.Name, arrStr)
			if leg.DepartureDelay != nil && *leg.DepartureDelay > 0 {
				b.WriteString(errorStyle.Render(fmt.Sprintf(" (+%d min delay)", *leg.DepartureDelay/60)))
			}
			if leg.Cancelled {
				b.WriteString(errorStyle.Render(" CANCELED"))
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}
