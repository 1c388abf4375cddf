package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"traintracker/pkg/config"
	"traintracker/pkg/gatherer"
	"traintracker/pkg/tracker"

	"github.com/charmbracelet/huh/spinner"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCase = cases.Title(language.English)

// loadTracker reads the saved config and builds a tracker from it. It returns nil
// after printing a hint when no home station is configured.
func loadTracker() (*tracker.Tracker, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.HomeStation == "" {
		fmt.Println(errorStyle.Render("Home station is not configured."))
		fmt.Println("Please run 'traintracker config --set-home \"Your Station\"' in your terminal first.")
		return nil, nil
	}
	return tracker.New(cfg)
}

// RunStatusTUI gathers the upcoming trips once and prints them.
func RunStatusTUI() error {
	t, err := loadTracker()
	if err != nil || t == nil {
		return err
	}

	var result gatherer.Result
	var fetchErr error

	_ = spinner.New().
		Title("Scanning calendars for upcoming travel...").
		Action(func() {
			result, fetchErr = t.Collect(context.Background())
		}).
		Run()

	if fetchErr != nil {
		return fetchErr
	}

	loc, _ := t.Config.Location()
	fmt.Print(RenderResult(t.Config.DisplayName(), result, loc))
	return nil
}

// RenderResult formats the trips of one gathering run for the terminal.
func RenderResult(title string, result gatherer.Result, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	state := "off"
	if result.Exists() {
		state = "on"
	}
	fmt.Fprintf(&b, "\n%s\n", accentStyle.Render(fmt.Sprintf("--- 🚆 %s (%s) ---", title, titleCase.String(state))))

	if !result.Exists() {
		b.WriteString(mutedStyle.Render("No travel planned in the scanned period.") + "\n\n")
		return b.String()
	}

	for _, trip := range result.TravelTimes {
		when := trip.Planned.Start.In(loc).Format("Mon 02 Jan 15:04")
		fmt.Fprintf(&b, "\n%s %s → %s\n", timeStyle.Render(when), trip.Origin(), trip.Destination())

		if len(trip.Connections) == 0 {
			b.WriteString("  " + errorStyle.Render("No connection found.") + "\n")
			continue
		}
		for _, c := range trip.Connections {
			b.WriteString("  • " + renderConnection(c) + "\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}

func renderConnection(c gatherer.TravelInformation) string {
	products := "Walk🚶"
	if len(c.Products) > 0 {
		products = strings.Join(c.Products, ", ")
	}

	line := fmt.Sprintf("[%s] %s → %s %s %s",
		timeStyle.Render(c.Departure),
		lineStyle.Render(products),
		c.Arrival,
		mutedStyle.Render("("+c.Time+")"),
		mutedStyle.Render(transfers(c.Transfers)),
	)
	if c.DepartureDelay > 0 {
		line += errorStyle.Render(fmt.Sprintf(" (+%d min delay)", c.DepartureDelay))
	}
	if c.Canceled {
		line += errorStyle.Render(" CANCELED")
	}
	return line
}

func transfers(n int) string {
	if n == 1 {
		return "1 transfer"
	}
	return fmt.Sprintf("%d transfers", n)
}
