package tui

import (
	"context"
	"fmt"
	"os"

	"traintracker/pkg/exporter"
	"traintracker/pkg/gatherer"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// RunExportTUI gathers the upcoming trips and writes them to an .ics file.
func RunExportTUI() error {
	t, err := loadTracker()
	if err != nil || t == nil {
		return err
	}

	outputFile := "travel.ics"
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output File").
				Description("Where should the travel calendar be saved?").
				Value(&outputFile),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	var result gatherer.Result
	var fetchErr error

	_ = spinner.New().
		Title("Looking up connections for your upcoming travel...").
		Action(func() {
			result, fetchErr = t.Collect(context.Background())
		}).
		Run()

	if fetchErr != nil {
		return fetchErr
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := exporter.GenerateICS(result, f); err != nil {
		return fmt.Errorf("failed to generate ICS: %w", err)
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✅ Exported %d trips to %s\n", len(result.TravelTimes), outputFile)))
	return nil
}
