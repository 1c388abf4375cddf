package cmd

import (
	"fmt"
	"os"

	"traintracker/pkg/exporter"
	"traintracker/pkg/gatherer"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the upcoming travel to an ICS file",
	Long:  `Scan the configured calendars and write one event per trip, spanning its best connection, to an ICS file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		t, err := loadTracker()
		if err != nil {
			return err
		}

		var result gatherer.Result

		_ = spinner.New().
			Title(fmt.Sprintf("Exporting upcoming travel to %s...", output)).
			Action(func() {
				result, err = t.Collect(cmd.Context())
			}).
			Run()

		if err != nil {
			return err
		}

		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()

		if err := exporter.GenerateICS(result, file); err != nil {
			return fmt.Errorf("failed to generate ICS: %w", err)
		}

		fmt.Printf("Successfully exported %d trips to %s\n", len(result.TravelTimes), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "travel.ics", "Output file path")
}
