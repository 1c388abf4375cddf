package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"traintracker/pkg/sensor"
	"traintracker/pkg/tui"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Show the upcoming travel and its connections",
	Long:  `Scan the configured calendars once and print the upcoming trips with their train connections.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output != "text" && output != "json" && output != "yaml" {
			return fmt.Errorf("unknown output format %q", output)
		}

		t, err := loadTracker()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if output == "text" {
			result, err := t.Collect(ctx)
			if err != nil {
				return err
			}
			loc, _ := t.Config.Location()
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderResult(t.Config.DisplayName(), result, loc))
			return nil
		}

		s := t.Sensor()
		var updateErr error
		_ = spinner.New().
			Title("Scanning calendars for upcoming travel...").
			Action(func() {
				updateErr = s.Update(ctx)
			}).
			Run()
		if updateErr != nil {
			return updateErr
		}
		return writeState(cmd.OutOrStdout(), output, s.Snapshot())
	},
}

func writeState(w io.Writer, format string, state sensor.State) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(state); err != nil {
			return fmt.Errorf("failed to encode state: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state); err != nil {
			return fmt.Errorf("failed to encode state: %w", err)
		}
		return nil
	}
}

func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.Flags().StringP("output", "o", "text", "Output format (text, json, yaml)")
}
