package cmd

import (
	"fmt"
	"time"

	"traintracker/pkg/transit"
	"traintracker/pkg/tui"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

var transitCmd = &cobra.Command{
	Use:   "transit <destination>",
	Short: "Look up the next connections to a station",
	Long:  "Uses the public HAFAS API (DB) to route you from your home station, or --from, to the given destination.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		at, _ := cmd.Flags().GetString("at")
		results, _ := cmd.Flags().GetInt("results")

		t, err := loadTracker()
		if err != nil {
			return err
		}
		if from == "" {
			from = t.Config.HomeStation
		}

		loc, _ := t.Config.Location()
		departure := time.Now().In(loc)
		if at != "" {
			clock, err := time.ParseInLocation("15:04", at, loc)
			if err != nil {
				return fmt.Errorf("invalid --at %q, expected HH:MM: %w", at, err)
			}
			departure = time.Date(departure.Year(), departure.Month(), departure.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
		}

		ctx := cmd.Context()
		var origin, destination transit.Location
		var journeys []transit.Journey

		_ = spinner.New().
			Title(fmt.Sprintf("Routing trip from %s to %s...", from, args[0])).
			Action(func() {
				if origin, err = t.Transit.ResolveStation(ctx, from); err != nil {
					return
				}
				if destination, err = t.Transit.ResolveStation(ctx, args[0]); err != nil {
					return
				}
				journeys, err = t.Transit.FetchJourneys(ctx, origin.ID, destination.ID, departure, results)
			}).
			Run()

		if err != nil {
			return fmt.Errorf("could not route journey: %w", err)
		}
		if len(journeys) == 0 {
			return fmt.Errorf("no routes found from %s to %s", origin.Name, destination.Name)
		}

		fmt.Print(tui.RenderJourneys(origin.Name, destination.Name, journeys, loc))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transitCmd)
	transitCmd.Flags().StringP("from", "f", "", "Origin station (default: home station)")
	transitCmd.Flags().String("at", "", "Departure time today as HH:MM (default: now)")
	transitCmd.Flags().IntP("results", "n", 3, "Number of journeys to show")
}
