package cmd

import (
	"fmt"

	"traintracker/pkg/config"
	"traintracker/pkg/transit"
	"traintracker/pkg/tui"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage traintracker configuration",
	Long:  "View or edit your local configuration settings (home station, calendars, expressions and mappings).",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if !anyChanged(cmd.LocalNonPersistentFlags()) {
			// If no flags are given, launch the interactive TUI flow
			return tui.RunConfigTUI()
		}

		if flags.Changed("set-home") {
			setHome, _ := flags.GetString("set-home")
			fmt.Printf("Searching HAFAS for station: '%s'...\n", setHome)

			proxy, err := cfg.ProxyURL()
			if err != nil {
				return err
			}
			station, err := config.ValidateStation(cmd.Context(), transit.NewClient(transit.WithProxy(proxy)), setHome)
			if err != nil {
				return err
			}
			cfg.HomeStation = station
		}
		if flags.Changed("name") {
			cfg.Name, _ = flags.GetString("name")
		}
		if flags.Changed("calendars") {
			cfg.Calendars, _ = flags.GetStringSlice("calendars")
		}
		if flags.Changed("expressions") {
			input, _ := flags.GetString("expressions")
			if cfg.Expressions, err = config.ParseExpressions(input); err != nil {
				return err
			}
		}
		if flags.Changed("mappings") {
			input, _ := flags.GetString("mappings")
			if cfg.Mappings, err = config.ParseMappings(input); err != nil {
				return err
			}
		}
		if flags.Changed("max-results") {
			cfg.MaxTrainResults, _ = flags.GetInt("max-results")
		}
		if flags.Changed("duration") {
			cfg.ScanDurationHours, _ = flags.GetInt("duration")
		}
		if flags.Changed("remove-duplicates") {
			dedup, _ := flags.GetBool("remove-duplicates")
			cfg.RemoveTimeDuplicates = &dedup
		}
		if flags.Changed("time-zone") {
			cfg.TimeZone, _ = flags.GetString("time-zone")
		}
		if flags.Changed("proxy") {
			cfg.Proxy, _ = flags.GetString("proxy")
		}

		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}

		fmt.Print(tui.RenderConfig(cfg))
		fmt.Printf("✅ Configuration saved for %s\n", cfg.DisplayName())
		return nil
	},
}

func anyChanged(fs *pflag.FlagSet) bool {
	changed := false
	fs.VisitAll(func(f *pflag.Flag) {
		changed = changed || f.Changed
	})
	return changed
}

func init() {
	rootCmd.AddCommand(configCmd)
	f := configCmd.Flags()
	f.StringP("set-home", "s", "", "Set your home station")
	f.String("name", "", "Name of the tracker")
	f.StringSlice("calendars", nil, "Comma separated iCalendar URLs or file paths")
	f.String("expressions", "", "Travel expressions separated by ';'")
	f.String("mappings", "", "Station mappings as 'pattern,replacement' pairs separated by ';'")
	f.Int("max-results", 0, "Maximum number of connections per trip")
	f.Int("duration", 0, "Scan duration in hours")
	f.Bool("remove-duplicates", true, "Drop connections with the same departure and arrival")
	f.String("time-zone", "", "IANA time zone, e.g. Europe/Berlin")
	f.String("proxy", "", "HTTP proxy for schedule lookups")
}
