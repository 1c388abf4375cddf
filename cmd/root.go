package cmd

import (
	"fmt"
	"os"

	"traintracker/pkg/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "traintracker",
	Short: "Train connections for the travel in your calendars",
	Long: `traintracker scans your calendars for travel entries such as
"Hamburg Hbf → Berlin Hbf" and looks up matching train connections,
as a one-shot report, an exported calendar, or a polling sensor.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		if err := InitLogger(level); err != nil {
			return err
		}
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			config.Path = path
		}
		return nil
	},
	SilenceUsage: true,
}

// InitLogger parses level and configures the logrus text formatter.
func InitLogger(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	log.SetOutput(os.Stderr)
	log.SetLevel(lvl)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.traintracker.json)")
}
