package cmd

import (
	"fmt"

	"traintracker/pkg/config"
	"traintracker/pkg/tracker"
)

// loadTracker reads the config file and builds the tracker for it.
func loadTracker() (*tracker.Tracker, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.HomeStation == "" {
		return nil, fmt.Errorf("home station is not configured, run 'traintracker config --set-home \"Your Station\"' first")
	}
	return tracker.New(cfg)
}
