package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"traintracker/pkg/gatherer"
)

// AppConfig holds all user-defined persistent settings
type AppConfig struct {
	Name                 string             `json:"name,omitempty"`
	HomeStation          string             `json:"home_station" validate:"required"`
	Calendars            []string           `json:"calendars" validate:"dive,required"`
	ScanDurationHours    int                `json:"scan_duration_hours,omitempty" validate:"gte=0,lte=744"`
	Expressions          []string           `json:"regular_expression_filters,omitempty" validate:"omitempty,dive,required"`
	Mappings             []gatherer.Mapping `json:"station_mappings,omitempty"`
	MaxTrainResults      int                `json:"max_train_results,omitempty" validate:"gte=0,lte=50"`
	RemoveTimeDuplicates *bool              `json:"remove_time_duplicates,omitempty"`
	Proxy                string             `json:"proxy,omitempty" validate:"omitempty,url"`
	TimeZone             string             `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	AccentColor          string             `json:"accent_color,omitempty" validate:"omitempty,accent"`
}

// Path overrides the location of the config file when set.
var Path string

// getConfigPath returns the absolute path to ~/.traintracker.json
func getConfigPath() (string, error) {
	if Path != "" {
		return Path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".traintracker.json"), nil
}

// Load reads the application configuration from disk.
// Returns an empty struct if the file does not exist.
func Load() (*AppConfig, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just return an empty default configuration
		if os.IsNotExist(err) {
			return &AppConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Save writes the application configuration back to disk.
func Save(cfg *AppConfig) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DisplayName is the configured name or "Train Tracker <home station>".
func (c *AppConfig) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return "Train Tracker " + c.HomeStation
}

// RemoveDuplicates reports whether same-time duplicates are dropped. Defaults to true.
func (c *AppConfig) RemoveDuplicates() bool {
	return c.RemoveTimeDuplicates == nil || *c.RemoveTimeDuplicates
}

// Location returns the configured time zone or the local one.
func (c *AppConfig) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// ProxyURL returns the parsed proxy or nil when none is configured.
func (c *AppConfig) ProxyURL() (*url.URL, error) {
	if c.Proxy == "" {
		return nil, nil
	}
	u, err := url.Parse(c.Proxy)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", c.Proxy, err)
	}
	return u, nil
}

// GathererConfig converts the settings into the input of one gathering run.
// Unset values take the gatherer defaults.
func (c *AppConfig) GathererConfig() gatherer.Config {
	cfg := gatherer.DefaultConfig(c.HomeStation, c.Calendars...)
	if c.ScanDurationHours > 0 {
		cfg.ScanDuration = time.Duration(c.ScanDurationHours) * time.Hour
	}
	if len(c.Expressions) > 0 {
		cfg.Expressions = append([]string(nil), c.Expressions...)
	}
	cfg.Mappings = append([]gatherer.Mapping(nil), c.Mappings...)
	if c.MaxTrainResults > 0 {
		cfg.MaxResults = c.MaxTrainResults
	}
	cfg.RemoveSameTimeDuplicates = c.RemoveDuplicates()
	return cfg
}
