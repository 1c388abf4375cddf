package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"traintracker/pkg/gatherer"
)

func TestConfigLoadSave(t *testing.T) {
	tempDir := t.TempDir()

	// Override the home directory environment variable for testing
	t.Setenv("HOME", tempDir)
	t.Setenv("USERPROFILE", tempDir) // For Windows compatibility in tests

	// 1. Test Load with no existing file
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error when loading missing config, got: %v", err)
	}
	if cfg == nil {
		t.Fatalf("expected empty config to be returned, got nil")
	}

	// 2. Modify and Save the config
	keep := false
	cfg.HomeStation = "Hamburg Hbf"
	cfg.Calendars = []string{"https://example.org/work.ics"}
	cfg.Expressions = []string{"Trip to (.+)"}
	cfg.Mappings = []gatherer.Mapping{{Pattern: "HH", Replacement: "Hamburg Hbf"}}
	cfg.MaxTrainResults = 3
	cfg.RemoveTimeDuplicates = &keep

	if err := Save(cfg); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	// Verify the file was actually created
	configPath := filepath.Join(tempDir, ".traintracker.json")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Errorf("expected config file to be created at %s", configPath)
	}

	// 3. Test Load with existing file
	loadedCfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load existing config: %v", err)
	}

	if !reflect.DeepEqual(cfg, loadedCfg) {
		t.Errorf("loaded config does not match saved config.\nGot: %+v\nExpected: %+v", loadedCfg, cfg)
	}
}

func TestConfigPathOverride(t *testing.T) {
	Path = filepath.Join(t.TempDir(), "custom.json")
	defer func() { Path = "" }()

	if err := Save(&AppConfig{HomeStation: "Bonn Hbf"}); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	data, err := os.ReadFile(Path)
	if err != nil {
		t.Fatalf("expected config at override path: %v", err)
	}
	if !strings.Contains(string(data), `"home_station": "Bonn Hbf"`) {
		t.Errorf("unexpected config file contents: %s", data)
	}
}

func TestConfigParseError(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("USERPROFILE", tempDir)

	// Write invalid JSON to the config file
	configPath := filepath.Join(tempDir, ".traintracker.json")
	if err := os.WriteFile(configPath, []byte("invalid json { content"), 0644); err != nil {
		t.Fatalf("failed to write invalid json: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Errorf("expected error when loading invalid json, got nil")
	}
}

func TestGathererConfig(t *testing.T) {
	cfg := &AppConfig{HomeStation: "Hamburg Hbf", Calendars: []string{"a.ics"}}
	g := cfg.GathererConfig()

	if g.Origin != "Hamburg Hbf" || !reflect.DeepEqual(g.Calendars, []string{"a.ics"}) {
		t.Errorf("unexpected origin/calendars %+v", g)
	}
	if g.ScanDuration != gatherer.DefaultScanDuration || g.MaxResults != gatherer.DefaultMaxResults {
		t.Errorf("expected defaults, got %s / %d", g.ScanDuration, g.MaxResults)
	}
	if !reflect.DeepEqual(g.Expressions, gatherer.DefaultExpressions) || !g.RemoveSameTimeDuplicates {
		t.Errorf("expected default expressions and deduplication, got %+v", g)
	}

	keep := false
	cfg.ScanDurationHours = 12
	cfg.MaxTrainResults = 2
	cfg.Expressions = []string{"Trip to (.+)"}
	cfg.RemoveTimeDuplicates = &keep
	g = cfg.GathererConfig()
	if g.ScanDuration != 12*time.Hour || g.MaxResults != 2 || len(g.Expressions) != 1 || g.RemoveSameTimeDuplicates {
		t.Errorf("expected overrides to apply, got %+v", g)
	}
}

func TestValidate(t *testing.T) {
	valid := AppConfig{HomeStation: "Hamburg Hbf", Calendars: []string{"a.ics"}, AccentColor: "99"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"no home station", func(c *AppConfig) { c.HomeStation = " " }},
		{"empty calendar id", func(c *AppConfig) { c.Calendars = []string{""} }},
		{"too many results", func(c *AppConfig) { c.MaxTrainResults = 500 }},
		{"negative duration", func(c *AppConfig) { c.ScanDurationHours = -1 }},
		{"bad time zone", func(c *AppConfig) { c.TimeZone = "Mars/Olympus" }},
		{"bad accent", func(c *AppConfig) { c.AccentColor = "purple" }},
		{"bad proxy", func(c *AppConfig) { c.Proxy = "not a url" }},
		{"bad expression", func(c *AppConfig) { c.Expressions = []string{"(open"} }},
		{"bad mapping", func(c *AppConfig) { c.Mappings = []gatherer.Mapping{{Pattern: "[", Replacement: "x"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected %s to be rejected", tt.name)
			}
		})
	}

	cfg := valid
	cfg.HomeStation = ""
	if err := cfg.Validate(); !errors.Is(err, ErrStationEmpty) {
		t.Errorf("expected ErrStationEmpty, got %v", err)
	}
}

func TestValidate_AccentColor(t *testing.T) {
	for _, accent := range []string{"0", "255", "#FF00ff"} {
		cfg := AppConfig{HomeStation: "Hamburg Hbf", AccentColor: accent}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected accent %q to be accepted, got %v", accent, err)
		}
	}

	cfg := AppConfig{HomeStation: "Hamburg Hbf", AccentColor: "256"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "AccentColor fails 'accent'") {
		t.Errorf("expected the accent rule to reject 256, got %v", err)
	}
}

func TestParseExpressions(t *testing.T) {
	got, err := ParseExpressions(" Trip to (.+) ; (?P<origin>.+)->(?P<destination>.+);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Trip to (.+)", "(?P<origin>.+)->(?P<destination>.+)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
	if FormatExpressions(got) != "Trip to (.+);(?P<origin>.+)->(?P<destination>.+)" {
		t.Errorf("unexpected format %q", FormatExpressions(got))
	}

	for _, input := range []string{"", " ; "} {
		if _, err := ParseExpressions(input); !errors.Is(err, ErrExpressionsEmpty) {
			t.Errorf("ParseExpressions(%q): expected ErrExpressionsEmpty, got %v", input, err)
		}
	}
}

func TestParseMappings(t *testing.T) {
	got, err := ParseMappings("HH , Hamburg Hbf; B,Berlin Hbf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []gatherer.Mapping{
		{Pattern: "HH", Replacement: "Hamburg Hbf"},
		{Pattern: "B", Replacement: "Berlin Hbf"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if FormatMappings(got) != "HH,Hamburg Hbf;B,Berlin Hbf" {
		t.Errorf("unexpected format %q", FormatMappings(got))
	}

	if got, err := ParseMappings(""); err != nil || len(got) != 0 {
		t.Errorf("expected no mappings for empty input, got %+v, %v", got, err)
	}
	for _, input := range []string{"HH", "a,b,c", "a,b;c"} {
		if _, err := ParseMappings(input); !errors.Is(err, ErrMappingFormat) {
			t.Errorf("ParseMappings(%q): expected ErrMappingFormat, got %v", input, err)
		}
	}
}

type fakeFinder map[string]string

func (f fakeFinder) FindStation(_ context.Context, name string) (string, error) {
	if canonical, ok := f[name]; ok {
		return canonical, nil
	}
	return "", errors.New("no match")
}

func TestValidateStation(t *testing.T) {
	finder := fakeFinder{"Hambu": "Hamburg Hbf"}

	got, err := ValidateStation(context.Background(), finder, " Hambu ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hamburg Hbf" {
		t.Errorf("expected the canonical name, got %q", got)
	}

	if _, err := ValidateStation(context.Background(), finder, ""); !errors.Is(err, ErrStationEmpty) {
		t.Errorf("expected ErrStationEmpty, got %v", err)
	}
	if _, err := ValidateStation(context.Background(), finder, "Hamburg"); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("expected ErrStationNotFound, got %v", err)
	}
}
