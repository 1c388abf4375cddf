package tui

import (
	"strings"
	"testing"

	"traintracker/pkg/config"
	"traintracker/pkg/gatherer"
)

func TestRenderConfig_Defaults(t *testing.T) {
	out := RenderConfig(&config.AppConfig{})

	for _, want := range []string{
		"Home Station: Not set",
		"Calendars: 0",
		"Scan Duration: 48h0m0s",
		"Max Train Results: 5",
		"Remove Same-Time Duplicates: true",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got: \n%s", want, out)
		}
	}
}

func TestRenderConfig_Saved(t *testing.T) {
	off := false
	cfg := &config.AppConfig{
		HomeStation:          "Hamburg Hbf",
		Calendars:            []string{"https://example.com/work.ics"},
		Mappings:             []gatherer.Mapping{{Pattern: "^Office$", Replacement: "Berlin Hbf"}},
		MaxTrainResults:      3,
		RemoveTimeDuplicates: &off,
	}
	out := RenderConfig(cfg)

	for _, want := range []string{
		"Home Station: Hamburg Hbf",
		"Sensor Name: Train Tracker Hamburg Hbf",
		"• https://example.com/work.ics",
		"• ^Office$ → Berlin Hbf",
		"Max Train Results: 3",
		"Remove Same-Time Duplicates: false",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got: \n%s", want, out)
		}
	}
}

func TestIntBetween(t *testing.T) {
	check := intBetween(1, 50)
	for in, ok := range map[string]bool{"1": true, " 50 ": true, "0": false, "51": false, "x": false} {
		if err := check(in); (err == nil) != ok {
			t.Errorf("intBetween(1, 50)(%q) error = %v", in, err)
		}
	}
}
