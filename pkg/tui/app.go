package tui

import (
	"traintracker/pkg/config"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	// These act as fallbacks initially, but are replaced by GetTheme()
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	lineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
)

const defaultAccent = "99"

// GetTheme loads the user's saved accent color and constructs the UI theme.
func GetTheme() *huh.Theme {
	cfg, err := config.Load()
	baseColor := defaultAccent

	if err == nil && cfg != nil && cfg.AccentColor != "" {
		baseColor = cfg.AccentColor
	}

	// Update the global lipgloss accent so plain print statements also receive the color
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(baseColor))

	return GetCustomTheme(baseColor)
}

// GetCustomTheme returns a new huh.Theme built around the provided lipgloss color string.
func GetCustomTheme(baseColor string) *huh.Theme {
	t := huh.ThemeCharm()
	p := lipgloss.Color(baseColor)

	t.Focused.Title = t.Focused.Title.Foreground(p).Bold(true)
	t.Focused.Base = t.Focused.Base.Border(lipgloss.RoundedBorder()).BorderForeground(p).Padding(0, 1)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(p)
	t.Focused.MultiSelectSelector = t.Focused.MultiSelectSelector.Foreground(p)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(p)
	t.Focused.SelectedPrefix = t.Focused.SelectedPrefix.Foreground(p)
	t.Focused.UnselectedPrefix = t.Focused.UnselectedPrefix.Foreground(lipgloss.AdaptiveColor{Light: "", Dark: "235"})
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(p)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(p)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Foreground(lipgloss.Color("0")).Background(p)

	// Softer borders for unfocused elements
	t.Blurred.Base = t.Blurred.Base.Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)

	return t
}

// RunTUI launches the main menu
func RunTUI() error {
	var action string

	initialForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What would you like to do?").
				Options(
					huh.NewOption("🚆 Upcoming Travel", "status"),
					huh.NewOption("🧭 Next Connections", "transit"),
					huh.NewOption("📅 Export Travel Calendar", "export"),
					huh.NewOption("⚙️ Settings", "config"),
				).
				Value(&action),
		),
	).WithTheme(GetTheme())

	if err := initialForm.Run(); err != nil {
		return err
	}

	switch action {
	case "transit":
		return RunTransitTUI()
	case "export":
		return RunExportTUI()
	case "config":
		return RunConfigTUI()
	}

	return RunStatusTUI()
}
