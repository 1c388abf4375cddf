package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"traintracker/pkg/config"
	"traintracker/pkg/gatherer"
	"traintracker/pkg/transit"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
)

// RunConfigTUI launches the interactive experience for managing configurations
func RunConfigTUI() error {
	for {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var action string

		initialForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Configuration Settings").
					Options(
						huh.NewOption("Set Home Station", "home"),
						huh.NewOption("Set Calendars", "calendars"),
						huh.NewOption("Set Travel Expressions", "expressions"),
						huh.NewOption("Set Station Mappings", "mappings"),
						huh.NewOption("Set Search Limits", "limits"),
						huh.NewOption("Set Accent Color (Theme)", "theme"),
						huh.NewOption("View Current Config", "view"),
						huh.NewOption("Back to Main Menu", "back"),
					).
					Value(&action),
			),
		).WithTheme(GetTheme())

		if err := initialForm.Run(); err != nil {
			return err
		}

		switch action {
		case "back":
			return nil
		case "home":
			err = runSetHomeTUI(cfg)
		case "calendars":
			err = runSetCalendarsTUI(cfg)
		case "expressions":
			err = runSetExpressionsTUI(cfg)
		case "mappings":
			err = runSetMappingsTUI(cfg)
		case "limits":
			err = runSetLimitsTUI(cfg)
		case "theme":
			err = runSetThemeTUI(cfg)
		case "view":
			fmt.Print(RenderConfig(cfg))
		}

		if err != nil {
			return err
		}
	}
}

// RenderConfig lists the saved settings, showing defaults for unset values.
func RenderConfig(cfg *config.AppConfig) string {
	gcfg := cfg.GathererConfig()

	var b strings.Builder
	b.WriteString(accentStyle.Render("\n--- Current Configuration (~/.traintracker.json) ---") + "\n")
	if cfg.HomeStation == "" {
		b.WriteString("Home Station: Not set\n")
	} else {
		fmt.Fprintf(&b, "Home Station: %s\n", cfg.HomeStation)
	}
	fmt.Fprintf(&b, "Sensor Name: %s\n", cfg.DisplayName())
	fmt.Fprintf(&b, "Calendars: %d\n", len(cfg.Calendars))
	for _, c := range cfg.Calendars {
		fmt.Fprintf(&b, "  • %s\n", c)
	}
	fmt.Fprintf(&b, "Scan Duration: %s\n", gcfg.ScanDuration)
	fmt.Fprintf(&b, "Expressions: %d\n", len(gcfg.Expressions))
	for _, e := range gcfg.Expressions {
		fmt.Fprintf(&b, "  • %s\n", e)
	}
	fmt.Fprintf(&b, "Station Mappings: %d\n", len(gcfg.Mappings))
	for _, m := range gcfg.Mappings {
		fmt.Fprintf(&b, "  • %s → %s\n", m.Pattern, m.Replacement)
	}
	fmt.Fprintf(&b, "Max Train Results: %d\n", gcfg.MaxResults)
	fmt.Fprintf(&b, "Remove Same-Time Duplicates: %t\n", gcfg.RemoveSameTimeDuplicates)
	fmt.Fprintf(&b, "Accent Color: %s\n\n", cfg.AccentColor)
	return b.String()
}

func runSetHomeTUI(cfg *config.AppConfig) error {
	input := cfg.HomeStation

	inputForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Enter your home station").
				Description("Trips without an explicit origin start here.").
				Placeholder("e.g. Hamburg Hbf").
				Value(&input),
		),
	).WithTheme(GetTheme())

	if err := inputForm.Run(); err != nil {
		return err
	}

	if strings.TrimSpace(input) == "" {
		fmt.Println("Operation cancelled: No station provided.")
		return nil
	}

	proxy, err := cfg.ProxyURL()
	if err != nil {
		return err
	}
	client := transit.NewClient(transit.WithProxy(proxy))

	var station string
	var fetchErr error

	_ = spinner.New().
		Title(fmt.Sprintf("Searching transit network for '%s'...", input)).
		Action(func() {
			station, fetchErr = config.ValidateStation(context.Background(), client, input)
		}).
		Run()

	if fetchErr != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("❌ %v", fetchErr)))
		return nil
	}

	cfg.HomeStation = station
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✅ Successfully saved home station: %s\n", station)))
	return nil
}

func runSetCalendarsTUI(cfg *config.AppConfig) error {
	input := strings.Join(cfg.Calendars, ";")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Calendars to scan").
				Description("iCalendar URLs or file paths, separated by ';'.").
				Value(&input),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	var calendars []string
	for _, c := range strings.Split(input, ";") {
		if c = strings.TrimSpace(c); c != "" {
			calendars = append(calendars, c)
		}
	}

	cfg.Calendars = calendars
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✅ Successfully saved %d calendars.\n", len(calendars))))
	return nil
}

func runSetExpressionsTUI(cfg *config.AppConfig) error {
	exprs := cfg.Expressions
	if len(exprs) == 0 {
		exprs = gatherer.DefaultExpressions
	}
	input := config.FormatExpressions(exprs)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Travel expressions").
				Description("Regular expressions separated by ';'. Use the groups 'origin' and 'destination',\nor a single group for the destination.").
				Value(&input).
				Validate(func(str string) error {
					parsed, err := config.ParseExpressions(str)
					if err != nil {
						return err
					}
					_, err = gatherer.Config{Expressions: parsed}.CompileExpressions()
					return err
				}),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	parsed, err := config.ParseExpressions(input)
	if err != nil {
		return err
	}

	cfg.Expressions = parsed
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✅ Successfully saved %d expressions.\n", len(parsed))))
	return nil
}

func runSetMappingsTUI(cfg *config.AppConfig) error {
	input := config.FormatMappings(cfg.Mappings)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Station mappings").
				Description("'pattern,replacement' pairs separated by ';'. Example: ^Office$,Berlin Hbf").
				Value(&input).
				Validate(func(str string) error {
					mappings, err := config.ParseMappings(str)
					if err != nil {
						return err
					}
					_, err = gatherer.ConvertStation("", mappings)
					return err
				}),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	mappings, err := config.ParseMappings(input)
	if err != nil {
		return err
	}

	cfg.Mappings = mappings
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✅ Successfully saved %d station mappings.\n", len(mappings))))
	return nil
}

func runSetLimitsTUI(cfg *config.AppConfig) error {
	gcfg := cfg.GathererConfig()
	maxResults := strconv.Itoa(gcfg.MaxResults)
	duration := strconv.Itoa(int(gcfg.ScanDuration.Hours()))
	dedup := gcfg.RemoveSameTimeDuplicates

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Max train results per trip").
				Value(&maxResults).
				Validate(intBetween(1, 50)),
			huh.NewInput().
				Title("Scan duration in hours").
				Value(&duration).
				Validate(intBetween(1, 744)),
			huh.NewConfirm().
				Title("Remove connections with the same departure and arrival?").
				Value(&dedup),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.MaxTrainResults, _ = strconv.Atoi(maxResults)
	cfg.ScanDurationHours, _ = strconv.Atoi(duration)
	cfg.RemoveTimeDuplicates = &dedup
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render("\n✅ Search limits saved.\n"))
	return nil
}

func intBetween(lo, hi int) func(string) error {
	return func(str string) error {
		n, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil || n < lo || n > hi {
			return fmt.Errorf("must be a number between %d and %d", lo, hi)
		}
		return nil
	}
}

func colorBlock(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("██")
}

func runSetThemeTUI(cfg *config.AppConfig) error {
	var input string

	inputForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose an Accent Color for traintracker").
				Description("Select a curated Charm style or choose Custom to enter your own Hex.").
				Options(
					huh.NewOption(fmt.Sprintf("%s Signal Purple", colorBlock("99")), "99"),
					huh.NewOption(fmt.Sprintf("%s Sakura Pink", colorBlock("205")), "205"),
					huh.NewOption(fmt.Sprintf("%s Ocean Blue", colorBlock("86")), "86"),
					huh.NewOption(fmt.Sprintf("%s Matrix Green", colorBlock("42")), "42"),
					huh.NewOption("✨ Custom Hex Code", "custom"),
				).
				Value(&input),
		),
	).WithTheme(GetTheme())

	if err := inputForm.Run(); err != nil {
		return err
	}

	if input == "custom" {
		var hexInput string
		hexForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Enter a Hex Color Code").
					Description("Include the `#` symbol. Example: #FF00FF").
					Placeholder("#").
					Value(&hexInput).
					Validate(func(str string) error {
						probe := config.AppConfig{HomeStation: "-", AccentColor: str}
						if probe.Validate() != nil {
							return fmt.Errorf("must be a valid 6-character hex code starting with #")
						}
						return nil
					}),
			),
		).WithTheme(GetTheme())

		if err := hexForm.Run(); err != nil {
			return err
		}
		cfg.AccentColor = hexInput
	} else {
		cfg.AccentColor = input
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	GetTheme()
	fmt.Println(accentStyle.Render("\n✅ Beautiful! The theme color is now saved.\n"))
	return nil
}
