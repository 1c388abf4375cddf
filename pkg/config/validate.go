package config

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMappingFormat    = errors.New("a station mapping must be 'pattern,replacement'")
	ErrExpressionsEmpty = errors.New("at least one expression is required")
	ErrStationEmpty     = errors.New("home station is required")
	ErrStationNotFound  = errors.New("home station not found")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// validAccent accepts an ANSI 256 color index or a #RRGGBB hex code.
func validAccent(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if hexColor.MatchString(v) {
		return true
	}
	n, err := strconv.Atoi(v)
	return err == nil && n >= 0 && n <= 255
}

var validate = validator.New()

func init() {
	if err := validate.RegisterValidation("accent", validAccent); err != nil {
		panic(fmt.Sprintf("config: registering accent validation: %v", err))
	}
}

// Validate checks the struct constraints and compiles every expression and
// mapping pattern.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.HomeStation) == "" {
		return ErrStationEmpty
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	gcfg := c.GathererConfig()
	if _, err := gcfg.CompileExpressions(); err != nil {
		return err
	}
	for _, m := range c.Mappings {
		if _, err := regexp.Compile(m.Pattern); err != nil {
			return fmt.Errorf("invalid mapping pattern %q: %w", m.Pattern, err)
		}
	}
	return nil
}

// StationFinder looks up the canonical name of a station.
type StationFinder interface {
	FindStation(ctx context.Context, name string) (string, error)
}

// ValidateStation checks that name is a known station and returns its canonical name.
func ValidateStation(ctx context.Context, finder StationFinder, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrStationEmpty
	}
	canonical, err := finder.FindStation(ctx, name)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrStationNotFound, name, err)
	}
	return canonical, nil
}
