package gatherer

import (
	"fmt"
	"regexp"
	"time"
)

const (
	DefaultScanDuration = 48 * time.Hour
	DefaultMaxResults   = 5
)

// DefaultExpressions are checked in order against every calendar summary.
var DefaultExpressions = []string{
	"Blocker[:]?[ ]*Travel[ ]*to(.+)",
	"Train[ ]*Travel[ ]*to(.+)",
	"Train[ ]*Travel[ ]*from(?P<origin>.+) to(?P<destination>.+)",
	"(?P<origin>.+)→(?P<destination>.+)",
	"(?P<origin>.+)➞(?P<destination>.+)",
}

// Mapping rewrites a station name matching Pattern to Replacement.
type Mapping struct {
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// Config is the input of one gathering run for a single home station.
type Config struct {
	Origin                   string
	Calendars                []string
	ScanDuration             time.Duration
	Expressions              []string
	Mappings                 []Mapping
	MaxResults               int
	RemoveSameTimeDuplicates bool
}

// DefaultConfig returns a Config with the stock expressions and limits.
func DefaultConfig(origin string, calendars ...string) Config {
	return Config{
		Origin:                   origin,
		Calendars:                calendars,
		ScanDuration:             DefaultScanDuration,
		Expressions:              append([]string(nil), DefaultExpressions...),
		MaxResults:               DefaultMaxResults,
		RemoveSameTimeDuplicates: true,
	}
}

func (c Config) scanDuration() time.Duration {
	if c.ScanDuration <= 0 {
		return DefaultScanDuration
	}
	return c.ScanDuration
}

func (c Config) maxResults() int {
	if c.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return c.MaxResults
}

// CompileExpressions compiles the summary expressions case-insensitively and anchored
// at the start of the summary. Trailing text after a match is ignored.
func (c Config) CompileExpressions() ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(c.Expressions))
	for _, expr := range c.Expressions {
		re, err := regexp.Compile("(?i)^(?:" + expr + ")")
		if err != nil {
			return nil, fmt.Errorf("invalid expression %q: %w", expr, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

type compiledMapping struct {
	pattern     *regexp.Regexp
	replacement string
}

func (c Config) compileMappings() ([]compiledMapping, error) {
	compiled := make([]compiledMapping, 0, len(c.Mappings))
	for _, m := range c.Mappings {
		re, err := regexp.Compile("^(?:" + m.Pattern + ")")
		if err != nil {
			return nil, fmt.Errorf("invalid mapping pattern %q: %w", m.Pattern, err)
		}
		compiled = append(compiled, compiledMapping{pattern: re, replacement: m.Replacement})
	}
	return compiled, nil
}
