package gatherer

import (
	"regexp"
	"strings"
)

// Extract matches summary against expr from its first character. A named "origin"
// group yields the origin, otherwise fallbackOrigin is used. A named "destination"
// group yields the destination, otherwise the last capture group does.
//
// ok is false when expr does not match or has no group to take a destination from.
func Extract(expr *regexp.Regexp, summary, fallbackOrigin string) (origin, destination string, ok bool) {
	m := expr.FindStringSubmatchIndex(summary)
	if m == nil {
		return "", "", false
	}

	group := func(i int) (string, bool) {
		if i <= 0 || m[2*i] < 0 {
			return "", false
		}
		return summary[m[2*i]:m[2*i+1]], true
	}

	origin = fallbackOrigin
	if v, found := group(expr.SubexpIndex("origin")); found && v != "" {
		origin = v
	}

	if v, found := group(expr.SubexpIndex("destination")); found && v != "" {
		return origin, v, true
	}
	last, found := group(expr.NumSubexp())
	if !found {
		return "", "", false
	}
	return origin, last, true
}

// ExtractFirst applies the expressions in order and stops at the first one that
// matches summary.
func ExtractFirst(exprs []*regexp.Regexp, summary, fallbackOrigin string) (origin, destination string, ok bool) {
	for _, expr := range exprs {
		if expr.MatchString(summary) {
			return Extract(expr, summary, fallbackOrigin)
		}
	}
	return "", "", false
}

// ConvertStation trims name and returns the replacement of the first mapping whose
// pattern matches at its start. Unmatched names are returned trimmed.
func ConvertStation(name string, mappings []Mapping) (string, error) {
	compiled, err := Config{Mappings: mappings}.compileMappings()
	if err != nil {
		return "", err
	}
	return convertStation(name, compiled), nil
}

func convertStation(name string, mappings []compiledMapping) string {
	name = strings.TrimSpace(name)
	for _, m := range mappings {
		if m.pattern.MatchString(name) {
			return m.replacement
		}
	}
	return name
}
