package config

import (
	"fmt"
	"strings"

	"traintracker/pkg/gatherer"
)

// ParseExpressions splits a ';'-joined list of expressions.
func ParseExpressions(input string) ([]string, error) {
	var exprs []string
	for _, part := range strings.Split(input, ";") {
		if part = strings.TrimSpace(part); part != "" {
			exprs = append(exprs, part)
		}
	}
	if len(exprs) == 0 {
		return nil, ErrExpressionsEmpty
	}
	return exprs, nil
}

// FormatExpressions joins expressions the way ParseExpressions reads them.
func FormatExpressions(exprs []string) string {
	return strings.Join(exprs, ";")
}

// ParseMappings reads ';'-joined "pattern,replacement" pairs. An empty input yields
// no mappings.
func ParseMappings(input string) ([]gatherer.Mapping, error) {
	var mappings []gatherer.Mapping
	for _, part := range strings.Split(input, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		items := strings.Split(part, ",")
		if len(items) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrMappingFormat, part)
		}
		mappings = append(mappings, gatherer.Mapping{
			Pattern:     strings.TrimSpace(items[0]),
			Replacement: strings.TrimSpace(items[1]),
		})
	}
	return mappings, nil
}

// FormatMappings joins mappings the way ParseMappings reads them.
func FormatMappings(mappings []gatherer.Mapping) string {
	parts := make([]string, 0, len(mappings))
	for _, m := range mappings {
		parts = append(parts, m.Pattern+","+m.Replacement)
	}
	return strings.Join(parts, ";")
}
