package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for date-only values such as report ranges.
const DateLayout = "2006-01-02"

var flexibleLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseFlexibleTime accepts the timestamp shapes the backend and HTML
// date pickers produce. Values without a zone are read as UTC.
func ParseFlexibleTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range flexibleLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}

// parseOptionalTime decodes a JSON string-or-null timestamp.
func parseOptionalTime(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := ParseFlexibleTime(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
