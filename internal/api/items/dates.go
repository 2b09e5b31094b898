package items

import (
	"fmt"
	"strings"
	"time"
)

// Layouts for date fields arriving without a zone designator; parsed as
// UTC.
var looseDateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseFlexibleDate accepts extended ISO-8601 with or without a zone. A
// trailing Z is the UTC designator; RFC 3339 parsing normalizes it.
func parseFlexibleDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	// Zoneless forms, with the bare Z variant folded in.
	zoneless := strings.TrimSuffix(s, "Z")
	for _, layout := range looseDateLayouts {
		if t, err := time.ParseInLocation(layout, zoneless, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q, use ISO format", raw)
}
