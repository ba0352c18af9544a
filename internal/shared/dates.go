package shared

import (
	"fmt"
	"time"
)

// ParseDate coerces an API date string into a time. Accepts bare dates
// (2006-01-02) and RFC3339 timestamps; empty input yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", s)
	}
	return &t, nil
}
