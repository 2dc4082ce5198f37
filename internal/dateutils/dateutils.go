// Package dateutils provides the clock and timestamp helpers used by the ledger.
package dateutils

import (
	"fmt"
	"strings"
	"time"

	"github.com/TalShar783/Taskmaster/internal/models"
)

// Clock returns the current time. The recorder takes one so tests can pin it.
type Clock func() time.Time

// LoadLocation resolves a timezone name. Empty and "Local" both mean the host zone.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// ClockIn returns a Clock reporting wall time in loc.
func ClockIn(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// FormatTimestamp renders t in the ledger's dd/mm/yyyy HH:MM:SS layout.
func FormatTimestamp(t time.Time) string {
	return t.Format(models.TimestampLayout)
}

// ParseTimestamp parses a ledger timestamp in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(models.TimestampLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
	}
	return t, nil
}
