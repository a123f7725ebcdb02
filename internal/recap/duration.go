package recap

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Duration parsing errors.
var (
	ErrInvalidDuration = errors.New("invalid duration format")
	ErrUnknownUnit     = errors.New("unknown duration unit")
)

// ParseDuration parses a duration token like "7d", "12h", "2w".
// Supported units: h (hours), d (days), w (weeks).
func ParseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, ErrInvalidDuration
	}

	unit := s[len(s)-1]
	value, err := parsePositiveInt(s[:len(s)-1])
	if err != nil {
		return 0, ErrInvalidDuration
	}

	switch unit {
	case 'h':
		return time.Duration(value) * time.Hour, nil
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("%w: %c", ErrUnknownUnit, unit)
	}
}

// parsePositiveInt parses a string as a positive integer.
func parsePositiveInt(s string) (int, error) {
	if s == "" {
		return 0, ErrInvalidDuration
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidDuration
	}
	if n <= 0 {
		return 0, ErrInvalidDuration
	}
	return n, nil
}

// DescribeDuration renders a duration for user-facing messages, picking the
// largest whole unit (e.g. "7 days", "12 hours").
func DescribeDuration(d time.Duration) string {
	const day = 24 * time.Hour

	switch {
	case d >= day && d%day == 0:
		return plural(int(d/day), "day")
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d/time.Minute), "minute")
	}
}

// FormatDateRange formats a window for display (e.g. "Jan 12-18").
func FormatDateRange(start, end time.Time) string {
	if start.Month() == end.Month() && start.Year() == end.Year() {
		if start.Day() == end.Day() {
			return start.Format("Jan 2")
		}
		return fmt.Sprintf("%s %d-%d", start.Format("Jan"), start.Day(), end.Day())
	}
	return fmt.Sprintf("%s-%s", start.Format("Jan 2"), end.Format("Jan 2"))
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
