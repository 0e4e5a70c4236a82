package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds are accepted and discarded; notification times are minute-grained.
func ParseTimeOfDay(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: expected HH:MM or HH:MM:SS, got %q", ErrInvalidTimeOfDay, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: invalid hour in %q", ErrInvalidTimeOfDay, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: invalid minute in %q", ErrInvalidTimeOfDay, s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("%w: invalid second in %q", ErrInvalidTimeOfDay, s)
		}
	}
	return h*60 + m, nil
}

// At builds the absolute instant at the given minutes since midnight on
// date's calendar day, in date's location.
func At(date time.Time, minutes int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, date.Location())
}

// FormatClock trims stored "HH:MM:SS" values to "HH:MM" for display.
func FormatClock(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

// FormatMinutes returns HH:MM for minutes since midnight.
func FormatMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// DayName returns the English weekday name for a 1-based Monday..Saturday index.
func DayName(index int) string {
	names := [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if index < 1 || index > len(names) {
		return "Unknown day"
	}
	return names[index-1]
}
