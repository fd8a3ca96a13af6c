package models

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format for optional clock values.
	TimeLayout = "15:04"
)

// ParseDate parses a YYYY-MM-DD string into a UTC midnight instant.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a time as a YYYY-MM-DD string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseClock parses an HH:MM string.
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}

// Midnight drops the time-of-day, keeping only the calendar date in UTC.
// Diffing two midnights in UTC is immune to DST jumps.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of whole days from ref to date,
// both normalized to midnight first.
func DaysBetween(date, ref time.Time) int {
	return int(Midnight(date).Sub(Midnight(ref)).Hours() / 24)
}

// EuclidMod is modulo that is non-negative for any integer input.
// Language-native % is a remainder and goes negative for dates before the
// reference, which would index cycles backwards.
func EuclidMod(a, n int) int {
	return ((a % n) + n) % n
}
