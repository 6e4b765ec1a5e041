// Package dateutils provides the date layouts used by the statement parsers.
package dateutils

import (
	"fmt"
	"time"
)

// Date layouts found in the supported statements
const (
	DateLayoutISO = "2006-01-02"
	// DateLayoutSwiss accepts one- or two-digit day and month (1.2.2024 and 01.02.2024).
	DateLayoutSwiss = "2.1.2006"
	DateLayoutFull  = "2006-01-02 15:04:05"
)

// ParseSwissDate parses a day.month.year date such as 31.12.2023.
// The input must already be trimmed; surrounding whitespace is an error.
func ParseSwissDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayoutSwiss, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q as day.month.year: %w", dateStr, err)
	}
	return t, nil
}

// ParseTimestamp parses a YYYY-MM-DD HH:MM:SS timestamp.
func ParseTimestamp(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayoutFull, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse timestamp %q: %w", dateStr, err)
	}
	return t, nil
}

// TruncateToDay returns midnight UTC of t's calendar date in t's own location.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}
