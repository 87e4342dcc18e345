// Package dateutils provides common date and time operations used throughout the application.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Common date format constants used throughout the application
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutEuropean = "02.01.2006"
	DateLayoutUS       = "01/02/2006"
	DateLayoutFull     = "2006-01-02 15:04:05"
	DateLayoutMinutes  = "2006-01-02 15:04"
	DateLayoutMonth    = "2006-01"
)

// CommonFormats is the ordered list of layouts tried when parsing statement dates.
// Timestamps exported by banks come first.
var CommonFormats = []string{
	time.RFC3339,
	DateLayoutISO + "T15:04:05",
	DateLayoutFull,
	DateLayoutMinutes,
	DateLayoutISO,
	DateLayoutEuropean,
	"02/01/2006",
	DateLayoutUS,
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

var spaces = regexp.MustCompile(`\s+`)

// CleanDateString removes unwanted characters and normalizes a date string
func CleanDateString(dateStr string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// NormalizeTimestamp reduces a timestamp to a comparable form: the first 'T'
// (the date/time separator) becomes a space, any '+HH:MM' offset suffix is cut, surrounding whitespace is trimmed.
// "2024-01-15T10:30:00+01:00" and "2024-01-15 10:30:00" normalize equally.
func NormalizeTimestamp(dateStr string) string {
	dateStr = strings.Replace(dateStr, "T", " ", 1)
	if i := strings.Index(dateStr, "+"); i >= 0 {
		dateStr = dateStr[:i]
	}
	return strings.TrimSpace(dateStr)
}

// ParseDate attempts to parse a date string using multiple common formats
// Returns the parsed time and the detected format
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)

	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, format, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// MonthKey formats the calendar month of a date as YYYY-MM.
func MonthKey(date time.Time) string {
	return date.Format(DateLayoutMonth)
}

// CompareDates compares two dates and returns:
//
//	-1 if date1 is before date2
//	 0 if date1 is equal to date2
//	 1 if date1 is after date2
func CompareDates(date1, date2 time.Time) int {
	// Normalize dates to remove time component
	date1 = time.Date(date1.Year(), date1.Month(), date1.Day(), 0, 0, 0, 0, time.UTC)
	date2 = time.Date(date2.Year(), date2.Month(), date2.Day(), 0, 0, 0, 0, time.UTC)

	if date1.Before(date2) {
		return -1
	} else if date1.After(date2) {
		return 1
	}
	return 0
}
