// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/iwvelando/mortgage-payoff/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate string, secondDate string) (bool, error) {
	firstDateT, err := time.Parse(DateTimeLayout, firstDate)
	if err != nil {
		return false, err
	}
	secondDateT, err := time.Parse(DateTimeLayout, secondDate)
	if err != nil {
		return false, err
	}
	return firstDateT.Before(secondDateT), nil
}

// MonthLabel converts a YYYY-MM date into a human-readable form such as
// "January 2026" for summaries and reports.
func MonthLabel(date string) (string, error) {
	t, err := time.Parse(DateTimeLayout, date)
	if err != nil {
		return date, err
	}
	return t.Format("January 2006"), nil
}

// ValidMonth reports whether the given string parses as a YYYY-MM date.
func ValidMonth(date string) bool {
	_, err := time.Parse(DateTimeLayout, date)
	return err == nil
}
