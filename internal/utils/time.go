package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/activities/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// "Local" selects the system timezone and an empty name selects UTC.
func LoadLocation(timezone string) (*time.Location, error) {
	switch timezone {
	case "":
		return time.UTC, nil
	case "Local":
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ParseDate parses a date string in the standard format (YYYY-MM-DD).
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse(constants.DateFormat, dateStr)
}

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// CombineDateAndTime combines a date string (YYYY-MM-DD) and time string (HH:MM)
// into a single time.Time in the specified timezone.
func CombineDateAndTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	date, err := ParseDate(dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}

	timeOfDay, err := ParseTime(timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %w", err)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), 0, 0,
		loc,
	), nil
}

// SplitDateAndTime is the inverse of CombineDateAndTime: it renders t in loc as
// separate date and time strings. A zero time yields two empty strings.
func SplitDateAndTime(t time.Time, loc *time.Location) (string, string) {
	if t.IsZero() {
		return "", ""
	}
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return local.Format(constants.DateFormat), local.Format(constants.TimeFormat)
}

// FormatDayHeader renders a YYYY-MM-DD key as a human readable heading.
// Keys that do not parse are returned unchanged.
func FormatDayHeader(day string) string {
	d, err := ParseDate(day)
	if err != nil {
		return day
	}
	return d.Format(constants.DisplayDateFormat)
}
