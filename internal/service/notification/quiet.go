package notification

import (
	"fmt"
	"time"
)

// parseClock parses an "HH:MM" wall clock time into minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuietHours, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// inQuietHours reports whether now falls inside the [start, end) window.
// Windows may wrap past midnight, e.g. 22:00 to 06:00. The end minute is
// outside the window, so a 06:00 delivery with a 22:00-06:00 window goes out
// immediately.
func inQuietHours(now time.Time, start, end string) (bool, error) {
	s, err := parseClock(start)
	if err != nil {
		return false, err
	}
	e, err := parseClock(end)
	if err != nil {
		return false, err
	}
	if s == e {
		return false, nil
	}
	m := now.Hour()*60 + now.Minute()
	if s < e {
		return m >= s && m < e, nil
	}
	// Wrapping window.
	return m >= s || m < e, nil
}

// quietHoursEnd returns the next moment the window ends, relative to now.
// Callers must have already established that now is inside the window.
func quietHoursEnd(now time.Time, end string) (time.Time, error) {
	e, err := parseClock(end)
	if err != nil {
		return time.Time{}, err
	}
	endToday := time.Date(now.Year(), now.Month(), now.Day(), e/60, e%60, 0, 0, now.Location())
	if !endToday.After(now) {
		endToday = endToday.AddDate(0, 0, 1)
	}
	return endToday, nil
}
