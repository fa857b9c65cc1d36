package calculator

import "time"

// IsBusinessDay reports whether t falls on a weekday.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// NextBusinessDays returns the n weekdays strictly after the calendar date of after.
// Holidays are not skipped.
func NextBusinessDays(after time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	days := make([]time.Time, 0, n)
	d := time.Date(after.Year(), after.Month(), after.Day(), 0, 0, 0, 0, after.Location())
	for len(days) < n {
		d = d.AddDate(0, 0, 1)
		if IsBusinessDay(d) {
			days = append(days, d)
		}
	}
	return days
}
