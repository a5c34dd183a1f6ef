package utils

import "time"

// DayLayout is the calendar-day key format used for streaks and activity dates.
const DayLayout = "2006-01-02"

// DayKey formats t as a calendar day in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// AddDays moves a midnight by n calendar days, staying on midnight across DST changes.
func AddDays(day time.Time, n int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day()+n, 0, 0, 0, 0, day.Location())
}

// PreviousDayKey returns the day key immediately before the day of t in loc.
func PreviousDayKey(t time.Time, loc *time.Location) string {
	return AddDays(StartOfDay(t, loc), -1).Format(DayLayout)
}
