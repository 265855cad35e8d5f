// Package calendar provides business-day arithmetic for deadline and
// schedule computation. Only Saturday and Sunday are excluded; no holiday
// calendar is modeled.
package calendar

import (
	"math"
	"time"
)

// Midnight truncates t to midnight in its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AddBusinessDays advances n weekdays from start. A weekend start first
// rolls forward to the next Monday (Saturday +2, Sunday +1), and the
// rolled-to Monday is not counted as one of the n days. This asymmetry
// with SubtractBusinessDays is intentional: deadline math depends on it.
func AddBusinessDays(start time.Time, n int) time.Time {
	date := Midnight(start)
	switch date.Weekday() {
	case time.Saturday:
		date = date.AddDate(0, 0, 2)
	case time.Sunday:
		date = date.AddDate(0, 0, 1)
	}

	added := 0
	for added < n {
		date = date.AddDate(0, 0, 1)
		if !IsWeekend(date) {
			added++
		}
	}
	return date
}

// SubtractBusinessDays walks backward from end (exclusive), counting only
// weekdays, until n have been counted. A weekend end is not rolled.
func SubtractBusinessDays(end time.Time, n int) time.Time {
	date := Midnight(end)
	subtracted := 0
	for subtracted < n {
		date = date.AddDate(0, 0, -1)
		if !IsWeekend(date) {
			subtracted++
		}
	}
	return date
}

// DaysBetween returns the calendar-day difference b - a after truncating
// both to midnight. A b earlier than a yields a negative result.
func DaysBetween(a, b time.Time) int {
	start := Midnight(a)
	end := Midnight(b)
	// Rounding absorbs DST-shortened or -lengthened days.
	return int(math.Round(end.Sub(start).Hours() / 24))
}
