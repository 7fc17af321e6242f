package ledger

import (
	"fmt"
	"time"
)

// WeekStart returns the most recent Monday at midnight UTC for an instant.
// Weeks run Monday through Sunday; a Sunday maps back to the previous Monday.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return day.AddDate(0, 0, -offset)
}

// WeekEnd is the last calendar day of the week (the Sunday).
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 6)
}

// WeekID renders a week key like "2026-W10" from any instant in the week.
func WeekID(t time.Time) string {
	start := WeekStart(t)
	return fmt.Sprintf("%d-W%02d", start.Year(), weekNumber(start))
}

// weekNumber counts Monday-start weeks from January 1st of the week-start's
// year, 1-based. Not ISO-8601: the numbering matches the ledger's own
// bucketing, where a week belongs to the year its Monday falls in.
func weekNumber(weekStart time.Time) int {
	jan1 := time.Date(weekStart.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(weekStart.Sub(jan1).Hours()/(24*7)) + 1
}
