// Package recurdate centralizes every conversion between wall-clock instants,
// occurrence calendar days and the storage timestamp format. The store keeps
// naive timestamps (no zone suffix), implicitly in UTC; all occurrence-window
// arithmetic runs at day granularity in the same frame so results do not
// depend on the calling machine's local offset.
package recurdate

import "time"

// dbTimestampLayout is the naive storage format, minute precision.
const dbTimestampLayout = "2006-01-02 15:04"

// RecurrenceDate normalizes an instant to the UTC midnight of its UTC
// calendar day, discarding time-of-day.
func RecurrenceDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DBTimestamp renders an instant in the storage format, truncated to the
// minute.
func DBTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Minute).Format(dbTimestampLayout)
}

// OccurrenceDBTimestamp renders an occurrence as a naive timestamp re-anchored
// at 00:00 of its UTC calendar day. Any two instants sharing a UTC calendar
// day render byte-identically.
func OccurrenceDBTimestamp(occurrence time.Time) string {
	return RecurrenceDate(occurrence).Format(dbTimestampLayout)
}

// NewCalendarDayElapsed reports whether now falls on a strictly later calendar
// day than lastProcessed. This is the re-processing gate: it allows at most
// one materialization pass per day per definition, while the expansion window
// (not this gate) handles multi-day catch-up.
func NewCalendarDayElapsed(lastProcessed, now time.Time) bool {
	return RecurrenceDate(now).After(RecurrenceDate(lastProcessed))
}
