// Package recurrence computes future occurrences of annual anniversaries.
package recurrence

import "time"

// NextAnnual returns the next occurrence of anniversary at or after now.
//
// If anniversary (in its own year) has not yet passed relative to now it
// is returned unchanged, including its time of day. Otherwise the result
// is the same month/day/time in the year after now's year. The step is a
// single increment anchored to now, never to the anniversary's year, so
// a birthday from decades ago still lands on next year's date.
//
// Feb 29 anniversaries projected onto a non-leap year roll forward to
// Mar 1. That is the normalization time.Date applies, and it is the
// documented policy here rather than an accident: callers always get a
// real calendar date, never a truncated Feb 28.
func NextAnnual(anniversary, now time.Time) time.Time {
	if !anniversary.Before(now) {
		return anniversary
	}
	return time.Date(
		now.Year()+1,
		anniversary.Month(),
		anniversary.Day(),
		anniversary.Hour(),
		anniversary.Minute(),
		anniversary.Second(),
		anniversary.Nanosecond(),
		anniversary.Location(),
	)
}
