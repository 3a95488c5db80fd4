// Package cycle computes recurring day-of-month trigger dates for
// contribution and payout runs. It is stateless and side-effect-free.
package cycle

import (
	"errors"
	"fmt"
	"time"
)

var ErrDayOutOfRange = errors.New("day of month must be between 1 and 31")

// ValidateDay checks a configured day-of-month against calendar bounds.
func ValidateDay(day int) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("day %d: %w", day, ErrDayOutOfRange)
	}
	return nil
}

// NextOccurrence returns the date monthsAhead months after from, landing on
// dayOfMonth. If the target month is shorter than dayOfMonth, the date is
// clamped to the last day of that month (day 31 in a 30-day month yields
// day 30). Month arithmetic rolls the year past December.
func NextOccurrence(from time.Time, dayOfMonth, monthsAhead int) time.Time {
	months := int(from.Month()) + monthsAhead
	year := from.Year() + (months-1)/12
	month := time.Month((months-1)%12 + 1)

	day := dayOfMonth
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, from.Location())
}

// MatchesTrigger reports whether the candidate date falls on the configured
// day of the month. Only the day matters; month and year are the caller's
// concern.
func MatchesTrigger(candidate time.Time, configuredDay int) bool {
	return candidate.Day() == configuredDay
}

// daysIn returns the number of days in the given month. Day 0 of the next
// month normalizes to this month's last day.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
