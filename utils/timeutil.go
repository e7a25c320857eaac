package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Recurrence errors. Both are caller errors and are never retried.
var (
	ErrInvalidRecurrenceRule = errors.New("invalid recurrence rule")
	ErrUnknownCycleType      = errors.New("unknown cycle type")
)

// Clock supplies the current time. Injected so tests can fix "now".
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock backed by time.Now
type RealClock struct{}

// Now returns the current time
func (RealClock) Now() time.Time {
	return time.Now()
}

// Today returns the current UTC day at midnight
func Today(clock Clock) time.Time {
	return TruncateToDay(clock.Now().UTC())
}

// TruncateToDay strips the time-of-day part of t, keeping its location
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekdayIndex returns the weekday of t with Monday = 0 ... Sunday = 6
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DateByWeekday returns the date of the given weekday (Monday = 0) relative
// to ref, shifted by nWeeks weeks. nWeeks may be negative to go back in time.
func DateByWeekday(ref time.Time, targetWeekday int, nWeeks int) time.Time {
	diff := targetWeekday - WeekdayIndex(ref)
	return ref.AddDate(0, 0, diff+7*nWeeks)
}

// DateByInterval returns ref shifted by interval days
func DateByInterval(ref time.Time, interval int) time.Time {
	return ref.AddDate(0, 0, interval)
}

// NextDelivery calculates the next delivery date for a subscription from the
// reference date and its cycle rule. It is pure and deterministic.
//
// Cycle "none" (also "None" or empty) yields nil: the subscription is dormant
// and its stored date must be left untouched. Cycle "day" expects a weekday
// index 0-6 (Monday = 0) and always lands on the following week's occurrence
// of that weekday, so a delivery never repeats on the same day. Cycle
// "interval" expects a positive day count and adds it to the reference date.
func NextDelivery(ref time.Time, cycleType string, interval int) (*time.Time, error) {
	switch strings.ToLower(cycleType) {
	case "", "none":
		return nil, nil

	case "day":
		if interval < 0 || interval > 6 {
			return nil, fmt.Errorf("%w: weekday index must be 0-6, got %d", ErrInvalidRecurrenceRule, interval)
		}
		next := DateByWeekday(ref, interval, 1)
		return &next, nil

	case "interval":
		if interval <= 0 {
			return nil, fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidRecurrenceRule, interval)
		}
		next := DateByInterval(ref, interval)
		return &next, nil

	default:
		return nil, fmt.Errorf("%w: %q (options: none, day, interval)", ErrUnknownCycleType, cycleType)
	}
}

// ParseDate parses a calendar date in "2006-01-02" or "2006.01.02" form
func ParseDate(s string) (time.Time, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), ".", "-")
	t, err := time.Parse("2006-01-02", normalized)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected Year.Month.Day): %w", s, err)
	}
	return t, nil
}

// FormatDate renders the calendar date of t as "2006.01.02"
func FormatDate(t time.Time) string {
	return t.Format("2006.01.02")
}

// FormatDateTime renders t as "2006.01.02 15:04"
func FormatDateTime(t time.Time) string {
	return t.Format("2006.01.02 15:04")
}

// UTCToLocal reinterprets a stored UTC timestamp in the given location
func UTCToLocal(t time.Time, loc *time.Location) time.Time {
	return t.UTC().In(loc)
}

// LocalToUTC treats t's wall-clock values as local time in loc and converts
// the result to UTC for storage
func LocalToUTC(t time.Time, loc *time.Location) time.Time {
	local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	return local.UTC()
}

// LocalCalendarDateMatches reports whether the UTC timestamp ts falls on the
// local calendar day of target in loc. This is the exact second phase of the
// two-phase due filter: the coarse query works on UTC, the calendar decision
// happens in business-local time.
func LocalCalendarDateMatches(ts time.Time, target time.Time, loc *time.Location) bool {
	return FormatDate(UTCToLocal(ts, loc)) == FormatDate(UTCToLocal(target, loc))
}
