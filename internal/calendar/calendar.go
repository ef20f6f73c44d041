// Package calendar provides pure calendar-day and week-window arithmetic.
//
// Every function takes the reference *time.Location explicitly. Two call sites
// using different references will disagree about what "today" means, so the
// location must never default silently.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput is returned for zero instants or nil locations.
var ErrInvalidInput = errors.New("calendar: invalid input")

// DayKey identifies a calendar day independent of time-of-day. Keys for
// consecutive days differ by exactly one, which makes streak walks plain
// integer arithmetic.
type DayKey int64

const secondsPerDay = 24 * 60 * 60

// DayKeyOf truncates an instant to its calendar day under loc.
func DayKeyOf(at time.Time, loc *time.Location) (DayKey, error) {
	if at.IsZero() || loc == nil {
		return 0, fmt.Errorf("%w: instant=%v loc=%v", ErrInvalidInput, at, loc)
	}
	year, month, day := at.In(loc).Date()
	civil := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return DayKey(civil.Unix() / secondsPerDay), nil
}

// Prev returns the key of the preceding calendar day.
func (k DayKey) Prev() DayKey { return k - 1 }

// Next returns the key of the following calendar day.
func (k DayKey) Next() DayKey { return k + 1 }

// Time returns the start of the keyed day in loc.
func (k DayKey) Time(loc *time.Location) time.Time {
	civil := time.Unix(int64(k)*secondsPerDay, 0).UTC()
	return time.Date(civil.Year(), civil.Month(), civil.Day(), 0, 0, 0, 0, loc)
}

// String formats the key as its civil date.
func (k DayKey) String() string {
	return time.Unix(int64(k)*secondsPerDay, 0).UTC().Format("2006-01-02")
}

// DayWindow returns [start, end] of the calendar day containing at, where end
// is the final representable instant of the day.
func DayWindow(at time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if at.IsZero() || loc == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: instant=%v loc=%v", ErrInvalidInput, at, loc)
	}
	year, month, day := at.In(loc).Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end, nil
}

// WeekWindow returns the Monday-through-Sunday window containing at.
// The start is the most recent Monday at start-of-day at or before the
// instant; the end is the following Sunday at end-of-day. A Monday starts its
// own window and a Sunday closes the current one rather than opening the next.
func WeekWindow(at time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if at.IsZero() || loc == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: instant=%v loc=%v", ErrInvalidInput, at, loc)
	}
	local := at.In(loc)
	// time.Weekday numbers Sunday as 0; shift so Monday is 0 and Sunday is 6.
	offset := (int(local.Weekday()) + 6) % 7
	year, month, day := local.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, loc).AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end, nil
}
