package daterange

import (
	"errors"
	"time"
)

// DateFormat is the canonical calendar-date layout used across the system.
const DateFormat = "2006-01-02"

var ErrEndNotAfterStart = errors.New("end date must be after start date")

// Range is an interval of calendar dates with an inclusive end. The schema
// only enforces end_date > start_date, so a one-day rental is expressed as
// start=D, end=D+1 and counts as one rental day.
type Range struct {
	Start time.Time
	End   time.Time
}

// New builds a Range after normalizing both bounds to midnight UTC.
// Returns ErrEndNotAfterStart for zero or negative duration.
func New(start, end time.Time) (Range, error) {
	r := Range{Start: Truncate(start), End: Truncate(end)}
	if !r.End.After(r.Start) {
		return Range{}, ErrEndNotAfterStart
	}
	return r, nil
}

// Parse builds a Range from two YYYY-MM-DD strings.
func Parse(start, end string) (Range, error) {
	s, err := time.Parse(DateFormat, start)
	if err != nil {
		return Range{}, err
	}
	e, err := time.Parse(DateFormat, end)
	if err != nil {
		return Range{}, err
	}
	return New(s, e)
}

// Truncate drops the time-of-day component, keeping the calendar date in UTC.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Days returns the rental-day count, end minus start.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Overlaps reports whether two ranges share at least one calendar date.
// Ends are inclusive: a booking ending on day D conflicts with one starting
// on day D.
func Overlaps(a, b Range) bool {
	return !a.Start.After(b.End) && !b.Start.After(a.End)
}

// Overlaps is the method form of the package-level predicate.
func (r Range) Overlaps(other Range) bool {
	return Overlaps(r, other)
}
