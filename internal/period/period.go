// Package period models inclusive date intervals and the overlap rule shared
// by budgets and budget groups.
package period

import (
	"errors"
	"time"
)

// Type classifies how a period was chosen. It does not change the interval
// arithmetic, only how defaults are derived.
type Type string

const (
	TypeMonthly   Type = "monthly"
	TypeQuarterly Type = "quarterly"
	TypeYearly    Type = "yearly"
	TypeCustom    Type = "custom"
)

// Valid reports whether t is one of the known period types.
func (t Type) Valid() bool {
	switch t {
	case TypeMonthly, TypeQuarterly, TypeYearly, TypeCustom:
		return true
	}
	return false
}

var (
	ErrEndBeforeStart = errors.New("end date must be after start date")
	ErrEndRequired    = errors.New("end date is required")
	ErrZeroStart      = errors.New("start date is required")
)

// Period is the closed interval [Start, End]. A nil End means the period
// never ends.
type Period struct {
	Start time.Time
	End   *time.Time
}

// New builds a period with both dates truncated to midnight UTC.
func New(start time.Time, end *time.Time) Period {
	p := Period{Start: Day(start)}
	if end != nil {
		e := Day(*end)
		p.End = &e
	}
	return p
}

// Closed builds a period with a mandatory end.
func Closed(start, end time.Time) Period {
	return New(start, &end)
}

// Validate checks the period invariants. Group periods pass requireEnd.
func (p Period) Validate(requireEnd bool) error {
	if p.Start.IsZero() {
		return ErrZeroStart
	}
	if p.End == nil {
		if requireEnd {
			return ErrEndRequired
		}
		return nil
	}
	if !p.End.After(p.Start) {
		return ErrEndBeforeStart
	}
	return nil
}

// Open reports whether the period has no end.
func (p Period) Open() bool {
	return p.End == nil
}

// Contains reports whether day d falls inside the period, endpoints included.
func (p Period) Contains(d time.Time) bool {
	d = Day(d)
	if d.Before(p.Start) {
		return false
	}
	return p.End == nil || !d.After(*p.End)
}

// Overlaps reports whether p and o share at least one day: s1 <= e2 and
// s2 <= e1, where a missing end is +inf. Touching endpoints overlap.
func (p Period) Overlaps(o Period) bool {
	startsBeforeOtherEnds := o.End == nil || !p.Start.After(*o.End)
	otherStartsBeforeEnd := p.End == nil || !o.Start.After(*p.End)
	return startsBeforeOtherEnds && otherStartsBeforeEnd
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Month returns the calendar month containing year/month.
func Month(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Closed(start, start.AddDate(0, 1, -1))
}
