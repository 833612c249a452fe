package core

import (
	"strings"
	"time"
)

// DateLayout is the wire format for report window bounds.
const DateLayout = "2006-01-02"

// DateRange is an inclusive calendar-day window. Both bounds are midnight in
// the location of the clock used to build the range.
type DateRange struct {
	Start time.Time
	End   time.Time
	// Defaulted is set when the requested bounds were missing or unparseable
	// and the trailing default window was used instead.
	Defaulted bool
}

// StartDate returns Start formatted as YYYY-MM-DD.
func (r DateRange) StartDate() string { return r.Start.Format(DateLayout) }

// EndDate returns End formatted as YYYY-MM-DD.
func (r DateRange) EndDate() string { return r.End.Format(DateLayout) }

// Empty reports whether the window contains no days (start after end).
func (r DateRange) Empty() bool { return r.Start.After(r.End) }

// DefaultDateRange is [today − days, today].
func DefaultDateRange(now time.Time, days int) DateRange {
	today := truncateToDay(now)
	return DateRange{
		Start:     today.AddDate(0, 0, -days),
		End:       today,
		Defaulted: true,
	}
}

// ParseDateRange parses YYYY-MM-DD bounds. If either bound is missing or
// does not parse, both fall back to DefaultDateRange. A start after end is
// kept as given; queries over it return nothing.
func ParseDateRange(start, end string, now time.Time, defaultDays int) DateRange {
	loc := now.Location()
	s, errS := time.ParseInLocation(DateLayout, strings.TrimSpace(start), loc)
	e, errE := time.ParseInLocation(DateLayout, strings.TrimSpace(end), loc)
	if errS != nil || errE != nil {
		return DefaultDateRange(now, defaultDays)
	}
	return DateRange{Start: s, End: e}
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
