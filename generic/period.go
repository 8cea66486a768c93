package generic

import "time"

// =============================================================================
// PERIOD - Inclusive range of calendar days
// =============================================================================

// Period is the closed interval [Start, End].
//
// Examples:
//   - Month view: Mar 1 - Mar 31
//   - Award period: Jan 1 - Jun 30
type Period struct {
	Start Date
	End   Date
}

// MonthPeriod returns the period covering the whole month.
func MonthPeriod(month, year int) (Period, error) {
	if err := ValidateMonth(month, year); err != nil {
		return Period{}, err
	}
	m := time.Month(month)
	return Period{Start: StartOfMonth(year, m), End: EndOfMonth(year, m)}, nil
}

// NewPeriod rejects an end before the start.
func NewPeriod(start, end Date) (Period, error) {
	if end.Before(start) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Start: start, End: end}, nil
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every day in the period in ascending order.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
