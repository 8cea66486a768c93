package payroll

import (
	"time"

	"github.com/warp/household-payroll/generic"
)

// =============================================================================
// SCHEDULE RESOLVER
// =============================================================================

// ScheduledDay is one calendar date the worker is expected to come in.
type ScheduledDay struct {
	Date        generic.Date     `json:"date"`
	ServiceType DayType          `json:"service_type"`
	ClientID    generic.ClientID `json:"client_id,omitempty"`
}

// DefaultSchedule is the fallback shown when a worker has no schedule configured:
// Monday heavy cleaning, Thursday light cleaning. ResolveScheduleDays never
// applies it on its own; callers opt in with EffectiveSchedule.
func DefaultSchedule() []ScheduleEntry {
	return []ScheduleEntry{
		{DayOfWeek: "monday", ServiceType: HeavyCleaning},
		{DayOfWeek: "thursday", ServiceType: LightCleaning},
	}
}

// EffectiveSchedule returns the worker's schedule, or DefaultSchedule when empty.
func EffectiveSchedule(schedule []ScheduleEntry) []ScheduleEntry {
	if len(schedule) == 0 {
		return DefaultSchedule()
	}
	return schedule
}

// ResolveScheduleDays lists every date in the month whose weekday appears in the
// schedule, in ascending order. Unknown weekday names are ignored; when a weekday
// is listed twice the first entry wins. Assumes a valid month (1..12).
func ResolveScheduleDays(schedule []ScheduleEntry, month, year int) []ScheduledDay {
	byWeekday := make(map[time.Weekday]ScheduleEntry, len(schedule))
	for _, e := range schedule {
		wd, ok := generic.ParseWeekday(e.DayOfWeek)
		if !ok {
			continue
		}
		if _, seen := byWeekday[wd]; !seen {
			byWeekday[wd] = e
		}
	}

	days := []ScheduledDay{}
	if len(byWeekday) == 0 {
		return days
	}

	m := time.Month(month)
	last := generic.DaysInMonth(year, m)
	for day := 1; day <= last; day++ {
		d := generic.NewDate(year, m, day)
		e, ok := byWeekday[d.Weekday()]
		if !ok {
			continue
		}
		days = append(days, ScheduledDay{Date: d, ServiceType: e.ServiceType, ClientID: e.ClientID})
	}
	return days
}

// ScheduledOn returns the service expected on d, if any.
func ScheduledOn(schedule []ScheduleEntry, d generic.Date) (DayType, bool) {
	for _, e := range schedule {
		if wd, ok := generic.ParseWeekday(e.DayOfWeek); ok && wd == d.Weekday() {
			return e.ServiceType, true
		}
	}
	return "", false
}
