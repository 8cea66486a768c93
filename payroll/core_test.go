package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/household-payroll/generic"
	"github.com/warp/household-payroll/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(v int64) generic.Money { return generic.NewMoneyFromInt(v) }

func day(s string) generic.Date { return generic.MustParseDate(s) }

func present(date string, t payroll.DayType) payroll.AttendanceRecord {
	return payroll.AttendanceRecord{WorkerID: "w1", Date: day(date), DayType: t, Present: true}
}

func warning(date string) payroll.Note {
	return payroll.Note{WorkerID: "w1", Date: day(date), NoteType: payroll.NoteWarning, Content: "late", IsWarning: true}
}

// =============================================================================
// SCHEDULE RESOLVER
// =============================================================================

func TestResolveScheduleDays_DefaultSchedule_March2026(t *testing.T) {
	// GIVEN: Monday heavy, Thursday light; March 2026 starts on a Sunday
	days := payroll.ResolveScheduleDays(payroll.DefaultSchedule(), 3, 2026)

	// THEN: 5 Mondays (2,9,16,23,30) and 4 Thursdays (5,12,19,26)
	require.Len(t, days, 9)
	assert.Equal(t, "2026-03-02", days[0].Date.String())
	assert.Equal(t, payroll.HeavyCleaning, days[0].ServiceType)
	assert.Equal(t, "2026-03-05", days[1].Date.String())
	assert.Equal(t, payroll.LightCleaning, days[1].ServiceType)
	assert.Equal(t, "2026-03-30", days[8].Date.String())

	for i := 1; i < len(days); i++ {
		assert.True(t, days[i-1].Date.Before(days[i].Date), "dates must ascend")
	}
	for _, d := range days {
		assert.Equal(t, time.Month(3), d.Date.Month())
	}
}

func TestResolveScheduleDays_EmptyScheduleYieldsEmptyList(t *testing.T) {
	days := payroll.ResolveScheduleDays(nil, 2, 2026)
	assert.NotNil(t, days)
	assert.Empty(t, days)
}

func TestResolveScheduleDays_UnknownAndDuplicateWeekdays(t *testing.T) {
	// GIVEN: a typo'd weekday and Friday listed twice
	schedule := []payroll.ScheduleEntry{
		{DayOfWeek: "fryday", ServiceType: payroll.HeavyCleaning},
		{DayOfWeek: "Friday", ServiceType: payroll.LightCleaning},
		{DayOfWeek: "friday", ServiceType: payroll.HeavyCleaning},
	}

	// WHEN: resolving February 2026 (Fridays: 6, 13, 20, 27)
	days := payroll.ResolveScheduleDays(schedule, 2, 2026)

	// THEN: the typo is ignored, each Friday appears once with the first entry's type
	require.Len(t, days, 4)
	for _, d := range days {
		assert.Equal(t, time.Friday, d.Date.Weekday())
		assert.Equal(t, payroll.LightCleaning, d.ServiceType)
	}
}

func TestResolveScheduleDays_LeapFebruary(t *testing.T) {
	// Feb 29 2028 is a Tuesday
	days := payroll.ResolveScheduleDays([]payroll.ScheduleEntry{{DayOfWeek: "tuesday", ServiceType: payroll.LightCleaning}}, 2, 2028)
	require.Len(t, days, 5)
	assert.Equal(t, "2028-02-29", days[4].Date.String())
}

func TestEffectiveSchedule_FallsBackOnlyWhenEmpty(t *testing.T) {
	assert.Equal(t, payroll.DefaultSchedule(), payroll.EffectiveSchedule(nil))

	own := []payroll.ScheduleEntry{{DayOfWeek: "wednesday", ServiceType: payroll.HeavyCleaning}}
	assert.Equal(t, own, payroll.EffectiveSchedule(own))
}

func TestScheduledOn(t *testing.T) {
	typ, ok := payroll.ScheduledOn(payroll.DefaultSchedule(), day("2026-03-05"))
	assert.True(t, ok)
	assert.Equal(t, payroll.LightCleaning, typ)

	_, ok = payroll.ScheduledOn(payroll.DefaultSchedule(), day("2026-03-04"))
	assert.False(t, ok)
}

// =============================================================================
// PRICES
// =============================================================================

func TestResolvePrices_Layering(t *testing.T) {
	// GIVEN: household config overrides heavy, worker overrides light
	config := map[string]decimal.Decimal{
		payroll.KeyHeavyCleaning: decimal.NewFromInt(280),
		payroll.KeyWashing:       decimal.Zero,
	}
	w := &payroll.Worker{Prices: payroll.PriceOverrides{LightCleaning: money(170)}}

	p := payroll.ResolvePrices(config, w)

	assert.Equal(t, "280.00", p.HeavyCleaning.String())
	assert.Equal(t, "170.00", p.LightCleaning.String())
	// Zero config value falls through to the default
	assert.Equal(t, "75.00", p.Washing.String())
	assert.Equal(t, "50.00", p.Ironing.String())
	assert.Equal(t, "30.00", p.Transport.String())
	assert.Equal(t, "2000.00", p.MonthlySalary.String())
}

func TestDefaultPrices_HeavyIs250(t *testing.T) {
	p := payroll.DefaultPrices()
	assert.Equal(t, "250.00", p.HeavyCleaning.String())
	assert.Equal(t, "150.00", p.LightCleaning.String())
	assert.True(t, p.DayPrice(payroll.HeavyCleaning).Equal(money(250)))
	assert.True(t, p.DayPrice("other").IsZero())
}

// =============================================================================
// EARNINGS CALCULATOR
// =============================================================================

func TestComputeEarnings_FourHeavyFourLight(t *testing.T) {
	// GIVEN: 4 heavy and 4 light days present at 250/150
	var att []payroll.AttendanceRecord
	for _, d := range []string{"2026-03-02", "2026-03-09", "2026-03-16", "2026-03-23"} {
		att = append(att, present(d, payroll.HeavyCleaning))
	}
	for _, d := range []string{"2026-03-05", "2026-03-12", "2026-03-19", "2026-03-26"} {
		att = append(att, present(d, payroll.LightCleaning))
	}

	// WHEN
	e := payroll.ComputeEarnings(att, nil, payroll.DefaultPrices())

	// THEN
	assert.Equal(t, 4, e.HeavyDays)
	assert.Equal(t, 4, e.LightDays)
	assert.Equal(t, "1600.00", e.AttendanceTotal.String())
	assert.Equal(t, "1600.00", e.GrandTotal.String())
	assert.True(t, e.LaundryTotal.IsZero())
}

func TestComputeEarnings_AbsentRowsContributeNothing(t *testing.T) {
	att := []payroll.AttendanceRecord{
		present("2026-03-02", payroll.HeavyCleaning),
		{WorkerID: "w1", Date: day("2026-03-05"), DayType: payroll.LightCleaning, Present: false},
	}
	e := payroll.ComputeEarnings(att, nil, payroll.DefaultPrices())
	assert.Equal(t, 1, e.HeavyDays)
	assert.Equal(t, 0, e.LightDays)
	assert.Equal(t, "250.00", e.AttendanceTotal.String())
}

func TestComputeEarnings_LaundryUnpaidThenPaid(t *testing.T) {
	// GIVEN: an ironed and washed week with a 30 transport fee, unpaid
	week := payroll.LaundryWeek{WeekNumber: 1, Month: 3, Year: 2026, Ironed: true, Washed: true, TransportFee: money(30)}
	prices := payroll.DefaultPrices()

	e := payroll.ComputeEarnings(nil, []payroll.LaundryWeek{week}, prices)
	assert.Equal(t, "125.00", e.LaundryTotal.String())
	assert.Equal(t, "0.00", e.TransportPaidTotal.String())
	assert.Equal(t, 1, e.IronedWeeks)
	assert.Equal(t, 1, e.WashedWeeks)

	// WHEN: the week is marked paid
	paid := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	week.PaidAt = &paid
	e = payroll.ComputeEarnings(nil, []payroll.LaundryWeek{week}, prices)

	// THEN: transport is counted, grand total unchanged
	assert.Equal(t, "30.00", e.TransportPaidTotal.String())
	assert.Equal(t, "125.00", e.GrandTotal.String())
}

func TestComputeEarnings_TransportIgnoredWithoutService(t *testing.T) {
	paid := time.Now()
	week := payroll.LaundryWeek{TransportFee: money(30), PaidAt: &paid}

	e := payroll.ComputeEarnings(nil, []payroll.LaundryWeek{week}, payroll.DefaultPrices())
	assert.True(t, e.TransportPaidTotal.IsZero())
	assert.True(t, payroll.TransportDue(week).IsZero())
}

func TestComputeEarnings_ZeroInputsIsZero(t *testing.T) {
	e := payroll.ComputeEarnings(nil, nil, payroll.DefaultPrices())
	assert.Equal(t, "0.00", e.GrandTotal.String())
	assert.Equal(t, "0.00", e.TransportPaidTotal.String())
}

// =============================================================================
// WARNING / AWARD EVALUATOR
// =============================================================================

func TestEvaluateAwardPeriod_ThreeWarningsDisqualify(t *testing.T) {
	// GIVEN: 3 warnings inside the period, one outside, one flagged note of another type
	start, end := day("2026-01-01"), day("2026-03-31")
	notes := []payroll.Note{
		warning("2026-01-01"),
		warning("2026-02-15"),
		warning("2026-03-31"),
		warning("2026-04-01"),
		{Date: day("2026-02-01"), NoteType: payroll.NoteWarning, Content: "typed but not flagged"},
	}

	eval := payroll.EvaluateAwardPeriod(notes, start, end)

	// THEN: boundaries are inclusive; the outside note and the unflagged note don't count
	assert.Equal(t, 3, eval.WarningsCount)
	assert.True(t, eval.Disqualified)
	assert.False(t, eval.NearThreshold)
}

func TestEvaluateAwardPeriod_NearThresholdAtTwo(t *testing.T) {
	eval := payroll.EvaluateAwardPeriod([]payroll.Note{warning("2026-01-05"), warning("2026-01-06")},
		day("2026-01-01"), day("2026-01-31"))
	assert.Equal(t, 2, eval.WarningsCount)
	assert.False(t, eval.Disqualified)
	assert.True(t, eval.NearThreshold)
}

func TestEvaluateAwardPeriod_FlaggedGeneralNoteCounts(t *testing.T) {
	n := warning("2026-01-05")
	n.NoteType = payroll.NoteGeneral
	eval := payroll.EvaluateAwardPeriod([]payroll.Note{n}, day("2026-01-01"), day("2026-01-31"))
	assert.Equal(t, 1, eval.WarningsCount)
}

func TestEffectiveStatus(t *testing.T) {
	clean := payroll.AwardEvaluation{}
	dirty := payroll.AwardEvaluation{WarningsCount: 3, Disqualified: true}

	assert.Equal(t, payroll.AwardPending, payroll.EffectiveStatus("", clean))
	assert.Equal(t, payroll.AwardAwarded, payroll.EffectiveStatus(payroll.AwardAwarded, clean))
	assert.Equal(t, payroll.AwardDisqualified, payroll.EffectiveStatus(payroll.AwardAwarded, dirty))
	assert.Equal(t, payroll.AwardDisqualified, payroll.EffectiveStatus(payroll.AwardPending, dirty))
}

func TestCheckTransition(t *testing.T) {
	dirty := payroll.AwardEvaluation{WarningsCount: 3, Disqualified: true}

	assert.NoError(t, payroll.CheckTransition(payroll.AwardPending, payroll.AwardAwarded, payroll.AwardEvaluation{}))
	assert.NoError(t, payroll.CheckTransition(payroll.AwardPending, payroll.AwardDisqualified, dirty))

	err := payroll.CheckTransition(payroll.AwardPending, payroll.AwardAwarded, dirty)
	var te *generic.TransitionError
	require.ErrorAs(t, err, &te)
	assert.True(t, generic.IsConflict(err))

	err = payroll.CheckTransition(payroll.AwardPending, "bogus", payroll.AwardEvaluation{})
	assert.True(t, generic.IsClientError(err))
}

func TestCurrentAwardPeriod_LatestStartWins(t *testing.T) {
	periods := []payroll.AwardPeriod{
		{ID: "q1", PeriodStart: day("2026-01-01"), PeriodEnd: day("2026-03-31")},
		{ID: "mar", PeriodStart: day("2026-03-01"), PeriodEnd: day("2026-03-31")},
		{ID: "q2", PeriodStart: day("2026-04-01"), PeriodEnd: day("2026-06-30")},
	}

	p, ok := payroll.CurrentAwardPeriod(periods, day("2026-03-15"))
	require.True(t, ok)
	assert.Equal(t, "mar", p.ID)

	_, ok = payroll.CurrentAwardPeriod(periods, day("2026-07-01"))
	assert.False(t, ok)
}

// =============================================================================
// PAYMENT DUE-DATE CALCULATOR
// =============================================================================

func TestPaymentDueDate(t *testing.T) {
	tests := []struct {
		month, year int
		want        string
	}{
		{3, 2026, "2026-03-06"},  // starts Sunday
		{2, 2026, "2026-02-06"},  // starts Sunday
		{8, 2026, "2026-08-07"},  // starts Saturday
		{1, 2026, "2026-01-07"},  // starts Thursday
		{6, 2026, "2026-06-05"},  // starts Monday
		{2, 2028, "2028-02-07"},  // starts Tuesday
		{12, 2025, "2025-12-05"}, // starts Monday
	}
	for _, tt := range tests {
		got := payroll.PaymentDueDate(tt.month, tt.year)
		assert.Equal(t, tt.want, got.String(), "month %d/%d", tt.month, tt.year)
		assert.True(t, got.IsBusinessDay())
	}
}

func TestNthBusinessDay_CountsOnlyWeekdays(t *testing.T) {
	for month := 1; month <= 12; month++ {
		d := payroll.NthBusinessDay(month, 2026, 5)
		count := 0
		for c := generic.StartOfMonth(2026, time.Month(month)); c.BeforeOrEqual(d); c = c.AddDays(1) {
			if c.IsBusinessDay() {
				count++
			}
		}
		assert.Equal(t, 5, count, "month %d", month)
	}

	assert.Equal(t, "2026-03-02", payroll.NthBusinessDay(3, 2026, 1).String())
}
