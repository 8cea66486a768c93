package payroll_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/household-payroll/generic"
	"github.com/warp/household-payroll/payroll"
	"github.com/warp/household-payroll/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T, now time.Time) (*payroll.Service, *memory.Memory) {
	t.Helper()
	store := memory.New()
	svc := payroll.NewService(store, time.UTC)
	svc.Now = func() time.Time { return now }
	seq := 0
	svc.NewID = func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}
	return svc, store
}

func saveWorker(t *testing.T, store *memory.Memory, id, pin string) payroll.Worker {
	t.Helper()
	w := payroll.Worker{ID: generic.WorkerID(id), Name: "Worker " + id, PIN: pin, Active: true}
	require.NoError(t, store.SaveWorker(context.Background(), w))
	return w
}

var march10 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// =============================================================================
// MONTHLY SUMMARY
// =============================================================================

func TestService_MonthlySummary_TotalsMatchCore(t *testing.T) {
	// GIVEN: one worker on the default schedule with 4 heavy + 4 light days and one laundry week
	svc, store := newTestService(t, march10)
	ctx := context.Background()
	saveWorker(t, store, "w1", "1111")
	saveWorker(t, store, "w2", "2222")

	for _, d := range []string{"2026-03-02", "2026-03-09", "2026-03-16", "2026-03-23", "2026-03-05", "2026-03-12", "2026-03-19", "2026-03-26"} {
		_, err := svc.MarkAttendance(ctx, payroll.AttendanceRecord{WorkerID: "w1", Date: day(d), Present: true})
		require.NoError(t, err)
	}
	yes := true
	_, err := svc.ToggleLaundry(ctx, payroll.LaundryToggle{WorkerID: "w1", WeekNumber: 1, Month: 3, Year: 2026, Ironed: &yes, Washed: &yes})
	require.NoError(t, err)

	// WHEN
	summary, err := svc.MonthlySummary(ctx, "", 3, 2026)
	require.NoError(t, err)

	// THEN
	require.Len(t, summary.Workers, 2)
	w1 := summary.Workers[0]
	assert.Equal(t, generic.WorkerID("w1"), w1.Worker.ID)
	assert.Equal(t, 4, w1.Earnings.HeavyDays)
	assert.Equal(t, 4, w1.Earnings.LightDays)
	assert.Equal(t, "1600.00", w1.Earnings.AttendanceTotal.String())
	assert.Equal(t, "125.00", w1.Earnings.LaundryTotal.String())
	assert.Equal(t, "1725.00", w1.Earnings.GrandTotal.String())
	assert.Len(t, w1.ScheduledDays, 9)

	assert.Equal(t, "1725.00", summary.Totals.GrandTotal.String())
	assert.Equal(t, "2026-03-06", summary.PaymentDueDate.String())
}

func TestService_MonthlySummary_InvalidMonth(t *testing.T) {
	svc, _ := newTestService(t, march10)
	_, err := svc.MonthlySummary(context.Background(), "", 13, 2026)
	assert.ErrorIs(t, err, generic.ErrInvalidMonth)
}

func TestService_MonthlySummary_UnknownWorker(t *testing.T) {
	svc, _ := newTestService(t, march10)
	_, err := svc.MonthlySummary(context.Background(), "ghost", 3, 2026)
	assert.True(t, generic.IsNotFound(err))
}

// =============================================================================
// ATTENDANCE & LAUNDRY
// =============================================================================

func TestService_MarkAttendance_DerivesDayTypeAndUpserts(t *testing.T) {
	svc, store := newTestService(t, march10)
	ctx := context.Background()
	saveWorker(t, store, "w1", "1111")

	// GIVEN: a Thursday with no explicit type
	rec, err := svc.MarkAttendance(ctx, payroll.AttendanceRecord{WorkerID: "w1", Date: day("2026-03-05"), Present: true})
	require.NoError(t, err)
	assert.Equal(t, payroll.LightCleaning, rec.DayType)

	// WHEN: marking the same day again as absent
	again, err := svc.MarkAttendance(ctx, payroll.AttendanceRecord{WorkerID: "w1", Date: day("2026-03-05"), Present: false})
	require.NoError(t, err)

	// THEN: still a single row for that day
	assert.Equal(t, rec.ID, again.ID)
	rows, err := store.ListAttendance(ctx, generic.Period{Start: day("2026-03-01"), End: day("2026-03-31")}, "w1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Present)
}

func TestService_MarkAttendance_UnscheduledDayNeedsType(t *testing.T) {
	svc, store := newTestService(t, march10)
	ctx := context.Background()
	saveWorker(t, store, "w1", "1111")

	_, err := svc.MarkAttendance(ctx, payroll.AttendanceRecord{WorkerID: "w1", Date: day("2026-03-04"), Present: true})
	assert.True(t, generic.IsClientError(err))

	rec, err := svc.MarkAttendance(ctx, payroll.AttendanceRecord{WorkerID: "w1", Date: day("2026-03-04"), DayType: payroll.HeavyCleaning, Present: true})
	require.NoError(t, err)
	assert.Equal(t, payroll.HeavyCleaning, rec.DayType)
}

func TestService_ToggleLaundry_ValidatesWeek(t *testing.T) {
	svc, store := newTestService(t, march10)
	saveWorker(t, store, "w1", "1111")
	yes := true

	_, err := svc.ToggleLaundry(context.Background(), payroll.LaundryToggle{WorkerID: "w1", WeekNumber: 6, Month: 3, Year: 2026, Ironed: &yes})
	assert.True(t, generic.IsClientError(err))

	_, err = svc.ToggleLaundry(context.Background(), payroll.LaundryToggle{WorkerID: "w1", WeekNumber: 1, Month: 0, Year: 2026, Ironed: &yes})
	assert.ErrorIs(t, err, generic.ErrInvalidMonth)
}

func TestService_MarkLaundryPaid_RecordsHistoryWithTransport(t *testing.T) {
	svc, store := newTestService(t, march10)
	ctx := context.Background()
	saveWorker(t, store, "w1", "1111")
	yes := true

	// GIVEN: an ironed week with the default 30 transport fee
	week, err := svc.ToggleLaundry(ctx, payroll.LaundryToggle{WorkerID: "w1", WeekNumber: 2, Month: 3, Year: 2026, Ironed: &yes})
	require.NoError(t, err)
	assert.Equal(t, "30.00", week.TransportFee.String())

	// WHEN
	paid, err := svc.MarkLaundryPaid(ctx, week.ID, "https://receipts.example/1")
	require.NoError(t, err)

	// THEN: history holds ironing + transport, second payment is a conflict
	require.NotNil(t, paid.PaidAt)
	history, err := store.ListPaymentHistory(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, payroll.PaymentLaundry, history[0].Kind)
	assert.Equal(t, "80.00", history[0].Amount.String())

	_, err = svc.MarkLaundryPaid(ctx, week.ID, "")
	assert.True(t, generic.IsConflict(err))
}

func TestService_ToggleLaundry_TransportOnlyDoesNotRegisterWeek(t *testing.T) {
	svc, store := newTestService(t, march10)
	ctx := context.Background()
	saveWorker(t, store, "w1", "1111")

	// GIVEN: no week 2 yet
	// WHEN: only the transport fee is set
	fee := generic.NewMoneyFromInt(40)
	week, err := svc.ToggleLaundry(ctx, payroll.LaundryToggle{WorkerID: "w1", WeekNumber: 2, Month: 3, Year: 2026, TransportFee: &fee})
	require.NoError(t, err)

	// THEN: nothing is stored
	assert.Empty(t, week.ID)
	weeks, err := store.ListLaundryWeeks(ctx, 3, 2026, "w1")
	require.NoError(t, err)
	assert.Empty(t, weeks)

	// A later service toggle registers the week
	yes := true
	week, err = svc.ToggleLaundry(ctx, payroll.LaundryToggle{WorkerID: "w1", WeekNumber: 2, Month: 3, Year: 2026, Washed: &yes})
	require.NoError(t, err)
	assert.NotEmpty(t, week.ID)
	weeks, err = store.ListLaundryWeeks(ctx, 3, 2026, "w1")
	require.NoError(t, err)
	assert.Len(t, weeks, 1)
}

func TestService_ToggleLaundry_PaidWeekIsFrozen(t *testing.T) {
	svc, store := newTestService(t, march10)
	ctx := context.Background()
	saveWorker(t, store, "w1", "1111")
	yes, no := true, false

	// GIVEN: an ironed week already paid
	week, err := svc.ToggleLaundry(ctx, payroll.LaundryToggle{WorkerID: "w1", WeekNumber: 1, Month: 3, Year: 2026, Ironed: &yes})
	require.NoError(t, err)
	_, err = svc.MarkLaundryPaid(ctx, week.ID, "")
	require.NoError(t, err)

	// WHEN/THEN: changing services or fee is a conflict
	_, err = svc.ToggleLaundry(ctx, payroll.LaundryToggle{WorkerID: "w1", WeekNumber: 1, Month: 3, Year: 2026, Washed: &yes})
	assert.True(t, generic.IsConflict(err))
	_, err = svc.ToggleLaundry(ctx, payroll.LaundryToggle{WorkerID: "w1", WeekNumber: 1, Month: 3, Year: 2026, Ironed: &no})
	assert.True(t, generic.IsConflict(err))
	fee := generic.NewMoneyFromInt(10)
	_, err = svc.ToggleLaundry(ctx, payroll.LaundryToggle{WorkerID: "w1", WeekNumber: 1, Month: 3, Year: 2026, TransportFee: &fee})
	assert.True(t, generic.IsConflict(err))

	// Re-sending the same values is accepted and keeps the payment
	same, err := svc.ToggleLaundry(ctx, payroll.LaundryToggle{WorkerID: "w1", WeekNumber: 1, Month: 3, Year: 2026, Ironed: &yes})
	require.NoError(t, err)
	assert.NotNil(t, same.PaidAt)
	assert.False(t, same.Washed)
}

// =============================================================================
// NOTES & AWARDS
// =============================================================================

func TestService_AddNote_ThirdWarningDisqualifies(t *testing.T) {
	svc, store := newTestService(t, march10)
	ctx := context.Background()
	saveWorker(t, store, "w1", "1111")

	award, err := svc.CreateAwardPeriod(ctx, payroll.AwardPeriod{
		WorkerID: "w1", PeriodStart: day("2026-03-01"), PeriodEnd: day("2026-03-31"),
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.AwardPending, award.Status)
	assert.Equal(t, "300.00", award.Value.String())

	// WHEN: two warnings
	for _, d := range []string{"2026-03-02", "2026-03-03"} {
		_, err := svc.AddNote(ctx, payroll.Note{WorkerID: "w1", Date: day(d), NoteType: payroll.NoteWarning, Content: "late", IsWarning: true})
		require.NoError(t, err)
	}

	// THEN: near-threshold notice for worker and admin, still pending
	adminNotes, err := store.ListNotifications(ctx, "", true)
	require.NoError(t, err)
	require.NotEmpty(t, adminNotes)
	assert.Equal(t, payroll.NotifyNearThreshold, adminNotes[0].Kind)

	view, err := svc.CurrentAward(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, payroll.AwardPending, view.EffectiveStatus)

	// WHEN: the third warning lands
	_, err = svc.AddNote(ctx, payroll.Note{WorkerID: "w1", Date: day("2026-03-04"), NoteType: payroll.NoteMissedTask, Content: "skipped kitchen", IsWarning: true})
	require.NoError(t, err)

	// THEN: the stored period is disqualified and can't be awarded
	stored, err := store.GetAwardPeriod(ctx, award.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.AwardDisqualified, stored.Status)
	assert.Equal(t, 3, stored.WarningsCount)

	_, err = svc.UpdateAward(ctx, award.ID, payroll.AwardUpdate{Status: payroll.AwardAwarded})
	var te *generic.TransitionError
	assert.ErrorAs(t, err, &te)

	workerNotes, err := store.ListNotifications(ctx, "w1", false)
	require.NoError(t, err)
	assert.Equal(t, payroll.NotifyDisqualified, workerNotes[0].Kind)
}

func TestService_AddNote_NonWarningLeavesAwardAlone(t *testing.T) {
	svc, store := newTestService(t, march10)
	ctx := context.Background()
	saveWorker(t, store, "w1", "1111")
	award, err := svc.CreateAwardPeriod(ctx, payroll.AwardPeriod{WorkerID: "w1", PeriodStart: day("2026-03-01"), PeriodEnd: day("2026-03-31")})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := svc.AddNote(ctx, payroll.Note{WorkerID: "w1", NoteType: payroll.NoteWarning, Content: "heads up"})
		require.NoError(t, err)
	}

	view, err := svc.UpdateAward(ctx, award.ID, payroll.AwardUpdate{Status: payroll.AwardAwarded})
	require.NoError(t, err)
	assert.Equal(t, payroll.AwardAwarded, view.EffectiveStatus)
	assert.Equal(t, 0, view.Evaluation.WarningsCount)
}

func TestService_AddNote_Validation(t *testing.T) {
	svc, store := newTestService(t, march10)
	saveWorker(t, store, "w1", "1111")

	_, err := svc.AddNote(context.Background(), payroll.Note{WorkerID: "w1", Content: "  "})
	assert.True(t, generic.IsClientError(err))

	_, err = svc.AddNote(context.Background(), payroll.Note{WorkerID: "w1", NoteType: "praise", Content: "x"})
	assert.True(t, generic.IsClientError(err))
}

func TestService_CreateAwardPeriod_RejectsInvertedRange(t *testing.T) {
	svc, store := newTestService(t, march10)
	saveWorker(t, store, "w1", "1111")

	_, err := svc.CreateAwardPeriod(context.Background(), payroll.AwardPeriod{
		WorkerID: "w1", PeriodStart: day("2026-03-31"), PeriodEnd: day("2026-03-01"),
	})
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

// =============================================================================
// MONTHLY PAYMENTS
// =============================================================================

func TestService_EnsureMonthlyPayment_Idempotent(t *testing.T) {
	svc, store := newTestService(t, march10)
	ctx := context.Background()
	saveWorker(t, store, "w1", "1111")
	require.NoError(t, store.SetConfigValue(ctx, payroll.KeyMonthlySalary, decimal.NewFromInt(2200)))

	first, created, err := svc.EnsureMonthlyPayment(ctx, "w1", 3, 2026)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "2026-03-06", first.PaymentDueDate.String())
	assert.Equal(t, "2200.00", first.MonthlyValue.String())

	// Config changes after creation don't touch the row
	require.NoError(t, store.SetConfigValue(ctx, payroll.KeyMonthlySalary, decimal.NewFromInt(9999)))
	second, created, err := svc.EnsureMonthlyPayment(ctx, "w1", 3, 2026)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "2200.00", second.MonthlyValue.String())
}

func TestService_MarkPaymentPaid(t *testing.T) {
	svc, store := newTestService(t, march10)
	ctx := context.Background()
	saveWorker(t, store, "w1", "1111")

	p, _, err := svc.EnsureMonthlyPayment(ctx, "w1", 3, 2026)
	require.NoError(t, err)

	paid, err := svc.MarkPaymentPaid(ctx, p.ID, "receipt.pdf")
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "receipt.pdf", paid.ReceiptURL)

	history, err := store.ListPaymentHistory(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "2000.00", history[0].Amount.String())

	_, err = svc.MarkPaymentPaid(ctx, p.ID, "")
	assert.True(t, generic.IsConflict(err))
}

func TestService_NotifyPaymentDue_OnlyOnceFromDueDate(t *testing.T) {
	svc, store := newTestService(t, time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	saveWorker(t, store, "w1", "1111")
	p, _, err := svc.EnsureMonthlyPayment(ctx, "w1", 3, 2026)
	require.NoError(t, err)

	// Day before the due date
	sent, err := svc.NotifyPaymentDue(ctx, p)
	require.NoError(t, err)
	assert.False(t, sent)

	svc.Now = func() time.Time { return time.Date(2026, 3, 6, 8, 0, 0, 0, time.UTC) }
	sent, err = svc.NotifyPaymentDue(ctx, p)
	require.NoError(t, err)
	assert.True(t, sent)

	reloaded, err := store.GetMonthlyPayment(ctx, p.ID)
	require.NoError(t, err)
	sent, err = svc.NotifyPaymentDue(ctx, *reloaded)
	require.NoError(t, err)
	assert.False(t, sent)
}

// =============================================================================
// CONFIGURATION & PIN
// =============================================================================

func TestService_UpdateConfig_Validation(t *testing.T) {
	svc, _ := newTestService(t, march10)
	ctx := context.Background()

	err := svc.UpdateConfig(ctx, map[string]decimal.Decimal{"bonus": decimal.NewFromInt(1)})
	assert.True(t, generic.IsClientError(err))

	err = svc.UpdateConfig(ctx, map[string]decimal.Decimal{payroll.KeyIroning: decimal.NewFromInt(-1)})
	assert.True(t, generic.IsClientError(err))

	require.NoError(t, svc.UpdateConfig(ctx, map[string]decimal.Decimal{payroll.KeyIroning: decimal.NewFromInt(60)}))
	prices, err := svc.Prices(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "60.00", prices.Ironing.String())
}

func TestService_VerifyAdminPIN(t *testing.T) {
	svc, store := newTestService(t, march10)
	ctx := context.Background()

	ok, err := svc.VerifyAdminPIN(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok, "no PIN configured never matches")

	require.NoError(t, store.SetAdminPIN(ctx, "0123"))
	ok, err = svc.VerifyAdminPIN(ctx, "0123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyAdminPIN(ctx, "123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_FindWorkerByPIN(t *testing.T) {
	svc, store := newTestService(t, march10)
	ctx := context.Background()
	saveWorker(t, store, "w1", "4321")

	w, err := svc.FindWorkerByPIN(ctx, "4321")
	require.NoError(t, err)
	assert.Equal(t, generic.WorkerID("w1"), w.ID)

	_, err = svc.FindWorkerByPIN(ctx, "0000")
	assert.True(t, generic.IsNotFound(err))

	err = store.SaveWorker(ctx, payroll.Worker{ID: "w2", PIN: "4321", Active: true})
	var dup *generic.DuplicatePINError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, generic.WorkerID("w1"), dup.ExistingWorkerID)
}

func TestValidatePIN(t *testing.T) {
	assert.NoError(t, payroll.ValidatePIN("0042"))
	assert.Error(t, payroll.ValidatePIN("42"))
	assert.Error(t, payroll.ValidatePIN("12a4"))
}

func TestService_SaveWorker_AssignsIDAndCreatedAt(t *testing.T) {
	// GIVEN: a new worker without an id
	svc, store := newTestService(t, march10)
	ctx := context.Background()

	// WHEN: saving through the service
	w, err := svc.SaveWorker(ctx, payroll.Worker{Name: "Maria", PIN: "1111", Active: true})

	// THEN: the id comes from NewID and the row is stored
	require.NoError(t, err)
	assert.Equal(t, generic.WorkerID("id-001"), w.ID)
	assert.True(t, w.CreatedAt.Equal(march10))

	stored, err := store.GetWorker(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", stored.Name)
}

func TestService_SaveWorker_DuplicateActivePIN(t *testing.T) {
	svc, store := newTestService(t, march10)
	saveWorker(t, store, "w1", "1111")

	_, err := svc.SaveWorker(context.Background(), payroll.Worker{Name: "Outra", PIN: "1111", Active: true})
	assert.True(t, generic.IsConflict(err))
}

func TestValidateWorker(t *testing.T) {
	valid := payroll.Worker{
		Name: "Ana",
		PIN:  "2222",
		Schedule: []payroll.ScheduleEntry{
			{DayOfWeek: "Tuesday", ServiceType: payroll.HeavyCleaning},
		},
	}
	require.NoError(t, payroll.ValidateWorker(valid))

	cases := map[string]func(w *payroll.Worker){
		"blank name":     func(w *payroll.Worker) { w.Name = "  " },
		"short pin":      func(w *payroll.Worker) { w.PIN = "22" },
		"unknown day":    func(w *payroll.Worker) { w.Schedule = []payroll.ScheduleEntry{{DayOfWeek: "funday", ServiceType: payroll.LightCleaning}} },
		"unknown type":   func(w *payroll.Worker) { w.Schedule = []payroll.ScheduleEntry{{DayOfWeek: "monday", ServiceType: "deep"}} },
		"negative price": func(w *payroll.Worker) { w.Prices.Washing = generic.NewMoneyFromInt(-1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			w := valid
			w.Schedule = append([]payroll.ScheduleEntry(nil), valid.Schedule...)
			mutate(&w)
			err := payroll.ValidateWorker(w)
			assert.ErrorIs(t, err, generic.ErrInvalidInput)
		})
	}
}

func TestService_SaveWorker_RefusesAdminPIN(t *testing.T) {
	// GIVEN: the administrator logs in with 9999
	svc, store := newTestService(t, march10)
	ctx := context.Background()
	require.NoError(t, store.SetAdminPIN(ctx, "9999"))

	// WHEN: an active worker is given the same PIN
	_, err := svc.SaveWorker(ctx, payroll.Worker{Name: "Maria", PIN: "9999", Active: true})

	// THEN: conflict, and the worker is not stored
	var dup *generic.DuplicatePINError
	require.ErrorAs(t, err, &dup)
	assert.Empty(t, dup.ExistingWorkerID)
	assert.True(t, generic.IsConflict(err))
	workers, err := store.ListWorkers(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, workers)

	// An inactive worker does not log in, so the PIN is free for it
	_, err = svc.SaveWorker(ctx, payroll.Worker{Name: "Antiga", PIN: "9999"})
	assert.NoError(t, err)
}

func TestService_SetAdminPIN_RefusesActiveWorkerPIN(t *testing.T) {
	svc, store := newTestService(t, march10)
	ctx := context.Background()
	saveWorker(t, store, "w1", "1111")

	err := svc.SetAdminPIN(ctx, "1111")
	var dup *generic.DuplicatePINError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, generic.WorkerID("w1"), dup.ExistingWorkerID)

	pin, err := store.AdminPIN(ctx)
	require.NoError(t, err)
	assert.Empty(t, pin)

	assert.ErrorIs(t, svc.SetAdminPIN(ctx, "11"), generic.ErrInvalidInput)
	require.NoError(t, svc.SetAdminPIN(ctx, "2222"))
	ok, err := svc.VerifyAdminPIN(ctx, "2222")
	require.NoError(t, err)
	assert.True(t, ok)
}
