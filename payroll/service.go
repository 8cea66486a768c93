/*
service.go - Orchestration around the pure calculators

PURPOSE:
  Fetches row snapshots through the Store, runs the calculators, and performs
  the writes the screens need (toggles, notes, payments, award transitions).

REQUEST FLOW:
  1. Validate month/year and inputs
  2. Read rows for the scope (one worker or all)
  3. Compute with ResolvePrices / ResolveScheduleDays / ComputeEarnings /
     EvaluateAwardPeriod / PaymentDueDate
  4. Persist when the operation is a write

SEE ALSO:
  - gateway.go: Store contract
  - api/handlers.go: HTTP entry points
*/
package payroll

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/household-payroll/generic"
)

// MaxLaundryWeeks is the highest week_number a laundry row may carry.
const MaxLaundryWeeks = 5

// Service holds the store and the household clock.
type Service struct {
	Store    Store
	Location *time.Location
	Now      func() time.Time
	NewID    func() string
}

// NewService creates a service. loc is the household's time zone (UTC when nil).
func NewService(store Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		Store:    store,
		Location: loc,
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
}

// Today is the current calendar day in the household's time zone.
func (s *Service) Today() generic.Date {
	return generic.DateOf(s.Now().In(s.Location))
}

// =============================================================================
// SUMMARIES
// =============================================================================

// WorkerSummary is everything one worker's month screen and report row need.
type WorkerSummary struct {
	Worker        Worker             `json:"worker"`
	Prices        Prices             `json:"prices"`
	ScheduledDays []ScheduledDay     `json:"scheduled_days"`
	Attendance    []AttendanceRecord `json:"attendance"`
	Laundry       []LaundryWeek      `json:"laundry"`
	Notes         []Note             `json:"notes"`
	Earnings      Earnings           `json:"earnings"`
	Payment       *MonthlyPayment    `json:"payment,omitempty"`
	Award         *AwardView         `json:"award,omitempty"`
}

// Summary is the month view across one or all workers.
type Summary struct {
	Month          int              `json:"month"`
	Year           int              `json:"year"`
	WorkerID       generic.WorkerID `json:"diarista_id,omitempty"` // empty for the whole household
	Period         generic.Period   `json:"-"`
	PaymentDueDate generic.Date     `json:"payment_due_date"`
	Workers        []WorkerSummary  `json:"workers"`
	Totals         Earnings         `json:"totals"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// MonthlySummary computes the month for workerID, or for every active worker when empty.
func (s *Service) MonthlySummary(ctx context.Context, workerID generic.WorkerID, month, year int) (*Summary, error) {
	period, err := generic.MonthPeriod(month, year)
	if err != nil {
		return nil, err
	}

	var workers []Worker
	if workerID != "" {
		w, err := s.Store.GetWorker(ctx, workerID)
		if err != nil {
			return nil, err
		}
		workers = []Worker{*w}
	} else {
		workers, err = s.Store.ListWorkers(ctx, true)
		if err != nil {
			return nil, fmt.Errorf("list workers: %w", err)
		}
	}

	config, err := s.Store.ConfigValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	attendance, err := s.Store.ListAttendance(ctx, period, workerID)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	laundry, err := s.Store.ListLaundryWeeks(ctx, month, year, workerID)
	if err != nil {
		return nil, fmt.Errorf("list laundry: %w", err)
	}
	notes, err := s.Store.ListNotes(ctx, period, workerID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	payments, err := s.Store.ListMonthlyPayments(ctx, month, year, workerID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	summary := &Summary{
		Month:          month,
		Year:           year,
		WorkerID:       workerID,
		Period:         period,
		PaymentDueDate: PaymentDueDate(month, year),
		Workers:        make([]WorkerSummary, 0, len(workers)),
		GeneratedAt:    s.Now(),
	}
	summary.Totals = Earnings{
		AttendanceTotal:    generic.ZeroMoney(),
		LaundryTotal:       generic.ZeroMoney(),
		TransportPaidTotal: generic.ZeroMoney(),
		GrandTotal:         generic.ZeroMoney(),
	}

	for _, w := range workers {
		ws := WorkerSummary{
			Worker:        w,
			Prices:        ResolvePrices(config, &w),
			ScheduledDays: ResolveScheduleDays(EffectiveSchedule(w.Schedule), month, year),
			Attendance:    filterAttendance(attendance, w.ID),
			Laundry:       filterLaundry(laundry, w.ID),
			Notes:         filterNotes(notes, w.ID),
		}
		ws.Earnings = ComputeEarnings(ws.Attendance, ws.Laundry, ws.Prices)
		for i := range payments {
			if payments[i].WorkerID == w.ID {
				p := payments[i]
				ws.Payment = &p
				break
			}
		}
		if ws.Award, err = s.CurrentAward(ctx, w.ID); err != nil {
			return nil, err
		}

		summary.Totals = addEarnings(summary.Totals, ws.Earnings)
		summary.Workers = append(summary.Workers, ws)
	}
	return summary, nil
}

func addEarnings(a, b Earnings) Earnings {
	return Earnings{
		HeavyDays:          a.HeavyDays + b.HeavyDays,
		LightDays:          a.LightDays + b.LightDays,
		IronedWeeks:        a.IronedWeeks + b.IronedWeeks,
		WashedWeeks:        a.WashedWeeks + b.WashedWeeks,
		AttendanceTotal:    a.AttendanceTotal.Add(b.AttendanceTotal),
		LaundryTotal:       a.LaundryTotal.Add(b.LaundryTotal),
		TransportPaidTotal: a.TransportPaidTotal.Add(b.TransportPaidTotal),
		GrandTotal:         a.GrandTotal.Add(b.GrandTotal),
	}
}

func filterAttendance(rows []AttendanceRecord, id generic.WorkerID) []AttendanceRecord {
	out := []AttendanceRecord{}
	for _, r := range rows {
		if r.WorkerID == id {
			out = append(out, r)
		}
	}
	return out
}

func filterLaundry(rows []LaundryWeek, id generic.WorkerID) []LaundryWeek {
	out := []LaundryWeek{}
	for _, r := range rows {
		if r.WorkerID == id {
			out = append(out, r)
		}
	}
	return out
}

func filterNotes(rows []Note, id generic.WorkerID) []Note {
	out := []Note{}
	for _, r := range rows {
		if r.WorkerID == id {
			out = append(out, r)
		}
	}
	return out
}

// Prices resolves the unit prices for one worker (household prices when nil).
func (s *Service) Prices(ctx context.Context, w *Worker) (Prices, error) {
	config, err := s.Store.ConfigValues(ctx)
	if err != nil {
		return Prices{}, err
	}
	return ResolvePrices(config, w), nil
}

// =============================================================================
// ATTENDANCE & LAUNDRY
// =============================================================================

// MarkAttendance records a day. An empty DayType is taken from the worker's
// effective schedule; a day outside the schedule then needs an explicit type.
func (s *Service) MarkAttendance(ctx context.Context, rec AttendanceRecord) (AttendanceRecord, error) {
	w, err := s.Store.GetWorker(ctx, rec.WorkerID)
	if err != nil {
		return AttendanceRecord{}, err
	}
	if rec.Date.IsZero() {
		return AttendanceRecord{}, &generic.ValidationError{Field: "date", Message: "required"}
	}
	if rec.DayType == "" {
		t, ok := ScheduledOn(EffectiveSchedule(w.Schedule), rec.Date)
		if !ok {
			return AttendanceRecord{}, &generic.ValidationError{Field: "day_type", Message: "not a scheduled day; day_type required"}
		}
		rec.DayType = t
	}
	if !rec.DayType.Valid() {
		return AttendanceRecord{}, &generic.ValidationError{Field: "day_type", Message: "must be heavy_cleaning or light_cleaning"}
	}
	if rec.ID == "" {
		rec.ID = s.NewID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.Now().UTC()
	}
	return s.Store.UpsertAttendance(ctx, rec)
}

// LaundryToggle is a partial update of one week; nil fields keep their value.
type LaundryToggle struct {
	WorkerID     generic.WorkerID
	WeekNumber   int
	Month        int
	Year         int
	Ironed       *bool
	Washed       *bool
	TransportFee *generic.Money
}

// ToggleLaundry applies a toggle, creating the week when a service is first turned on, with the
// household transport fee.
func (s *Service) ToggleLaundry(ctx context.Context, t LaundryToggle) (LaundryWeek, error) {
	if err := generic.ValidateMonth(t.Month, t.Year); err != nil {
		return LaundryWeek{}, err
	}
	if t.WeekNumber < 1 || t.WeekNumber > MaxLaundryWeeks {
		return LaundryWeek{}, &generic.ValidationError{Field: "week_number", Message: fmt.Sprintf("must be 1..%d", MaxLaundryWeeks)}
	}
	if t.TransportFee != nil && t.TransportFee.IsNegative() {
		return LaundryWeek{}, &generic.ValidationError{Field: "transport_fee", Message: "must not be negative"}
	}
	w, err := s.Store.GetWorker(ctx, t.WorkerID)
	if err != nil {
		return LaundryWeek{}, err
	}

	weeks, err := s.Store.ListLaundryWeeks(ctx, t.Month, t.Year, t.WorkerID)
	if err != nil {
		return LaundryWeek{}, err
	}
	var week *LaundryWeek
	for i := range weeks {
		if weeks[i].WeekNumber == t.WeekNumber {
			week = &weeks[i]
			break
		}
	}
	if week != nil && week.PaidAt != nil && changesPaidWeek(*week, t) {
		return LaundryWeek{}, fmt.Errorf("%w: laundry week %s already paid", generic.ErrConflict, week.ID)
	}
	created := week == nil
	if created {
		prices, err := s.Prices(ctx, w)
		if err != nil {
			return LaundryWeek{}, err
		}
		week = &LaundryWeek{
			WorkerID:     t.WorkerID,
			WeekNumber:   t.WeekNumber,
			Month:        t.Month,
			Year:         t.Year,
			TransportFee: prices.Transport,
		}
	}
	if t.Ironed != nil {
		week.Ironed = *t.Ironed
	}
	if t.Washed != nil {
		week.Washed = *t.Washed
	}
	if t.TransportFee != nil {
		week.TransportFee = *t.TransportFee
	}
	// A week is registered only once a service is on.
	if created {
		if !week.HasService() {
			return *week, nil
		}
		week.ID = s.NewID()
	}
	return s.Store.UpsertLaundryWeek(ctx, *week)
}

// changesPaidWeek reports whether t would alter the amounts of a paid week.
func changesPaidWeek(w LaundryWeek, t LaundryToggle) bool {
	return (t.Ironed != nil && *t.Ironed != w.Ironed) ||
		(t.Washed != nil && *t.Washed != w.Washed) ||
		(t.TransportFee != nil && !t.TransportFee.Equal(w.TransportFee))
}

// MarkLaundryPaid flags a week paid and records services plus transport in the history.
func (s *Service) MarkLaundryPaid(ctx context.Context, id, receiptURL string) (LaundryWeek, error) {
	week, err := s.Store.GetLaundryWeek(ctx, id)
	if err != nil {
		return LaundryWeek{}, err
	}
	if week.PaidAt != nil {
		return LaundryWeek{}, fmt.Errorf("%w: laundry week already paid", generic.ErrConflict)
	}
	if !week.HasService() {
		return LaundryWeek{}, &generic.ValidationError{Field: "id", Message: "week has no service to pay"}
	}
	w, err := s.Store.GetWorker(ctx, week.WorkerID)
	if err != nil {
		return LaundryWeek{}, err
	}
	prices, err := s.Prices(ctx, w)
	if err != nil {
		return LaundryWeek{}, err
	}

	now := s.Now().UTC()
	entry := PaymentHistory{
		ID:          s.NewID(),
		WorkerID:    week.WorkerID,
		Kind:        PaymentLaundry,
		ReferenceID: week.ID,
		Amount:      WeekServicesTotal(*week, prices).Add(TransportDue(*week)),
		PaidAt:      now,
		ReceiptURL:  receiptURL,
	}
	return s.Store.MarkLaundryWeekPaid(ctx, id, now, receiptURL, entry)
}

// =============================================================================
// NOTES & AWARDS
// =============================================================================

// AwardView pairs a stored period with its live evaluation.
type AwardView struct {
	Period          AwardPeriod     `json:"period"`
	Evaluation      AwardEvaluation `json:"evaluation"`
	EffectiveStatus AwardStatus     `json:"effective_status"`
}

// AddNote stores a note. A warning landing in the worker's current award
// period notifies at the near-threshold mark and disqualifies at the threshold.
func (s *Service) AddNote(ctx context.Context, n Note) (Note, error) {
	if _, err := s.Store.GetWorker(ctx, n.WorkerID); err != nil {
		return Note{}, err
	}
	if n.Date.IsZero() {
		n.Date = s.Today()
	}
	if n.NoteType == "" {
		n.NoteType = NoteGeneral
	}
	if !n.NoteType.Valid() {
		return Note{}, &generic.ValidationError{Field: "note_type", Message: "unknown note type " + string(n.NoteType)}
	}
	if strings.TrimSpace(n.Content) == "" {
		return Note{}, &generic.ValidationError{Field: "content", Message: "required"}
	}
	n.ID = s.NewID()
	n.CreatedAt = s.Now().UTC()
	if err := s.Store.AddNote(ctx, n); err != nil {
		return Note{}, err
	}
	if !n.IsWarning {
		return n, nil
	}

	periods, err := s.Store.ListAwardPeriods(ctx, n.WorkerID)
	if err != nil {
		return n, err
	}
	for _, p := range periods {
		if !p.Period().Contains(n.Date) {
			continue
		}
		view, err := s.reconcile(ctx, p)
		if err != nil {
			return n, err
		}
		if view.Evaluation.NearThreshold {
			msg := fmt.Sprintf("%d warnings in award period %s; one more disqualifies the bonus",
				view.Evaluation.WarningsCount, p.Period())
			if err := s.notify(ctx, n.WorkerID, NotifyNearThreshold, msg); err != nil {
				return n, err
			}
		}
		if view.Evaluation.WarningsCount == WarningThreshold {
			msg := fmt.Sprintf("award period %s disqualified after %d warnings", p.Period(), WarningThreshold)
			if err := s.notify(ctx, n.WorkerID, NotifyDisqualified, msg); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// notify sends the same message to the worker and to the administrator.
func (s *Service) notify(ctx context.Context, workerID generic.WorkerID, kind NotificationKind, msg string) error {
	for _, to := range []generic.WorkerID{workerID, ""} {
		err := s.Store.AddNotification(ctx, Notification{
			ID:        s.NewID(),
			WorkerID:  to,
			Kind:      kind,
			Message:   msg,
			CreatedAt: s.Now().UTC(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Evaluate reads the notes of a period and evaluates them.
func (s *Service) Evaluate(ctx context.Context, p AwardPeriod) (AwardView, error) {
	notes, err := s.Store.ListNotes(ctx, p.Period(), p.WorkerID)
	if err != nil {
		return AwardView{}, err
	}
	eval := EvaluateAwardPeriod(notes, p.PeriodStart, p.PeriodEnd)
	return AwardView{Period: p, Evaluation: eval, EffectiveStatus: EffectiveStatus(p.Status, eval)}, nil
}

// reconcile persists the derived disqualification and the live warnings count.
func (s *Service) reconcile(ctx context.Context, p AwardPeriod) (AwardView, error) {
	view, err := s.Evaluate(ctx, p)
	if err != nil {
		return AwardView{}, err
	}
	if p.Status == view.EffectiveStatus && p.WarningsCount == view.Evaluation.WarningsCount {
		return view, nil
	}
	p.Status = view.EffectiveStatus
	p.WarningsCount = view.Evaluation.WarningsCount
	p.UpdatedAt = s.Now().UTC()
	if err := s.Store.SaveAwardPeriod(ctx, p); err != nil {
		return AwardView{}, err
	}
	view.Period = p
	return view, nil
}

// ReconcileAward is the exported form used by the scheduler. Reports whether the stored row changed.
func (s *Service) ReconcileAward(ctx context.Context, p AwardPeriod) (bool, error) {
	view, err := s.reconcile(ctx, p)
	if err != nil {
		return false, err
	}
	return view.Period.Status != p.Status || view.Period.WarningsCount != p.WarningsCount, nil
}

// CurrentAward returns the period containing today, or nil when there is none.
func (s *Service) CurrentAward(ctx context.Context, workerID generic.WorkerID) (*AwardView, error) {
	periods, err := s.Store.ListAwardPeriods(ctx, workerID)
	if err != nil {
		return nil, err
	}
	p, ok := CurrentAwardPeriod(periods, s.Today())
	if !ok {
		return nil, nil
	}
	view, err := s.Evaluate(ctx, p)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// CreateAwardPeriod validates and stores a new period in pending status.
func (s *Service) CreateAwardPeriod(ctx context.Context, a AwardPeriod) (AwardPeriod, error) {
	if _, err := s.Store.GetWorker(ctx, a.WorkerID); err != nil {
		return AwardPeriod{}, err
	}
	if _, err := generic.NewPeriod(a.PeriodStart, a.PeriodEnd); err != nil {
		return AwardPeriod{}, err
	}
	for _, score := range []int{a.PunctualityScore, a.QualityScore, a.CommunicationScore} {
		if score < 0 || score > 10 {
			return AwardPeriod{}, &generic.ValidationError{Field: "score", Message: "scores must be 0..10"}
		}
	}
	a.ID = s.NewID()
	a.Status = AwardPending
	a.Value = AwardValue
	a.UpdatedAt = s.Now().UTC()
	if err := s.Store.SaveAwardPeriod(ctx, a); err != nil {
		return AwardPeriod{}, err
	}
	view, err := s.reconcile(ctx, a)
	if err != nil {
		return AwardPeriod{}, err
	}
	return view.Period, nil
}

// AwardUpdate is an administrator's edit of a period's status and scores.
type AwardUpdate struct {
	Status             AwardStatus
	PunctualityScore   *int
	QualityScore       *int
	CommunicationScore *int
}

// UpdateAward applies an administrator's transition after checking it against the warnings.
func (s *Service) UpdateAward(ctx context.Context, id string, u AwardUpdate) (AwardView, error) {
	p, err := s.Store.GetAwardPeriod(ctx, id)
	if err != nil {
		return AwardView{}, err
	}
	view, err := s.Evaluate(ctx, *p)
	if err != nil {
		return AwardView{}, err
	}
	to := u.Status
	if to == "" {
		to = view.EffectiveStatus
	}
	if err := CheckTransition(p.Status, to, view.Evaluation); err != nil {
		return AwardView{}, err
	}
	for _, score := range []*int{u.PunctualityScore, u.QualityScore, u.CommunicationScore} {
		if score != nil && (*score < 0 || *score > 10) {
			return AwardView{}, &generic.ValidationError{Field: "score", Message: "scores must be 0..10"}
		}
	}

	updated := *p
	updated.Status = to
	updated.WarningsCount = view.Evaluation.WarningsCount
	if u.PunctualityScore != nil {
		updated.PunctualityScore = *u.PunctualityScore
	}
	if u.QualityScore != nil {
		updated.QualityScore = *u.QualityScore
	}
	if u.CommunicationScore != nil {
		updated.CommunicationScore = *u.CommunicationScore
	}
	updated.UpdatedAt = s.Now().UTC()
	if err := s.Store.SaveAwardPeriod(ctx, updated); err != nil {
		return AwardView{}, err
	}
	return AwardView{Period: updated, Evaluation: view.Evaluation, EffectiveStatus: EffectiveStatus(updated.Status, view.Evaluation)}, nil
}

// =============================================================================
// MONTHLY PAYMENTS
// =============================================================================

// EnsureMonthlyPayment creates the worker's row for the month when missing.
// The due date and value are fixed at creation and never recomputed.
func (s *Service) EnsureMonthlyPayment(ctx context.Context, workerID generic.WorkerID, month, year int) (MonthlyPayment, bool, error) {
	if err := generic.ValidateMonth(month, year); err != nil {
		return MonthlyPayment{}, false, err
	}
	w, err := s.Store.GetWorker(ctx, workerID)
	if err != nil {
		return MonthlyPayment{}, false, err
	}
	existing, err := s.Store.ListMonthlyPayments(ctx, month, year, workerID)
	if err != nil {
		return MonthlyPayment{}, false, err
	}
	if len(existing) > 0 {
		return existing[0], false, nil
	}
	prices, err := s.Prices(ctx, w)
	if err != nil {
		return MonthlyPayment{}, false, err
	}

	p := MonthlyPayment{
		ID:             s.NewID(),
		WorkerID:       workerID,
		Month:          month,
		Year:           year,
		MonthlyValue:   prices.MonthlySalary,
		PaymentDueDate: PaymentDueDate(month, year),
	}
	if err := s.Store.CreateMonthlyPayment(ctx, p); err != nil {
		if generic.IsConflict(err) {
			// Lost a race with another creator; the stored row wins.
			rows, lerr := s.Store.ListMonthlyPayments(ctx, month, year, workerID)
			if lerr == nil && len(rows) > 0 {
				return rows[0], false, nil
			}
		}
		return MonthlyPayment{}, false, err
	}
	msg := fmt.Sprintf("salary for %02d/%d (%s) due on %s", month, year, p.MonthlyValue, p.PaymentDueDate)
	if err := s.Store.AddNotification(ctx, Notification{
		ID: s.NewID(), WorkerID: workerID, Kind: NotifyPaymentCreated, Message: msg, CreatedAt: s.Now().UTC(),
	}); err != nil {
		return p, true, err
	}
	return p, true, nil
}

// MarkPaymentPaid flags the month paid and appends the history entry.
func (s *Service) MarkPaymentPaid(ctx context.Context, id, receiptURL string) (MonthlyPayment, error) {
	p, err := s.Store.GetMonthlyPayment(ctx, id)
	if err != nil {
		return MonthlyPayment{}, err
	}
	if p.PaidAt != nil {
		return MonthlyPayment{}, fmt.Errorf("%w: payment already marked paid", generic.ErrConflict)
	}
	now := s.Now().UTC()
	entry := PaymentHistory{
		ID:          s.NewID(),
		WorkerID:    p.WorkerID,
		Kind:        PaymentMonthly,
		ReferenceID: p.ID,
		Amount:      p.MonthlyValue,
		PaidAt:      now,
		ReceiptURL:  receiptURL,
	}
	return s.Store.MarkMonthlyPaymentPaid(ctx, id, now, receiptURL, entry)
}

// NotifyPaymentDue sends the due-date reminder once per unpaid row whose due date is today or past.
func (s *Service) NotifyPaymentDue(ctx context.Context, p MonthlyPayment) (bool, error) {
	if p.PaidAt != nil || p.DueNotified || s.Today().Before(p.PaymentDueDate) {
		return false, nil
	}
	msg := fmt.Sprintf("salary for %02d/%d (%s) is due on %s", p.Month, p.Year, p.MonthlyValue, p.PaymentDueDate)
	if err := s.notify(ctx, p.WorkerID, NotifyPaymentDue, msg); err != nil {
		return false, err
	}
	if err := s.Store.MarkPaymentDueNotified(ctx, p.ID); err != nil {
		return false, err
	}
	return true, nil
}

// =============================================================================
// CONFIGURATION & PIN
// =============================================================================

// UpdateConfig validates and stores price keys.
func (s *Service) UpdateConfig(ctx context.Context, values map[string]decimal.Decimal) error {
	for key, v := range values {
		if _, ok := Defaults[key]; !ok {
			return &generic.ValidationError{Field: key, Message: "unknown configuration key"}
		}
		if v.IsNegative() {
			return &generic.ValidationError{Field: key, Message: "must not be negative"}
		}
	}
	for key, v := range values {
		if err := s.Store.SetConfigValue(ctx, key, v); err != nil {
			return err
		}
	}
	return nil
}

// SaveWorker validates and stores a worker. New workers get an ID and a creation time.
func (s *Service) SaveWorker(ctx context.Context, w Worker) (Worker, error) {
	if err := ValidateWorker(w); err != nil {
		return Worker{}, err
	}
	if w.Active {
		admin, err := s.Store.AdminPIN(ctx)
		if err != nil {
			return Worker{}, err
		}
		if admin != "" && admin == w.PIN {
			return Worker{}, &generic.DuplicatePINError{}
		}
	}
	if w.ID == "" {
		w.ID = generic.WorkerID(s.NewID())
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = s.Now().UTC()
	}
	if err := s.Store.SaveWorker(ctx, w); err != nil {
		return Worker{}, err
	}
	return w, nil
}

// ValidateWorker checks the fields an administrator edits.
func ValidateWorker(w Worker) error {
	if strings.TrimSpace(w.Name) == "" {
		return &generic.ValidationError{Field: "name", Message: "required"}
	}
	if err := ValidatePIN(w.PIN); err != nil {
		return err
	}
	for _, e := range w.Schedule {
		if _, ok := generic.ParseWeekday(e.DayOfWeek); !ok {
			return &generic.ValidationError{Field: "work_schedule", Message: "unknown weekday " + e.DayOfWeek}
		}
		if !e.ServiceType.Valid() {
			return &generic.ValidationError{Field: "work_schedule", Message: "unknown service type " + string(e.ServiceType)}
		}
	}
	for _, m := range []generic.Money{w.Prices.HeavyCleaning, w.Prices.LightCleaning, w.Prices.Washing, w.Prices.Ironing} {
		if m.IsNegative() {
			return &generic.ValidationError{Field: "prices", Message: "must not be negative"}
		}
	}
	return nil
}

// ValidatePIN accepts exactly four digits.
func ValidatePIN(pin string) error {
	if len(pin) != 4 {
		return &generic.ValidationError{Field: "pin", Message: "must be 4 digits"}
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return &generic.ValidationError{Field: "pin", Message: "must be 4 digits"}
		}
	}
	return nil
}

// CheckAdminPIN validates a new admin PIN. An active worker holding it is a conflict.
func (s *Service) CheckAdminPIN(ctx context.Context, pin string) error {
	if err := ValidatePIN(pin); err != nil {
		return err
	}
	w, err := s.FindWorkerByPIN(ctx, pin)
	if err == nil {
		return &generic.DuplicatePINError{ExistingWorkerID: w.ID}
	}
	if !generic.IsNotFound(err) {
		return err
	}
	return nil
}

// SetAdminPIN checks and stores the admin PIN.
func (s *Service) SetAdminPIN(ctx context.Context, pin string) error {
	if err := s.CheckAdminPIN(ctx, pin); err != nil {
		return err
	}
	return s.Store.SetAdminPIN(ctx, pin)
}

// VerifyAdminPIN compares against the stored admin PIN. No PIN configured never matches.
func (s *Service) VerifyAdminPIN(ctx context.Context, pin string) (bool, error) {
	stored, err := s.Store.AdminPIN(ctx)
	if err != nil {
		return false, err
	}
	return stored != "" && pin == stored, nil
}

// FindWorkerByPIN returns the active worker holding pin.
func (s *Service) FindWorkerByPIN(ctx context.Context, pin string) (*Worker, error) {
	workers, err := s.Store.ListWorkers(ctx, true)
	if err != nil {
		return nil, err
	}
	for i := range workers {
		if workers[i].PIN == pin {
			return &workers[i], nil
		}
	}
	return nil, generic.ErrNotFound
}
