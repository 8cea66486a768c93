/*
Package sqlite provides a SQLite-backed implementation of payroll.Store.

PURPOSE:
  Persists workers, attendance, laundry weeks, notes, configuration, award
  periods, payments and notifications. The payroll service reads snapshots
  through the payroll.Gateway half and writes through the rest.

KEY TABLES:
  diaristas:           Worker records (schedule and price overrides as JSON)
  attendance:          One row per (worker, date)
  laundry_weeks:       One row per (worker, week_number, month, year)
  notes:               Append-only, optionally flagged as warnings
  config:              key -> decimal text (prices, salary) plus admin_pin
  award_periods:       Bonus windows and their stored status
  monthly_payments:    One row per (worker, month, year)
  payment_history:     Appended whenever something is marked paid
  clients, contract_agreements, notifications

UNIQUENESS:
  Enforced by the schema and translated into generic.ErrConflict (or
  *generic.DuplicatePINError for worker PINs).

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's single writer.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/diaristas.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := payroll.NewService(store, loc)

MIGRATION:
  Versioned goose migrations embedded from ./migrations run on New().

SEE ALSO:
  - payroll/gateway.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"github.com/warp/household-payroll/generic"
	"github.com/warp/household-payroll/payroll"
	"github.com/warp/household-payroll/store/sqlite/migrations"
)

// Store implements payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ payroll.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection (health endpoint).
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Reset clears all data (for testing/demo). Children go first for the foreign keys.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"notifications", "contract_agreements", "payment_history", "monthly_payments",
		"award_periods", "notes", "laundry_weeks", "attendance", "clients", "config", "diaristas",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// WORKER STORE
// =============================================================================

const workerColumns = "id, name, pin, phone, active, prices_json, work_schedule, created_at"

// SaveWorker inserts or updates a worker.
func (s *Store) SaveWorker(ctx context.Context, w payroll.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.Active && w.PIN != "" {
		var holder string
		err := s.db.QueryRowContext(ctx,
			"SELECT id FROM diaristas WHERE pin = ? AND active = 1 AND id <> ?",
			w.PIN, string(w.ID),
		).Scan(&holder)
		if err == nil {
			return &generic.DuplicatePINError{ExistingWorkerID: generic.WorkerID(holder)}
		}
		if err != sql.ErrNoRows {
			return err
		}
	}

	prices, err := json.Marshal(w.Prices)
	if err != nil {
		return fmt.Errorf("marshal prices: %w", err)
	}
	schedule := w.Schedule
	if schedule == nil {
		schedule = []payroll.ScheduleEntry{}
	}
	scheduleJSON, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO diaristas (` + workerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			pin = excluded.pin,
			phone = excluded.phone,
			active = excluded.active,
			prices_json = excluded.prices_json,
			work_schedule = excluded.work_schedule
	`
	_, err = s.db.ExecContext(ctx, query,
		string(w.ID), w.Name, w.PIN, nullString(w.Phone), w.Active,
		string(prices), string(scheduleJSON), createdAt.UTC().Format(time.RFC3339),
	)
	if isUniqueConstraintError(err) {
		return &generic.DuplicatePINError{}
	}
	return err
}

// GetWorker retrieves a worker by ID.
func (s *Store) GetWorker(ctx context.Context, id generic.WorkerID) (*payroll.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+workerColumns+" FROM diaristas WHERE id = ?", string(id))
	w, err := scanWorker(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("worker %s: %w", id, generic.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWorkers returns workers ordered by name.
func (s *Store) ListWorkers(ctx context.Context, activeOnly bool) ([]payroll.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + workerColumns + " FROM diaristas"
	if activeOnly {
		query += " WHERE active = 1"
	}
	query += " ORDER BY name, id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workers := []payroll.Worker{}
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// DeactivateWorker keeps the row (history references it) and frees its PIN.
func (s *Store) DeactivateWorker(ctx context.Context, id generic.WorkerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE diaristas SET active = 0 WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	return requireAffected(res, "worker", string(id))
}

func scanWorker(sc scanner) (payroll.Worker, error) {
	var (
		w                      payroll.Worker
		id                     string
		phone                  sql.NullString
		pricesJSON, scheduleJS string
		createdAt              string
	)
	if err := sc.Scan(&id, &w.Name, &w.PIN, &phone, &w.Active, &pricesJSON, &scheduleJS, &createdAt); err != nil {
		return w, err
	}
	w.ID = generic.WorkerID(id)
	w.Phone = phone.String
	if err := json.Unmarshal([]byte(pricesJSON), &w.Prices); err != nil {
		return w, fmt.Errorf("worker %s prices: %w", id, err)
	}
	if err := json.Unmarshal([]byte(scheduleJS), &w.Schedule); err != nil {
		return w, fmt.Errorf("worker %s schedule: %w", id, err)
	}
	w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return w, nil
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

const attendanceColumns = "id, diarista_id, date, day_type, present, created_at"

// UpsertAttendance keeps one row per (worker, date); the first row's ID survives.
func (s *Store) UpsertAttendance(ctx context.Context, rec payroll.AttendanceRecord) (payroll.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO attendance (` + attendanceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(diarista_id, date) DO UPDATE SET
			day_type = excluded.day_type,
			present = excluded.present
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, string(rec.WorkerID), rec.Date.String(), string(rec.DayType), rec.Present,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return payroll.AttendanceRecord{}, err
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+attendanceColumns+" FROM attendance WHERE diarista_id = ? AND date = ?",
		string(rec.WorkerID), rec.Date.String(),
	)
	return scanAttendance(row)
}

// GetAttendance retrieves one row by ID.
func (s *Store) GetAttendance(ctx context.Context, id string) (*payroll.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, err := scanAttendance(s.db.QueryRowContext(ctx, "SELECT "+attendanceColumns+" FROM attendance WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("attendance %s: %w", id, generic.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAttendance returns rows within the period ordered by date.
func (s *Store) ListAttendance(ctx context.Context, period generic.Period, workerID generic.WorkerID) ([]payroll.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := where{}
	w.add("date >= ?", period.Start.String())
	w.add("date <= ?", period.End.String())
	w.scope(workerID)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+attendanceColumns+" FROM attendance"+w.sql()+" ORDER BY date, diarista_id", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []payroll.AttendanceRecord{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAttendance clears a mark back to "not marked".
func (s *Store) DeleteAttendance(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM attendance WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, "attendance", id)
}

func scanAttendance(sc scanner) (payroll.AttendanceRecord, error) {
	var (
		a                          payroll.AttendanceRecord
		workerID, date, t, created string
	)
	if err := sc.Scan(&a.ID, &workerID, &date, &t, &a.Present, &created); err != nil {
		return a, err
	}
	a.WorkerID = generic.WorkerID(workerID)
	a.Date, _ = generic.ParseDate(date)
	a.DayType = payroll.DayType(t)
	a.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return a, nil
}

// =============================================================================
// LAUNDRY STORE
// =============================================================================

const laundryColumns = "id, diarista_id, week_number, month, year, ironed, washed, transport_fee, paid_at, receipt_url"

// UpsertLaundryWeek keeps one row per (worker, week, month, year). Payment
// columns are never touched here.
func (s *Store) UpsertLaundryWeek(ctx context.Context, lw payroll.LaundryWeek) (payroll.LaundryWeek, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO laundry_weeks (id, diarista_id, week_number, month, year, ironed, washed, transport_fee)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(diarista_id, week_number, month, year) DO UPDATE SET
			ironed = excluded.ironed,
			washed = excluded.washed,
			transport_fee = excluded.transport_fee
	`
	_, err := s.db.ExecContext(ctx, query,
		lw.ID, string(lw.WorkerID), lw.WeekNumber, lw.Month, lw.Year,
		lw.Ironed, lw.Washed, lw.TransportFee.Value.String(),
	)
	if err != nil {
		return payroll.LaundryWeek{}, err
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+laundryColumns+" FROM laundry_weeks WHERE diarista_id = ? AND week_number = ? AND month = ? AND year = ?",
		string(lw.WorkerID), lw.WeekNumber, lw.Month, lw.Year,
	)
	return scanLaundry(row)
}

// GetLaundryWeek retrieves one week by ID.
func (s *Store) GetLaundryWeek(ctx context.Context, id string) (*payroll.LaundryWeek, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lw, err := scanLaundry(s.db.QueryRowContext(ctx, "SELECT "+laundryColumns+" FROM laundry_weeks WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("laundry week %s: %w", id, generic.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &lw, nil
}

// ListLaundryWeeks returns the persisted weeks of a month ordered by week number.
func (s *Store) ListLaundryWeeks(ctx context.Context, month, year int, workerID generic.WorkerID) ([]payroll.LaundryWeek, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := where{}
	w.add("month = ?", month)
	w.add("year = ?", year)
	w.scope(workerID)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+laundryColumns+" FROM laundry_weeks"+w.sql()+" ORDER BY week_number, diarista_id", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []payroll.LaundryWeek{}
	for rows.Next() {
		lw, err := scanLaundry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lw)
	}
	return out, rows.Err()
}

// MarkLaundryWeekPaid sets paid_at and appends the history entry atomically.
func (s *Store) MarkLaundryWeekPaid(ctx context.Context, id string, paidAt time.Time, receiptURL string, entry payroll.PaymentHistory) (payroll.LaundryWeek, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.markPaid(ctx, "laundry_weeks", "laundry week", id, paidAt, receiptURL, entry)
	if err != nil {
		return payroll.LaundryWeek{}, err
	}
	return scanLaundry(s.db.QueryRowContext(ctx, "SELECT "+laundryColumns+" FROM laundry_weeks WHERE id = ?", id))
}

func scanLaundry(sc scanner) (payroll.LaundryWeek, error) {
	var (
		lw              payroll.LaundryWeek
		workerID, fee   string
		paidAt, receipt sql.NullString
	)
	err := sc.Scan(&lw.ID, &workerID, &lw.WeekNumber, &lw.Month, &lw.Year,
		&lw.Ironed, &lw.Washed, &fee, &paidAt, &receipt)
	if err != nil {
		return lw, err
	}
	lw.WorkerID = generic.WorkerID(workerID)
	lw.TransportFee = generic.Money{Value: generic.MustParseDecimal(fee)}
	lw.PaidAt = parseNullTime(paidAt)
	lw.ReceiptURL = receipt.String
	return lw, nil
}

// =============================================================================
// NOTE STORE
// =============================================================================

const noteColumns = "id, diarista_id, date, note_type, content, is_warning, created_at"

// AddNote appends a note. Notes are never updated.
func (s *Store) AddNote(ctx context.Context, n payroll.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notes ("+noteColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		n.ID, string(n.WorkerID), n.Date.String(), string(n.NoteType), n.Content, n.IsWarning,
		n.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ListNotes returns notes within the period ordered by date.
func (s *Store) ListNotes(ctx context.Context, period generic.Period, workerID generic.WorkerID) ([]payroll.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := where{}
	w.add("date >= ?", period.Start.String())
	w.add("date <= ?", period.End.String())
	w.scope(workerID)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes"+w.sql()+" ORDER BY date, created_at", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []payroll.Note{}
	for rows.Next() {
		var (
			n                              payroll.Note
			workerID, date, typ, createdAt string
		)
		if err := rows.Scan(&n.ID, &workerID, &date, &typ, &n.Content, &n.IsWarning, &createdAt); err != nil {
			return nil, err
		}
		n.WorkerID = generic.WorkerID(workerID)
		n.Date, _ = generic.ParseDate(date)
		n.NoteType = payroll.NoteType(typ)
		n.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, n)
	}
	return out, rows.Err()
}

// =============================================================================
// CONFIG STORE
// =============================================================================

// ConfigValues returns every numeric key. The admin PIN is excluded; it is text.
func (s *Store) ConfigValues(ctx context.Context) (map[string]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM config WHERE key <> ?", payroll.KeyAdminPIN)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			// Unparseable values fall through to the defaults.
			continue
		}
		out[key] = d
	}
	return out, rows.Err()
}

// SetConfigValue upserts one numeric key.
func (s *Store) SetConfigValue(ctx context.Context, key string, value decimal.Decimal) error {
	return s.setConfig(ctx, key, value.String())
}

// AdminPIN returns the stored PIN or "" when none is configured.
func (s *Store) AdminPIN(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pin string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", payroll.KeyAdminPIN).Scan(&pin)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return pin, err
}

// SetAdminPIN stores the PIN verbatim so leading zeros survive.
func (s *Store) SetAdminPIN(ctx context.Context, pin string) error {
	return s.setConfig(ctx, payroll.KeyAdminPIN, pin)
}

func (s *Store) setConfig(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// =============================================================================
// AWARD STORE
// =============================================================================

const awardColumns = "id, diarista_id, period_start, period_end, status, value, warnings_count, " +
	"punctuality_score, quality_score, communication_score, updated_at"

// SaveAwardPeriod inserts or updates a period.
func (s *Store) SaveAwardPeriod(ctx context.Context, a payroll.AwardPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO award_periods (` + awardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			period_start = excluded.period_start,
			period_end = excluded.period_end,
			status = excluded.status,
			value = excluded.value,
			warnings_count = excluded.warnings_count,
			punctuality_score = excluded.punctuality_score,
			quality_score = excluded.quality_score,
			communication_score = excluded.communication_score,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, string(a.WorkerID), a.PeriodStart.String(), a.PeriodEnd.String(), string(a.Status),
		a.Value.Value.String(), a.WarningsCount, a.PunctualityScore, a.QualityScore, a.CommunicationScore,
		a.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetAwardPeriod retrieves a period by ID.
func (s *Store) GetAwardPeriod(ctx context.Context, id string) (*payroll.AwardPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, err := scanAward(s.db.QueryRowContext(ctx, "SELECT "+awardColumns+" FROM award_periods WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("award period %s: %w", id, generic.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAwardPeriods returns periods ordered by start date.
func (s *Store) ListAwardPeriods(ctx context.Context, workerID generic.WorkerID) ([]payroll.AwardPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := where{}
	w.scope(workerID)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+awardColumns+" FROM award_periods"+w.sql()+" ORDER BY period_start, id", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []payroll.AwardPeriod{}
	for rows.Next() {
		a, err := scanAward(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAward(sc scanner) (payroll.AwardPeriod, error) {
	var (
		a                                   payroll.AwardPeriod
		workerID, start, end, status, value string
		updatedAt                           string
	)
	err := sc.Scan(&a.ID, &workerID, &start, &end, &status, &value, &a.WarningsCount,
		&a.PunctualityScore, &a.QualityScore, &a.CommunicationScore, &updatedAt)
	if err != nil {
		return a, err
	}
	a.WorkerID = generic.WorkerID(workerID)
	a.PeriodStart, _ = generic.ParseDate(start)
	a.PeriodEnd, _ = generic.ParseDate(end)
	a.Status = payroll.AwardStatus(status)
	a.Value = generic.Money{Value: generic.MustParseDecimal(value)}
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return a, nil
}

// =============================================================================
// PAYMENT STORE
// =============================================================================

const paymentColumns = "id, diarista_id, month, year, monthly_value, payment_due_date, paid_at, receipt_url, due_notified"

// CreateMonthlyPayment inserts the month's row; a second row for the month is a conflict.
func (s *Store) CreateMonthlyPayment(ctx context.Context, p payroll.MonthlyPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO monthly_payments ("+paymentColumns+") VALUES (?, ?, ?, ?, ?, ?, NULL, NULL, 0)",
		p.ID, string(p.WorkerID), p.Month, p.Year, p.MonthlyValue.Value.String(), p.PaymentDueDate.String(),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("payment %02d/%d for %s: %w", p.Month, p.Year, p.WorkerID, generic.ErrConflict)
	}
	return err
}

// GetMonthlyPayment retrieves a payment by ID.
func (s *Store) GetMonthlyPayment(ctx context.Context, id string) (*payroll.MonthlyPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanPayment(s.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM monthly_payments WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment %s: %w", id, generic.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListMonthlyPayments filters by month and year when non-zero.
func (s *Store) ListMonthlyPayments(ctx context.Context, month, year int, workerID generic.WorkerID) ([]payroll.MonthlyPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := where{}
	if month != 0 {
		w.add("month = ?", month)
	}
	if year != 0 {
		w.add("year = ?", year)
	}
	w.scope(workerID)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM monthly_payments"+w.sql()+" ORDER BY year, month, diarista_id", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []payroll.MonthlyPayment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkMonthlyPaymentPaid sets paid_at and appends the history entry atomically.
func (s *Store) MarkMonthlyPaymentPaid(ctx context.Context, id string, paidAt time.Time, receiptURL string, entry payroll.PaymentHistory) (payroll.MonthlyPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.markPaid(ctx, "monthly_payments", "payment", id, paidAt, receiptURL, entry); err != nil {
		return payroll.MonthlyPayment{}, err
	}
	return scanPayment(s.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM monthly_payments WHERE id = ?", id))
}

// MarkPaymentDueNotified records that the due-date reminder went out.
func (s *Store) MarkPaymentDueNotified(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE monthly_payments SET due_notified = 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, "payment", id)
}

// ListPaymentHistory returns entries newest first.
func (s *Store) ListPaymentHistory(ctx context.Context, workerID generic.WorkerID) ([]payroll.PaymentHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := where{}
	w.scope(workerID)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, diarista_id, kind, reference_id, amount, paid_at, receipt_url FROM payment_history"+
			w.sql()+" ORDER BY paid_at DESC, rowid DESC", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []payroll.PaymentHistory{}
	for rows.Next() {
		var (
			h                              payroll.PaymentHistory
			workerID, kind, amount, paidAt string
			receipt                        sql.NullString
		)
		if err := rows.Scan(&h.ID, &workerID, &kind, &h.ReferenceID, &amount, &paidAt, &receipt); err != nil {
			return nil, err
		}
		h.WorkerID = generic.WorkerID(workerID)
		h.Kind = payroll.PaymentKind(kind)
		h.Amount = generic.Money{Value: generic.MustParseDecimal(amount)}
		h.PaidAt, _ = time.Parse(time.RFC3339, paidAt)
		h.ReceiptURL = receipt.String
		out = append(out, h)
	}
	return out, rows.Err()
}

// markPaid flips paid_at on table's row and appends entry in one transaction.
// Caller holds s.mu.
func (s *Store) markPaid(ctx context.Context, table, label, id string, paidAt time.Time, receiptURL string, entry payroll.PaymentHistory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ts := paidAt.UTC().Format(time.RFC3339)
	res, err := tx.ExecContext(ctx,
		"UPDATE "+table+" SET paid_at = ?, receipt_url = ? WHERE id = ? AND paid_at IS NULL",
		ts, nullString(receiptURL), id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%s %s: %w", label, id, generic.ErrNotFound)
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("%s %s already paid: %w", label, id, generic.ErrConflict)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payment_history (id, diarista_id, kind, reference_id, amount, paid_at, receipt_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, string(entry.WorkerID), string(entry.Kind), entry.ReferenceID,
		entry.Amount.Value.String(), ts, nullString(entry.ReceiptURL),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func scanPayment(sc scanner) (payroll.MonthlyPayment, error) {
	var (
		p                    payroll.MonthlyPayment
		workerID, value, due string
		paidAt, receipt      sql.NullString
	)
	err := sc.Scan(&p.ID, &workerID, &p.Month, &p.Year, &value, &due, &paidAt, &receipt, &p.DueNotified)
	if err != nil {
		return p, err
	}
	p.WorkerID = generic.WorkerID(workerID)
	p.MonthlyValue = generic.Money{Value: generic.MustParseDecimal(value)}
	p.PaymentDueDate, _ = generic.ParseDate(due)
	p.PaidAt = parseNullTime(paidAt)
	p.ReceiptURL = receipt.String
	return p, nil
}

// =============================================================================
// CLIENT & CONTRACT STORE
// =============================================================================

// SaveClient inserts or updates a client.
func (s *Store) SaveClient(ctx context.Context, c payroll.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, address, notes, active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			notes = excluded.notes,
			active = excluded.active
	`, string(c.ID), c.Name, nullString(c.Address), nullString(c.Notes), c.Active)
	return err
}

// DeactivateClient hides a client from schedules without deleting it.
func (s *Store) DeactivateClient(ctx context.Context, id generic.ClientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE clients SET active = 0 WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	return requireAffected(res, "client", string(id))
}

// ListClients returns clients ordered by name.
func (s *Store) ListClients(ctx context.Context, activeOnly bool) ([]payroll.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, name, address, notes, active FROM clients"
	if activeOnly {
		query += " WHERE active = 1"
	}
	rows, err := s.db.QueryContext(ctx, query+" ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []payroll.Client{}
	for rows.Next() {
		var (
			c              payroll.Client
			id             string
			address, notes sql.NullString
		)
		if err := rows.Scan(&id, &c.Name, &address, &notes, &c.Active); err != nil {
			return nil, err
		}
		c.ID = generic.ClientID(id)
		c.Address = address.String
		c.Notes = notes.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddContractAgreement records acceptance; the same version twice is a conflict.
func (s *Store) AddContractAgreement(ctx context.Context, a payroll.ContractAgreement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO contract_agreements (id, diarista_id, contract_version, accepted_at) VALUES (?, ?, ?, ?)",
		a.ID, string(a.WorkerID), a.ContractVersion, a.AcceptedAt.UTC().Format(time.RFC3339),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("contract %s already accepted by %s: %w", a.ContractVersion, a.WorkerID, generic.ErrConflict)
	}
	return err
}

// ListContractAgreements returns acceptances in the order they happened.
func (s *Store) ListContractAgreements(ctx context.Context, workerID generic.WorkerID) ([]payroll.ContractAgreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := where{}
	w.scope(workerID)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, diarista_id, contract_version, accepted_at FROM contract_agreements"+w.sql()+" ORDER BY accepted_at", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []payroll.ContractAgreement{}
	for rows.Next() {
		var (
			a                    payroll.ContractAgreement
			workerID, acceptedAt string
		)
		if err := rows.Scan(&a.ID, &workerID, &a.ContractVersion, &acceptedAt); err != nil {
			return nil, err
		}
		a.WorkerID = generic.WorkerID(workerID)
		a.AcceptedAt, _ = time.Parse(time.RFC3339, acceptedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// NOTIFICATION STORE
// =============================================================================

// AddNotification stores a notification. An empty WorkerID addresses the administrator.
func (s *Store) AddNotification(ctx context.Context, n payroll.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notifications (id, diarista_id, kind, message, read_at, created_at) VALUES (?, ?, ?, ?, NULL, ?)",
		n.ID, nullString(string(n.WorkerID)), string(n.Kind), n.Message, n.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ListNotifications returns newest first.
func (s *Store) ListNotifications(ctx context.Context, workerID generic.WorkerID, adminOnly bool) ([]payroll.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := where{}
	if adminOnly {
		w.add("diarista_id IS NULL")
	} else {
		w.scope(workerID)
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, diarista_id, kind, message, read_at, created_at FROM notifications"+
			w.sql()+" ORDER BY created_at DESC, rowid DESC", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []payroll.Notification{}
	for rows.Next() {
		var (
			n                payroll.Notification
			workerID, readAt sql.NullString
			kind, createdAt  string
		)
		if err := rows.Scan(&n.ID, &workerID, &kind, &n.Message, &readAt, &createdAt); err != nil {
			return nil, err
		}
		n.WorkerID = generic.WorkerID(workerID.String)
		n.Kind = payroll.NotificationKind(kind)
		n.ReadAt = parseNullTime(readAt)
		n.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead sets read_at.
func (s *Store) MarkNotificationRead(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE notifications SET read_at = ? WHERE id = ?", at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	return requireAffected(res, "notification", id)
}

// =============================================================================
// HELPERS
// =============================================================================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// where accumulates AND-ed conditions.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// scope restricts to one worker; "" means all workers.
func (w *where) scope(workerID generic.WorkerID) {
	if workerID != "" {
		w.add("diarista_id = ?", string(workerID))
	}
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func requireAffected(res sql.Result, label, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", label, id, generic.ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
