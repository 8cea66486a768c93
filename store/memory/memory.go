// Package memory provides an in-memory payroll.Store (for testing/dev).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/household-payroll/generic"
	"github.com/warp/household-payroll/payroll"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu            sync.RWMutex
	workers       map[generic.WorkerID]payroll.Worker
	attendance    map[string]payroll.AttendanceRecord
	laundry       map[string]payroll.LaundryWeek
	notes         []payroll.Note
	config        map[string]decimal.Decimal
	adminPIN      string
	awards        map[string]payroll.AwardPeriod
	payments      map[string]payroll.MonthlyPayment
	history       []payroll.PaymentHistory
	clients       map[generic.ClientID]payroll.Client
	agreements    []payroll.ContractAgreement
	notifications []payroll.Notification
}

var _ payroll.Store = (*Memory)(nil)

func New() *Memory {
	m := &Memory{}
	m.resetLocked()
	return m
}

func (m *Memory) resetLocked() {
	m.workers = make(map[generic.WorkerID]payroll.Worker)
	m.attendance = make(map[string]payroll.AttendanceRecord)
	m.laundry = make(map[string]payroll.LaundryWeek)
	m.notes = nil
	m.config = make(map[string]decimal.Decimal)
	m.adminPIN = ""
	m.awards = make(map[string]payroll.AwardPeriod)
	m.payments = make(map[string]payroll.MonthlyPayment)
	m.history = nil
	m.clients = make(map[generic.ClientID]payroll.Client)
	m.agreements = nil
	m.notifications = nil
}

// Reset clears every collection.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return nil
}

func inScope(id, scope generic.WorkerID) bool { return scope == "" || id == scope }

// =============================================================================
// WORKERS
// =============================================================================

func (m *Memory) GetWorker(_ context.Context, id generic.WorkerID) (*payroll.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workers[id]
	if !ok {
		return nil, fmt.Errorf("worker %s: %w", id, generic.ErrNotFound)
	}
	return &w, nil
}

func (m *Memory) ListWorkers(_ context.Context, activeOnly bool) ([]payroll.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []payroll.Worker{}
	for _, w := range m.workers {
		if activeOnly && !w.Active {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) SaveWorker(_ context.Context, w payroll.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.Active && w.PIN != "" {
		for _, other := range m.workers {
			if other.ID != w.ID && other.Active && other.PIN == w.PIN {
				return &generic.DuplicatePINError{ExistingWorkerID: other.ID}
			}
		}
	}
	m.workers[w.ID] = w
	return nil
}

func (m *Memory) DeactivateWorker(_ context.Context, id generic.WorkerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[id]
	if !ok {
		return fmt.Errorf("worker %s: %w", id, generic.ErrNotFound)
	}
	w.Active = false
	m.workers[id] = w
	return nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (m *Memory) ListAttendance(_ context.Context, period generic.Period, workerID generic.WorkerID) ([]payroll.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []payroll.AttendanceRecord{}
	for _, a := range m.attendance {
		if inScope(a.WorkerID, workerID) && period.Contains(a.Date) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].WorkerID < out[j].WorkerID
	})
	return out, nil
}

func (m *Memory) GetAttendance(_ context.Context, id string) (*payroll.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attendance[id]
	if !ok {
		return nil, fmt.Errorf("attendance %s: %w", id, generic.ErrNotFound)
	}
	return &a, nil
}

// UpsertAttendance keeps the existing row ID when (worker, date) already exists.
func (m *Memory) UpsertAttendance(_ context.Context, rec payroll.AttendanceRecord) (payroll.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.attendance {
		if a.WorkerID == rec.WorkerID && a.Date.Equal(rec.Date) {
			rec.ID = id
			rec.CreatedAt = a.CreatedAt
			break
		}
	}
	m.attendance[rec.ID] = rec
	return rec, nil
}

func (m *Memory) DeleteAttendance(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attendance[id]; !ok {
		return fmt.Errorf("attendance %s: %w", id, generic.ErrNotFound)
	}
	delete(m.attendance, id)
	return nil
}

// =============================================================================
// LAUNDRY
// =============================================================================

func (m *Memory) ListLaundryWeeks(_ context.Context, month, year int, workerID generic.WorkerID) ([]payroll.LaundryWeek, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []payroll.LaundryWeek{}
	for _, w := range m.laundry {
		if w.Month == month && w.Year == year && inScope(w.WorkerID, workerID) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WeekNumber != out[j].WeekNumber {
			return out[i].WeekNumber < out[j].WeekNumber
		}
		return out[i].WorkerID < out[j].WorkerID
	})
	return out, nil
}

func (m *Memory) GetLaundryWeek(_ context.Context, id string) (*payroll.LaundryWeek, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.laundry[id]
	if !ok {
		return nil, fmt.Errorf("laundry week %s: %w", id, generic.ErrNotFound)
	}
	return &w, nil
}

func (m *Memory) UpsertLaundryWeek(_ context.Context, w payroll.LaundryWeek) (payroll.LaundryWeek, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.laundry {
		if existing.WorkerID == w.WorkerID && existing.WeekNumber == w.WeekNumber &&
			existing.Month == w.Month && existing.Year == w.Year {
			w.ID = id
			w.PaidAt = existing.PaidAt
			w.ReceiptURL = existing.ReceiptURL
			break
		}
	}
	m.laundry[w.ID] = w
	return w, nil
}

func (m *Memory) MarkLaundryWeekPaid(_ context.Context, id string, paidAt time.Time, receiptURL string, entry payroll.PaymentHistory) (payroll.LaundryWeek, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.laundry[id]
	if !ok {
		return payroll.LaundryWeek{}, fmt.Errorf("laundry week %s: %w", id, generic.ErrNotFound)
	}
	if w.PaidAt != nil {
		return payroll.LaundryWeek{}, fmt.Errorf("laundry week %s already paid: %w", id, generic.ErrConflict)
	}
	w.PaidAt = &paidAt
	w.ReceiptURL = receiptURL
	m.laundry[id] = w
	m.history = append(m.history, entry)
	return w, nil
}

// =============================================================================
// NOTES
// =============================================================================

func (m *Memory) ListNotes(_ context.Context, period generic.Period, workerID generic.WorkerID) ([]payroll.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []payroll.Note{}
	for _, n := range m.notes {
		if inScope(n.WorkerID, workerID) && period.Contains(n.Date) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// AddNote is append-only.
func (m *Memory) AddNote(_ context.Context, n payroll.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, n)
	return nil
}

// =============================================================================
// CONFIGURATION
// =============================================================================

func (m *Memory) ConfigValues(_ context.Context) (map[string]decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]decimal.Decimal, len(m.config))
	for k, v := range m.config {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) SetConfigValue(_ context.Context, key string, value decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config[key] = value
	return nil
}

func (m *Memory) AdminPIN(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.adminPIN, nil
}

func (m *Memory) SetAdminPIN(_ context.Context, pin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adminPIN = pin
	return nil
}

// =============================================================================
// AWARDS
// =============================================================================

func (m *Memory) ListAwardPeriods(_ context.Context, workerID generic.WorkerID) ([]payroll.AwardPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []payroll.AwardPeriod{}
	for _, a := range m.awards {
		if inScope(a.WorkerID, workerID) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PeriodStart.Equal(out[j].PeriodStart) {
			return out[i].PeriodStart.Before(out[j].PeriodStart)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) GetAwardPeriod(_ context.Context, id string) (*payroll.AwardPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.awards[id]
	if !ok {
		return nil, fmt.Errorf("award period %s: %w", id, generic.ErrNotFound)
	}
	return &a, nil
}

func (m *Memory) SaveAwardPeriod(_ context.Context, a payroll.AwardPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.awards[a.ID] = a
	return nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (m *Memory) ListMonthlyPayments(_ context.Context, month, year int, workerID generic.WorkerID) ([]payroll.MonthlyPayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []payroll.MonthlyPayment{}
	for _, p := range m.payments {
		if (month == 0 || p.Month == month) && (year == 0 || p.Year == year) && inScope(p.WorkerID, workerID) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].WorkerID < out[j].WorkerID
	})
	return out, nil
}

func (m *Memory) GetMonthlyPayment(_ context.Context, id string) (*payroll.MonthlyPayment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", id, generic.ErrNotFound)
	}
	return &p, nil
}

func (m *Memory) CreateMonthlyPayment(_ context.Context, p payroll.MonthlyPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.payments {
		if existing.WorkerID == p.WorkerID && existing.Month == p.Month && existing.Year == p.Year {
			return fmt.Errorf("payment %02d/%d for %s: %w", p.Month, p.Year, p.WorkerID, generic.ErrConflict)
		}
	}
	m.payments[p.ID] = p
	return nil
}

func (m *Memory) MarkMonthlyPaymentPaid(_ context.Context, id string, paidAt time.Time, receiptURL string, entry payroll.PaymentHistory) (payroll.MonthlyPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return payroll.MonthlyPayment{}, fmt.Errorf("payment %s: %w", id, generic.ErrNotFound)
	}
	if p.PaidAt != nil {
		return payroll.MonthlyPayment{}, fmt.Errorf("payment %s already paid: %w", id, generic.ErrConflict)
	}
	p.PaidAt = &paidAt
	p.ReceiptURL = receiptURL
	m.payments[id] = p
	m.history = append(m.history, entry)
	return p, nil
}

func (m *Memory) MarkPaymentDueNotified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return fmt.Errorf("payment %s: %w", id, generic.ErrNotFound)
	}
	p.DueNotified = true
	m.payments[id] = p
	return nil
}

// ListPaymentHistory returns entries newest first.
func (m *Memory) ListPaymentHistory(_ context.Context, workerID generic.WorkerID) ([]payroll.PaymentHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []payroll.PaymentHistory{}
	for i := len(m.history) - 1; i >= 0; i-- {
		if inScope(m.history[i].WorkerID, workerID) {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}

// =============================================================================
// CLIENTS & CONTRACTS
// =============================================================================

func (m *Memory) ListClients(_ context.Context, activeOnly bool) ([]payroll.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []payroll.Client{}
	for _, c := range m.clients {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) SaveClient(_ context.Context, c payroll.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = c
	return nil
}

func (m *Memory) DeactivateClient(_ context.Context, id generic.ClientID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return fmt.Errorf("client %s: %w", id, generic.ErrNotFound)
	}
	c.Active = false
	m.clients[id] = c
	return nil
}

func (m *Memory) ListContractAgreements(_ context.Context, workerID generic.WorkerID) ([]payroll.ContractAgreement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []payroll.ContractAgreement{}
	for _, a := range m.agreements {
		if inScope(a.WorkerID, workerID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) AddContractAgreement(_ context.Context, a payroll.ContractAgreement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.agreements {
		if existing.WorkerID == a.WorkerID && existing.ContractVersion == a.ContractVersion {
			return fmt.Errorf("contract %s already accepted by %s: %w", a.ContractVersion, a.WorkerID, generic.ErrConflict)
		}
	}
	m.agreements = append(m.agreements, a)
	return nil
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// ListNotifications returns newest first. adminOnly selects rows with no worker.
func (m *Memory) ListNotifications(_ context.Context, workerID generic.WorkerID, adminOnly bool) ([]payroll.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []payroll.Notification{}
	for i := len(m.notifications) - 1; i >= 0; i-- {
		n := m.notifications[i]
		switch {
		case adminOnly && n.WorkerID != "":
			continue
		case !adminOnly && !inScope(n.WorkerID, workerID):
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *Memory) AddNotification(_ context.Context, n payroll.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications[i].ReadAt = &at
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, generic.ErrNotFound)
}
