/*
gateway.go - Persistence contract for the payroll service

PURPOSE:
  Narrow, typed interface between the service and the row store. One method
  per query shape. The pure calculators never see it; the service fetches
  immutable snapshots and hands them over.

SCOPE CONVENTION:
  A workerID argument of "" means "all workers" (administrator view).

ATOMIC WRITES:
  Marking something paid updates the row and appends a PaymentHistory entry
  in one store transaction (MarkMonthlyPaymentPaid, MarkLaundryWeekPaid).

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - store/memory: In-memory for tests and demos
*/
package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/household-payroll/generic"
)

// Gateway is the read side the calculators' inputs come from.
type Gateway interface {
	GetWorker(ctx context.Context, id generic.WorkerID) (*Worker, error)
	ListWorkers(ctx context.Context, activeOnly bool) ([]Worker, error)

	// ListAttendance returns rows dated within the period, ordered by date.
	ListAttendance(ctx context.Context, period generic.Period, workerID generic.WorkerID) ([]AttendanceRecord, error)

	// ListLaundryWeeks returns the persisted weeks of a month, ordered by week number.
	ListLaundryWeeks(ctx context.Context, month, year int, workerID generic.WorkerID) ([]LaundryWeek, error)

	// ListNotes returns notes dated within the period, ordered by date.
	ListNotes(ctx context.Context, period generic.Period, workerID generic.WorkerID) ([]Note, error)

	// ConfigValues returns the numeric configuration (prices, salary).
	ConfigValues(ctx context.Context) (map[string]decimal.Decimal, error)
	AdminPIN(ctx context.Context) (string, error)

	ListAwardPeriods(ctx context.Context, workerID generic.WorkerID) ([]AwardPeriod, error)
	GetAwardPeriod(ctx context.Context, id string) (*AwardPeriod, error)

	// ListMonthlyPayments treats a zero month or year as "any".
	ListMonthlyPayments(ctx context.Context, month, year int, workerID generic.WorkerID) ([]MonthlyPayment, error)
	GetMonthlyPayment(ctx context.Context, id string) (*MonthlyPayment, error)
	ListPaymentHistory(ctx context.Context, workerID generic.WorkerID) ([]PaymentHistory, error)

	GetAttendance(ctx context.Context, id string) (*AttendanceRecord, error)
	GetLaundryWeek(ctx context.Context, id string) (*LaundryWeek, error)

	ListClients(ctx context.Context, activeOnly bool) ([]Client, error)
	ListContractAgreements(ctx context.Context, workerID generic.WorkerID) ([]ContractAgreement, error)

	// ListNotifications returns newest first. adminOnly selects the rows
	// addressed to the administrator and ignores workerID.
	ListNotifications(ctx context.Context, workerID generic.WorkerID, adminOnly bool) ([]Notification, error)
}

// Store adds the writes the surrounding collaborators perform.
type Store interface {
	Gateway

	// SaveWorker inserts or updates. Returns *generic.DuplicatePINError when
	// another active worker holds the PIN.
	SaveWorker(ctx context.Context, w Worker) error
	DeactivateWorker(ctx context.Context, id generic.WorkerID) error

	// UpsertAttendance keeps one row per (worker, date).
	UpsertAttendance(ctx context.Context, rec AttendanceRecord) (AttendanceRecord, error)
	DeleteAttendance(ctx context.Context, id string) error

	// UpsertLaundryWeek keeps one row per (worker, week, month, year).
	UpsertLaundryWeek(ctx context.Context, w LaundryWeek) (LaundryWeek, error)
	MarkLaundryWeekPaid(ctx context.Context, id string, paidAt time.Time, receiptURL string, entry PaymentHistory) (LaundryWeek, error)

	AddNote(ctx context.Context, n Note) error

	SetConfigValue(ctx context.Context, key string, value decimal.Decimal) error
	SetAdminPIN(ctx context.Context, pin string) error

	SaveAwardPeriod(ctx context.Context, a AwardPeriod) error

	// CreateMonthlyPayment fails with generic.ErrConflict when the month already has a row.
	CreateMonthlyPayment(ctx context.Context, p MonthlyPayment) error
	MarkMonthlyPaymentPaid(ctx context.Context, id string, paidAt time.Time, receiptURL string, entry PaymentHistory) (MonthlyPayment, error)
	MarkPaymentDueNotified(ctx context.Context, id string) error

	SaveClient(ctx context.Context, c Client) error
	DeactivateClient(ctx context.Context, id generic.ClientID) error

	// AddContractAgreement fails with generic.ErrConflict on a repeated version.
	AddContractAgreement(ctx context.Context, a ContractAgreement) error

	AddNotification(ctx context.Context, n Notification) error
	MarkNotificationRead(ctx context.Context, id string, at time.Time) error

	// Reset clears every table (demo scenarios).
	Reset(ctx context.Context) error
}
