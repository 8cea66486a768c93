/*
Package payroll implements the household's attendance, laundry, warning and payment rules.

PURPOSE:
  Turns raw rows (attendance, laundry weeks, notes) and configured unit prices
  into the amounts and statuses shown to the administrator and to each worker.

KEY CONCEPTS:
  - Worker (diarista): weekly schedule, PIN, optional per-worker prices
  - Attendance: one row per worker and day, heavy or light cleaning
  - Laundry week: ironing/washing toggles plus a transport fee
  - Note: free-text record, optionally flagged as a warning
  - Award period: bonus window disqualified by warnings
  - Monthly payment: fixed salary row with a due date on the 5th business day

PURE CORE:
  schedule.go, earnings.go, award.go and duedate.go contain pure functions
  with no I/O and no logging. service.go wires them to a Gateway.

SEE ALSO:
  - gateway.go: Persistence contract the service reads through
  - store/sqlite: Gateway implementation
  - report/: Printable output built from Summary
*/
package payroll

import (
	"time"

	"github.com/warp/household-payroll/generic"
)

// =============================================================================
// SERVICE TYPES
// =============================================================================

// DayType is the kind of cleaning done on a scheduled day.
type DayType string

const (
	HeavyCleaning DayType = "heavy_cleaning"
	LightCleaning DayType = "light_cleaning"
)

func (d DayType) Valid() bool { return d == HeavyCleaning || d == LightCleaning }

// =============================================================================
// WORKER
// =============================================================================

// ScheduleEntry binds a weekday to a service type, optionally for a client.
type ScheduleEntry struct {
	DayOfWeek   string           `json:"day_of_week"`
	ServiceType DayType          `json:"service_type"`
	ClientID    generic.ClientID `json:"client_id,omitempty"`
}

// PriceOverrides are per-worker unit prices. Zero means "use the household price".
type PriceOverrides struct {
	HeavyCleaning generic.Money `json:"heavy_cleaning"`
	LightCleaning generic.Money `json:"light_cleaning"`
	Washing       generic.Money `json:"washing"`
	Ironing       generic.Money `json:"ironing"`
}

type Worker struct {
	ID        generic.WorkerID `json:"id"`
	Name      string           `json:"name"`
	PIN       string           `json:"-"`
	Phone     string           `json:"phone,omitempty"`
	Active    bool             `json:"active"`
	Prices    PriceOverrides   `json:"prices"`
	Schedule  []ScheduleEntry  `json:"work_schedule"`
	CreatedAt time.Time        `json:"created_at"`
}

// =============================================================================
// ROWS
// =============================================================================

// AttendanceRecord marks a worked day. A missing row means "not marked", not "absent".
type AttendanceRecord struct {
	ID        string           `json:"id"`
	WorkerID  generic.WorkerID `json:"diarista_id"`
	Date      generic.Date     `json:"date"`
	DayType   DayType          `json:"day_type"`
	Present   bool             `json:"present"`
	CreatedAt time.Time        `json:"created_at"`
}

// LaundryWeek exists only once a service was toggled on for that week.
type LaundryWeek struct {
	ID           string           `json:"id"`
	WorkerID     generic.WorkerID `json:"diarista_id"`
	WeekNumber   int              `json:"week_number"`
	Month        int              `json:"month"`
	Year         int              `json:"year"`
	Ironed       bool             `json:"ironed"`
	Washed       bool             `json:"washed"`
	TransportFee generic.Money    `json:"transport_fee"`
	PaidAt       *time.Time       `json:"paid_at,omitempty"`
	ReceiptURL   string           `json:"receipt_url,omitempty"`
}

// HasService reports whether any laundry service was done that week.
func (w LaundryWeek) HasService() bool { return w.Ironed || w.Washed }

type NoteType string

const (
	NoteGeneral    NoteType = "general"
	NoteWarning    NoteType = "warning"
	NoteExtraWork  NoteType = "extra_work"
	NoteMissedTask NoteType = "missed_task"
)

func (n NoteType) Valid() bool {
	switch n {
	case NoteGeneral, NoteWarning, NoteExtraWork, NoteMissedTask:
		return true
	}
	return false
}

// Note is append-only. IsWarning is independent of NoteType: a "warning" type
// does not count toward disqualification unless IsWarning is set.
type Note struct {
	ID        string           `json:"id"`
	WorkerID  generic.WorkerID `json:"diarista_id"`
	Date      generic.Date     `json:"date"`
	NoteType  NoteType         `json:"note_type"`
	Content   string           `json:"content"`
	IsWarning bool             `json:"is_warning"`
	CreatedAt time.Time        `json:"created_at"`
}

// =============================================================================
// AWARDS
// =============================================================================

type AwardStatus string

const (
	AwardPending      AwardStatus = "pending"
	AwardAwarded      AwardStatus = "awarded"
	AwardDisqualified AwardStatus = "disqualified"
)

func (s AwardStatus) Valid() bool {
	return s == AwardPending || s == AwardAwarded || s == AwardDisqualified
}

// AwardValue is the fixed bonus paid for a clean period.
var AwardValue = generic.NewMoneyFromInt(300)

type AwardPeriod struct {
	ID                 string           `json:"id"`
	WorkerID           generic.WorkerID `json:"diarista_id"`
	PeriodStart        generic.Date     `json:"period_start"`
	PeriodEnd          generic.Date     `json:"period_end"`
	Status             AwardStatus      `json:"status"`
	Value              generic.Money    `json:"value"`
	WarningsCount      int              `json:"warnings_count"`
	PunctualityScore   int              `json:"punctuality_score"`
	QualityScore       int              `json:"quality_score"`
	CommunicationScore int              `json:"communication_score"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func (a AwardPeriod) Period() generic.Period {
	return generic.Period{Start: a.PeriodStart, End: a.PeriodEnd}
}

// =============================================================================
// PAYMENTS
// =============================================================================

// MonthlyPayment is one row per worker and month; the due date is fixed at creation.
type MonthlyPayment struct {
	ID             string           `json:"id"`
	WorkerID       generic.WorkerID `json:"diarista_id"`
	Month          int              `json:"month"`
	Year           int              `json:"year"`
	MonthlyValue   generic.Money    `json:"monthly_value"`
	PaymentDueDate generic.Date     `json:"payment_due_date"`
	PaidAt         *time.Time       `json:"paid_at,omitempty"`
	ReceiptURL     string           `json:"receipt_url,omitempty"`
	DueNotified    bool             `json:"-"`
}

type PaymentKind string

const (
	PaymentMonthly PaymentKind = "monthly"
	PaymentLaundry PaymentKind = "laundry"
)

// PaymentHistory is appended whenever something is marked paid.
type PaymentHistory struct {
	ID          string           `json:"id"`
	WorkerID    generic.WorkerID `json:"diarista_id"`
	Kind        PaymentKind      `json:"kind"`
	ReferenceID string           `json:"reference_id"`
	Amount      generic.Money    `json:"amount"`
	PaidAt      time.Time        `json:"paid_at"`
	ReceiptURL  string           `json:"receipt_url,omitempty"`
}

// =============================================================================
// HOUSEHOLD
// =============================================================================

type Client struct {
	ID      generic.ClientID `json:"id"`
	Name    string           `json:"name"`
	Address string           `json:"address,omitempty"`
	Notes   string           `json:"notes,omitempty"`
	Active  bool             `json:"active"`
}

type ContractAgreement struct {
	ID              string           `json:"id"`
	WorkerID        generic.WorkerID `json:"diarista_id"`
	ContractVersion string           `json:"contract_version"`
	AcceptedAt      time.Time        `json:"accepted_at"`
}

type NotificationKind string

const (
	NotifyNearThreshold  NotificationKind = "warning_near_threshold"
	NotifyDisqualified   NotificationKind = "disqualified"
	NotifyPaymentDue     NotificationKind = "payment_due"
	NotifyPaymentCreated NotificationKind = "payment_created"
)

// Notification with an empty WorkerID is addressed to the administrator.
type Notification struct {
	ID        string           `json:"id"`
	WorkerID  generic.WorkerID `json:"diarista_id,omitempty"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
