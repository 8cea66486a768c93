/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Domain rows from the
  payroll package already carry their JSON tags and are returned as-is; the
  types here cover request bodies and the few responses that wrap them.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Session:     SessionRequest, SessionDTO, VerifyPINRequest, VerifyPINDTO
  Workers:     WorkerRequest, ScheduleDTO
  Month rows:  AttendanceRequest, LaundryRequest, PaidRequest, NoteRequest
  Awards:      AwardRequest, AwardStatusRequest
  Payments:    PaymentRequest, PaymentDTO, DueDateDTO
  Household:   ClientRequest, ContractRequest
  Scenarios:   ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers and in payroll.Service, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/types.go: Domain rows returned directly
*/
package api

import (
	"time"

	"github.com/warp/household-payroll/generic"
	"github.com/warp/household-payroll/payroll"
)

// =============================================================================
// SESSION
// =============================================================================

// SessionRequest logs in with a 4-digit PIN.
type SessionRequest struct {
	PIN string `json:"pin"`
}

// SessionDTO is returned on login and by GET /api/session.
type SessionDTO struct {
	Token      string           `json:"token,omitempty"`
	Role       Role             `json:"role"`
	DiaristaID generic.WorkerID `json:"diarista_id,omitempty"`
	Name       string           `json:"name,omitempty"`
	ExpiresAt  time.Time        `json:"expires_at"`
}

type VerifyPINRequest struct {
	PIN string `json:"pin"`
}

type VerifyPINDTO struct {
	Valid bool `json:"valid"`
}

// =============================================================================
// WORKERS
// =============================================================================

// WorkerRequest creates or updates a worker. On update, nil fields keep their value.
type WorkerRequest struct {
	ID       generic.WorkerID         `json:"id,omitempty"`
	Name     *string                  `json:"name"`
	PIN      *string                  `json:"pin"`
	Phone    *string                  `json:"phone"`
	Active   *bool                    `json:"active"`
	Prices   *payroll.PriceOverrides  `json:"prices"`
	Schedule *[]payroll.ScheduleEntry `json:"work_schedule"`
}

// ScheduleDTO lists the dates a worker is expected in one month.
type ScheduleDTO struct {
	DiaristaID generic.WorkerID       `json:"diarista_id"`
	Month      int                    `json:"month"`
	Year       int                    `json:"year"`
	Days       []payroll.ScheduledDay `json:"days"`
}

// =============================================================================
// MONTH ROWS
// =============================================================================

// AttendanceRequest marks one day. An empty day_type is taken from the schedule.
type AttendanceRequest struct {
	DiaristaID generic.WorkerID `json:"diarista_id"`
	Date       generic.Date     `json:"date"`
	DayType    payroll.DayType  `json:"day_type"`
	Present    *bool            `json:"present"`
}

// LaundryRequest toggles one laundry week; nil fields keep their value.
type LaundryRequest struct {
	DiaristaID   generic.WorkerID `json:"diarista_id"`
	WeekNumber   int              `json:"week_number"`
	Month        int              `json:"month"`
	Year         int              `json:"year"`
	Ironed       *bool            `json:"ironed"`
	Washed       *bool            `json:"washed"`
	TransportFee *generic.Money   `json:"transport_fee"`
}

// PaidRequest marks a laundry week or monthly payment paid.
type PaidRequest struct {
	ReceiptURL string `json:"receipt_url"`
}

type NoteRequest struct {
	DiaristaID generic.WorkerID `json:"diarista_id"`
	Date       generic.Date     `json:"date"`
	NoteType   payroll.NoteType `json:"note_type"`
	Content    string           `json:"content"`
	IsWarning  bool             `json:"is_warning"`
}

// =============================================================================
// AWARDS
// =============================================================================

type AwardRequest struct {
	DiaristaID         generic.WorkerID `json:"diarista_id"`
	PeriodStart        generic.Date     `json:"period_start"`
	PeriodEnd          generic.Date     `json:"period_end"`
	PunctualityScore   int              `json:"punctuality_score"`
	QualityScore       int              `json:"quality_score"`
	CommunicationScore int              `json:"communication_score"`
}

// AwardStatusRequest moves a period to a new status. An empty status only updates scores.
type AwardStatusRequest struct {
	Status             payroll.AwardStatus `json:"status"`
	PunctualityScore   *int                `json:"punctuality_score"`
	QualityScore       *int                `json:"quality_score"`
	CommunicationScore *int                `json:"communication_score"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

// PaymentRequest ensures the monthly payment row for a worker and month.
type PaymentRequest struct {
	DiaristaID generic.WorkerID `json:"diarista_id"`
	Month      int              `json:"month"`
	Year       int              `json:"year"`
}

// PaymentDTO reports whether EnsureMonthlyPayment created the row.
type PaymentDTO struct {
	payroll.MonthlyPayment
	Created bool `json:"created"`
}

type DueDateDTO struct {
	Month          int          `json:"month"`
	Year           int          `json:"year"`
	PaymentDueDate generic.Date `json:"payment_due_date"`
}

// =============================================================================
// HOUSEHOLD
// =============================================================================

type ClientRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
	Active  *bool  `json:"active"`
}

type ContractRequest struct {
	DiaristaID      generic.WorkerID `json:"diarista_id"`
	ContractVersion string           `json:"contract_version"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO describes a demo household that can be loaded.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthDTO is returned by /healthz.
type HealthDTO struct {
	Status string `json:"status"`
	DB     string `json:"db"`
}
