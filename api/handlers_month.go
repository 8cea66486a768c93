/*
handlers_month.go - Month rows, awards, payments and reports

ENDPOINTS:
  Attendance:
    GET    /api/attendance?from&to&diarista_id
    PUT    /api/attendance                      Mark a day (admin)
    DELETE /api/attendance/{id}                 Unmark (admin)

  Laundry:
    GET    /api/laundry?month&year&diarista_id
    PUT    /api/laundry                         Toggle a week (admin)
    POST   /api/laundry/{id}/paid               Mark paid (admin)

  Notes:
    GET    /api/notes?from&to&diarista_id
    POST   /api/notes                           Add (admin)

  Awards:
    GET    /api/awards?diarista_id
    POST   /api/awards                          Open a period (admin)
    GET    /api/awards/current?diarista_id
    POST   /api/awards/{id}/status              Transition (admin)

  Payments:
    GET    /api/payments?month&year&diarista_id
    POST   /api/payments                        Ensure the month's row (admin)
    POST   /api/payments/{id}/paid              Mark paid (admin)
    GET    /api/payments/history?diarista_id
    GET    /api/payments/due-date?month&year

  Summary & report:
    GET    /api/summary?month&year&diarista_id      JSON, all workers when no id
    GET    /api/report?month&year&diarista_id       HTML
    GET    /api/report.xlsx?month&year&diarista_id  Workbook

SCOPING:
  Every read goes through scope(): a worker session only ever sees its own
  rows, whatever diarista_id says.
*/
package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/household-payroll/generic"
	"github.com/warp/household-payroll/metrics"
	"github.com/warp/household-payroll/payroll"
	"github.com/warp/household-payroll/report"
)

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r.Context(), queryWorker(r))
	if err != nil {
		h.fail(w, r, err, "Cannot read this worker")
		return
	}
	period, err := h.dateRange(r)
	if err != nil {
		h.fail(w, r, err, "Invalid date range")
		return
	}
	rows, err := h.Store.ListAttendance(r.Context(), period, id)
	if err != nil {
		h.fail(w, r, err, "Failed to list attendance")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

// MarkAttendance upserts the row for (diarista_id, date). present defaults to true.
func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req AttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	present := true
	if req.Present != nil {
		present = *req.Present
	}
	rec, err := h.Service.MarkAttendance(r.Context(), payroll.AttendanceRecord{
		WorkerID: req.DiaristaID,
		Date:     req.Date,
		DayType:  req.DayType,
		Present:  present,
	})
	if err != nil {
		h.fail(w, r, err, "Failed to mark attendance")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAttendance(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err, "Failed to delete attendance")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// LAUNDRY HANDLERS
// =============================================================================

func (h *Handler) ListLaundry(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r.Context(), queryWorker(r))
	if err != nil {
		h.fail(w, r, err, "Cannot read this worker")
		return
	}
	month, year, err := h.monthYear(r)
	if err != nil {
		h.fail(w, r, err, "Invalid month/year")
		return
	}
	weeks, err := h.Store.ListLaundryWeeks(r.Context(), month, year, id)
	if err != nil {
		h.fail(w, r, err, "Failed to list laundry")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(weeks))
}

// ToggleLaundry applies a partial update to one week, creating it on first use.
func (h *Handler) ToggleLaundry(w http.ResponseWriter, r *http.Request) {
	var req LaundryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	week, err := h.Service.ToggleLaundry(r.Context(), payroll.LaundryToggle{
		WorkerID:     req.DiaristaID,
		WeekNumber:   req.WeekNumber,
		Month:        req.Month,
		Year:         req.Year,
		Ironed:       req.Ironed,
		Washed:       req.Washed,
		TransportFee: req.TransportFee,
	})
	if err != nil {
		h.fail(w, r, err, "Failed to update laundry week")
		return
	}
	writeJSON(w, http.StatusOK, week)
}

func (h *Handler) PayLaundry(w http.ResponseWriter, r *http.Request) {
	var req PaidRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	week, err := h.Service.MarkLaundryPaid(r.Context(), chi.URLParam(r, "id"), req.ReceiptURL)
	if err != nil {
		h.fail(w, r, err, "Failed to mark laundry paid")
		return
	}
	writeJSON(w, http.StatusOK, week)
}

// =============================================================================
// NOTE HANDLERS
// =============================================================================

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r.Context(), queryWorker(r))
	if err != nil {
		h.fail(w, r, err, "Cannot read this worker")
		return
	}
	period, err := h.dateRange(r)
	if err != nil {
		h.fail(w, r, err, "Invalid date range")
		return
	}
	notes, err := h.Store.ListNotes(r.Context(), period, id)
	if err != nil {
		h.fail(w, r, err, "Failed to list notes")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(notes))
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	note, err := h.Service.AddNote(r.Context(), payroll.Note{
		WorkerID:  req.DiaristaID,
		Date:      req.Date,
		NoteType:  req.NoteType,
		Content:   req.Content,
		IsWarning: req.IsWarning,
	})
	if err != nil {
		h.fail(w, r, err, "Failed to add note")
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// =============================================================================
// AWARD HANDLERS
// =============================================================================

// ListAwards returns every period with its live evaluation.
func (h *Handler) ListAwards(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r.Context(), queryWorker(r))
	if err != nil {
		h.fail(w, r, err, "Cannot read this worker")
		return
	}
	periods, err := h.Store.ListAwardPeriods(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to list awards")
		return
	}
	views := make([]payroll.AwardView, 0, len(periods))
	for _, p := range periods {
		view, err := h.Service.Evaluate(r.Context(), p)
		if err != nil {
			h.fail(w, r, err, "Failed to evaluate award")
			return
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) CreateAward(w http.ResponseWriter, r *http.Request) {
	var req AwardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() {
		h.fail(w, r, &generic.ValidationError{Field: "period", Message: "period_start and period_end are required"}, "Invalid award period")
		return
	}
	p, err := h.Service.CreateAwardPeriod(r.Context(), payroll.AwardPeriod{
		WorkerID:           req.DiaristaID,
		PeriodStart:        req.PeriodStart,
		PeriodEnd:          req.PeriodEnd,
		PunctualityScore:   req.PunctualityScore,
		QualityScore:       req.QualityScore,
		CommunicationScore: req.CommunicationScore,
	})
	if err != nil {
		h.fail(w, r, err, "Failed to create award period")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// CurrentAward returns the period containing today, or null.
func (h *Handler) CurrentAward(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r.Context(), queryWorker(r))
	if err != nil {
		h.fail(w, r, err, "Cannot read this worker")
		return
	}
	if id == "" {
		h.fail(w, r, &generic.ValidationError{Field: "diarista_id", Message: "required"}, "Invalid request")
		return
	}
	view, err := h.Service.CurrentAward(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to get current award")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateAwardStatus moves a period to a new status. "awarded" is refused while
// the period holds three or more warnings.
func (h *Handler) UpdateAwardStatus(w http.ResponseWriter, r *http.Request) {
	var req AwardStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	if req.Status != "" && !req.Status.Valid() {
		h.fail(w, r, &generic.ValidationError{Field: "status", Message: "unknown status " + string(req.Status)}, "Invalid status")
		return
	}
	view, err := h.Service.UpdateAward(r.Context(), chi.URLParam(r, "id"), payroll.AwardUpdate{
		Status:             req.Status,
		PunctualityScore:   req.PunctualityScore,
		QualityScore:       req.QualityScore,
		CommunicationScore: req.CommunicationScore,
	})
	if err != nil {
		h.fail(w, r, err, "Failed to update award")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments lists monthly payment rows. Missing month or year means any.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r.Context(), queryWorker(r))
	if err != nil {
		h.fail(w, r, err, "Cannot read this worker")
		return
	}
	month, year, err := optionalMonthYear(r)
	if err != nil {
		h.fail(w, r, err, "Invalid month/year")
		return
	}
	payments, err := h.Store.ListMonthlyPayments(r.Context(), month, year, id)
	if err != nil {
		h.fail(w, r, err, "Failed to list payments")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(payments))
}

// EnsurePayment creates the month's row when missing: 201 when created, 200 when it existed.
func (h *Handler) EnsurePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	p, created, err := h.Service.EnsureMonthlyPayment(r.Context(), req.DiaristaID, req.Month, req.Year)
	if err != nil {
		h.fail(w, r, err, "Failed to create payment")
		return
	}
	status := http.StatusOK
	if created {
		metrics.PaymentsCreated.Inc()
		status = http.StatusCreated
	}
	writeJSON(w, status, PaymentDTO{MonthlyPayment: p, Created: created})
}

func (h *Handler) PayPayment(w http.ResponseWriter, r *http.Request) {
	var req PaidRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	p, err := h.Service.MarkPaymentPaid(r.Context(), chi.URLParam(r, "id"), req.ReceiptURL)
	if err != nil {
		h.fail(w, r, err, "Failed to mark payment paid")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r.Context(), queryWorker(r))
	if err != nil {
		h.fail(w, r, err, "Cannot read this worker")
		return
	}
	history, err := h.Store.ListPaymentHistory(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to list payment history")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(history))
}

// DueDate returns the 5th business day of ?month&year.
func (h *Handler) DueDate(w http.ResponseWriter, r *http.Request) {
	month, year, err := h.monthYear(r)
	if err != nil {
		h.fail(w, r, err, "Invalid month/year")
		return
	}
	writeJSON(w, http.StatusOK, DueDateDTO{
		Month:          month,
		Year:           year,
		PaymentDueDate: payroll.PaymentDueDate(month, year),
	})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// Summary returns the month summary, aggregated across workers for an admin without diarista_id.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.reportSummary(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Report renders the month as an HTML page.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.reportSummary(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, summary); err != nil {
		h.fail(w, r, err, "Failed to render report")
		return
	}
	metrics.ReportsRendered.WithLabelValues("html").Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ReportXLSX renders the month as a workbook download.
func (h *Handler) ReportXLSX(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.reportSummary(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, summary); err != nil {
		h.fail(w, r, err, "Failed to render workbook")
		return
	}
	metrics.ReportsRendered.WithLabelValues("xlsx").Inc()
	filename := fmt.Sprintf("relatorio-%d-%02d.xlsx", summary.Year, summary.Month)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) reportSummary(w http.ResponseWriter, r *http.Request) (*payroll.Summary, bool) {
	id, err := scope(r.Context(), queryWorker(r))
	if err != nil {
		h.fail(w, r, err, "Cannot read this worker")
		return nil, false
	}
	month, year, err := h.monthYear(r)
	if err != nil {
		h.fail(w, r, err, "Invalid month/year")
		return nil, false
	}
	summary, err := h.Service.MonthlySummary(r.Context(), id, month, year)
	if err != nil {
		h.fail(w, r, err, "Failed to compute summary")
		return nil, false
	}
	return summary, true
}
