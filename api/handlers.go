/*
handlers.go - HTTP API handlers for the household payroll service

PURPOSE:
  Exposes payroll.Service over a JSON REST API. Handles HTTP request/response,
  JSON serialization, session scoping, and delegates to the service.

ENDPOINTS:
  Session:
    POST   /api/session                 Log in with a PIN
    GET    /api/session                 Current session
    DELETE /api/session                 Log out
    POST   /api/auth/verify-pin         Compare a PIN against the admin PIN

  Workers (diaristas):
    GET    /api/diaristas               List (workers see themselves)
    POST   /api/diaristas               Create (admin)
    GET    /api/diaristas/{id}          Get
    PUT    /api/diaristas/{id}          Update (workers: own name/phone only)
    DELETE /api/diaristas/{id}          Deactivate (admin)
    GET    /api/diaristas/{id}/schedule Scheduled days of a month
    GET    /api/diaristas/{id}/summary  Month summary

  Month rows, awards, payments, report: see handlers_month.go
  Household (config, clients, contracts, notifications): below

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Service: payroll operations (validation, calculators, writes)
  - Store: direct reads for list endpoints
  - Sessions: PIN login sessions
  - Log: zap logger for server-side failures

REQUEST FLOW:
  1. Parse HTTP request
  2. Resolve the session scope (admin: any worker; worker: self)
  3. Call payroll.Service or the store
  4. Serialize response
  5. Map errors with statusFor

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid month/period
  - 401: No session, wrong PIN
  - 403: Worker session touching another worker, or admin-only route
  - 404: Row not found
  - 409: Conflict (duplicate PIN, already paid, refused award transition)
  - 500: Internal errors (logged and sent to Sentry)

SEE ALSO:
  - dto.go: Request/response data structures
  - session.go: Session manager and role middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/household-payroll/generic"
	"github.com/warp/household-payroll/metrics"
	"github.com/warp/household-payroll/observability"
	"github.com/warp/household-payroll/payroll"
)

// Pinger is implemented by stores that can report their connection health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service     *payroll.Service
	Store       payroll.Store
	Sessions    *SessionManager
	Log         *zap.Logger
	CORSOrigins []string
	StaticDir   string

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler around a service. log may be nil.
func NewHandler(svc *payroll.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Service:     svc,
		Store:       svc.Store,
		Sessions:    NewSessionManager(DefaultSessionTTL),
		Log:         log,
		CORSOrigins: []string{"*"},
	}
}

// =============================================================================
// HEALTH
// =============================================================================

// Health pings the store with a short timeout.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Store.(Pinger)
	if !ok {
		writeJSON(w, http.StatusOK, HealthDTO{Status: "ok", DB: "n/a"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	metrics.ObserveDBPing(time.Since(start))
	if err != nil {
		h.Log.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, HealthDTO{Status: "degraded", DB: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, HealthDTO{Status: "ok", DB: "ok"})
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// CreateSession logs in. The admin PIN wins over a worker holding the same PIN.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	if err := payroll.ValidatePIN(req.PIN); err != nil {
		h.fail(w, r, err, "Invalid PIN format")
		return
	}

	isAdmin, err := h.Service.VerifyAdminPIN(r.Context(), req.PIN)
	if err != nil {
		h.fail(w, r, err, "Failed to verify PIN")
		return
	}
	if isAdmin {
		s := h.Sessions.Create(RoleAdmin, "")
		writeJSON(w, http.StatusCreated, SessionDTO{Token: s.Token, Role: s.Role, ExpiresAt: s.ExpiresAt})
		return
	}

	worker, err := h.Service.FindWorkerByPIN(r.Context(), req.PIN)
	if generic.IsNotFound(err) {
		writeError(w, http.StatusUnauthorized, "Invalid PIN", nil)
		return
	}
	if err != nil {
		h.fail(w, r, err, "Failed to verify PIN")
		return
	}
	s := h.Sessions.Create(RoleWorker, worker.ID)
	writeJSON(w, http.StatusCreated, SessionDTO{
		Token:      s.Token,
		Role:       s.Role,
		DiaristaID: worker.ID,
		Name:       worker.Name,
		ExpiresAt:  s.ExpiresAt,
	})
}

// GetSession returns the caller's session without the token.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFrom(r.Context())
	dto := SessionDTO{Role: s.Role, DiaristaID: s.WorkerID, ExpiresAt: s.ExpiresAt}
	if s.Role == RoleWorker {
		worker, err := h.Store.GetWorker(r.Context(), s.WorkerID)
		if err != nil {
			h.fail(w, r, err, "Failed to get worker")
			return
		}
		dto.Name = worker.Name
	}
	writeJSON(w, http.StatusOK, dto)
}

// DeleteSession logs out.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFrom(r.Context())
	h.Sessions.Delete(s.Token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// VerifyPIN compares a PIN against the admin PIN without opening a session.
func (h *Handler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req VerifyPINRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	ok, err := h.Service.VerifyAdminPIN(r.Context(), req.PIN)
	if err != nil {
		h.fail(w, r, err, "Failed to verify PIN")
		return
	}
	writeJSON(w, http.StatusOK, VerifyPINDTO{Valid: ok})
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

// ListWorkers returns active workers (?all=true includes inactive ones).
// A worker session only sees itself.
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFrom(r.Context())
	if !s.IsAdmin() {
		worker, err := h.Store.GetWorker(r.Context(), s.WorkerID)
		if err != nil {
			h.fail(w, r, err, "Failed to get worker")
			return
		}
		writeJSON(w, http.StatusOK, []payroll.Worker{*worker})
		return
	}

	activeOnly := r.URL.Query().Get("all") != "true"
	workers, err := h.Store.ListWorkers(r.Context(), activeOnly)
	if err != nil {
		h.fail(w, r, err, "Failed to list workers")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(workers))
}

// GetWorker returns one worker.
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r.Context(), generic.WorkerID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, err, "Cannot read this worker")
		return
	}
	worker, err := h.Store.GetWorker(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to get worker")
		return
	}
	writeJSON(w, http.StatusOK, worker)
}

// CreateWorker creates a worker. New workers are active.
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req WorkerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	worker := payroll.Worker{ID: req.ID, Active: true}
	applyWorkerRequest(&worker, req)

	saved, err := h.Service.SaveWorker(r.Context(), worker)
	if err != nil {
		h.fail(w, r, err, "Failed to create worker")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// UpdateWorker edits a worker. A worker session may only change its own name and phone.
func (h *Handler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r.Context(), generic.WorkerID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, err, "Cannot edit this worker")
		return
	}
	var req WorkerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	s, _ := SessionFrom(r.Context())
	if !s.IsAdmin() && (req.PIN != nil || req.Active != nil || req.Prices != nil || req.Schedule != nil) {
		writeError(w, http.StatusForbidden, "Workers may only edit name and phone", nil)
		return
	}

	existing, err := h.Store.GetWorker(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to get worker")
		return
	}
	updated := *existing
	applyWorkerRequest(&updated, req)

	saved, err := h.Service.SaveWorker(r.Context(), updated)
	if err != nil {
		h.fail(w, r, err, "Failed to update worker")
		return
	}
	if saved.PIN != existing.PIN || !saved.Active {
		h.Sessions.DeleteWorker(saved.ID)
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeactivateWorker soft-deletes a worker and ends their sessions.
func (h *Handler) DeactivateWorker(w http.ResponseWriter, r *http.Request) {
	id := generic.WorkerID(chi.URLParam(r, "id"))
	if err := h.Store.DeactivateWorker(r.Context(), id); err != nil {
		h.fail(w, r, err, "Failed to deactivate worker")
		return
	}
	h.Sessions.DeleteWorker(id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// GetWorkerSchedule lists the worker's scheduled days for ?month&year.
func (h *Handler) GetWorkerSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r.Context(), generic.WorkerID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, err, "Cannot read this worker")
		return
	}
	month, year, err := h.monthYear(r)
	if err != nil {
		h.fail(w, r, err, "Invalid month/year")
		return
	}
	worker, err := h.Store.GetWorker(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to get worker")
		return
	}
	writeJSON(w, http.StatusOK, ScheduleDTO{
		DiaristaID: id,
		Month:      month,
		Year:       year,
		Days:       payroll.ResolveScheduleDays(payroll.EffectiveSchedule(worker.Schedule), month, year),
	})
}

// GetWorkerSummary returns the month summary of one worker.
func (h *Handler) GetWorkerSummary(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r.Context(), generic.WorkerID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, err, "Cannot read this worker")
		return
	}
	month, year, err := h.monthYear(r)
	if err != nil {
		h.fail(w, r, err, "Invalid month/year")
		return
	}
	summary, err := h.Service.MonthlySummary(r.Context(), id, month, year)
	if err != nil {
		h.fail(w, r, err, "Failed to compute summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func applyWorkerRequest(w *payroll.Worker, req WorkerRequest) {
	if req.Name != nil {
		w.Name = strings.TrimSpace(*req.Name)
	}
	if req.PIN != nil {
		w.PIN = *req.PIN
	}
	if req.Phone != nil {
		w.Phone = *req.Phone
	}
	if req.Active != nil {
		w.Active = *req.Active
	}
	if req.Prices != nil {
		w.Prices = *req.Prices
	}
	if req.Schedule != nil {
		w.Schedule = *req.Schedule
	}
}

// =============================================================================
// CONFIG HANDLERS
// =============================================================================

// GetConfig returns the household prices with defaults filled in. The admin PIN is never returned.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	prices, err := h.Service.Prices(r.Context(), nil)
	if err != nil {
		h.fail(w, r, err, "Failed to load configuration")
		return
	}
	writeJSON(w, http.StatusOK, map[string]generic.Money{
		payroll.KeyHeavyCleaning: prices.HeavyCleaning,
		payroll.KeyLightCleaning: prices.LightCleaning,
		payroll.KeyWashing:       prices.Washing,
		payroll.KeyIroning:       prices.Ironing,
		payroll.KeyTransport:     prices.Transport,
		payroll.KeyMonthlySalary: prices.MonthlySalary,
	})
}

// UpdateConfig takes {key: value}. "admin_pin" takes a 4-digit string; every
// other key takes a number.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}

	var adminPIN *string
	values := make(map[string]decimal.Decimal, len(raw))
	for key, msg := range raw {
		if key == payroll.KeyAdminPIN {
			var pin string
			if err := json.Unmarshal(msg, &pin); err != nil {
				h.fail(w, r, &generic.ValidationError{Field: key, Message: "must be a string"}, "Invalid admin PIN")
				return
			}
			if err := h.Service.CheckAdminPIN(r.Context(), pin); err != nil {
				h.fail(w, r, err, "Invalid admin PIN")
				return
			}
			adminPIN = &pin
			continue
		}
		var m generic.Money
		if err := json.Unmarshal(msg, &m); err != nil {
			h.fail(w, r, &generic.ValidationError{Field: key, Message: "must be a number"}, "Invalid configuration value")
			return
		}
		values[key] = m.Value
	}

	if err := h.Service.UpdateConfig(r.Context(), values); err != nil {
		h.fail(w, r, err, "Failed to update configuration")
		return
	}
	if adminPIN != nil {
		if err := h.Service.SetAdminPIN(r.Context(), *adminPIN); err != nil {
			h.fail(w, r, err, "Failed to update admin PIN")
			return
		}
	}
	h.GetConfig(w, r)
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns active clients (?all=true includes inactive ones, admin only).
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFrom(r.Context())
	activeOnly := !(s.IsAdmin() && r.URL.Query().Get("all") == "true")
	clients, err := h.Store.ListClients(r.Context(), activeOnly)
	if err != nil {
		h.fail(w, r, err, "Failed to list clients")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(clients))
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.fail(w, r, &generic.ValidationError{Field: "name", Message: "required"}, "Invalid client")
		return
	}
	c := payroll.Client{
		ID:      generic.ClientID(h.Service.NewID()),
		Name:    strings.TrimSpace(req.Name),
		Address: req.Address,
		Notes:   req.Notes,
		Active:  true,
	}
	if err := h.Store.SaveClient(r.Context(), c); err != nil {
		h.fail(w, r, err, "Failed to create client")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id := generic.ClientID(chi.URLParam(r, "id"))
	var req ClientRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	clients, err := h.Store.ListClients(r.Context(), false)
	if err != nil {
		h.fail(w, r, err, "Failed to list clients")
		return
	}
	var c *payroll.Client
	for i := range clients {
		if clients[i].ID == id {
			c = &clients[i]
			break
		}
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		c.Name = name
	}
	c.Address = req.Address
	c.Notes = req.Notes
	if req.Active != nil {
		c.Active = *req.Active
	}
	if err := h.Store.SaveClient(r.Context(), *c); err != nil {
		h.fail(w, r, err, "Failed to update client")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) DeactivateClient(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeactivateClient(r.Context(), generic.ClientID(chi.URLParam(r, "id"))); err != nil {
		h.fail(w, r, err, "Failed to deactivate client")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// ListContracts returns acknowledgments, scoped to the caller.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	id, err := scope(r.Context(), queryWorker(r))
	if err != nil {
		h.fail(w, r, err, "Cannot read this worker")
		return
	}
	agreements, err := h.Store.ListContractAgreements(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to list contracts")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(agreements))
}

// AcceptContract records that a worker accepted a contract version. Once per version.
func (h *Handler) AcceptContract(w http.ResponseWriter, r *http.Request) {
	var req ContractRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}
	id, err := scope(r.Context(), req.DiaristaID)
	if err != nil {
		h.fail(w, r, err, "Cannot accept for this worker")
		return
	}
	if id == "" {
		h.fail(w, r, &generic.ValidationError{Field: "diarista_id", Message: "required"}, "Invalid contract")
		return
	}
	if strings.TrimSpace(req.ContractVersion) == "" {
		h.fail(w, r, &generic.ValidationError{Field: "contract_version", Message: "required"}, "Invalid contract")
		return
	}
	if _, err := h.Store.GetWorker(r.Context(), id); err != nil {
		h.fail(w, r, err, "Failed to get worker")
		return
	}
	a := payroll.ContractAgreement{
		ID:              h.Service.NewID(),
		WorkerID:        id,
		ContractVersion: strings.TrimSpace(req.ContractVersion),
		AcceptedAt:      h.Service.Now().UTC(),
	}
	if err := h.Store.AddContractAgreement(r.Context(), a); err != nil {
		h.fail(w, r, err, "Failed to record contract")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// =============================================================================
// NOTIFICATION HANDLERS
// =============================================================================

// ListNotifications returns the caller's inbox: admin rows for the admin,
// own rows for a worker.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.inbox(r)
	if err != nil {
		h.fail(w, r, err, "Failed to list notifications")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// MarkNotificationRead marks one notification of the caller's inbox read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	list, err := h.inbox(r)
	if err != nil {
		h.fail(w, r, err, "Failed to list notifications")
		return
	}
	found := false
	for _, n := range list {
		if n.ID == id {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "Notification not found", nil)
		return
	}
	if err := h.Store.MarkNotificationRead(r.Context(), id, h.Service.Now().UTC()); err != nil {
		h.fail(w, r, err, "Failed to mark notification read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *Handler) inbox(r *http.Request) ([]payroll.Notification, error) {
	s, _ := SessionFrom(r.Context())
	if s.IsAdmin() {
		return h.Store.ListNotifications(r.Context(), "", true)
	}
	return h.Store.ListNotifications(r.Context(), s.WorkerID, false)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail maps err to a status and writes it. Server-side failures are logged and reported.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error(message,
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		observability.CaptureErr(err)
	}
	writeError(w, status, message, err)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case generic.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, generic.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, generic.ErrForbidden):
		return http.StatusForbidden
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %v", generic.ErrInvalidInput, err)
}

// monthYear reads ?month&year, defaulting both to the current month when absent.
func (h *Handler) monthYear(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	if q.Get("month") == "" && q.Get("year") == "" {
		today := h.Service.Today()
		return int(today.Month()), today.Year(), nil
	}
	month, err1 := strconv.Atoi(q.Get("month"))
	year, err2 := strconv.Atoi(q.Get("year"))
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("%w: month=%q year=%q", generic.ErrInvalidMonth, q.Get("month"), q.Get("year"))
	}
	if err := generic.ValidateMonth(month, year); err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

// optionalMonthYear reads ?month&year where a missing value means "any" (0).
func optionalMonthYear(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	parse := func(key string) (int, error) {
		v := q.Get(key)
		if v == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", generic.ErrInvalidMonth, key, v)
		}
		return n, nil
	}
	month, err := parse("month")
	if err != nil {
		return 0, 0, err
	}
	year, err := parse("year")
	if err != nil {
		return 0, 0, err
	}
	if month < 0 || month > 12 || year < 0 {
		return 0, 0, fmt.Errorf("%w: month=%d year=%d", generic.ErrInvalidMonth, month, year)
	}
	return month, year, nil
}

// dateRange reads ?from&to (YYYY-MM-DD), defaulting to the current month.
func (h *Handler) dateRange(r *http.Request) (generic.Period, error) {
	q := r.URL.Query()
	today := h.Service.Today()
	start := generic.StartOfMonth(today.Year(), today.Month())
	end := generic.EndOfMonth(today.Year(), today.Month())
	var err error
	if v := q.Get("from"); v != "" {
		if start, err = generic.ParseDate(v); err != nil {
			return generic.Period{}, &generic.ValidationError{Field: "from", Message: "use YYYY-MM-DD"}
		}
	}
	if v := q.Get("to"); v != "" {
		if end, err = generic.ParseDate(v); err != nil {
			return generic.Period{}, &generic.ValidationError{Field: "to", Message: "use YYYY-MM-DD"}
		}
	}
	return generic.NewPeriod(start, end)
}

func queryWorker(r *http.Request) generic.WorkerID {
	return generic.WorkerID(r.URL.Query().Get("diarista_id"))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
