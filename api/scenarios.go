/*
scenarios.go - Demo households for testing and demonstrations

PURPOSE:
  Provides pre-built households that populate the database with realistic
  data for demos. Each scenario creates workers, marks the current month's
  attendance and laundry, and adds notes and award periods that exercise
  a specific rule.

AVAILABLE SCENARIOS:
  single-diarista:  One worker on the default Monday/Thursday schedule
  two-diaristas:    Two workers, custom schedules and prices, a client
  near-threshold:   Award period with two warnings (one more disqualifies)
  disqualified:     Award period with three warnings

HOW SCENARIOS WORK:
 1. Remember the admin PIN
 2. Reset database (clear all data) and end worker sessions
 3. Restore the admin PIN (demo PIN 1234 when none was set)
 4. Create workers through payroll.Service
 5. Mark scheduled days up to today, toggle laundry, add notes

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "two-diaristas"}

NOTE:
  Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler and helpers
  - payroll/service.go: Every write goes through the service
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/warp/household-payroll/generic"
	"github.com/warp/household-payroll/payroll"
)

// DemoAdminPIN is set when a scenario loads into a database without an admin PIN.
const DemoAdminPIN = "1234"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single-diarista",
		Name:        "Uma diarista",
		Description: "Default Monday heavy / Thursday light schedule, laundry every week",
	},
	{
		ID:          "two-diaristas",
		Name:        "Duas diaristas",
		Description: "Custom schedules and per-worker prices, one client address",
	},
	{
		ID:          "near-threshold",
		Name:        "Perto do limite",
		Description: "Award period with two warnings; the next one disqualifies",
	},
	{
		ID:          "disqualified",
		Name:        "Desclassificada",
		Description: "Award period with three warnings; the bonus is lost",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets the database and loads a predefined household.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err, "Invalid request body")
		return
	}

	var load func(context.Context) error
	switch req.ScenarioID {
	case "single-diarista":
		load = h.loadSingleScenario
	case "two-diaristas":
		load = h.loadTwoWorkersScenario
	case "near-threshold":
		load = func(ctx context.Context) error { return h.loadWarningsScenario(ctx, payroll.WarningThreshold-1) }
	case "disqualified":
		load = func(ctx context.Context) error { return h.loadWarningsScenario(ctx, payroll.WarningThreshold) }
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	ctx := r.Context()

	if err := h.resetHousehold(ctx); err != nil {
		h.fail(w, r, err, "Failed to reset database")
		return
	}
	h.currentScenario = ""

	if err := load(ctx); err != nil {
		h.fail(w, r, err, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID))
		return
	}
	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// resetHousehold clears every table but keeps the admin able to log in.
func (h *Handler) resetHousehold(ctx context.Context) error {
	pin, err := h.Store.AdminPIN(ctx)
	if err != nil {
		return err
	}
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	h.Sessions.DeleteWorker("")
	if pin == "" {
		pin = DemoAdminPIN
	}
	return h.Store.SetAdminPIN(ctx, pin)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSingleScenario(ctx context.Context) error {
	w, err := h.Service.SaveWorker(ctx, payroll.Worker{
		ID:     "diarista-maria",
		Name:   "Maria Aparecida",
		PIN:    "1111",
		Phone:  "+55 11 99999-0001",
		Active: true,
	})
	if err != nil {
		return err
	}
	if err := h.markMonthSoFar(ctx, w); err != nil {
		return err
	}
	return h.laundryEveryWeek(ctx, w.ID, true, true)
}

func (h *Handler) loadTwoWorkersScenario(ctx context.Context) error {
	client := payroll.Client{ID: "cliente-casa", Name: "Casa da praia", Address: "Rua das Ondas, 42", Active: true}
	if err := h.Store.SaveClient(ctx, client); err != nil {
		return err
	}

	ana, err := h.Service.SaveWorker(ctx, payroll.Worker{
		ID:     "diarista-ana",
		Name:   "Ana Souza",
		PIN:    "2222",
		Active: true,
		Schedule: []payroll.ScheduleEntry{
			{DayOfWeek: "tuesday", ServiceType: payroll.HeavyCleaning},
			{DayOfWeek: "friday", ServiceType: payroll.LightCleaning, ClientID: client.ID},
		},
		Prices: payroll.PriceOverrides{HeavyCleaning: generic.NewMoneyFromInt(280)},
	})
	if err != nil {
		return err
	}
	joana, err := h.Service.SaveWorker(ctx, payroll.Worker{
		ID:     "diarista-joana",
		Name:   "Joana Lima",
		PIN:    "3333",
		Active: true,
		Schedule: []payroll.ScheduleEntry{
			{DayOfWeek: "wednesday", ServiceType: payroll.LightCleaning},
		},
	})
	if err != nil {
		return err
	}

	for _, w := range []payroll.Worker{ana, joana} {
		if err := h.markMonthSoFar(ctx, w); err != nil {
			return err
		}
	}
	if err := h.laundryEveryWeek(ctx, ana.ID, true, false); err != nil {
		return err
	}
	return h.laundryEveryWeek(ctx, joana.ID, false, true)
}

// loadWarningsScenario opens a three-month award period around today and adds
// the given number of warnings inside it.
func (h *Handler) loadWarningsScenario(ctx context.Context, warnings int) error {
	w, err := h.Service.SaveWorker(ctx, payroll.Worker{
		ID:     "diarista-carla",
		Name:   "Carla Mendes",
		PIN:    "4444",
		Active: true,
	})
	if err != nil {
		return err
	}
	if err := h.markMonthSoFar(ctx, w); err != nil {
		return err
	}

	today := h.Service.Today()
	start := generic.StartOfMonth(today.Year(), today.Month()).AddMonths(-1)
	end := start.AddMonths(3).AddDays(-1)
	if _, err := h.Service.CreateAwardPeriod(ctx, payroll.AwardPeriod{
		WorkerID:           w.ID,
		PeriodStart:        start,
		PeriodEnd:          end,
		PunctualityScore:   8,
		QualityScore:       9,
		CommunicationScore: 7,
	}); err != nil {
		return err
	}

	if _, err := h.Service.AddNote(ctx, payroll.Note{
		WorkerID: w.ID,
		Date:     start,
		NoteType: payroll.NoteExtraWork,
		Content:  "Limpou a varanda sem ser pedido",
	}); err != nil {
		return err
	}
	for i := 0; i < warnings; i++ {
		if _, err := h.Service.AddNote(ctx, payroll.Note{
			WorkerID:  w.ID,
			Date:      start.AddDays(i * 7),
			NoteType:  payroll.NoteWarning,
			Content:   fmt.Sprintf("Atraso de mais de uma hora (%d)", i+1),
			IsWarning: true,
		}); err != nil {
			return err
		}
	}
	return nil
}

// markMonthSoFar marks every scheduled day of the current month up to today present.
func (h *Handler) markMonthSoFar(ctx context.Context, w payroll.Worker) error {
	today := h.Service.Today()
	days := payroll.ResolveScheduleDays(payroll.EffectiveSchedule(w.Schedule), int(today.Month()), today.Year())
	for _, d := range days {
		if d.Date.After(today) {
			break
		}
		if _, err := h.Service.MarkAttendance(ctx, payroll.AttendanceRecord{
			WorkerID: w.ID,
			Date:     d.Date,
			DayType:  d.ServiceType,
			Present:  true,
		}); err != nil {
			return err
		}
	}
	return nil
}

// laundryEveryWeek toggles the first four laundry weeks of the current month.
func (h *Handler) laundryEveryWeek(ctx context.Context, id generic.WorkerID, ironed, washed bool) error {
	today := h.Service.Today()
	for week := 1; week <= 4; week++ {
		if _, err := h.Service.ToggleLaundry(ctx, payroll.LaundryToggle{
			WorkerID:   id,
			WeekNumber: week,
			Month:      int(today.Month()),
			Year:       today.Year(),
			Ironed:     &ironed,
			Washed:     &washed,
		}); err != nil {
			return err
		}
	}
	return nil
}
