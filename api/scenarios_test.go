package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/household-payroll/payroll"
)

func TestScenarios_LoadEach(t *testing.T) {
	for _, sc := range scenarios {
		t.Run(sc.ID, func(t *testing.T) {
			// GIVEN: an admin session
			a := newTestAPI(t)
			admin := a.login(t, testAdminPIN)

			// WHEN: loading the scenario
			rec := a.do(t, http.MethodPost, "/api/scenarios/load", admin, LoadScenarioRequest{ScenarioID: sc.ID})

			// THEN: the month has workers with attendance earnings
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			summary := decode[payroll.Summary](t, a.do(t, http.MethodGet, "/api/summary?month=3&year=2026", admin, nil))
			require.NotEmpty(t, summary.Workers)
			assert.True(t, summary.Totals.AttendanceTotal.IsPositive())

			current := decode[ScenarioDTO](t, a.do(t, http.MethodGet, "/api/scenarios/current", admin, nil))
			assert.Equal(t, sc.ID, current.ID)
		})
	}
}

func TestScenarios_SingleTotals(t *testing.T) {
	// GIVEN: the single-worker household loaded on 2026-03-10
	a := newTestAPI(t)
	admin := a.login(t, testAdminPIN)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/scenarios/load", admin, LoadScenarioRequest{ScenarioID: "single-diarista"}).Code)

	// THEN: Mondays 2 and 9 heavy, Thursday 5 light, four weeks of laundry
	summary := decode[payroll.Summary](t, a.do(t, http.MethodGet, "/api/summary?month=3&year=2026", admin, nil))
	e := summary.Totals
	assert.Equal(t, 2, e.HeavyDays)
	assert.Equal(t, 1, e.LightDays)
	assert.True(t, e.AttendanceTotal.Equal(money(650)), e.AttendanceTotal.String())
	assert.True(t, e.LaundryTotal.Equal(money(500)), e.LaundryTotal.String())
	assert.True(t, e.GrandTotal.Equal(money(1150)), e.GrandTotal.String())

	// AND: the scenario worker can log in with the demo PIN
	a.login(t, "1111")
}

func TestScenarios_DisqualifiedAward(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, testAdminPIN)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/scenarios/load", admin, LoadScenarioRequest{ScenarioID: "disqualified"}).Code)

	view := decode[payroll.AwardView](t, a.do(t, http.MethodGet, "/api/awards/current?diarista_id=diarista-carla", admin, nil))

	assert.Equal(t, payroll.WarningThreshold, view.Evaluation.WarningsCount)
	assert.Equal(t, payroll.AwardDisqualified, view.Period.Status)
}

func TestScenarios_NearThreshold(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, testAdminPIN)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/scenarios/load", admin, LoadScenarioRequest{ScenarioID: "near-threshold"}).Code)

	view := decode[payroll.AwardView](t, a.do(t, http.MethodGet, "/api/awards/current?diarista_id=diarista-carla", admin, nil))

	assert.True(t, view.Evaluation.NearThreshold)
	assert.Equal(t, payroll.AwardPending, view.EffectiveStatus)
}

func TestScenarios_ResetKeepsAdminAndDropsWorkers(t *testing.T) {
	// GIVEN: a worker session from a previous household
	a := newTestAPI(t)
	admin := a.login(t, testAdminPIN)
	a.createWorker(t, admin, "maria", "Maria", "7777")
	worker := a.login(t, "7777")

	// WHEN: a scenario is loaded
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/scenarios/load", admin, LoadScenarioRequest{ScenarioID: "two-diaristas"}).Code)

	// THEN: the admin session and PIN survive, the worker session does not
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/session", admin, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/session", worker, nil).Code)
	a.login(t, testAdminPIN)

	workers := decode[[]payroll.Worker](t, a.do(t, http.MethodGet, "/api/diaristas", admin, nil))
	assert.Len(t, workers, 2)
}

func TestScenarios_UnknownAndForbidden(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, testAdminPIN)
	a.createWorker(t, admin, "maria", "Maria", "1111")
	worker := a.login(t, "1111")

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, "/api/scenarios/load", admin, LoadScenarioRequest{ScenarioID: "nope"}).Code)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodPost, "/api/scenarios/load", worker, LoadScenarioRequest{ScenarioID: "single-diarista"}).Code)
	assert.Len(t, decode[[]ScenarioDTO](t, a.do(t, http.MethodGet, "/api/scenarios", worker, nil)), len(scenarios))
}
