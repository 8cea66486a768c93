package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/household-payroll/generic"
)

func TestSessionManager_Expiry(t *testing.T) {
	// GIVEN: a one-hour session
	m := NewSessionManager(time.Hour)
	now := march10
	m.Now = func() time.Time { return now }
	s := m.Create(RoleWorker, "maria")

	// THEN: valid before the hour, gone at the hour
	got, ok := m.Get(s.Token)
	require.True(t, ok)
	assert.Equal(t, generic.WorkerID("maria"), got.WorkerID)

	now = now.Add(time.Hour)
	_, ok = m.Get(s.Token)
	assert.False(t, ok)
}

func TestSessionManager_DeleteWorkerKeepsAdmins(t *testing.T) {
	m := NewSessionManager(0)
	admin := m.Create(RoleAdmin, "")
	maria := m.Create(RoleWorker, "maria")
	joana := m.Create(RoleWorker, "joana")

	m.DeleteWorker("maria")
	_, mariaOK := m.Get(maria.Token)
	_, joanaOK := m.Get(joana.Token)
	assert.False(t, mariaOK)
	assert.True(t, joanaOK)

	m.DeleteWorker("")
	_, joanaOK = m.Get(joana.Token)
	_, adminOK := m.Get(admin.Token)
	assert.False(t, joanaOK)
	assert.True(t, adminOK)
}

func TestScope(t *testing.T) {
	admin := withSession(httptest.NewRequest(http.MethodGet, "/", nil).Context(), Session{Role: RoleAdmin})
	worker := withSession(httptest.NewRequest(http.MethodGet, "/", nil).Context(), Session{Role: RoleWorker, WorkerID: "maria"})
	anonymous := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	id, err := scope(admin, "")
	assert.NoError(t, err)
	assert.Empty(t, id)

	id, err = scope(admin, "joana")
	assert.NoError(t, err)
	assert.Equal(t, generic.WorkerID("joana"), id)

	id, err = scope(worker, "")
	assert.NoError(t, err)
	assert.Equal(t, generic.WorkerID("maria"), id)

	_, err = scope(worker, "joana")
	assert.ErrorIs(t, err, generic.ErrForbidden)

	_, err = scope(anonymous, "maria")
	assert.ErrorIs(t, err, generic.ErrUnauthorized)
}
