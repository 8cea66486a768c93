/*
session.go - PIN login sessions and role scoping

PURPOSE:
  A session is created by POST /api/session with a PIN. The admin PIN opens
  an admin session; an active worker's PIN opens a worker session bound to
  that worker. The opaque token travels in the X-Session-Token header and is
  resolved into the request context by the session middleware.

ROLES:
  admin:  sees and edits every worker
  worker: reads own rows, edits own profile, accepts contracts

STORAGE:
  Sessions live in process memory and are lost on restart. Logging in again
  is the recovery path.

SEE ALSO:
  - handlers.go: CreateSession, GetSession, DeleteSession
  - server.go: Middleware order
*/
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/household-payroll/generic"
)

// SessionHeader carries the token returned by POST /api/session.
const SessionHeader = "X-Session-Token"

// DefaultSessionTTL is how long a session stays valid after login.
const DefaultSessionTTL = 12 * time.Hour

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
)

// Session is one logged-in browser.
type Session struct {
	Token     string
	Role      Role
	WorkerID  generic.WorkerID
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// =============================================================================
// SESSION MANAGER
// =============================================================================

// SessionManager keeps sessions keyed by token.
type SessionManager struct {
	TTL time.Duration
	Now func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
}

func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		TTL:      ttl,
		Now:      time.Now,
		sessions: make(map[string]Session),
	}
}

// Create opens a session. workerID is empty for admin sessions.
func (m *SessionManager) Create(role Role, workerID generic.WorkerID) Session {
	now := m.Now()
	s := Session{
		Token:     uuid.NewString(),
		Role:      role,
		WorkerID:  workerID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.TTL),
	}
	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s
}

// Get returns the live session for token. Expired sessions are dropped.
func (m *SessionManager) Get(token string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return Session{}, false
	}
	if !m.Now().Before(s.ExpiresAt) {
		delete(m.sessions, token)
		return Session{}, false
	}
	return s, true
}

func (m *SessionManager) Delete(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// DeleteWorker ends every session of one worker, or of all workers when id
// is empty. Admin sessions are kept.
func (m *SessionManager) DeleteWorker(id generic.WorkerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, s := range m.sessions {
		if s.Role == RoleWorker && (id == "" || s.WorkerID == id) {
			delete(m.sessions, token)
		}
	}
}

// =============================================================================
// CONTEXT & MIDDLEWARE
// =============================================================================

type sessionKey struct{}

func withSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached by the middleware.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// Middleware resolves the session header. Requests without a valid token pass
// through unauthenticated; RequireSession and RequireAdmin enforce.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := r.Header.Get(SessionHeader); token != "" {
			if s, ok := m.Get(token); ok {
				r = r.WithContext(withSession(r.Context(), s))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession rejects requests without a session with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFrom(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "Login required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects worker sessions with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Login required", nil)
			return
		}
		if !s.IsAdmin() {
			writeError(w, http.StatusForbidden, "Administrator only", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// scope resolves the worker a request may read. Admins get what they asked
// for ("" meaning everyone); workers get themselves, and asking for another
// worker is forbidden.
func scope(ctx context.Context, requested generic.WorkerID) (generic.WorkerID, error) {
	s, ok := SessionFrom(ctx)
	if !ok {
		return "", generic.ErrUnauthorized
	}
	if s.IsAdmin() {
		return requested, nil
	}
	if requested != "" && requested != s.WorkerID {
		return "", generic.ErrForbidden
	}
	return s.WorkerID, nil
}
