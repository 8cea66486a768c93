/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. Access log: zap line + Prometheus counters per route pattern
  4. CORS:       Cross-origin requests for the frontend
  5. Sessions:   X-Session-Token resolved into the request context

ROUTE GROUPS:
  /healthz, /metrics       Public
  /api/session (POST)      Public login
  /api/auth/verify-pin     Public
  /api/*                   Any session; writes behind RequireAdmin
  /*                       Static files (frontend)

SEE ALSO:
  - handlers.go: Handler implementations
  - session.go: RequireSession, RequireAdmin
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/warp/household-payroll/metrics"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", SessionHeader},
		AllowCredentials: false,
	}))
	r.Use(h.Sessions.Middleware)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/session", h.CreateSession)
		r.Post("/auth/verify-pin", h.VerifyPIN)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession)

			r.Get("/session", h.GetSession)
			r.Delete("/session", h.DeleteSession)

			// Worker routes
			r.Route("/diaristas", func(r chi.Router) {
				r.Get("/", h.ListWorkers)
				r.With(RequireAdmin).Post("/", h.CreateWorker)
				r.Get("/{id}", h.GetWorker)
				r.Put("/{id}", h.UpdateWorker)
				r.With(RequireAdmin).Delete("/{id}", h.DeactivateWorker)
				r.Get("/{id}/schedule", h.GetWorkerSchedule)
				r.Get("/{id}/summary", h.GetWorkerSummary)
			})

			// Attendance routes
			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.ListAttendance)
				r.With(RequireAdmin).Put("/", h.MarkAttendance)
				r.With(RequireAdmin).Delete("/{id}", h.DeleteAttendance)
			})

			// Laundry routes
			r.Route("/laundry", func(r chi.Router) {
				r.Get("/", h.ListLaundry)
				r.With(RequireAdmin).Put("/", h.ToggleLaundry)
				r.With(RequireAdmin).Post("/{id}/paid", h.PayLaundry)
			})

			// Note routes
			r.Route("/notes", func(r chi.Router) {
				r.Get("/", h.ListNotes)
				r.With(RequireAdmin).Post("/", h.CreateNote)
			})

			// Award routes
			r.Route("/awards", func(r chi.Router) {
				r.Get("/", h.ListAwards)
				r.Get("/current", h.CurrentAward)
				r.With(RequireAdmin).Post("/", h.CreateAward)
				r.With(RequireAdmin).Post("/{id}/status", h.UpdateAwardStatus)
			})

			// Payment routes
			r.Route("/payments", func(r chi.Router) {
				r.Get("/", h.ListPayments)
				r.Get("/history", h.PaymentHistory)
				r.Get("/due-date", h.DueDate)
				r.With(RequireAdmin).Post("/", h.EnsurePayment)
				r.With(RequireAdmin).Post("/{id}/paid", h.PayPayment)
			})

			// Config routes
			r.Get("/config", h.GetConfig)
			r.With(RequireAdmin).Put("/config", h.UpdateConfig)

			// Client routes
			r.Route("/clients", func(r chi.Router) {
				r.Get("/", h.ListClients)
				r.With(RequireAdmin).Post("/", h.CreateClient)
				r.With(RequireAdmin).Put("/{id}", h.UpdateClient)
				r.With(RequireAdmin).Delete("/{id}", h.DeactivateClient)
			})

			// Contract routes
			r.Route("/contracts", func(r chi.Router) {
				r.Get("/", h.ListContracts)
				r.Post("/", h.AcceptContract)
			})

			// Notification routes
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.ListNotifications)
				r.Post("/{id}/read", h.MarkNotificationRead)
			})

			// Summary & report routes
			r.Get("/summary", h.Summary)
			r.Get("/report", h.Report)
			r.Get("/report.xlsx", h.ReportXLSX)

			// Scenario routes
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", h.ListScenarios)
				r.Get("/current", h.GetCurrentScenario)
				r.With(RequireAdmin).Post("/load", h.LoadScenario)
			})
		})
	})

	// Serve static files (frontend build)
	staticDir := h.StaticDir
	if staticDir == "" {
		staticDir = "./web/dist"
	}
	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, filepath.Clean(r.URL.Path))
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Diaristas</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Diaristas API</h1>
<p>The frontend is not built. Log in with <code>POST /api/session {"pin": "...."}</code>
and send the token in the <code>X-Session-Token</code> header.</p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/healthz">/healthz</a> - Health</li>
<li><a href="/api/diaristas">/api/diaristas</a> - Workers</li>
<li><a href="/api/report">/api/report</a> - Monthly report</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo households</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}

// accessLog writes one zap line per request and feeds the request metrics,
// labelled by chi route pattern rather than raw path.
func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.ObserveRequest(r.Method, route, status, elapsed)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", elapsed),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
