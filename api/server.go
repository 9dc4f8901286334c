/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, echoed in the request log
  2. RealIP:     Client address from X-Forwarded-For / X-Real-IP
  3. Logger:     Structured request logging (logrus)
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. Metrics:    Request count and latency per route pattern
  6. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/attendance/*   Check-in, cancellation, reports
  /api/customer/*     Customers and class balances
  /api/class/*        Classes and the weekly schedule
  /api/instructor/*   Instructors
  /api/package/*      Packages
  /api/admin/seed     Demo data reload (token guarded in production)
  /healthz            Store ping
  /metrics            Prometheus
  /*                  Static files (frontend)

STATIC FILE SERVING:
  Serves the built UI from cfg.StaticDir when it exists.
  Falls back to index.html for client-side routing.

SEE ALSO:
  - handlers.go: Attendance handlers
  - entities.go: Catalog handlers
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", SeedTokenHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/getAttendance", h.GetAttendance)
			r.Get("/getAttendanceRecords", h.GetAttendanceRecords)
			r.Post("/checkin", h.CheckIn)
			r.Put("/updateStatus", h.UpdateStatus)
			r.Put("/cancelCheckin", h.CancelCheckin)
			r.Get("/getCustomerHistory", h.GetCustomerHistory)
			r.Get("/getClassAttendance", h.GetClassAttendance)
			r.Get("/getStats", h.GetStats)
		})

		r.Route("/customer", func(r chi.Router) {
			r.Get("/getCustomer", h.GetCustomer)
			r.Get("/getNextId", h.GetNextCustomerID)
			r.Get("/getCustomerIds", h.GetCustomerIDs)
			r.Post("/add", h.AddCustomer)
			r.Put("/update", h.UpdateCustomer)
			r.Delete("/deleteCustomer", h.DeleteCustomer)
			r.Put("/updateClassBalance", h.UpdateClassBalance)
		})

		r.Route("/class", func(r chi.Router) {
			r.Get("/getClass", h.GetClass)
			r.Get("/getNextId", h.GetNextClassID)
			r.Get("/getClassIds", h.GetClassIDs)
			r.Get("/getClassesByInstructor", h.GetClassesByInstructor)
			r.Get("/getWeeklySchedule", h.GetWeeklySchedule)
			r.Post("/add", h.AddClass)
			r.Put("/update", h.UpdateClass)
			r.Delete("/deleteClass", h.DeleteClass)
		})

		r.Route("/instructor", func(r chi.Router) {
			r.Get("/getInstructor", h.GetInstructor)
			r.Get("/getNextId", h.GetNextInstructorID)
			r.Get("/getInstructorIds", h.GetInstructorIDs)
			r.Post("/add", h.AddInstructor)
			r.Put("/update", h.UpdateInstructor)
			r.Delete("/deleteInstructor", h.DeleteInstructor)
		})

		r.Route("/package", func(r chi.Router) {
			r.Get("/getPackage", h.GetPackage)
			r.Get("/getNextId", h.GetNextPackageID)
			r.Get("/getPackageIds", h.GetPackageIDs)
			r.Post("/add", h.AddPackage)
			r.Put("/update", h.UpdatePackage)
			r.Delete("/deletePackage", h.DeletePackage)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/seed", h.Seed)
		})
	})

	// Serve static files (built UI)
	staticDir := h.cfg.StaticDir
	if staticDir != "" {
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
		}
	}

	return r
}

// Health pings the store when it supports it.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.svc.Store().(Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "unhealthy", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs one line per request with logrus.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			entry := log.WithFields(logrus.Fields{
				"request_id":  middleware.GetReqID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": r.RemoteAddr,
			})
			if ww.Status() >= http.StatusInternalServerError {
				entry.Warn("request failed")
				return
			}
			entry.Debug("request")
		})
	}
}
