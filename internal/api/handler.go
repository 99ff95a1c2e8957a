package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartcampus/smartcampus/internal/archive"
	"github.com/smartcampus/smartcampus/internal/assistant"
	"github.com/smartcampus/smartcampus/internal/auth"
	"github.com/smartcampus/smartcampus/internal/config"
	"github.com/smartcampus/smartcampus/internal/observability"
	"github.com/smartcampus/smartcampus/internal/session"
	"github.com/smartcampus/smartcampus/internal/store"
)

type ReadinessCheck func(ctx context.Context) error

type Assistant interface {
	Ask(ctx context.Context, req assistant.AskRequest) (assistant.Response, error)
}

type Authenticator interface {
	Login(ctx context.Context, username, password string) (auth.Profile, error)
}

type DashboardReader interface {
	StudentGPA(ctx context.Context, studentID string) (*float64, error)
	StudentSubjects(ctx context.Context, studentID string) ([]string, error)
	DepartmentSummary(ctx context.Context, department string) (store.DepartmentSummary, error)
	DepartmentTopStudents(ctx context.Context, department string) ([]store.StudentSummary, error)
	CampusStats(ctx context.Context) (store.CampusStats, error)
	TopStudents(ctx context.Context) ([]store.RankedStudent, error)
	TopFaculty(ctx context.Context) ([]store.RankedFaculty, error)
}

type Archiver interface {
	ArchiveSession(ctx context.Context, sessionID string) (archive.Receipt, error)
	Transcript(ctx context.Context, key string) ([]session.Entry, error)
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	AuthMiddleware    func(http.Handler) http.Handler
	DependencyTimeout time.Duration
	Assistant         Assistant
	Sessions          session.Store
	Authenticator     Authenticator
	Dashboard         DashboardReader
	Archiver          Archiver
	NewSessionID      func() string
	UI                http.Handler
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	if deps.NewSessionID == nil {
		deps.NewSessionID = uuid.NewString
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/login", func(w http.ResponseWriter, r *http.Request) {
		handleLogin(deps, w, r)
	})

	protected := http.NewServeMux()
	protected.HandleFunc("POST /v1/ask", func(w http.ResponseWriter, r *http.Request) {
		handleAsk(deps, w, r)
	})
	protected.HandleFunc("POST /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		handleCreateSession(deps, w, r)
	})
	protected.HandleFunc("GET /v1/sessions/{session_id}/history", func(w http.ResponseWriter, r *http.Request) {
		handleHistory(deps, w, r)
	})
	protected.HandleFunc("GET /v1/students/{student_id}/gpa", func(w http.ResponseWriter, r *http.Request) {
		handleStudentGPA(deps, w, r)
	})
	protected.HandleFunc("GET /v1/students/{student_id}/subjects", func(w http.ResponseWriter, r *http.Request) {
		handleStudentSubjects(deps, w, r)
	})
	protected.HandleFunc("GET /v1/faculty/{department}/summary", func(w http.ResponseWriter, r *http.Request) {
		handleDepartmentSummary(deps, w, r)
	})
	protected.HandleFunc("GET /v1/faculty/{department}/top-students", func(w http.ResponseWriter, r *http.Request) {
		handleDepartmentTopStudents(deps, w, r)
	})
	protected.HandleFunc("GET /v1/admin/stats", func(w http.ResponseWriter, r *http.Request) {
		handleCampusStats(deps, w, r)
	})
	protected.HandleFunc("GET /v1/admin/top-students", func(w http.ResponseWriter, r *http.Request) {
		handleTopStudents(deps, w, r)
	})
	protected.HandleFunc("GET /v1/admin/top-faculty", func(w http.ResponseWriter, r *http.Request) {
		handleTopFaculty(deps, w, r)
	})

	protected.HandleFunc("POST /v1/admin/sessions/{session_id}/archive", func(w http.ResponseWriter, r *http.Request) {
		handleArchiveSession(deps, w, r)
	})
	protected.HandleFunc("GET /v1/admin/archives/{key...}", func(w http.ResponseWriter, r *http.Request) {
		handleArchivedTranscript(deps, w, r)
	})

	var protectedHandler http.Handler = protected
	if cfg.Auth.Required {
		if deps.AuthMiddleware == nil {
			if deps.Logger != nil {
				deps.Logger.Error("auth required but auth middleware missing")
			}
			protectedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(r.Context(), w, http.StatusInternalServerError, "AUTH_MIDDLEWARE_MISSING", "auth middleware is required by configuration", false, nil)
			})
		} else {
			protectedHandler = deps.AuthMiddleware(protectedHandler)
		}
	}
	mux.Handle("POST /v1/ask", protectedHandler)
	mux.Handle("POST /v1/sessions", protectedHandler)
	mux.Handle("GET /v1/sessions/{session_id}/history", protectedHandler)
	mux.Handle("GET /v1/students/{student_id}/gpa", protectedHandler)
	mux.Handle("GET /v1/students/{student_id}/subjects", protectedHandler)
	mux.Handle("GET /v1/faculty/{department}/summary", protectedHandler)
	mux.Handle("GET /v1/faculty/{department}/top-students", protectedHandler)
	mux.Handle("GET /v1/admin/stats", protectedHandler)
	mux.Handle("GET /v1/admin/top-students", protectedHandler)
	mux.Handle("GET /v1/admin/top-faculty", protectedHandler)
	mux.Handle("POST /v1/admin/sessions/{session_id}/archive", protectedHandler)
	mux.Handle("GET /v1/admin/archives/{key...}", protectedHandler)
	if deps.UI != nil {
		mux.Handle("GET /{path...}", deps.UI)
	}

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	observability.WriteError(ctx, w, status, code, message, retryable, extra)
}
