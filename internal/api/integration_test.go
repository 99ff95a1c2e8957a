//go:build integration

package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/smartcampus/smartcampus/internal/assistant"
	"github.com/smartcampus/smartcampus/internal/auth"
	"github.com/smartcampus/smartcampus/internal/faq"
	"github.com/smartcampus/smartcampus/internal/migrations"
	"github.com/smartcampus/smartcampus/internal/nl2sql"
	"github.com/smartcampus/smartcampus/internal/query/sqlexec"
	"github.com/smartcampus/smartcampus/internal/session"
	"github.com/smartcampus/smartcampus/internal/store/postgres"
)

func TestAskPipelineAgainstSeededPostgres(t *testing.T) {
	h := newIntegrationHandler(t, nl2sql.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		if !strings.Contains(prompt, "student_performance") {
			return "", fmt.Errorf("prompt missing schema: %s", prompt)
		}
		return "```sql\nSELECT sp.subject_name, sp.gpa FROM students s JOIN student_performance sp ON s.student_id = sp.student_id;\n```", nil
	}))

	login := postJSON(t, h, "/v1/login", map[string]any{"username": "asha", "password": "asha123"}, nil)
	if login.Code != http.StatusOK {
		t.Fatalf("login status = %d, body=%s", login.Code, login.Body.String())
	}
	profile := decodeBody(t, login)
	if profile["user_id"] != "S42" {
		t.Fatalf("profile = %#v", profile)
	}

	rr := postJSON(t, h, "/v1/ask", map[string]any{
		"session_id": profile["session_id"],
		"role":       "student",
		"user_id":    "S42",
		"message":    "what's my gpa in each subject",
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("ask status = %d, body=%s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	response, ok := body["response"].(map[string]any)
	if !ok {
		t.Fatalf("response = %#v", body["response"])
	}
	if !strings.Contains(response["sql"].(string), "WHERE s.student_id = $1") {
		t.Fatalf("sql not scoped: %v", response["sql"])
	}
	data, ok := response["data"].([]any)
	if !ok || len(data) != 2 {
		t.Fatalf("data = %#v", response["data"])
	}
	history, ok := body["history"].([]any)
	if !ok || len(history) != 3 {
		t.Fatalf("history = %#v", body["history"])
	}
}

func TestDashboardAgainstSeededPostgres(t *testing.T) {
	h := newIntegrationHandler(t, nl2sql.GeneratorFunc(func(context.Context, string) (string, error) {
		return "SELECT 1", nil
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/faculty/CSE/summary", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body=%s", rr.Code, rr.Body.String())
	}
	summary := decodeBody(t, rr)
	if summary["total_students"].(float64) != 2 {
		t.Fatalf("summary = %#v", summary)
	}

	stats := httptest.NewRecorder()
	h.ServeHTTP(stats, httptest.NewRequest(http.MethodGet, "/v1/admin/stats", nil))
	if stats.Code != http.StatusOK {
		t.Fatalf("stats status = %d", stats.Code)
	}
	if body := decodeBody(t, stats); body["faculty"].(float64) != 4 {
		t.Fatalf("stats = %#v", body)
	}
}

func newIntegrationHandler(t *testing.T, generator nl2sql.Generator) http.Handler {
	t.Helper()
	adminDSN := strings.TrimSpace(os.Getenv("SMARTCAMPUS_TEST_DB_DSN"))
	if adminDSN == "" {
		t.Skip("SMARTCAMPUS_TEST_DB_DSN is not set")
	}

	testDSN, cleanup := createTemporaryDatabase(t, adminDSN)
	t.Cleanup(cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, postgres.DBConfig{Driver: postgres.DriverPostgres, DSN: testDSN})
	if err != nil {
		t.Fatalf("postgres.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := migrations.NewRunner().Up(ctx, db, 0); err != nil {
		t.Fatalf("runner.Up() error = %v", err)
	}

	repo := postgres.NewRepository(db)
	engine := sqlexec.NewEngine(db)
	retriever := faq.NewRetriever()
	if _, err := retriever.LoadFrom(ctx, repo); err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	sessions := session.NewMemStore()

	svc, err := assistant.NewService(assistant.Dependencies{
		Generator:    generator,
		Schema:       nl2sql.SchemaDescriber{Reader: repo},
		Engine:       engine,
		FAQ:          retriever,
		Sessions:     sessions,
		ScopeBinding: true,
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	return NewHandler(loadConfig(t, map[string]string{}), Dependencies{
		Readiness:     repo.HealthCheck,
		Assistant:     svc,
		Sessions:      sessions,
		Authenticator: auth.NewAuthenticator(repo),
		Dashboard:     postgres.NewDashboard(engine),
	})
}

func createTemporaryDatabase(t *testing.T, adminDSN string) (string, func()) {
	t.Helper()

	parsed, err := url.Parse(adminDSN)
	if err != nil {
		t.Fatalf("url.Parse(adminDSN) error = %v", err)
	}
	if strings.TrimPrefix(parsed.Path, "/") == "" {
		t.Fatal("admin DSN must include a database name")
	}

	adminDB, err := sql.Open("pgx", adminDSN)
	if err != nil {
		t.Fatalf("sql.Open(adminDSN) error = %v", err)
	}

	name := fmt.Sprintf("smartcampus_it_api_%d", time.Now().UnixNano())
	if _, err := adminDB.Exec(`CREATE DATABASE ` + name); err != nil {
		t.Fatalf("CREATE DATABASE failed: %v", err)
	}

	testURL := *parsed
	testURL.Path = "/" + name
	testDSN := testURL.String()

	cleanup := func() {
		defer func() { _ = adminDB.Close() }()
		if _, err := adminDB.Exec(`SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1`, name); err != nil {
			t.Fatalf("terminate test db sessions: %v", err)
		}
		if _, err := adminDB.Exec(`DROP DATABASE ` + name); err != nil {
			t.Fatalf("DROP DATABASE failed: %v", err)
		}
	}
	return testDSN, cleanup
}
