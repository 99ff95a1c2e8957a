package smartcampusctl

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRunAskCommandSendsBody(t *testing.T) {
	var gotMethod, gotPath, gotAPIKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-API-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"route":"sql","response":{"sql":"SELECT 1","data":[]}}`))
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{
		"-base-url", srv.URL,
		"-api-key", "k1",
		"-user-id", "S42",
		"-session", "sess-1",
		"ask", "what's", "my", "gpa",
	}, Options{Stdout: &stdout, Stderr: &stderr, Timeout: 2 * time.Second})
	if code != 0 {
		t.Fatalf("exit code = %d, stderr=%s", code, stderr.String())
	}
	if gotMethod != http.MethodPost || gotPath != "/v1/ask" || gotAPIKey != "k1" {
		t.Fatalf("request = %s %s key=%q", gotMethod, gotPath, gotAPIKey)
	}
	if gotBody["message"] != "what's my gpa" || gotBody["role"] != "student" || gotBody["user_id"] != "S42" || gotBody["session_id"] != "sess-1" {
		t.Fatalf("body = %#v", gotBody)
	}
	if _, ok := gotBody["department"]; ok {
		t.Fatalf("department should be omitted: %#v", gotBody)
	}
	if !strings.Contains(stdout.String(), `"route": "sql"`) {
		t.Fatalf("stdout = %s", stdout.String())
	}
}

func TestRunPathCommands(t *testing.T) {
	tests := []struct {
		args []string
		path string
	}{
		{[]string{"health"}, "/v1/health"},
		{[]string{"history", "sess 1"}, "/v1/sessions/sess%201/history"},
		{[]string{"gpa", "S42"}, "/v1/students/S42/gpa"},
		{[]string{"subjects", "S42"}, "/v1/students/S42/subjects"},
		{[]string{"department-summary", "CSE"}, "/v1/faculty/CSE/summary"},
		{[]string{"top-faculty"}, "/v1/admin/top-faculty"},
		{[]string{"archive", "sess-1"}, "/v1/admin/sessions/sess-1/archive"},
		{[]string{"transcript", "date=2026-10-18/hour=10/session-a-1.parquet"}, "/v1/admin/archives/date=2026-10-18/hour=10/session-a-1.parquet"},
	}
	for _, tc := range tests {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.EscapedPath()
			_, _ = w.Write([]byte(`{}`))
		}))
		code := Run(context.Background(), append([]string{"-base-url", srv.URL}, tc.args...), Options{})
		srv.Close()
		if code != 0 {
			t.Fatalf("%v exit code = %d", tc.args, code)
		}
		if gotPath != tc.path {
			t.Fatalf("%v path = %q, want %q", tc.args, gotPath, tc.path)
		}
	}
}

func TestRunReturnsErrorOnHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error_code":"INVALID_CREDENTIALS"}`))
	}))
	defer srv.Close()

	var stderr bytes.Buffer
	code := Run(context.Background(), []string{"-base-url", srv.URL, "login", "asha", "wrong"}, Options{Stderr: &stderr})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "http 401") {
		t.Fatalf("stderr = %s", stderr.String())
	}
}

func TestRunRejectsUnknownCommandAndMissingArgs(t *testing.T) {
	var stderr bytes.Buffer
	if code := Run(context.Background(), []string{"unknown"}, Options{Stderr: &stderr}); code != 2 {
		t.Fatalf("unknown exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "usage: smartcampusctl") {
		t.Fatalf("stderr = %s", stderr.String())
	}
	if code := Run(context.Background(), []string{"login", "only-user"}, Options{}); code != 2 {
		t.Fatalf("missing args exit code = %d, want 2", code)
	}
}
