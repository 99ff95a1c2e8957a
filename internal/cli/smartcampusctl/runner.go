// Package smartcampusctl implements the operator CLI for the SmartCampus API.
package smartcampusctl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Role       string
	UserID     string
	Department string
	SessionID  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

type command struct {
	method string
	path   string
	body   any
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("smartcampusctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "SmartCampus API base URL")
	apiKey := fs.String("api-key", defaults.APIKey, "API key for authenticated requests")
	role := fs.String("role", firstNonEmpty(defaults.Role, "student"), "caller role for ask: student|faculty|admin")
	userID := fs.String("user-id", defaults.UserID, "student id for ask")
	department := fs.String("department", defaults.Department, "department for ask")
	sessionID := fs.String("session", defaults.SessionID, "session id for ask")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 30*time.Second), "HTTP timeout (e.g. 30s)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}

	name := strings.TrimSpace(fs.Arg(0))
	rest := fs.Args()[1:]
	cmd, err := resolve(name, rest, askFlags{
		role:       *role,
		userID:     *userID,
		department: *department,
		sessionID:  *sessionID,
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n\n", err)
		writeUsage(stderr)
		return 2
	}

	endpoint := strings.TrimRight(*baseURL, "/") + cmd.path
	code, responseBody, err := doRequest(ctx, client, cmd.method, endpoint, *apiKey, cmd.body)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}

	if code >= 400 {
		_, _ = fmt.Fprintf(stderr, "http %d: %s\n", code, strings.TrimSpace(string(responseBody)))
		return 1
	}

	if pretty, ok := prettyJSON(responseBody); ok {
		_, _ = fmt.Fprintln(stdout, pretty)
		return 0
	}
	if len(responseBody) > 0 {
		_, _ = fmt.Fprintln(stdout, string(responseBody))
	}
	return 0
}

type askFlags struct {
	role       string
	userID     string
	department string
	sessionID  string
}

func resolve(name string, args []string, ask askFlags) (command, error) {
	need := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("command %q needs %d argument(s)", name, n)
		}
		return nil
	}

	switch name {
	case "health":
		return command{method: http.MethodGet, path: "/v1/health"}, nil
	case "ready":
		return command{method: http.MethodGet, path: "/v1/ready"}, nil
	case "login":
		if err := need(2); err != nil {
			return command{}, err
		}
		return command{method: http.MethodPost, path: "/v1/login", body: map[string]string{
			"username": args[0],
			"password": args[1],
		}}, nil
	case "ask":
		if err := need(1); err != nil {
			return command{}, err
		}
		body := map[string]any{
			"session_id": ask.sessionID,
			"role":       ask.role,
			"message":    strings.Join(args, " "),
		}
		if ask.userID != "" {
			body["user_id"] = ask.userID
		}
		if ask.department != "" {
			body["department"] = ask.department
		}
		return command{method: http.MethodPost, path: "/v1/ask", body: body}, nil
	case "history":
		if err := need(1); err != nil {
			return command{}, err
		}
		return command{method: http.MethodGet, path: "/v1/sessions/" + url.PathEscape(args[0]) + "/history"}, nil
	case "gpa", "subjects":
		if err := need(1); err != nil {
			return command{}, err
		}
		return command{method: http.MethodGet, path: "/v1/students/" + url.PathEscape(args[0]) + "/" + name}, nil
	case "department-summary":
		if err := need(1); err != nil {
			return command{}, err
		}
		return command{method: http.MethodGet, path: "/v1/faculty/" + url.PathEscape(args[0]) + "/summary"}, nil
	case "stats":
		return command{method: http.MethodGet, path: "/v1/admin/stats"}, nil
	case "top-students":
		return command{method: http.MethodGet, path: "/v1/admin/top-students"}, nil
	case "top-faculty":
		return command{method: http.MethodGet, path: "/v1/admin/top-faculty"}, nil
	case "archive":
		if err := need(1); err != nil {
			return command{}, err
		}
		return command{method: http.MethodPost, path: "/v1/admin/sessions/" + url.PathEscape(args[0]) + "/archive"}, nil
	case "transcript":
		if err := need(1); err != nil {
			return command{}, err
		}
		return command{method: http.MethodGet, path: "/v1/admin/archives/" + strings.TrimPrefix(args[0], "/")}, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", name)
	}
}

func doRequest(ctx context.Context, client *http.Client, method, endpoint, apiKey string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(apiKey) != "" {
		req.Header.Set("X-API-Key", strings.TrimSpace(apiKey))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, responseBody, nil
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: smartcampusctl [flags] <command> [args]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  health                        GET /v1/health")
	_, _ = fmt.Fprintln(w, "  ready                         GET /v1/ready")
	_, _ = fmt.Fprintln(w, "  login <user> <password>       POST /v1/login")
	_, _ = fmt.Fprintln(w, "  ask <message...>              POST /v1/ask (uses -role, -user-id, -department, -session)")
	_, _ = fmt.Fprintln(w, "  history <session>             GET /v1/sessions/{session}/history")
	_, _ = fmt.Fprintln(w, "  gpa <student>                 GET /v1/students/{student}/gpa")
	_, _ = fmt.Fprintln(w, "  subjects <student>            GET /v1/students/{student}/subjects")
	_, _ = fmt.Fprintln(w, "  department-summary <dept>     GET /v1/faculty/{dept}/summary")
	_, _ = fmt.Fprintln(w, "  stats                         GET /v1/admin/stats")
	_, _ = fmt.Fprintln(w, "  top-students                  GET /v1/admin/top-students")
	_, _ = fmt.Fprintln(w, "  top-faculty                   GET /v1/admin/top-faculty")
	_, _ = fmt.Fprintln(w, "  archive <session>             POST /v1/admin/sessions/{session}/archive")
	_, _ = fmt.Fprintln(w, "  transcript <key>              GET /v1/admin/archives/{key}")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
