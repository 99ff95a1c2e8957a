// Package traffic drives synthetic chat traffic against a running API so
// that metrics and dashboards have data in demo environments.
package traffic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/smartcampus/smartcampus/internal/campus"
)

type Service struct {
	cfg       Config
	log       *slog.Logger
	http      *http.Client
	generator *Generator
	personas  []persona
}

type persona struct {
	role       campus.Role
	userID     *string
	department *string
	sessionID  string
}

type loginResponse struct {
	Role       string  `json:"role"`
	UserID     *string `json:"user_id"`
	Department *string `json:"department"`
	SessionID  string  `json:"session_id"`
}

type askRequest struct {
	SessionID  string  `json:"session_id"`
	Role       string  `json:"role"`
	UserID     *string `json:"user_id,omitempty"`
	Department *string `json:"department,omitempty"`
	Message    string  `json:"message"`
}

type askResponse struct {
	Route string `json:"route"`
}

func NewService(cfg Config, logger *slog.Logger, client *http.Client) (*Service, error) {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if len(cfg.Accounts) == 0 {
		return nil, fmt.Errorf("at least one account is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	return &Service{
		cfg:       cfg,
		log:       logger,
		http:      client,
		generator: NewGenerator(cfg.Seed),
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if len(s.personas) == 0 {
			if err := s.loginAll(ctx); err != nil {
				s.log.Error("failed to log in demo accounts", slog.Any("error", err))
			}
		} else if err := s.askOnce(ctx); err != nil {
			s.log.Error("failed to send demo asks", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) loginAll(ctx context.Context) error {
	personas := make([]persona, 0, len(s.cfg.Accounts))
	for _, account := range s.cfg.Accounts {
		var response loginResponse
		status, body, err := s.doJSON(ctx, http.MethodPost, "/v1/login", map[string]string{
			"username": account.Username,
			"password": account.Password,
		}, &response)
		if err != nil {
			return fmt.Errorf("login %s: %w", account.Username, err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("login %s status %d: %s", account.Username, status, strings.TrimSpace(string(body)))
		}
		role, err := campus.ParseRole(response.Role)
		if err != nil {
			return fmt.Errorf("login %s: %w", account.Username, err)
		}
		personas = append(personas, persona{
			role:       role,
			userID:     response.UserID,
			department: response.Department,
			sessionID:  response.SessionID,
		})
		s.log.Info("demo account logged in", slog.String("username", account.Username), slog.String("role", string(role)))
	}
	s.personas = personas
	return nil
}

func (s *Service) askOnce(ctx context.Context) error {
	routes := map[string]int{}
	for i := 0; i < s.cfg.BatchSize; i++ {
		p := s.personas[s.generator.PickIndex(len(s.personas))]
		request := askRequest{
			SessionID:  p.sessionID,
			Role:       string(p.role),
			UserID:     p.userID,
			Department: p.department,
			Message:    s.generator.NextQuestion(p.role),
		}
		var response askResponse
		status, body, err := s.doJSON(ctx, http.MethodPost, "/v1/ask", request, &response)
		if err != nil {
			return fmt.Errorf("ask request failed: %w", err)
		}
		switch {
		case status == http.StatusOK:
			routes[response.Route]++
		case status == http.StatusForbidden:
			// Access denials are expected for some admin questions.
			routes["denied"]++
		default:
			return fmt.Errorf("ask request status %d: %s", status, strings.TrimSpace(string(body)))
		}
	}

	attrs := []any{slog.Int("batch_size", s.cfg.BatchSize)}
	for route, count := range routes {
		attrs = append(attrs, slog.Int("route_"+route, count))
	}
	s.log.Info("sent demo asks", attrs...)
	return nil
}

func (s *Service) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) (int, []byte, error) {
	var payload io.Reader
	if requestBody != nil {
		raw, err := json.Marshal(requestBody)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.APIBaseURL+path, payload)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", s.cfg.APIKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	if responseBody != nil && resp.StatusCode < 300 && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, responseBody); err != nil {
			return resp.StatusCode, body, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, body, nil
}
