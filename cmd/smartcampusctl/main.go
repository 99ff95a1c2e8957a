package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/smartcampus/smartcampus/internal/cli/smartcampusctl"
)

func main() {
	timeout := parseDurationWithDefault(strings.TrimSpace(os.Getenv("SMARTCAMPUS_CLI_TIMEOUT")), 30*time.Second)
	options := smartcampusctl.Options{
		BaseURL:    envOr("SMARTCAMPUS_API_URL", "http://localhost:8080"),
		APIKey:     strings.TrimSpace(os.Getenv("SMARTCAMPUS_API_KEY")),
		Role:       strings.TrimSpace(os.Getenv("SMARTCAMPUS_CLI_ROLE")),
		UserID:     strings.TrimSpace(os.Getenv("SMARTCAMPUS_CLI_USER_ID")),
		Department: strings.TrimSpace(os.Getenv("SMARTCAMPUS_CLI_DEPARTMENT")),
		SessionID:  strings.TrimSpace(os.Getenv("SMARTCAMPUS_CLI_SESSION")),
		Timeout:    timeout,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}

	code := smartcampusctl.Run(context.Background(), os.Args[1:], options)
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseDurationWithDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid SMARTCAMPUS_CLI_TIMEOUT %q; using %s\n", raw, fallback)
		return fallback
	}
	return parsed
}
