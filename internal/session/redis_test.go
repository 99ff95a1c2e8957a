package session

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDecodeEntries(t *testing.T) {
	entries, err := decodeEntries([]string{`{"role":"user","content":"hi"}`, `{"role":"assistant","content":"hello"}`})
	if err != nil {
		t.Fatalf("decodeEntries() error = %v", err)
	}
	if len(entries) != 2 || entries[1].Role != RoleAssistant {
		t.Fatalf("entries = %#v", entries)
	}
	if _, err := decodeEntries([]string{"not-json"}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNewRedisStoreRequiresAddr(t *testing.T) {
	if _, err := NewRedisStore(RedisConfig{}); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("SMARTCAMPUS_TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("SMARTCAMPUS_TEST_REDIS_ADDR is not set")
	}

	store, err := NewRedisStore(RedisConfig{Addr: addr, KeyPrefix: "smartcampus:test:", TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	sessionID := uuid.NewString()
	if _, err := store.Get(ctx, sessionID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() before init error = %v", err)
	}
	if err := store.Init(ctx, sessionID); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := store.Init(ctx, sessionID); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	if err := store.Append(ctx, sessionID, Entry{Role: RoleUser, Content: "what's my gpa"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	history, err := store.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(history) != 2 || history[0].Content != WelcomeMessage || history[1].Content != "what's my gpa" {
		t.Fatalf("history = %#v", history)
	}
}
