package session

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("session: not found")

const WelcomeMessage = "Hi! 😊 I’m SmartCampus. How can I help you today?"

type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Store keeps conversation history keyed by session id. Its lifecycle is
// owned by the caller of the assistant, not by the pipeline.
type Store interface {
	// Init seeds a new session with the welcome message; existing sessions
	// are left untouched.
	Init(ctx context.Context, sessionID string) error
	Append(ctx context.Context, sessionID string, entry Entry) error
	// Get returns ErrNotFound for unknown sessions.
	Get(ctx context.Context, sessionID string) ([]Entry, error)
}

func welcome() Entry {
	return Entry{Role: RoleAssistant, Content: WelcomeMessage}
}
