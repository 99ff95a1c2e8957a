package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/smartcampus/smartcampus/internal/assistant"
	"github.com/smartcampus/smartcampus/internal/auth"
	"github.com/smartcampus/smartcampus/internal/campus"
	"github.com/smartcampus/smartcampus/internal/session"
	"github.com/smartcampus/smartcampus/internal/sqlguard"
)

type askRequest struct {
	SessionID  string  `json:"session_id"`
	Role       string  `json:"role"`
	UserID     *string `json:"user_id"`
	Department *string `json:"department"`
	Message    string  `json:"message"`
}

type askResponse struct {
	SessionID string          `json:"session_id"`
	Route     string          `json:"route"`
	Response  any             `json:"response"`
	History   []session.Entry `json:"history"`
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Assistant == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASSISTANT_NOT_CONFIGURED", "assistant is not configured", false, nil)
		return
	}

	var request askRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.Message) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "MESSAGE_REQUIRED", "message is required", false, nil)
		return
	}

	caller, err := callerFromRequest(r, request)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_ROLE", err.Error(), false, map[string]any{"role": request.Role})
		return
	}

	sessionID := strings.TrimSpace(request.SessionID)
	if sessionID == "" {
		sessionID = newOwnedSessionID(deps, r)
	} else if !authorizeSession(w, r, sessionID) {
		return
	}

	resp, err := deps.Assistant.Ask(r.Context(), assistant.AskRequest{
		SessionID: sessionID,
		Caller:    caller,
		Message:   request.Message,
	})
	if err != nil {
		writeAskError(deps, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		SessionID: sessionID,
		Route:     string(resp.Route),
		Response:  resp.Answer,
		History:   resp.History,
	})
}

// callerFromRequest resolves the caller. An identity bound to the API key
// wins over the body; the department falls back to the body when the key
// carries none.
func callerFromRequest(r *http.Request, request askRequest) (campus.Caller, error) {
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		caller := identity.Caller()
		if caller.Department == "" && request.Department != nil {
			caller.Department = strings.TrimSpace(*request.Department)
		}
		return caller, nil
	}

	role, err := campus.ParseRole(request.Role)
	if err != nil {
		return campus.Caller{}, err
	}
	caller := campus.Caller{Role: role}
	if request.UserID != nil {
		caller.StudentID = strings.TrimSpace(*request.UserID)
	}
	if request.Department != nil {
		caller.Department = strings.TrimSpace(*request.Department)
	}
	return caller, nil
}

func writeAskError(deps Dependencies, w http.ResponseWriter, r *http.Request, err error) {
	var accessErr *sqlguard.AccessError
	switch {
	case errors.As(err, &accessErr):
		writeError(r.Context(), w, http.StatusForbidden, "ACCESS_DENIED", accessErr.Reason, false, nil)
	case errors.Is(err, sqlguard.ErrUnauthorized):
		writeError(r.Context(), w, http.StatusForbidden, "ACCESS_DENIED", "statement rejected by access policy", false, nil)
	case errors.Is(err, assistant.ErrGeneration):
		writeError(r.Context(), w, http.StatusBadGateway, "GENERATION_FAILED", "the language model request failed", true, nil)
	case errors.Is(err, assistant.ErrExecution):
		writeError(r.Context(), w, http.StatusInternalServerError, "EXECUTION_FAILED", "the generated statement could not be executed", false, nil)
	default:
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "ask failed", "error", err.Error())
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "INTERNAL", "request failed", false, nil)
	}
}

func handleCreateSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Sessions == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "SESSIONS_NOT_CONFIGURED", "session store is not configured", false, nil)
		return
	}
	sessionID := newOwnedSessionID(deps, r)
	if err := deps.Sessions.Init(r.Context(), sessionID); err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "SESSION_INIT_FAILED", err.Error(), true, nil)
		return
	}
	history, err := deps.Sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "SESSION_READ_FAILED", err.Error(), true, nil)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"session_id": sessionID, "history": history})
}

func handleHistory(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Sessions == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "SESSIONS_NOT_CONFIGURED", "session store is not configured", false, nil)
		return
	}
	sessionID := r.PathValue("session_id")
	if !authorizeSession(w, r, sessionID) {
		return
	}
	history, err := deps.Sessions.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(r.Context(), w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found", false, map[string]any{"session_id": sessionID})
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "SESSION_READ_FAILED", err.Error(), true, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "history": history})
}

var sessionOwnerNamespace = uuid.MustParse("6f3b7c1e-2d4a-5e8f-9a0b-1c2d3e4f5a6b")

// sessionOwner is the prefix that binds session ids to a key-bound
// non-admin identity. Admins and unauthenticated callers have none.
func sessionOwner(r *http.Request) string {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity.Role == campus.RoleAdmin {
		return ""
	}
	name := string(identity.Role) + ":" + identity.StudentID + ":" + identity.Department
	owner := uuid.NewSHA1(sessionOwnerNamespace, []byte(name)).String()
	return strings.ReplaceAll(owner, "-", "")[:16]
}

func newOwnedSessionID(deps Dependencies, r *http.Request) string {
	if owner := sessionOwner(r); owner != "" {
		return owner + "." + deps.NewSessionID()
	}
	return deps.NewSessionID()
}

// authorizeSession mirrors authorizeDashboard: a key-bound student or faculty
// member may only use sessions minted for that identity.
func authorizeSession(w http.ResponseWriter, r *http.Request, sessionID string) bool {
	owner := sessionOwner(r)
	if owner == "" || strings.HasPrefix(sessionID, owner+".") {
		return true
	}
	writeError(r.Context(), w, http.StatusForbidden, "ACCESS_DENIED", "identity may not use this session", false, map[string]any{"session_id": sessionID})
	return false
}
