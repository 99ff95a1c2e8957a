package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/smartcampus/smartcampus/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message    string  `json:"message"`
	Role       string  `json:"role"`
	UserID     *string `json:"user_id"`
	Department *string `json:"department"`
	DisplayID  string  `json:"display_id"`
	Username   string  `json:"username"`
	SessionID  string  `json:"session_id"`
}

func handleLogin(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Authenticator == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "LOGIN_NOT_CONFIGURED", "login is not configured", false, nil)
		return
	}

	var request loginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid login request body", false, map[string]any{"details": err.Error()})
		return
	}

	profile, err := deps.Authenticator.Login(r.Context(), strings.TrimSpace(request.Username), request.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(r.Context(), w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials", false, nil)
			return
		}
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "login failed", "error", err.Error())
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "LOGIN_FAILED", "login failed", true, nil)
		return
	}

	sessionID := deps.NewSessionID()
	if deps.Sessions != nil {
		if err := deps.Sessions.Init(r.Context(), sessionID); err != nil {
			writeError(r.Context(), w, http.StatusInternalServerError, "SESSION_INIT_FAILED", err.Error(), true, nil)
			return
		}
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message:    "Login successful",
		Role:       string(profile.Role),
		UserID:     profile.UserID,
		Department: profile.Department,
		DisplayID:  profile.DisplayID,
		Username:   profile.Username,
		SessionID:  sessionID,
	})
}
