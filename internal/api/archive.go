package api

import (
	"errors"
	"net/http"

	"github.com/smartcampus/smartcampus/internal/archive"
	"github.com/smartcampus/smartcampus/internal/auth"
	"github.com/smartcampus/smartcampus/internal/campus"
	"github.com/smartcampus/smartcampus/internal/storage"
)

// archiveAllowed admits admins, or any caller when no key-bound identity
// is present.
func archiveAllowed(deps Dependencies, w http.ResponseWriter, r *http.Request) bool {
	if deps.Archiver == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ARCHIVE_NOT_CONFIGURED", "transcript archiving is not configured", false, nil)
		return false
	}
	if identity, ok := auth.IdentityFromContext(r.Context()); ok && identity.Role != campus.RoleAdmin {
		writeError(r.Context(), w, http.StatusForbidden, "ACCESS_DENIED", "only admins may manage transcript archives", false, nil)
		return false
	}
	return true
}

func handleArchiveSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if !archiveAllowed(deps, w, r) {
		return
	}
	sessionID := r.PathValue("session_id")
	receipt, err := deps.Archiver.ArchiveSession(r.Context(), sessionID)
	switch {
	case errors.Is(err, archive.ErrSessionNotFound):
		writeError(r.Context(), w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found", false, map[string]any{"session_id": sessionID})
	case err != nil:
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "transcript archive failed", "session_id", sessionID, "error", err.Error())
		}
		writeError(r.Context(), w, http.StatusBadGateway, "ARCHIVE_FAILED", "transcript archive failed", true, nil)
	default:
		writeJSON(w, http.StatusCreated, receipt)
	}
}

func handleArchivedTranscript(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if !archiveAllowed(deps, w, r) {
		return
	}
	key := r.PathValue("key")
	history, err := deps.Archiver.Transcript(r.Context(), key)
	switch {
	case errors.Is(err, storage.ErrObjectNotFound):
		writeError(r.Context(), w, http.StatusNotFound, "ARCHIVE_NOT_FOUND", "archived transcript not found", false, map[string]any{"key": key})
	case err != nil:
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "transcript read failed", "key", key, "error", err.Error())
		}
		writeError(r.Context(), w, http.StatusBadGateway, "ARCHIVE_FAILED", "archived transcript could not be read", true, nil)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"key": key, "history": history})
	}
}
