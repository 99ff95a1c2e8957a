// Package archive writes conversation transcripts to object storage as
// Parquet so they can be queried offline, e.g. with DuckDB.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/smartcampus/smartcampus/internal/session"
	"github.com/smartcampus/smartcampus/internal/storage"
)

var ErrSessionNotFound = errors.New("archive: session not found")

type Receipt struct {
	SessionID  string    `json:"session_id"`
	Key        string    `json:"key"`
	Entries    int       `json:"entries"`
	SizeBytes  int64     `json:"size_bytes"`
	ETag       string    `json:"etag,omitempty"`
	ArchivedAt time.Time `json:"archived_at"`
}

type Service struct {
	sessions session.Store
	objects  storage.ObjectStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(sessions session.Store, objects storage.ObjectStore, logger *slog.Logger) (*Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if objects == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{sessions: sessions, objects: objects, logger: logger, now: time.Now}, nil
}

// ArchiveSession snapshots the session's current history. The live
// session is left untouched.
func (s *Service) ArchiveSession(ctx context.Context, sessionID string) (Receipt, error) {
	history, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return Receipt{}, ErrSessionNotFound
	}
	if err != nil {
		return Receipt{}, fmt.Errorf("load history: %w", err)
	}

	archivedAt := s.now().UTC()
	key, err := storage.BuildTranscriptKey(sessionID, archivedAt)
	if err != nil {
		return Receipt{}, err
	}
	data, err := encodeTranscript(sessionID, history, archivedAt.UnixMilli())
	if err != nil {
		return Receipt{}, fmt.Errorf("encode transcript: %w", err)
	}

	start := time.Now()
	info, err := s.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{ContentType: parquetContentType})
	observeUpload(err, time.Since(start))
	if err != nil {
		return Receipt{}, err
	}

	s.logger.InfoContext(ctx, "transcript archived",
		slog.String("session_id", sessionID),
		slog.String("key", key),
		slog.Int("entries", len(history)),
		slog.Int("bytes", len(data)),
	)
	return Receipt{
		SessionID:  sessionID,
		Key:        key,
		Entries:    len(history),
		SizeBytes:  int64(len(data)),
		ETag:       info.ETag,
		ArchivedAt: archivedAt,
	}, nil
}

// Transcript reads an archived transcript back in chat order.
func (s *Service) Transcript(ctx context.Context, key string) ([]session.Entry, error) {
	reader, err := s.objects.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	rows, err := decodeTranscript(data)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })

	entries := make([]session.Entry, len(rows))
	for i, row := range rows {
		entries[i] = session.Entry{Role: row.Role, Content: row.Content}
	}
	return entries, nil
}
