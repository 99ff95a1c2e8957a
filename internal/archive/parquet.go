package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/smartcampus/smartcampus/internal/session"
)

const parquetContentType = "application/vnd.apache.parquet"

// transcriptRow is one history entry. Position preserves chat order since
// readers are free to reorder rows.
type transcriptRow struct {
	SessionID        string `parquet:"session_id"`
	Position         int32  `parquet:"position"`
	Role             string `parquet:"role"`
	Content          string `parquet:"content"`
	ArchivedAtUnixMs int64  `parquet:"archived_at_unix_ms"`
}

func encodeTranscript(sessionID string, history []session.Entry, archivedAtUnixMs int64) ([]byte, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("history is empty")
	}
	rows := make([]transcriptRow, len(history))
	for i, entry := range history {
		rows[i] = transcriptRow{
			SessionID:        sessionID,
			Position:         int32(i),
			Role:             entry.Role,
			Content:          entry.Content,
			ArchivedAtUnixMs: archivedAtUnixMs,
		}
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[transcriptRow](buf)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeTranscript(data []byte) ([]transcriptRow, error) {
	reader := parquet.NewGenericReader[transcriptRow](bytes.NewReader(data))
	defer func() { _ = reader.Close() }()

	rows := make([]transcriptRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read parquet rows: %w", err)
	}
	return rows[:n], nil
}
