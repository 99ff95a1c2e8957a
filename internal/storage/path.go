package storage

import (
	"fmt"
	"path"
	"regexp"
	"time"
)

var sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// BuildTranscriptKey lays transcripts out by archive hour so a bucket
// listing for one day stays small. The millisecond suffix keeps repeated
// archives of the same session distinct.
func BuildTranscriptKey(sessionID string, archivedAt time.Time) (string, error) {
	if !sessionIDPattern.MatchString(sessionID) {
		return "", fmt.Errorf("invalid session id for archive key: %q", sessionID)
	}
	ts := archivedAt.UTC()
	return path.Join(
		fmt.Sprintf("date=%04d-%02d-%02d", ts.Year(), ts.Month(), ts.Day()),
		fmt.Sprintf("hour=%02d", ts.Hour()),
		fmt.Sprintf("session-%s-%d.parquet", sessionID, ts.UnixMilli()),
	), nil
}
