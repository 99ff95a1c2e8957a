package sqlguard

import "strings"

// Literal renders value as a single-quoted SQL string literal with embedded
// quotes doubled.
func Literal(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
