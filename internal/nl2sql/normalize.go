package nl2sql

import "strings"

var fenceReplacer = strings.NewReplacer(
	"\n", " ",
	"\r", " ",
	"\t", " ",
)

// Normalize turns raw generator output into a single-line candidate statement.
func Normalize(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```sql", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = fenceReplacer.Replace(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}
