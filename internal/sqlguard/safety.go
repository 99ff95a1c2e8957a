package sqlguard

import "strings"

// mutatingVerbs is matched as plain substrings, including inside string
// literals and identifiers such as "created_at". False positives are accepted.
var mutatingVerbs = []string{
	"INSERT", "UPDATE", "DELETE",
	"DROP", "ALTER", "TRUNCATE",
	"CREATE",
}

func IsSafe(statement string) bool {
	upper := strings.ToUpper(statement)
	for _, verb := range mutatingVerbs {
		if strings.Contains(upper, verb) {
			return false
		}
	}
	return true
}
