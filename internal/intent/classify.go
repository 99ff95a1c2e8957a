package intent

import "strings"

type Route string

const (
	RouteGreeting Route = "greeting"
	RouteChat     Route = "chat"
	RouteFAQ      Route = "faq"
	RouteSQL      Route = "sql"
)

var (
	greetingTokens = []string{"hi", "hello", "hey", "good morning", "good evening"}

	faqTokens = []string{"policy", "rules", "exam", "attendance policy", "grading", "faq"}

	facultyPhrases = []string{
		"department summary",
		"department performance",
		"department report",
		"dept performance",
		"dept summary",
		"department overview",
		"dept overview",
		"my department",
		"students in my department",
		"top students in my department",
		"faculty analytics",
		"teacher analytics",
		"department stats",
	}

	dataKeywords = []string{
		"gpa", "marks", "score", "result", "performance",
		"highest", "lowest", "top", "best", "worst",
		"attendance", "absences",
		"subject", "subjects",
		"show", "find", "list", "get",
		"department", "dept",
		"students", "faculty", "teacher", "faculty performance",
	}
)

type rule struct {
	route  Route
	tokens []string
}

// Phrase rules precede keyword rules: every faculty phrase contains a keyword.
var rules = []rule{
	{route: RouteGreeting, tokens: greetingTokens},
	{route: RouteFAQ, tokens: faqTokens},
	{route: RouteSQL, tokens: facultyPhrases},
	{route: RouteSQL, tokens: dataKeywords},
}

// Classify maps a raw message to a route using first-match-wins substring
// rules over the lower-cased, trimmed message. Unmatched input is chat.
func Classify(message string) Route {
	msg := strings.ToLower(strings.TrimSpace(message))
	for _, r := range rules {
		if containsAny(msg, r.tokens) {
			return r.route
		}
	}
	return RouteChat
}

func containsAny(msg string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}
