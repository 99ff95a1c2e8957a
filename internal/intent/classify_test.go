package intent

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		message string
		want    Route
	}{
		{"hi there", RouteGreeting},
		{"  HELLO  ", RouteGreeting},
		{"good morning campus", RouteGreeting},
		{"what is the grading policy", RouteFAQ},
		{"exam rules", RouteFAQ},
		{"attendance policy", RouteFAQ},
		{"what's my gpa", RouteSQL},
		{"my marks", RouteSQL},
		{"department summary", RouteSQL},
		{"list students", RouteSQL},
		{"tell me a joke", RouteChat},
		{"", RouteChat},
	}
	for _, tc := range cases {
		if got := Classify(tc.message); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestClassifyGreetingNeverSQL(t *testing.T) {
	for _, token := range greetingTokens {
		for _, msg := range []string{token, token + " show my gpa", "top marks " + token} {
			if got := Classify(msg); got != RouteGreeting {
				t.Fatalf("Classify(%q) = %q, want greeting", msg, got)
			}
		}
	}
}

func TestClassifyFacultyPhrasesRouteToSQL(t *testing.T) {
	for _, phrase := range facultyPhrases {
		if got := Classify(phrase); got != RouteSQL {
			t.Fatalf("Classify(%q) = %q, want sql", phrase, got)
		}
	}
}

func TestClassifyFAQBeforeData(t *testing.T) {
	if got := Classify("exam marks"); got != RouteFAQ {
		t.Fatalf("Classify() = %q, want faq", got)
	}
}
