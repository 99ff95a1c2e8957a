package traffic

import (
	"math/rand"

	"github.com/smartcampus/smartcampus/internal/campus"
)

// questionsByRole mixes greeting, faq, sql and chat phrasing so every route
// and the safety gate see traffic.
var questionsByRole = map[campus.Role][]string{
	campus.RoleStudent: {
		"hello",
		"what's my gpa",
		"show my marks in every subject",
		"how many absences do I have",
		"when is the exam",
		"what is the attendance policy",
		"tell me a fun fact about libraries",
	},
	campus.RoleFaculty: {
		"good morning",
		"department summary",
		"show students with low attendance",
		"list top students by gpa",
		"what are the grading rules",
	},
	campus.RoleAdmin: {
		"hey",
		"how many students are there",
		"show top faculty by performance",
		"list all users",
		"average gpa per department",
		"faq on exam policy",
	},
}

type Generator struct {
	rnd *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// NextQuestion returns a question suited to role, falling back to the admin
// pool for roles without their own.
func (g *Generator) NextQuestion(role campus.Role) string {
	pool, ok := questionsByRole[role]
	if !ok {
		pool = questionsByRole[campus.RoleAdmin]
	}
	return pool[g.rnd.Intn(len(pool))]
}

func (g *Generator) PickIndex(n int) int {
	return g.rnd.Intn(n)
}
