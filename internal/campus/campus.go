package campus

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return role, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Caller is the per-request identity supplied by the client. StudentID and
// Department are untrusted and must be escaped before they reach SQL text.
type Caller struct {
	Role       Role
	StudentID  string
	Department string
}

const (
	TableStudents    = "students"
	TablePerformance = "student_performance"
	TableFaculty     = "faculty_details"
	TableFAQs        = "faqs"

	// AuthTable and LinkageColumn must never appear in a generated statement.
	AuthTable     = "users_auth"
	LinkageColumn = "linked_student_id"
)

// AllowedTables is the fixed allow-list the schema description and prompts may
// reference, in description order.
func AllowedTables() []string {
	return []string{TableStudents, TablePerformance, TableFaculty, TableFAQs}
}
