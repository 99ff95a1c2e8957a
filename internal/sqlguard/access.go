package sqlguard

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/smartcampus/smartcampus/internal/campus"
)

var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrUnsafe       = errors.New("unsafe statement")
)

// ScopeColumn is the student-alias identity column every student query is
// filtered on. The generator is instructed to alias students as "s".
const ScopeColumn = "s.student_id"

var placeholderPattern = regexp.MustCompile(`\$[0-9]`)

type AccessError struct {
	Role   campus.Role
	Reason string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("access denied for role %q: %s", e.Role, e.Reason)
}

func (e *AccessError) Unwrap() error {
	return ErrUnauthorized
}

// Approved is a statement that passed the safety gate and the access
// enforcer. It can only be produced by Approve.
type Approved struct {
	sql  string
	args []any
}

func (a Approved) SQL() string {
	return a.sql
}

func (a Approved) Args() []any {
	return append([]any(nil), a.args...)
}

// Decision carries the approved statement; Rewritten reports whether the
// enforcer added a scoping filter.
type Decision struct {
	Approved  Approved
	Rewritten bool
}

// enforceText is the text-only form of the access enforcer: the student
// scoping filter is interpolated as an escaped literal.
func enforceText(statement string, caller campus.Caller) (string, error) {
	decision, err := enforce(statement, caller, false)
	if err != nil {
		return "", err
	}
	return decision.Approved.sql, nil
}

// Approve runs the safety gate and the access enforcer and returns the only
// form the executor accepts. Unsafe statements fail with ErrUnsafe before any
// access check. With bind set, the student scoping value is
// passed as a positional parameter instead of text, unless the statement
// already uses positional placeholders.
func Approve(statement string, caller campus.Caller, bind bool) (Decision, error) {
	if !IsSafe(statement) {
		return Decision{}, ErrUnsafe
	}
	return enforce(statement, caller, bind)
}

func enforce(statement string, caller campus.Caller, bind bool) (Decision, error) {
	sql := trimStatement(statement)
	lower := strings.ToLower(sql)

	if strings.Contains(lower, campus.AuthTable) || strings.Contains(lower, campus.LinkageColumn) {
		return Decision{}, &AccessError{Role: caller.Role, Reason: "statement references a forbidden table or column"}
	}

	switch caller.Role {
	case campus.RoleStudent:
		return scopeToStudent(sql, lower, caller, bind)
	case campus.RoleFaculty, campus.RoleAdmin:
		return Decision{Approved: Approved{sql: sql}}, nil
	default:
		return Decision{}, &AccessError{Role: caller.Role, Reason: "unknown role"}
	}
}

func scopeToStudent(sql, lower string, caller campus.Caller, bind bool) (Decision, error) {
	id := strings.TrimSpace(caller.StudentID)
	if id == "" {
		return Decision{}, &AccessError{Role: caller.Role, Reason: "student identity is required"}
	}
	if isSelfScoped(lower, id) {
		return Decision{Approved: Approved{sql: sql}}, nil
	}

	keyword := " WHERE "
	if strings.Contains(lower, "where") {
		keyword = " AND "
	}
	if bind && !placeholderPattern.MatchString(sql) {
		return Decision{
			Approved:  Approved{sql: sql + keyword + ScopeColumn + " = $1", args: []any{id}},
			Rewritten: true,
		}, nil
	}
	return Decision{
		Approved:  Approved{sql: sql + keyword + ScopeColumn + " = " + Literal(id)},
		Rewritten: true,
	}, nil
}

// isSelfScoped matches the exact-case and lower-cased identity forms by
// comparing against the lower-cased statement.
func isSelfScoped(lower, id string) bool {
	filter := strings.ToLower(ScopeColumn + " = " + Literal(id))
	return strings.Contains(lower, filter)
}

func trimStatement(statement string) string {
	sql := strings.TrimSpace(statement)
	sql = strings.TrimRight(sql, ";")
	return strings.TrimSpace(sql)
}
