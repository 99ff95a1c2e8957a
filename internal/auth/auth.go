package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartcampus/smartcampus/internal/campus"
)

// Identity is bound to an API key. A non-empty StudentID or Department
// overrides whatever the request body claims.
type Identity struct {
	Role       campus.Role
	StudentID  string
	Department string
}

func (i Identity) Caller() campus.Caller {
	return campus.Caller{Role: i.Role, StudentID: i.StudentID, Department: i.Department}
}

type APIKeyValidator interface {
	Validate(ctx context.Context, apiKey string) (Identity, bool)
}

type StaticAPIKeyValidator struct {
	keys map[string]Identity
}

// NewStaticAPIKeyValidator parses "key:role[:student_id[:department]]"
// entries separated by commas.
func NewStaticAPIKeyValidator(spec string) (*StaticAPIKeyValidator, error) {
	validator := &StaticAPIKeyValidator{keys: map[string]Identity{}}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return validator, nil
	}

	entries := strings.Split(spec, ",")
	for _, entry := range entries {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) < 2 || len(parts) > 4 {
			return nil, fmt.Errorf("invalid static key entry %q: expected key:role[:student_id[:department]]", entry)
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			return nil, fmt.Errorf("invalid static key entry %q: empty key", entry)
		}
		role, err := campus.ParseRole(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid static key entry %q: %w", entry, err)
		}
		identity := Identity{Role: role}
		if len(parts) > 2 {
			identity.StudentID = strings.TrimSpace(parts[2])
		}
		if len(parts) > 3 {
			identity.Department = strings.TrimSpace(parts[3])
		}
		if role == campus.RoleStudent && identity.StudentID == "" {
			return nil, fmt.Errorf("invalid static key entry %q: student keys need a student id", entry)
		}
		validator.keys[key] = identity
	}

	return validator, nil
}

func (v *StaticAPIKeyValidator) Validate(_ context.Context, apiKey string) (Identity, bool) {
	identity, ok := v.keys[apiKey]
	return identity, ok
}
