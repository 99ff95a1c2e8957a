package nl2sql

import (
	"strings"

	"github.com/smartcampus/smartcampus/internal/campus"
	"github.com/smartcampus/smartcampus/internal/config"
)

// Dialect is the SQL dialect name the prompts ask the generator for.
type Dialect string

const (
	DialectPostgres Dialect = "PostgreSQL"
	DialectDuckDB   Dialect = "DuckDB"
)

// DialectForDriver maps a database/sql driver name to the prompt dialect.
func DialectForDriver(driver string) Dialect {
	if driver == config.DriverDuckDB {
		return DialectDuckDB
	}
	return DialectPostgres
}

func (d Dialect) name() string {
	if d == "" {
		return string(DialectPostgres)
	}
	return string(d)
}

// Focus is the question sub-type that picks the output column set.
type Focus string

const (
	FocusMarks       Focus = "marks"
	FocusAttendance  Focus = "attendance"
	FocusSummary     Focus = "summary"
	FocusPerformance Focus = "performance"
)

// Ordering is the sort direction cued by the question wording.
type Ordering string

const (
	OrderNone       Ordering = ""
	OrderDescending Ordering = "desc"
	OrderAscending  Ordering = "asc"
)

var (
	summaryCues    = []string{"summary", "overview", "report", "stats", "analytics"}
	attendanceCues = []string{"attendance", "absence", "absent"}
	marksCues      = []string{"gpa", "marks", "mark", "grade", "score", "best", "worst", "top", "lowest", "highest"}
	descCues       = []string{"top", "best", "highest"}
	ascCues        = []string{"worst", "lowest"}
)

func DetectFocus(question string) Focus {
	q := strings.ToLower(question)
	switch {
	case hasAny(q, summaryCues):
		return FocusSummary
	case hasAny(q, attendanceCues):
		return FocusAttendance
	case hasAny(q, marksCues):
		return FocusMarks
	default:
		return FocusPerformance
	}
}

func DetectOrdering(question string) Ordering {
	q := strings.ToLower(question)
	switch {
	case hasAny(q, descCues):
		return OrderDescending
	case hasAny(q, ascCues):
		return OrderAscending
	default:
		return OrderNone
	}
}

// BuildPrompt selects the role variant. Prompts are hints to the generator;
// isolation is enforced downstream by sqlguard.
func BuildPrompt(question, schema string, caller campus.Caller, dialect Dialect) string {
	switch caller.Role {
	case campus.RoleStudent:
		return BuildStudentPrompt(question, schema, caller.StudentID, dialect)
	case campus.RoleFaculty:
		return BuildFacultyPrompt(question, schema, caller.Department, dialect)
	default:
		return BuildAdminPrompt(question, schema, dialect)
	}
}

func ChatPrompt(message string) string {
	return "You are a helpful SmartCampus assistant.\nUser: " + message
}

func FAQPrompt(message string, passages []string) string {
	return "Use ONLY this context:\n\n" + strings.Join(passages, "\n") + "\n\nQ: " + message
}

func orderingHint(question string) string {
	switch DetectOrdering(question) {
	case OrderDescending:
		return "ORDER BY sp.gpa DESC, sp.final_marks DESC"
	case OrderAscending:
		return "ORDER BY sp.gpa ASC, sp.final_marks ASC"
	default:
		return "no ordering required"
	}
}

func hasAny(text string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}
