package postgres

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/smartcampus/smartcampus/internal/query"
	"github.com/smartcampus/smartcampus/internal/store"
)

// Dashboard serves the fixed per-role dashboard queries. Caller supplied
// values are always bound as parameters, never spliced into the text.
type Dashboard struct {
	engine query.Engine
}

func NewDashboard(engine query.Engine) *Dashboard {
	return &Dashboard{engine: engine}
}

const (
	studentGPAQuery = `
SELECT ROUND(AVG(gpa), 2) AS overall_gpa
FROM student_performance
WHERE student_id = $1`

	studentSubjectsQuery = `
SELECT DISTINCT subject_name
FROM student_performance
WHERE student_id = $1
ORDER BY subject_name`

	departmentCountQuery = `
SELECT COUNT(*) AS total_students
FROM students
WHERE department = $1`

	departmentGPAQuery = `
SELECT AVG(sp.gpa) AS avg_gpa
FROM student_performance sp
JOIN students s ON s.student_id = sp.student_id
WHERE s.department = $1`

	departmentTopStudentsQuery = `
SELECT s.student_name, sp.gpa, sp.final_marks, sp.absences
FROM students s
JOIN student_performance sp ON s.student_id = sp.student_id
WHERE s.department = $1
ORDER BY sp.gpa DESC
LIMIT 5`

	studentCountQuery = `SELECT COUNT(*) AS students FROM students`
	facultyCountQuery = `SELECT COUNT(*) AS faculty FROM faculty_details`

	topStudentsQuery = `
SELECT s.student_name, s.department, ROUND(AVG(sp.gpa), 2) AS gpa
FROM students s
JOIN student_performance sp ON s.student_id = sp.student_id
GROUP BY s.student_name, s.department
ORDER BY 3 DESC
LIMIT 5`

	topFacultyQuery = `
SELECT lecturer_id, department, designation, overall_performance_score
FROM faculty_details
ORDER BY overall_performance_score DESC
LIMIT 5`
)

// StudentGPA returns nil when the student has no performance rows.
func (d *Dashboard) StudentGPA(ctx context.Context, studentID string) (*float64, error) {
	result, err := d.engine.Execute(ctx, query.Request{SQL: studentGPAQuery, Args: []any{studentID}})
	if err != nil {
		return nil, fmt.Errorf("student gpa: %w", err)
	}
	if len(result.Rows) == 0 || len(result.Rows[0]) == 0 || result.Rows[0][0] == nil {
		return nil, nil
	}
	gpa := asFloat(result.Rows[0][0])
	return &gpa, nil
}

func (d *Dashboard) StudentSubjects(ctx context.Context, studentID string) ([]string, error) {
	result, err := d.engine.Execute(ctx, query.Request{SQL: studentSubjectsQuery, Args: []any{studentID}})
	if err != nil {
		return nil, fmt.Errorf("student subjects: %w", err)
	}
	subjects := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		if len(row) > 0 && row[0] != nil {
			subjects = append(subjects, asString(row[0]))
		}
	}
	return subjects, nil
}

func (d *Dashboard) DepartmentSummary(ctx context.Context, department string) (store.DepartmentSummary, error) {
	total, err := d.scalar(ctx, departmentCountQuery, department)
	if err != nil {
		return store.DepartmentSummary{}, fmt.Errorf("department student count: %w", err)
	}
	avg, err := d.scalar(ctx, departmentGPAQuery, department)
	if err != nil {
		return store.DepartmentSummary{}, fmt.Errorf("department gpa: %w", err)
	}
	return store.DepartmentSummary{
		Department:    department,
		TotalStudents: asInt(total),
		AvgGPA:        round2(asFloat(avg)),
	}, nil
}

func (d *Dashboard) DepartmentTopStudents(ctx context.Context, department string) ([]store.StudentSummary, error) {
	result, err := d.engine.Execute(ctx, query.Request{SQL: departmentTopStudentsQuery, Args: []any{department}})
	if err != nil {
		return nil, fmt.Errorf("department top students: %w", err)
	}
	out := make([]store.StudentSummary, 0, len(result.Rows))
	for _, row := range result.Rows {
		if len(row) < 4 {
			continue
		}
		out = append(out, store.StudentSummary{
			Name:     asString(row[0]),
			GPA:      asFloat(row[1]),
			Marks:    asFloat(row[2]),
			Absences: asInt(row[3]),
		})
	}
	return out, nil
}

func (d *Dashboard) CampusStats(ctx context.Context) (store.CampusStats, error) {
	students, err := d.scalar(ctx, studentCountQuery)
	if err != nil {
		return store.CampusStats{}, fmt.Errorf("count students: %w", err)
	}
	faculty, err := d.scalar(ctx, facultyCountQuery)
	if err != nil {
		return store.CampusStats{}, fmt.Errorf("count faculty: %w", err)
	}
	return store.CampusStats{Students: asInt(students), Faculty: asInt(faculty)}, nil
}

func (d *Dashboard) TopStudents(ctx context.Context) ([]store.RankedStudent, error) {
	result, err := d.engine.Execute(ctx, query.Request{SQL: topStudentsQuery})
	if err != nil {
		return nil, fmt.Errorf("top students: %w", err)
	}
	out := make([]store.RankedStudent, 0, len(result.Rows))
	for _, row := range result.Rows {
		if len(row) < 3 {
			continue
		}
		out = append(out, store.RankedStudent{
			Name:       asString(row[0]),
			Department: asString(row[1]),
			GPA:        asFloat(row[2]),
		})
	}
	return out, nil
}

func (d *Dashboard) TopFaculty(ctx context.Context) ([]store.RankedFaculty, error) {
	result, err := d.engine.Execute(ctx, query.Request{SQL: topFacultyQuery})
	if err != nil {
		return nil, fmt.Errorf("top faculty: %w", err)
	}
	out := make([]store.RankedFaculty, 0, len(result.Rows))
	for _, row := range result.Rows {
		if len(row) < 4 {
			continue
		}
		out = append(out, store.RankedFaculty{
			LecturerID:  asString(row[0]),
			Department:  asString(row[1]),
			Designation: asString(row[2]),
			Score:       asFloat(row[3]),
		})
	}
	return out, nil
}

func (d *Dashboard) scalar(ctx context.Context, sqlText string, args ...any) (any, error) {
	result, err := d.engine.Execute(ctx, query.Request{SQL: sqlText, Args: args})
	if err != nil {
		return nil, err
	}
	if len(result.Rows) == 0 || len(result.Rows[0]) == 0 {
		return nil, nil
	}
	return result.Rows[0][0], nil
}

func asFloat(v any) float64 {
	switch typed := v.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int64:
		return float64(typed)
	case int32:
		return float64(typed)
	case int:
		return float64(typed)
	case string:
		parsed, _ := strconv.ParseFloat(typed, 64)
		return parsed
	default:
		return 0
	}
}

func asInt(v any) int64 {
	switch typed := v.(type) {
	case int64:
		return typed
	case int32:
		return int64(typed)
	case int:
		return int64(typed)
	case float64:
		return int64(typed)
	case string:
		parsed, _ := strconv.ParseInt(typed, 10, 64)
		return parsed
	default:
		return 0
	}
}

func asString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
