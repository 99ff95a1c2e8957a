package nl2sql

import (
	"fmt"
	"strings"

	"github.com/smartcampus/smartcampus/internal/sqlguard"
)

const facultyPromptTemplate = `You generate ONLY %[6]s SELECT queries. STRICT.

FACULTY RULES:
- Faculty can ONLY access:
      students
      student_performance
- NEVER use any other table.
- ALWAYS USE THIS JOIN (no exceptions):
      FROM students s
      JOIN student_performance sp
      ON s.student_id = sp.student_id
- ALWAYS filter BY department:
      s.department = %[1]s
- NEVER invent column names.
- NEVER reference users_auth or linked_student_id or faculty_details.
- NEVER return explanations. SQL ONLY.

OUTPUT RULES:
If question is about GPA or marks:
    SELECT s.student_name, s.department, sp.subject_name, sp.final_marks, sp.gpa

If question is about attendance:
    SELECT s.student_name, s.department, sp.subject_name, sp.absences

If question is about performance in general:
    SELECT s.student_name, s.department, sp.subject_name, sp.final_marks, sp.gpa, sp.absences

If question is about department summary:
    SELECT
        s.department,
        COUNT(s.student_id) AS total_students,
        ROUND(AVG(sp.gpa),2) AS avg_gpa,
        SUM(sp.absences) AS total_absences
    FROM students s
    JOIN student_performance sp ON s.student_id = sp.student_id
    WHERE s.department = %[1]s
    GROUP BY s.department

Detected question type: %[2]s

ORDERING RULES:
- "top", "best", "highest"  -> ORDER BY sp.gpa DESC, sp.final_marks DESC
- "worst", "lowest"         -> ORDER BY sp.gpa ASC, sp.final_marks ASC
Detected ordering: %[3]s

SCHEMA:
%[4]s

USER QUESTION:
%[5]s

SQL ONLY:`

var facultyColumns = map[Focus]string{
	FocusMarks:       "GPA or marks",
	FocusAttendance:  "attendance",
	FocusSummary:     "department summary",
	FocusPerformance: "performance in general",
}

func BuildFacultyPrompt(question, schema, department string, dialect Dialect) string {
	return fmt.Sprintf(facultyPromptTemplate,
		sqlguard.Literal(department),
		facultyColumns[DetectFocus(question)],
		orderingHint(question),
		schema,
		strings.TrimSpace(question),
		dialect.name(),
	)
}
