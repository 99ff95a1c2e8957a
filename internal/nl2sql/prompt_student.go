package nl2sql

import (
	"fmt"
	"strings"

	"github.com/smartcampus/smartcampus/internal/sqlguard"
)

const studentPromptTemplate = `You MUST generate ONLY a %[6]s SELECT query.
No explanation, no text, no markdown, no comments.

==============================
STUDENT ACCESS RULES (STRICT)
==============================
- Student can access ONLY their own data.
- ALWAYS use this join pattern:

    FROM students s
    JOIN student_performance sp
    ON s.student_id = sp.student_id

- ALWAYS filter student data using:
    s.student_id = %[1]s

- NEVER use any table except:
    students
    student_performance

- NEVER reference:
    users_auth
    linked_student_id
    faculty_details

==============================
COLUMN OUTPUT RULES
==============================
If question is about:
- GPA / marks / best / worst / top / lowest ->
    SELECT s.student_name, sp.subject_name, sp.final_marks, sp.gpa

- attendance / absences ->
    SELECT s.student_name, sp.subject_name, sp.absences

- general performance ->
    SELECT s.student_name, sp.subject_name, sp.final_marks, sp.gpa, sp.absences

Detected question type: %[2]s

==============================
ORDERING RULES (VERY IMPORTANT)
==============================
If the question mentions:
- "top", "best", "highest"  -> ORDER BY sp.gpa DESC, sp.final_marks DESC
- "worst", "lowest"         -> ORDER BY sp.gpa ASC, sp.final_marks ASC

Detected ordering: %[3]s

==============================
SCHEMA:
%[4]s
==============================

USER QUESTION:
%[5]s

Generate ONLY the SQL SELECT query:`

var studentColumns = map[Focus]string{
	FocusMarks:       "GPA / marks",
	FocusAttendance:  "attendance / absences",
	FocusSummary:     "general performance",
	FocusPerformance: "general performance",
}

func BuildStudentPrompt(question, schema, studentID string, dialect Dialect) string {
	return fmt.Sprintf(studentPromptTemplate,
		sqlguard.Literal(studentID),
		studentColumns[DetectFocus(question)],
		orderingHint(question),
		schema,
		strings.TrimSpace(question),
		dialect.name(),
	)
}
