package nl2sql

import (
	"fmt"
	"strings"
)

const adminPromptTemplate = `You are an expert %[4]s query generator.
Generate ONLY a SELECT query.

========================================
ADMIN PERMISSIONS
========================================
Admin can fully access:
  • students
  • student_performance
  • faculty_details

Admin CANNOT use:
  • users_auth
  • linked_student_id
  • Any table not shown in schema

========================================
QUERY DECISION RULES
========================================
1) If the question is about STUDENTS (gpa, marks, subjects, attendance, performance):
      -> Use: students s JOIN student_performance sp ON s.student_id = sp.student_id
      -> Output allowed columns:
            student_name,
            subject_name,
            final_marks,
            gpa,
            absences

2) If the question is about FACULTY (teachers, staff, performance, ratings):
      -> Use: faculty_details
      -> Use ONLY valid columns shown in the schema.
      -> Faculty name = faculty
      -> Overall score = overall_performance_score

3) NEVER mix faculty_details with student tables unless explicitly asked.

4) NEVER invent columns. Use EXACT names from schema.

5) Ordering: "top", "best", "highest" sort descending; "worst", "lowest" sort ascending.
   Detected ordering: %[1]s

========================================
SCHEMA:
%[2]s

========================================
QUESTION:
%[3]s

Return ONLY the SQL query with no explanation:`

func BuildAdminPrompt(question, schema string, dialect Dialect) string {
	ordering := "none"
	switch DetectOrdering(question) {
	case OrderDescending:
		ordering = "descending"
	case OrderAscending:
		ordering = "ascending"
	}
	return fmt.Sprintf(adminPromptTemplate, ordering, schema, strings.TrimSpace(question), dialect.name())
}
