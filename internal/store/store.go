package store

import "errors"

var ErrNotFound = errors.New("store: not found")

type User struct {
	UserID          int64
	Username        string
	Password        string
	Role            string
	LinkedStudentID *string
	Department      *string
}

type StudentSummary struct {
	Name     string  `json:"name"`
	GPA      float64 `json:"gpa"`
	Marks    float64 `json:"marks"`
	Absences int64   `json:"absences"`
}

type RankedStudent struct {
	Name       string  `json:"name"`
	Department string  `json:"department"`
	GPA        float64 `json:"gpa"`
}

type RankedFaculty struct {
	LecturerID  string  `json:"lecturer_id"`
	Department  string  `json:"department"`
	Designation string  `json:"designation"`
	Score       float64 `json:"score"`
}

type DepartmentSummary struct {
	Department    string  `json:"department"`
	TotalStudents int64   `json:"total_students"`
	AvgGPA        float64 `json:"avg_gpa"`
}

type CampusStats struct {
	Students int64 `json:"students"`
	Faculty  int64 `json:"faculty"`
}
