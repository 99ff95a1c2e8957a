package api

import (
	"net/http"

	"github.com/smartcampus/smartcampus/internal/auth"
	"github.com/smartcampus/smartcampus/internal/campus"
)

// authorizeDashboard applies only when the request carries a key-bound
// identity: students see their own records, faculty their own department,
// and admin endpoints need the admin role. Without an identity the
// dashboards are open, matching an auth-disabled deployment.
func authorizeDashboard(w http.ResponseWriter, r *http.Request, role campus.Role, scope string) bool {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity.Role == campus.RoleAdmin {
		return true
	}
	allowed := false
	switch role {
	case campus.RoleStudent:
		allowed = identity.Role == campus.RoleStudent && identity.StudentID == scope
	case campus.RoleFaculty:
		allowed = identity.Role == campus.RoleFaculty && (identity.Department == "" || identity.Department == scope)
	}
	if !allowed {
		writeError(r.Context(), w, http.StatusForbidden, "ACCESS_DENIED", "identity may not read this dashboard", false, map[string]any{"scope": scope})
	}
	return allowed
}

func dashboardConfigured(deps Dependencies, w http.ResponseWriter, r *http.Request) bool {
	if deps.Dashboard == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "DASHBOARD_NOT_CONFIGURED", "dashboard queries are not configured", false, nil)
		return false
	}
	return true
}

func writeDashboardError(deps Dependencies, w http.ResponseWriter, r *http.Request, err error) {
	if deps.Logger != nil {
		deps.Logger.ErrorContext(r.Context(), "dashboard query failed", "path", r.URL.Path, "error", err.Error())
	}
	writeError(r.Context(), w, http.StatusInternalServerError, "DASHBOARD_QUERY_FAILED", "dashboard query failed", true, nil)
}

func handleStudentGPA(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("student_id")
	if !dashboardConfigured(deps, w, r) || !authorizeDashboard(w, r, campus.RoleStudent, studentID) {
		return
	}
	gpa, err := deps.Dashboard.StudentGPA(r.Context(), studentID)
	if err != nil {
		writeDashboardError(deps, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"overall_gpa": gpa})
}

func handleStudentSubjects(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("student_id")
	if !dashboardConfigured(deps, w, r) || !authorizeDashboard(w, r, campus.RoleStudent, studentID) {
		return
	}
	subjects, err := deps.Dashboard.StudentSubjects(r.Context(), studentID)
	if err != nil {
		writeDashboardError(deps, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subjects": subjects})
}

func handleDepartmentSummary(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	department := r.PathValue("department")
	if !dashboardConfigured(deps, w, r) || !authorizeDashboard(w, r, campus.RoleFaculty, department) {
		return
	}
	summary, err := deps.Dashboard.DepartmentSummary(r.Context(), department)
	if err != nil {
		writeDashboardError(deps, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func handleDepartmentTopStudents(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	department := r.PathValue("department")
	if !dashboardConfigured(deps, w, r) || !authorizeDashboard(w, r, campus.RoleFaculty, department) {
		return
	}
	students, err := deps.Dashboard.DepartmentTopStudents(r.Context(), department)
	if err != nil {
		writeDashboardError(deps, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"students": students})
}

func handleCampusStats(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if !dashboardConfigured(deps, w, r) || !authorizeDashboard(w, r, campus.RoleAdmin, "") {
		return
	}
	stats, err := deps.Dashboard.CampusStats(r.Context())
	if err != nil {
		writeDashboardError(deps, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func handleTopStudents(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if !dashboardConfigured(deps, w, r) || !authorizeDashboard(w, r, campus.RoleAdmin, "") {
		return
	}
	students, err := deps.Dashboard.TopStudents(r.Context())
	if err != nil {
		writeDashboardError(deps, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"students": students})
}

func handleTopFaculty(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if !dashboardConfigured(deps, w, r) || !authorizeDashboard(w, r, campus.RoleAdmin, "") {
		return
	}
	faculty, err := deps.Dashboard.TopFaculty(r.Context())
	if err != nil {
		writeDashboardError(deps, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"faculty": faculty})
}
