package httpapi

import (
	"net/http"
	"time"

	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/auth"
	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/models"
)

type instructorDashboardResponse struct {
	Instructor   models.User     `json:"instructor"`
	CoursesCount int             `json:"courses_count"`
	Courses      []models.Course `json:"courses"`
	Stats        dashboardStats  `json:"stats"`
}

type dashboardStats struct {
	TotalEnrollments int `json:"total_enrollments"`
	TotalModules     int `json:"total_modules"`
}

type studentDashboardResponse struct {
	Student         models.User      `json:"student"`
	EnrolledCourses []enrollmentItem `json:"enrolled_courses"`
	CoursesCount    int              `json:"courses_count"`
}

func (h *Handler) handleInstructorDashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	user, err := h.store.GetUser(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	summary, err := h.store.InstructorSummary(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeSuccess(w, http.StatusOK, "instructor dashboard", instructorDashboardResponse{
		Instructor:   user,
		CoursesCount: len(summary.Courses),
		Courses:      summary.Courses,
		Stats: dashboardStats{
			TotalEnrollments: summary.TotalEnrollments,
			TotalModules:     summary.TotalModules,
		},
	})
}

func (h *Handler) handleStudentDashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	user, err := h.store.GetUser(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	enrollments, err := h.store.ListStudentEnrollments(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	courses := make([]enrollmentItem, 0, len(enrollments))
	for _, e := range enrollments {
		courses = append(courses, enrollmentItem{
			EnrollmentID: e.Enrollment.ID,
			EnrolledDate: e.Enrollment.EnrolledAt.Format(time.RFC3339),
			Course:       e.Course,
		})
	}
	writeSuccess(w, http.StatusOK, "student dashboard", studentDashboardResponse{
		Student:         user,
		EnrolledCourses: courses,
		CoursesCount:    len(courses),
	})
}
