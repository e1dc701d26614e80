package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/auth"
	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/models"
	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/store"
)

type createEnrollmentRequest struct {
	CourseID int64 `json:"course_id"`
}

type enrollmentItem struct {
	EnrollmentID int64         `json:"enrollment_id"`
	EnrolledDate string        `json:"enrolled_date"`
	Course       models.Course `json:"course"`
}

func (h *Handler) handleCreateEnrollment(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	var req createEnrollmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CourseID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "valid course_id is required")
		return
	}

	if _, err := h.store.GetCourse(r.Context(), req.CourseID); err != nil {
		if errors.Is(err, store.ErrCourseNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "course not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	// Fast-path check; the unique (student_id, course_id) index decides
	// under concurrent identical requests.
	enrolled, err := h.store.IsEnrolled(r.Context(), identity.UserID, req.CourseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if enrolled {
		writeError(w, http.StatusConflict, "conflict", "already enrolled in this course")
		return
	}

	enrollment, err := h.store.CreateEnrollment(r.Context(), identity.UserID, req.CourseID)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyEnrolled) {
			writeError(w, http.StatusConflict, "conflict", "already enrolled in this course")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeSuccess(w, http.StatusCreated, "enrolled successfully", enrollment)
}

func (h *Handler) handleListEnrollments(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	enrollments, err := h.store.ListStudentEnrollments(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	items := make([]enrollmentItem, 0, len(enrollments))
	for _, e := range enrollments {
		items = append(items, enrollmentItem{
			EnrollmentID: e.Enrollment.ID,
			EnrolledDate: e.Enrollment.EnrolledAt.Format(time.RFC3339),
			Course:       e.Course,
		})
	}
	writeList(w, http.StatusOK, "enrollments", items, len(items))
}

func (h *Handler) handleDeleteEnrollment(w http.ResponseWriter, r *http.Request) {
	id, err := auth.ParsePathID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid enrollment id")
		return
	}
	if err := h.store.DeleteEnrollment(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrEnrollmentNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "enrollment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeSuccess(w, http.StatusOK, "unenrolled successfully", nil)
}
