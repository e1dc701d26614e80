package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/auth"
	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/store"
)

type createCourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type updateCourseRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

type courseDetailResponse struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Category         string `json:"category,omitempty"`
	InstructorID     int64  `json:"instructor_id"`
	InstructorName   string `json:"instructor_name,omitempty"`
	ModulesCount     int    `json:"modules_count"`
	EnrollmentsCount int    `json:"enrollments_count"`
}

func (h *Handler) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.store.ListCourses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeList(w, http.StatusOK, "courses", courses, len(courses))
}

func (h *Handler) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := auth.ParsePathID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid course id")
		return
	}
	detail, err := h.store.GetCourseDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrCourseNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "course not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeSuccess(w, http.StatusOK, "course", courseDetailResponse{
		ID:               detail.Course.ID,
		Title:            detail.Course.Title,
		Description:      detail.Course.Description,
		Category:         detail.Course.Category,
		InstructorID:     detail.Course.InstructorID,
		InstructorName:   detail.Course.InstructorName,
		ModulesCount:     detail.ModulesCount,
		EnrollmentsCount: detail.EnrollmentsCount,
	})
}

func (h *Handler) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	var req createCourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Description == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "title and description are required")
		return
	}
	course, err := h.store.CreateCourse(r.Context(), store.CreateCourseInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     strings.TrimSpace(req.Category),
		InstructorID: identity.UserID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeSuccess(w, http.StatusCreated, "course created successfully", course)
}

func (h *Handler) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := auth.ParsePathID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid course id")
		return
	}
	var req updateCourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	course, err := h.store.UpdateCourse(r.Context(), id, store.UpdateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		if errors.Is(err, store.ErrCourseNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "course not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeSuccess(w, http.StatusOK, "course updated successfully", course)
}

func (h *Handler) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := auth.ParsePathID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid course id")
		return
	}
	if err := h.store.DeleteCourse(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrCourseNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "course not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeSuccess(w, http.StatusOK, "course deleted successfully", nil)
}

func (h *Handler) handleCourseStudents(w http.ResponseWriter, r *http.Request) {
	id, err := auth.ParsePathID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid course id")
		return
	}
	students, err := h.store.ListCourseStudents(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeList(w, http.StatusOK, "course students", students, len(students))
}
