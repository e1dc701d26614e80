package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/auth"
	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/store"
)

type createModuleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updateModuleRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Position *int    `json:"order"`
}

func (h *Handler) handleListModules(w http.ResponseWriter, r *http.Request) {
	courseID, err := auth.ParsePathID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid course id")
		return
	}
	modules, err := h.store.ListCourseModules(r.Context(), courseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeList(w, http.StatusOK, "course modules", modules, len(modules))
}

func (h *Handler) handleCreateModule(w http.ResponseWriter, r *http.Request) {
	courseID, err := auth.ParsePathID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid course id")
		return
	}
	var req createModuleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "title and content are required")
		return
	}
	module, err := h.store.CreateModule(r.Context(), store.CreateModuleInput{
		CourseID: courseID,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeSuccess(w, http.StatusCreated, "module created successfully", module)
}

func (h *Handler) handleUpdateModule(w http.ResponseWriter, r *http.Request) {
	id, err := auth.ParsePathID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid module id")
		return
	}
	var req updateModuleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	module, err := h.store.UpdateModule(r.Context(), id, store.UpdateModuleInput{
		Title:    req.Title,
		Content:  req.Content,
		Position: req.Position,
	})
	if err != nil {
		if errors.Is(err, store.ErrModuleNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "module not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeSuccess(w, http.StatusOK, "module updated successfully", module)
}

func (h *Handler) handleDeleteModule(w http.ResponseWriter, r *http.Request) {
	id, err := auth.ParsePathID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid module id")
		return
	}
	if err := h.store.DeleteModule(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrModuleNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "module not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeSuccess(w, http.StatusOK, "module deleted successfully", nil)
}
