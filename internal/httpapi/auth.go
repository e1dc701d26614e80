package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/auth"
	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/models"
	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/store"

	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name, email, password, and role are required")
		return
	}
	role, err := auth.NormalizeRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	// Fast-path check for a friendly message; the unique index on email is
	// what actually prevents the duplicate under concurrency.
	taken, err := h.store.EmailTaken(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if taken {
		writeError(w, http.StatusConflict, "conflict", "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	user, err := h.store.CreateUser(r.Context(), store.CreateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         string(role),
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "conflict", "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	if !h.startSession(w, r, user, role) {
		return
	}
	writeSuccess(w, http.StatusCreated, "registration successful", user)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	user, passwordHash, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
		return
	}

	// Legacy rows may carry unnormalized roles; a row that does not
	// normalize at all is a data integrity problem.
	role, err := auth.NormalizeRole(user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	if !h.startSession(w, r, user, role) {
		return
	}
	writeSuccess(w, http.StatusOK, "login successful", user)
}

// handleLogout is idempotent: with no active session it still succeeds and
// the caller stays anonymous.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		sess.Invalidate()
	}
	writeSuccess(w, http.StatusOK, "logout successful", nil)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	user, err := h.store.GetUser(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Session names a user that no longer exists.
			if sess, ok := auth.SessionFromContext(r.Context()); ok {
				sess.Invalidate()
			}
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeSuccess(w, http.StatusOK, "current user", user)
}

// startSession rotates the caller's session to the given user. Reports
// success; on failure the error response has already been written.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user models.User, role auth.Role) bool {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return false
	}
	err := sess.Start(map[string]string{
		auth.SessionKeyUserID:    strconv.FormatInt(user.ID, 10),
		auth.SessionKeyUserEmail: user.Email,
		auth.SessionKeyUserRole:  string(role),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return false
	}
	return true
}
