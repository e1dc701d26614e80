package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/auth"
	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/session"
	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/store"
)

type Handler struct {
	store    store.Store
	sessions *session.Manager
}

func NewHandler(st store.Store, sessions *session.Manager) *Handler {
	return &Handler{store: st, sessions: sessions}
}

// Routes builds the endpoint table. Guard chains are declared inline per
// endpoint so the required checks, and their order, are visible here.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.handleHealth)

	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.Handle("GET /api/auth/me", h.guard(h.handleMe,
		auth.Authenticated()))

	mux.HandleFunc("GET /api/users", h.handleListUsers)
	mux.HandleFunc("GET /api/users/{id}", h.handleGetUser)

	mux.HandleFunc("GET /api/courses", h.handleListCourses)
	mux.HandleFunc("GET /api/courses/{id}", h.handleGetCourse)
	mux.Handle("POST /api/courses", h.guard(h.handleCreateCourse,
		auth.Authenticated(),
		auth.RequireRole(auth.RoleInstructor)))
	mux.Handle("PUT /api/courses/{id}", h.guard(h.handleUpdateCourse,
		auth.Authenticated(),
		h.ownCourse("id")))
	mux.Handle("DELETE /api/courses/{id}", h.guard(h.handleDeleteCourse,
		auth.Authenticated(),
		h.ownCourse("id")))
	mux.Handle("GET /api/courses/{id}/students", h.guard(h.handleCourseStudents,
		auth.Authenticated(),
		h.ownCourse("id")))

	mux.Handle("GET /api/courses/{id}/modules", h.guard(h.handleListModules,
		auth.Authenticated(),
		h.courseContent("id")))
	mux.Handle("POST /api/courses/{id}/modules", h.guard(h.handleCreateModule,
		auth.Authenticated(),
		h.ownCourse("id")))
	mux.Handle("PUT /api/modules/{id}", h.guard(h.handleUpdateModule,
		auth.Authenticated(),
		h.ownModule("id")))
	mux.Handle("DELETE /api/modules/{id}", h.guard(h.handleDeleteModule,
		auth.Authenticated(),
		h.ownModule("id")))

	mux.Handle("POST /api/enrollments", h.guard(h.handleCreateEnrollment,
		auth.Authenticated(),
		auth.RequireRole(auth.RoleStudent)))
	mux.Handle("GET /api/enrollments", h.guard(h.handleListEnrollments,
		auth.Authenticated(),
		auth.RequireRole(auth.RoleStudent)))
	mux.Handle("DELETE /api/enrollments/{id}", h.guard(h.handleDeleteEnrollment,
		auth.Authenticated(),
		auth.RequireRole(auth.RoleStudent),
		h.ownEnrollment("id")))

	mux.Handle("GET /api/dashboard/instructor", h.guard(h.handleInstructorDashboard,
		auth.Authenticated(),
		auth.RequireRole(auth.RoleInstructor)))
	mux.Handle("GET /api/dashboard/student", h.guard(h.handleStudentDashboard,
		auth.Authenticated(),
		auth.RequireRole(auth.RoleStudent)))

	return h.withSession(h.withRequestTx(mux))
}

func (h *Handler) guard(handler http.HandlerFunc, guards ...auth.Guard) http.Handler {
	return auth.Chain(writeDenial, handler, guards...)
}

// withSession binds a per-request session handle to the context before any
// guard runs.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handle := h.sessions.Load(w, r)
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), handle)))
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- per-endpoint guard configurations ---

func (h *Handler) ownCourse(param string) auth.Guard {
	return auth.RequireOwner(auth.Ownership{
		Resource: "course",
		Param:    param,
		Load: func(ctx context.Context, id int64) (any, error) {
			owner, err := h.store.CourseOwner(ctx, id)
			if errors.Is(err, store.ErrCourseNotFound) {
				return nil, auth.ErrNotFound
			}
			return owner, err
		},
	})
}

func (h *Handler) ownModule(param string) auth.Guard {
	return auth.RequireOwner(auth.Ownership{
		Resource: "module",
		Param:    param,
		Load: func(ctx context.Context, id int64) (any, error) {
			owner, err := h.store.ModuleOwner(ctx, id)
			if errors.Is(err, store.ErrModuleNotFound) {
				return nil, auth.ErrNotFound
			}
			return owner, err
		},
	})
}

func (h *Handler) ownEnrollment(param string) auth.Guard {
	return auth.RequireOwner(auth.Ownership{
		Resource: "enrollment",
		Param:    param,
		Load: func(ctx context.Context, id int64) (any, error) {
			owner, err := h.store.EnrollmentOwner(ctx, id)
			if errors.Is(err, store.ErrEnrollmentNotFound) {
				return nil, auth.ErrNotFound
			}
			return owner, err
		},
	})
}

func (h *Handler) courseContent(param string) auth.Guard {
	return auth.RequireCourseAccess(auth.CourseAccess{
		Param: param,
		Instructor: func(ctx context.Context, courseID int64) (int64, error) {
			course, err := h.store.GetCourse(ctx, courseID)
			if errors.Is(err, store.ErrCourseNotFound) {
				return 0, auth.ErrNotFound
			}
			if err != nil {
				return 0, err
			}
			return course.InstructorID, nil
		},
		Enrolled: h.store.IsEnrolled,
	})
}
