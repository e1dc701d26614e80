package auth

import (
	"context"
	"errors"
	"net/http"
)

// CourseAccess supplies the two lookups the enrollment gate needs, as
// concrete closures over the store.
type CourseAccess struct {
	// Param is the path segment carrying the course id.
	Param string
	// Instructor returns the owning instructor id for a course, or
	// ErrNotFound.
	Instructor func(ctx context.Context, courseID int64) (int64, error)
	// Enrolled reports whether the student has an enrollment row for the
	// course.
	Enrolled func(ctx context.Context, studentID, courseID int64) (bool, error)
}

// RequireCourseAccess gates course content. The owning instructor and
// enrolled students pass; everyone else is Forbidden. Role alone never
// grants access: an instructor who does not own the course is denied
// exactly like an unenrolled student.
func RequireCourseAccess(cfg CourseAccess) Guard {
	return func(r *http.Request) (*http.Request, *Denial) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			return nil, Deny(KindUnauthenticated, "authentication required")
		}
		courseID, err := ParsePathID(r.PathValue(cfg.Param))
		if err != nil {
			return nil, Deny(KindBadRequest, "invalid course id")
		}
		instructorID, err := cfg.Instructor(r.Context(), courseID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, Deny(KindNotFound, "course not found")
			}
			return nil, Deny(KindServerError, "internal server error")
		}
		switch identity.Role {
		case RoleInstructor:
			if instructorID == identity.UserID {
				return nil, nil
			}
		case RoleStudent:
			enrolled, err := cfg.Enrolled(r.Context(), identity.UserID, courseID)
			if err != nil {
				return nil, Deny(KindServerError, "internal server error")
			}
			if enrolled {
				return nil, nil
			}
		}
		return nil, Deny(KindForbidden, "access denied: you must be enrolled in this course")
	}
}
