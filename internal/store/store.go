package store

import (
	"context"

	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/models"
)

type CreateUserInput struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
}

type CreateCourseInput struct {
	Title        string
	Description  string
	Category     string
	InstructorID int64
}

// Update inputs use pointers: nil leaves the column untouched.
type UpdateCourseInput struct {
	Title       *string
	Description *string
	Category    *string
}

type CreateModuleInput struct {
	CourseID int64
	Title    string
	Content  string
}

type UpdateModuleInput struct {
	Title    *string
	Content  *string
	Position *int
}

type CourseDetail struct {
	Course           models.Course
	ModulesCount     int
	EnrollmentsCount int
}

type EnrollmentWithCourse struct {
	Enrollment models.Enrollment
	Course     models.Course
}

type InstructorSummary struct {
	Courses          []models.Course
	TotalModules     int
	TotalEnrollments int
}

// Store is the persistence collaborator. Uniqueness constraints on
// users(email) and enrollments(student_id, course_id) are the authoritative
// race defense; the Create methods surface violations as ErrEmailTaken and
// ErrAlreadyEnrolled.
type Store interface {
	CreateUser(ctx context.Context, input CreateUserInput) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, string, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)

	CreateCourse(ctx context.Context, input CreateCourseInput) (models.Course, error)
	GetCourse(ctx context.Context, id int64) (models.Course, error)
	GetCourseDetail(ctx context.Context, id int64) (CourseDetail, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
	UpdateCourse(ctx context.Context, id int64, input UpdateCourseInput) (models.Course, error)
	DeleteCourse(ctx context.Context, id int64) error
	// CourseOwner returns the stored instructor_id value for the ownership
	// verifier to coerce and compare.
	CourseOwner(ctx context.Context, courseID int64) (any, error)

	CreateModule(ctx context.Context, input CreateModuleInput) (models.Module, error)
	GetModule(ctx context.Context, id int64) (models.Module, error)
	ListCourseModules(ctx context.Context, courseID int64) ([]models.Module, error)
	UpdateModule(ctx context.Context, id int64, input UpdateModuleInput) (models.Module, error)
	DeleteModule(ctx context.Context, id int64) error
	// ModuleOwner resolves ownership transitively through the module's
	// course.
	ModuleOwner(ctx context.Context, moduleID int64) (any, error)

	CreateEnrollment(ctx context.Context, studentID, courseID int64) (models.Enrollment, error)
	GetEnrollment(ctx context.Context, id int64) (models.Enrollment, error)
	ListStudentEnrollments(ctx context.Context, studentID int64) ([]EnrollmentWithCourse, error)
	DeleteEnrollment(ctx context.Context, id int64) error
	IsEnrolled(ctx context.Context, studentID, courseID int64) (bool, error)
	EnrollmentOwner(ctx context.Context, enrollmentID int64) (any, error)
	ListCourseStudents(ctx context.Context, courseID int64) ([]models.User, error)

	InstructorSummary(ctx context.Context, instructorID int64) (InstructorSummary, error)

	// InTx runs fn inside a single transaction: begin, fn, commit on nil,
	// rollback on error or panic. Nested calls reuse the outer transaction.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
