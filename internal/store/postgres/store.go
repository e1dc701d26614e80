// Package postgres implements the persistence collaborator on pgx. All
// query methods run against the request transaction when one is bound to
// the context, and against the pool otherwise.
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/models"
	"github.com/dvnkrtk/uas-paw-kelompok9-SIBEO/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txContextKey struct{}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) db(ctx context.Context) querier {
	if tx, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

// InTx begins one transaction, binds it to the context for every store call
// inside fn, commits on nil and rolls back on error or panic. A call made
// while a transaction is already bound joins it instead of nesting.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, input store.CreateUserInput) (models.User, error) {
	var user models.User
	row := s.db(ctx).QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, lower($2), $3, $4)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, name, email, role
	`, input.Name, input.Email, input.PasswordHash, input.Role)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return models.User{}, store.ErrEmailTaken
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	row := s.db(ctx).QueryRow(ctx, `
		SELECT id, name, email, role
		FROM users
		WHERE id = $1
	`, id)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, string, error) {
	var user models.User
	var passwordHash string
	row := s.db(ctx).QueryRow(ctx, `
		SELECT id, name, email, role, password_hash
		FROM users
		WHERE email = lower($1)
	`, email)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &passwordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, "", store.ErrUserNotFound
		}
		return models.User{}, "", err
	}
	return user, passwordHash, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, name, email, role
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	row := s.db(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = lower($1))
	`, email)
	if err := row.Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

// --- courses ---

func (s *Store) CreateCourse(ctx context.Context, input store.CreateCourseInput) (models.Course, error) {
	var course models.Course
	row := s.db(ctx).QueryRow(ctx, `
		INSERT INTO courses (title, description, category, instructor_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, description, COALESCE(category, ''), instructor_id
	`, input.Title, input.Description, input.Category, input.InstructorID)
	if err := row.Scan(&course.ID, &course.Title, &course.Description, &course.Category, &course.InstructorID); err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (s *Store) GetCourse(ctx context.Context, id int64) (models.Course, error) {
	var course models.Course
	row := s.db(ctx).QueryRow(ctx, `
		SELECT c.id, c.title, c.description, COALESCE(c.category, ''), c.instructor_id, u.name
		FROM courses c
		JOIN users u ON u.id = c.instructor_id
		WHERE c.id = $1
	`, id)
	if err := row.Scan(&course.ID, &course.Title, &course.Description, &course.Category, &course.InstructorID, &course.InstructorName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Course{}, store.ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

func (s *Store) GetCourseDetail(ctx context.Context, id int64) (store.CourseDetail, error) {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return store.CourseDetail{}, err
	}
	var detail store.CourseDetail
	detail.Course = course
	row := s.db(ctx).QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM modules WHERE course_id = $1),
			(SELECT count(*) FROM enrollments WHERE course_id = $1)
	`, id)
	if err := row.Scan(&detail.ModulesCount, &detail.EnrollmentsCount); err != nil {
		return store.CourseDetail{}, err
	}
	return detail, nil
}

func (s *Store) ListCourses(ctx context.Context) ([]models.Course, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT c.id, c.title, c.description, COALESCE(c.category, ''), c.instructor_id, u.name
		FROM courses c
		JOIN users u ON u.id = c.instructor_id
		ORDER BY c.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(&course.ID, &course.Title, &course.Description, &course.Category, &course.InstructorID, &course.InstructorName); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

func (s *Store) UpdateCourse(ctx context.Context, id int64, input store.UpdateCourseInput) (models.Course, error) {
	var course models.Course
	row := s.db(ctx).QueryRow(ctx, `
		UPDATE courses SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			category = COALESCE($4, category)
		WHERE id = $1
		RETURNING id, title, description, COALESCE(category, ''), instructor_id
	`, id, input.Title, input.Description, input.Category)
	if err := row.Scan(&course.ID, &course.Title, &course.Description, &course.Category, &course.InstructorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Course{}, store.ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

func (s *Store) DeleteCourse(ctx context.Context, id int64) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrCourseNotFound
	}
	return nil
}

func (s *Store) CourseOwner(ctx context.Context, courseID int64) (any, error) {
	var owner any
	row := s.db(ctx).QueryRow(ctx, `
		SELECT instructor_id FROM courses WHERE id = $1
	`, courseID)
	if err := row.Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrCourseNotFound
		}
		return nil, err
	}
	return owner, nil
}

// --- modules ---

func (s *Store) CreateModule(ctx context.Context, input store.CreateModuleInput) (models.Module, error) {
	var module models.Module
	row := s.db(ctx).QueryRow(ctx, `
		INSERT INTO modules (course_id, title, content, position)
		VALUES ($1, $2, $3, (
			SELECT COALESCE(max(position), 0) + 1 FROM modules WHERE course_id = $1
		))
		RETURNING id, course_id, title, content, position
	`, input.CourseID, input.Title, input.Content)
	if err := row.Scan(&module.ID, &module.CourseID, &module.Title, &module.Content, &module.Position); err != nil {
		return models.Module{}, err
	}
	return module, nil
}

func (s *Store) GetModule(ctx context.Context, id int64) (models.Module, error) {
	var module models.Module
	row := s.db(ctx).QueryRow(ctx, `
		SELECT id, course_id, title, content, position
		FROM modules
		WHERE id = $1
	`, id)
	if err := row.Scan(&module.ID, &module.CourseID, &module.Title, &module.Content, &module.Position); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Module{}, store.ErrModuleNotFound
		}
		return models.Module{}, err
	}
	return module, nil
}

func (s *Store) ListCourseModules(ctx context.Context, courseID int64) ([]models.Module, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, course_id, title, content, position
		FROM modules
		WHERE course_id = $1
		ORDER BY position
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []models.Module
	for rows.Next() {
		var module models.Module
		if err := rows.Scan(&module.ID, &module.CourseID, &module.Title, &module.Content, &module.Position); err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, rows.Err()
}

func (s *Store) UpdateModule(ctx context.Context, id int64, input store.UpdateModuleInput) (models.Module, error) {
	var module models.Module
	row := s.db(ctx).QueryRow(ctx, `
		UPDATE modules SET
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			position = COALESCE($4, position)
		WHERE id = $1
		RETURNING id, course_id, title, content, position
	`, id, input.Title, input.Content, input.Position)
	if err := row.Scan(&module.ID, &module.CourseID, &module.Title, &module.Content, &module.Position); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Module{}, store.ErrModuleNotFound
		}
		return models.Module{}, err
	}
	return module, nil
}

func (s *Store) DeleteModule(ctx context.Context, id int64) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrModuleNotFound
	}
	return nil
}

func (s *Store) ModuleOwner(ctx context.Context, moduleID int64) (any, error) {
	var owner any
	row := s.db(ctx).QueryRow(ctx, `
		SELECT c.instructor_id
		FROM modules m
		JOIN courses c ON c.id = m.course_id
		WHERE m.id = $1
	`, moduleID)
	if err := row.Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrModuleNotFound
		}
		return nil, err
	}
	return owner, nil
}

// --- enrollments ---

func (s *Store) CreateEnrollment(ctx context.Context, studentID, courseID int64) (models.Enrollment, error) {
	var enrollment models.Enrollment
	row := s.db(ctx).QueryRow(ctx, `
		INSERT INTO enrollments (student_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (student_id, course_id) DO NOTHING
		RETURNING id, student_id, course_id, enrolled_at
	`, studentID, courseID)
	if err := row.Scan(&enrollment.ID, &enrollment.StudentID, &enrollment.CourseID, &enrollment.EnrolledAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return models.Enrollment{}, store.ErrAlreadyEnrolled
		}
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (s *Store) GetEnrollment(ctx context.Context, id int64) (models.Enrollment, error) {
	var enrollment models.Enrollment
	row := s.db(ctx).QueryRow(ctx, `
		SELECT id, student_id, course_id, enrolled_at
		FROM enrollments
		WHERE id = $1
	`, id)
	if err := row.Scan(&enrollment.ID, &enrollment.StudentID, &enrollment.CourseID, &enrollment.EnrolledAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Enrollment{}, store.ErrEnrollmentNotFound
		}
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (s *Store) ListStudentEnrollments(ctx context.Context, studentID int64) ([]store.EnrollmentWithCourse, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT e.id, e.student_id, e.course_id, e.enrolled_at,
		       c.id, c.title, c.description, COALESCE(c.category, ''), c.instructor_id, u.name
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		JOIN users u ON u.id = c.instructor_id
		WHERE e.student_id = $1
		ORDER BY e.enrolled_at
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []store.EnrollmentWithCourse
	for rows.Next() {
		var item store.EnrollmentWithCourse
		if err := rows.Scan(
			&item.Enrollment.ID, &item.Enrollment.StudentID, &item.Enrollment.CourseID, &item.Enrollment.EnrolledAt,
			&item.Course.ID, &item.Course.Title, &item.Course.Description, &item.Course.Category,
			&item.Course.InstructorID, &item.Course.InstructorName,
		); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, item)
	}
	return enrollments, rows.Err()
}

func (s *Store) DeleteEnrollment(ctx context.Context, id int64) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrEnrollmentNotFound
	}
	return nil
}

func (s *Store) IsEnrolled(ctx context.Context, studentID, courseID int64) (bool, error) {
	var enrolled bool
	row := s.db(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2
		)
	`, studentID, courseID)
	if err := row.Scan(&enrolled); err != nil {
		return false, err
	}
	return enrolled, nil
}

func (s *Store) EnrollmentOwner(ctx context.Context, enrollmentID int64) (any, error) {
	var owner any
	row := s.db(ctx).QueryRow(ctx, `
		SELECT student_id FROM enrollments WHERE id = $1
	`, enrollmentID)
	if err := row.Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return owner, nil
}

func (s *Store) ListCourseStudents(ctx context.Context, courseID int64) ([]models.User, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT u.id, u.name, u.email, u.role
		FROM enrollments e
		JOIN users u ON u.id = e.student_id
		WHERE e.course_id = $1
		ORDER BY u.name
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []models.User
	for rows.Next() {
		var student models.User
		if err := rows.Scan(&student.ID, &student.Name, &student.Email, &student.Role); err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

// --- dashboards ---

func (s *Store) InstructorSummary(ctx context.Context, instructorID int64) (store.InstructorSummary, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, title, description, COALESCE(category, ''), instructor_id
		FROM courses
		WHERE instructor_id = $1
		ORDER BY id
	`, instructorID)
	if err != nil {
		return store.InstructorSummary{}, err
	}
	defer rows.Close()

	var summary store.InstructorSummary
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(&course.ID, &course.Title, &course.Description, &course.Category, &course.InstructorID); err != nil {
			return store.InstructorSummary{}, err
		}
		summary.Courses = append(summary.Courses, course)
	}
	if err := rows.Err(); err != nil {
		return store.InstructorSummary{}, err
	}

	row := s.db(ctx).QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM modules m JOIN courses c ON c.id = m.course_id WHERE c.instructor_id = $1),
			(SELECT count(*) FROM enrollments e JOIN courses c ON c.id = e.course_id WHERE c.instructor_id = $1)
	`, instructorID)
	if err := row.Scan(&summary.TotalModules, &summary.TotalEnrollments); err != nil {
		return store.InstructorSummary{}, err
	}
	return summary, nil
}

// EnsureSchema creates the tables and uniqueness constraints if they do not
// exist yet. The unique indexes on users(email) and
// enrollments(student_id, course_id) are what actually protect against
// concurrent duplicate writes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS courses (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT,
			instructor_id BIGINT NOT NULL REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS modules (
			id BIGSERIAL PRIMARY KEY,
			course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			position INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS enrollments (
			id BIGSERIAL PRIMARY KEY,
			student_id BIGINT NOT NULL REFERENCES users(id),
			course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
			enrolled_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (student_id, course_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, strings.TrimSpace(stmt)); err != nil {
			return err
		}
	}
	return nil
}
