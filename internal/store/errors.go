package store

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrModuleNotFound     = errors.New("module not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
)
