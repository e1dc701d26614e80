package models

import "time"

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Course struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       string `json:"category,omitempty"`
	InstructorID   int64  `json:"instructor_id"`
	InstructorName string `json:"instructor_name,omitempty"`
}

// Module position is stored in the "position" column ("order" is reserved
// in SQL) but keeps the original "order" name on the wire.
type Module struct {
	ID       int64  `json:"id"`
	CourseID int64  `json:"course_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Position int    `json:"order"`
}

type Enrollment struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	CourseID   int64     `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_date"`
}
