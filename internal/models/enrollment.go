package models

import "time"

// Enrollment is the durable ledger row for an active course registration.
// At most one row exists per (student, course, semester).
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	Semester   string    `db:"semester" json:"semester"`
	LastAction string    `db:"last_action" json:"last_action"`
	ActionDate time.Time `db:"action_date" json:"action_date"`
}

// EnrolledCourse joins an enrollment with the course fields needed for
// timetable display and conflict checks.
type EnrolledCourse struct {
	EnrollmentID string  `db:"enrollment_id" json:"enrollment_id"`
	CourseID     string  `db:"course_id" json:"course_id"`
	CourseName   string  `db:"course_name" json:"course_name"`
	CreditHours  int     `db:"credit_hours" json:"credit_hours"`
	DayOfWeek    string  `db:"day_of_week" json:"day_of_week"`
	StartTime    string  `db:"start_time" json:"start_time"`
	EndTime      string  `db:"end_time" json:"end_time"`
	Venue        string  `db:"venue" json:"venue"`
	Lecturer     string  `db:"lecturer" json:"lecturer"`
	Section      string  `db:"section" json:"section"`
	Cost         float64 `db:"cost" json:"cost"`
}
