package models

import "time"

// EvaluationState tracks whether the course-feedback survey was completed.
type EvaluationState string

const (
	EvaluationStatePending   EvaluationState = "Pending"
	EvaluationStateCompleted EvaluationState = "Completed"
)

// EvaluationStatus exists for every active enrollment and is removed with it.
type EvaluationStatus struct {
	ID           string          `db:"id" json:"id"`
	EnrollmentID string          `db:"enrollment_id" json:"enrollment_id"`
	Status       EvaluationState `db:"status" json:"status"`
	FilledUpDate *time.Time      `db:"filled_up_date" json:"filled_up_date,omitempty"`
}

// EvaluationDetail joins the status with course context for listings.
type EvaluationDetail struct {
	EvaluationStatus
	CourseID   string `db:"course_id" json:"course_id"`
	CourseName string `db:"course_name" json:"course_name"`
	Semester   string `db:"semester" json:"semester"`
}
