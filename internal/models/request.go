package models

import "time"

// RequestAction is the student's intent.
type RequestAction string

const (
	RequestActionAdd  RequestAction = "Add"
	RequestActionDrop RequestAction = "Drop"
)

// RequestStatus is the adjudication state. Pending is the only state an
// admin may act on; Approved and Rejected are terminal.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "Pending"
	RequestStatusApproved RequestStatus = "Approved"
	RequestStatusRejected RequestStatus = "Rejected"
)

// EnrollmentRequest records a student-submitted add/drop intent. Rows are
// append-only once processed.
type EnrollmentRequest struct {
	ID            string        `db:"id" json:"id"`
	StudentID     string        `db:"student_id" json:"student_id"`
	CourseID      string        `db:"course_id" json:"course_id"`
	Action        RequestAction `db:"action" json:"action"`
	Reason        string        `db:"reason" json:"reason"`
	Status        RequestStatus `db:"status" json:"status"`
	Semester      string        `db:"semester" json:"semester"`
	RequestDate   time.Time     `db:"request_date" json:"request_date"`
	ProcessedDate *time.Time    `db:"processed_date" json:"processed_date,omitempty"`
	ProcessedBy   *string       `db:"processed_by" json:"processed_by,omitempty"`
}

// EnrollmentRequestDetail enriches a request with the names the admin queue
// displays.
type EnrollmentRequestDetail struct {
	EnrollmentRequest
	CourseName  string `db:"course_name" json:"course_name"`
	StudentName string `db:"student_name" json:"student_name"`
}
