package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Enrollment workflow errors. Precondition failures surface verbatim to the
// student or admin who triggered them.
var (
	ErrAlreadyEnrolled         = New("ALREADY_ENROLLED", http.StatusConflict, "student is already enrolled in this course for the semester")
	ErrSeatsFull               = New("SEATS_FULL", http.StatusConflict, "course is full, no seats available")
	ErrCreditLimitExceeded     = New("CREDIT_LIMIT_EXCEEDED", http.StatusConflict, "adding this course exceeds the semester credit limit")
	ErrScheduleConflict        = New("SCHEDULE_CONFLICT", http.StatusConflict, "course schedule conflicts with the current timetable")
	ErrNotEnrolled             = New("NOT_ENROLLED", http.StatusConflict, "student is not enrolled in this course for the semester")
	ErrDuplicatePendingRequest = New("DUPLICATE_PENDING_REQUEST", http.StatusConflict, "a request for this course is already pending approval")
	ErrRequestNotFound         = New("REQUEST_NOT_FOUND", http.StatusNotFound, "request not found or already processed")
	ErrNoInvoiceFound          = New("NO_INVOICE_FOUND", http.StatusUnprocessableEntity, "no invoice found for the student this semester")
	ErrNoCourseCostFound       = New("NO_COURSE_COST_FOUND", http.StatusUnprocessableEntity, "no cost recorded for the course")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err matches the target typed error by code.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}
