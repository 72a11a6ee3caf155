package models

import "time"

// InvoiceStatus tracks settlement progress.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "UNPAID"
	InvoiceStatusPartial InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
)

// Invoice is the per-semester billing header. Exactly one exists per
// (student, semester); it is issued at semester start by the billing
// system and only mutated here.
type Invoice struct {
	ID          string        `db:"id" json:"id"`
	StudentID   string        `db:"student_id" json:"student_id"`
	Semester    string        `db:"semester" json:"semester"`
	TotalAmount float64       `db:"total_amount" json:"total_amount"`
	PaidAmount  float64       `db:"paid_amount" json:"paid_amount"`
	IssueDate   time.Time     `db:"issue_date" json:"issue_date"`
	DueDate     time.Time     `db:"due_date" json:"due_date"`
	Status      InvoiceStatus `db:"status" json:"status"`
}

// BalanceDue is the remaining amount owed.
func (i Invoice) BalanceDue() float64 {
	return i.TotalAmount - i.PaidAmount
}

// InvoiceDetail is one per-course line item contributing to an invoice.
type InvoiceDetail struct {
	ID        string  `db:"id" json:"id"`
	InvoiceID string  `db:"invoice_id" json:"invoice_id"`
	CourseID  string  `db:"course_id" json:"course_id"`
	CourseFee float64 `db:"course_fee" json:"course_fee"`
}

// InvoiceView bundles an invoice with its line items for display.
type InvoiceView struct {
	Invoice
	BalanceDue float64         `json:"balance_due"`
	Details    []InvoiceDetail `json:"details"`
}
