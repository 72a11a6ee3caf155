package models

import "time"

// Payment records a settled payment against an invoice. Gateway handling is
// external; by the time a row lands here the money has moved.
type Payment struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	InvoiceID string    `db:"invoice_id" json:"invoice_id"`
	Amount    float64   `db:"amount" json:"amount"`
	Method    string    `db:"method" json:"method"`
	Reference string    `db:"reference" json:"reference"`
	PaidAt    time.Time `db:"paid_at" json:"paid_at"`
}
