package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/unienroll/enroll-api/internal/models"
)

// InvoiceRepository handles the billing header and its line items. Invoice
// creation happens at semester start in the billing system; this repository
// only reads headers and keeps them in sync with enrollment changes.
type InvoiceRepository struct {
	db DBTX
}

// NewInvoiceRepository constructs the repository.
func NewInvoiceRepository(db DBTX) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// FindByStudentSemester returns the single invoice for the combination, or
// sql.ErrNoRows.
func (r *InvoiceRepository) FindByStudentSemester(ctx context.Context, studentID, semester string) (*models.Invoice, error) {
	const query = `SELECT id, student_id, semester, total_amount, paid_amount, issue_date, due_date, status
        FROM invoices WHERE student_id = $1 AND semester = $2`
	var invoice models.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, studentID, semester); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByID returns an invoice by its ID.
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	const query = `SELECT id, student_id, semester, total_amount, paid_amount, issue_date, due_date, status
        FROM invoices WHERE id = $1`
	var invoice models.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, id); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListDetails returns the invoice line items.
func (r *InvoiceRepository) ListDetails(ctx context.Context, invoiceID string) ([]models.InvoiceDetail, error) {
	const query = `SELECT id, invoice_id, course_id, course_fee FROM invoice_details WHERE invoice_id = $1 ORDER BY course_id`
	var details []models.InvoiceDetail
	if err := r.db.SelectContext(ctx, &details, query, invoiceID); err != nil {
		return nil, fmt.Errorf("list invoice details: %w", err)
	}
	return details, nil
}

// InsertDetail adds a line item for a newly enrolled course.
func (r *InvoiceRepository) InsertDetail(ctx context.Context, detail *models.InvoiceDetail) error {
	if detail.ID == "" {
		detail.ID = uuid.NewString()
	}
	const query = `INSERT INTO invoice_details (id, invoice_id, course_id, course_fee)
        VALUES (:id, :invoice_id, :course_id, :course_fee)`
	if _, err := r.db.NamedExecContext(ctx, query, detail); err != nil {
		return fmt.Errorf("insert invoice detail: %w", err)
	}
	return nil
}

// DeleteDetail removes the line item for a dropped course.
func (r *InvoiceRepository) DeleteDetail(ctx context.Context, invoiceID, courseID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invoice_details WHERE invoice_id = $1 AND course_id = $2`, invoiceID, courseID)
	if err != nil {
		return fmt.Errorf("delete invoice detail: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete invoice detail result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RecomputeTotal rewrites total_amount as the full sum of the invoice's line
// items and refreshes the settlement status. A full recompute avoids drift;
// it must run inside the transaction that changed the details.
func (r *InvoiceRepository) RecomputeTotal(ctx context.Context, invoiceID string) error {
	const query = `UPDATE invoices SET
        total_amount = COALESCE((SELECT SUM(course_fee) FROM invoice_details WHERE invoice_id = $1), 0),
        status = CASE
            WHEN paid_amount >= COALESCE((SELECT SUM(course_fee) FROM invoice_details WHERE invoice_id = $1), 0)
                AND COALESCE((SELECT SUM(course_fee) FROM invoice_details WHERE invoice_id = $1), 0) > 0 THEN 'PAID'
            WHEN paid_amount > 0 THEN 'PARTIAL'
            ELSE 'UNPAID'
        END
        WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, invoiceID); err != nil {
		return fmt.Errorf("recompute invoice total: %w", err)
	}
	return nil
}
