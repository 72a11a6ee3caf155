package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unienroll/enroll-api/internal/models"
)

// PaymentRepository records settled payments and keeps the invoice header in
// step. It holds the pool directly because Record needs its own transaction.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Record inserts the payment and bumps the invoice paid_amount and status in
// one transaction.
func (r *PaymentRepository) Record(ctx context.Context, payment *models.Payment) (err error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record payment tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertQuery = `INSERT INTO payments (id, student_id, invoice_id, amount, method, reference, paid_at)
        VALUES (:id, :student_id, :invoice_id, :amount, :method, :reference, :paid_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, payment); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	const updateQuery = `UPDATE invoices SET
        paid_amount = paid_amount + $2,
        status = CASE
            WHEN paid_amount + $2 >= total_amount AND total_amount > 0 THEN 'PAID'
            WHEN paid_amount + $2 > 0 THEN 'PARTIAL'
            ELSE 'UNPAID'
        END
        WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateQuery, payment.InvoiceID, payment.Amount); err != nil {
		return fmt.Errorf("apply payment to invoice: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit record payment tx: %w", err)
	}
	return nil
}

// ListByStudent returns the student's payment history, newest first.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Payment, error) {
	const query = `SELECT id, student_id, invoice_id, amount, method, reference, paid_at
        FROM payments WHERE student_id = $1 ORDER BY paid_at DESC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
