package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unienroll/enroll-api/internal/models"
	appErrors "github.com/unienroll/enroll-api/pkg/errors"
	"github.com/unienroll/enroll-api/pkg/semester"
)

type invoiceReader interface {
	FindByStudentSemester(ctx context.Context, studentID, semester string) (*models.Invoice, error)
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
	ListDetails(ctx context.Context, invoiceID string) ([]models.InvoiceDetail, error)
}

type paymentStore interface {
	Record(ctx context.Context, payment *models.Payment) error
	ListByStudent(ctx context.Context, studentID string) ([]models.Payment, error)
}

// RecordPaymentRequest carries a settled payment to be applied to an invoice.
type RecordPaymentRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	InvoiceID string  `json:"invoice_id" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Method    string  `json:"method" validate:"required,oneof=CASH CARD TRANSFER"`
	Reference string  `json:"reference"`
}

// BillingService exposes invoice views and applies settled payments.
type BillingService struct {
	invoices  invoiceReader
	payments  paymentStore
	students  studentReader
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewBillingService constructs BillingService.
func NewBillingService(invoices invoiceReader, payments paymentStore, students studentReader, validate *validator.Validate, logger *zap.Logger) *BillingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{
		invoices:  invoices,
		payments:  payments,
		students:  students,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// InvoiceForStudent returns the student's invoice for the given semester
// with its line items and computed balance. An empty semesterCode means
// the current semester.
func (s *BillingService) InvoiceForStudent(ctx context.Context, studentID, semesterCode string) (*models.InvoiceView, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if semesterCode == "" {
		semesterCode = semester.Current(s.now())
	} else if !semester.Valid(semesterCode) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid semester code %q", semesterCode))
	}

	invoice, err := s.invoices.FindByStudentSemester(ctx, studentID, semesterCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrNoInvoiceFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invoice")
	}
	details, err := s.invoices.ListDetails(ctx, invoice.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invoice lines")
	}
	return &models.InvoiceView{
		Invoice:    *invoice,
		BalanceDue: invoice.BalanceDue(),
		Details:    details,
	}, nil
}

// RecordPayment applies a settled payment to an invoice. Overpayment beyond
// the balance due is refused.
func (s *BillingService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	invoice, err := s.invoices.FindByID(ctx, req.InvoiceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrNoInvoiceFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invoice")
	}
	if invoice.StudentID != req.StudentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invoice does not belong to this student")
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, appErrors.Clone(appErrors.ErrConflict, "invoice is already settled")
	}
	if balance := invoice.BalanceDue(); req.Amount > balance {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("payment of %.2f exceeds the balance due of %.2f", req.Amount, balance))
	}

	payment := &models.Payment{
		StudentID: req.StudentID,
		InvoiceID: req.InvoiceID,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		PaidAt:    s.now().UTC(),
	}
	if err := s.payments.Record(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("invoice_id", payment.InvoiceID),
		zap.String("student_id", payment.StudentID),
		zap.Float64("amount", payment.Amount),
	)
	return payment, nil
}

// ListPayments returns the student's payment history, newest first.
func (s *BillingService) ListPayments(ctx context.Context, studentID string) ([]models.Payment, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	payments, err := s.payments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, nil
}
