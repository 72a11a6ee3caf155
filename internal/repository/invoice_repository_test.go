package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unienroll/enroll-api/internal/models"
)

func TestInvoiceRepositoryFindByStudentSemester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "semester", "total_amount", "paid_amount", "issue_date", "due_date", "status"}).
		AddRow("inv-1", "s1", "JAN2026", 900.0, 300.0, time.Now(), time.Now(), "PARTIAL")
	mock.ExpectQuery("FROM invoices WHERE student_id = ").
		WithArgs("s1", "JAN2026").
		WillReturnRows(rows)

	invoice, err := repo.FindByStudentSemester(context.Background(), "s1", "JAN2026")
	require.NoError(t, err)
	assert.Equal(t, 600.0, invoice.BalanceDue())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryInsertDetail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectExec("INSERT INTO invoice_details").
		WithArgs(sqlmock.AnyArg(), "inv-1", "CS101", 450.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	detail := &models.InvoiceDetail{InvoiceID: "inv-1", CourseID: "CS101", CourseFee: 450}
	err := repo.InsertDetail(context.Background(), detail)
	require.NoError(t, err)
	assert.NotEmpty(t, detail.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryDeleteDetailMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM invoice_details WHERE invoice_id = $1 AND course_id = $2")).
		WithArgs("inv-1", "CS999").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteDetail(context.Background(), "inv-1", "CS999")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryRecomputeTotal(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectExec("UPDATE invoices SET").
		WithArgs("inv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RecomputeTotal(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
