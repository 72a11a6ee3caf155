package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreInTxCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE id = $1")).
		WithArgs("enr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.InTx(context.Background(), func(tx TxView) error {
		return tx.DeleteEnrollment(context.Background(), "enr-1")
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreInTxRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	store := NewStore(db)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := store.InTx(context.Background(), func(tx TxView) error {
		return boom
	})
	assert.Equal(t, boom, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
