package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMineralMock(t *testing.T) (*MineralRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMineralRepo(db), mock
}

func TestMineralCreateRejectsDuplicateNumber(t *testing.T) {
	r, mock := newMineralMock(t)
	// The number is trimmed before the duplicate check.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM minerals WHERE number = ?)")).
		WithArgs("M-100").
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(true))

	err := r.Create(context.Background(), &Mineral{Number: " M-100 ", Name: "Quarz"})
	assert.ErrorIs(t, err, ErrDuplicateNumber)
	assert.NoError(t, mock.ExpectationsWereMet(), "no insert may run after a duplicate number")
}

func TestMineralCreateRejectsUnknownShelf(t *testing.T) {
	r, mock := newMineralMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM minerals WHERE number = ?)")).
		WithArgs("M-100").
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM shelves WHERE id = ?)")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))

	shelfID := uint64(9)
	err := r.Create(context.Background(), &Mineral{Number: "M-100", Name: "Quarz", ShelfID: &shelfID})
	assert.ErrorIs(t, err, ErrShelfNotFound, "a dangling shelf reference is rejected, not stored")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMineralUpdateAllowsUnchangedNumber(t *testing.T) {
	r, mock := newMineralMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM minerals WHERE number = ? AND id <> ?)")).
		WithArgs("M-100", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE minerals")).
		WithArgs("M-100", "Quarz", nil, nil, nil, nil, nil, nil, nil, nil, nil, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.Update(context.Background(), &Mineral{ID: 7, Number: "M-100", Name: "Quarz"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMineralDeleteRemovesOnlyTheRow(t *testing.T) {
	r, mock := newMineralMock(t)
	// Exactly one statement: deleting a mineral never touches shelves or
	// showcases.
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM minerals WHERE id = ?")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.Delete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMineralDeleteUnknownID(t *testing.T) {
	r, mock := newMineralMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM minerals WHERE id = ?")).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, r.Delete(context.Background(), 99), ErrMineralNotFound)
}
