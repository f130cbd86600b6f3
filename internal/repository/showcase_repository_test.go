package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newShowcaseMock returns a repo backed by a mocked connection together with
// the expectation handle.  Expectations are matched in order, so the tests
// below also pin the sequence of statements.
func newShowcaseMock(t *testing.T) (*ShowcaseRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewShowcaseRepo(db), mock
}

func TestShowcaseCreateRejectsDuplicateCode(t *testing.T) {
	r, mock := newShowcaseMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM showcases WHERE code = ?)")).
		WithArgs("V1").
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(true))

	err := r.Create(context.Background(), &Showcase{Code: "V1", Name: "Vitrine 1"})
	assert.ErrorIs(t, err, ErrDuplicateCode)
	assert.NoError(t, mock.ExpectationsWereMet(), "no insert may run after a duplicate code")
}

func TestShowcaseUpdateExcludesOwnRowFromUniquenessCheck(t *testing.T) {
	r, mock := newShowcaseMock(t)
	// The exclusion of the row's own id is what makes saving an unchanged
	// code succeed.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM showcases WHERE code = ? AND id <> ?)")).
		WithArgs("V1", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE showcases")).
		WithArgs("V1", "Vitrine 1", nil, nil, nil, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.Update(context.Background(), &Showcase{ID: 3, Code: "V1", Name: "Vitrine 1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowcaseDeleteDetachesMineralsBeforeRemovingShelves(t *testing.T) {
	r, mock := newShowcaseMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT image_ref FROM showcases WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"image_ref"}).AddRow("case.jpg"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT image_ref FROM shelves WHERE showcase_id = ? AND image_ref IS NOT NULL")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"image_ref"}).AddRow("shelf.jpg"))
	// Minerals are detached while their shelves still exist, then the
	// shelves go, then the showcase.  A mineral row is never deleted.
	mock.ExpectExec(`UPDATE minerals m JOIN shelves s ON s\.id = m\.shelf_id SET m\.shelf_id = NULL WHERE s\.showcase_id = \?`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM shelves WHERE showcase_id = ?")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM showcases WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	refs, err := r.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"case.jpg", "shelf.jpg"}, refs,
		"image refs of the showcase and its shelves are collected for cleanup")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowcaseDeleteUnknownIDRollsBack(t *testing.T) {
	r, mock := newShowcaseMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT image_ref FROM showcases WHERE id = ?")).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := r.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, ErrShowcaseNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
