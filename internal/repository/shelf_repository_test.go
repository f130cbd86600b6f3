package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShelfMock(t *testing.T) (*ShelfRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewShelfRepo(db), mock
}

func TestShelfCreateRequiresExistingShowcase(t *testing.T) {
	r, mock := newShelfMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM showcases WHERE id = ?)")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))

	err := r.Create(context.Background(), &Shelf{ShowcaseID: 3, Code: "01", Name: "oben"})
	assert.ErrorIs(t, err, ErrShowcaseNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShelfCreateRejectsDuplicateCodeWithinShowcase(t *testing.T) {
	r, mock := newShelfMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM showcases WHERE id = ?)")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(true))
	// Uniqueness is scoped to the showcase: both columns take part in the
	// duplicate check.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM shelves WHERE showcase_id = ? AND code = ?)")).
		WithArgs(int64(3), "01").
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(true))

	err := r.Create(context.Background(), &Shelf{ShowcaseID: 3, Code: "01", Name: "oben"})
	assert.ErrorIs(t, err, ErrDuplicateCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShelfUpdateExcludesOwnRowFromUniquenessCheck(t *testing.T) {
	r, mock := newShelfMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM showcases WHERE id = ?)")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM shelves WHERE showcase_id = ? AND code = ? AND id <> ?)")).
		WithArgs(int64(3), "01", int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE shelves")).
		WithArgs(int64(3), "01", "oben", nil, int64(2), nil, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.Update(context.Background(), &Shelf{ID: 5, ShowcaseID: 3, Code: "01", Name: "oben", PositionOrder: 2})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShelfDeleteDetachesMinerals(t *testing.T) {
	r, mock := newShelfMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM shelves WHERE id = ?)")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(true))
	// The detach runs before the shelf row disappears so no mineral can ever
	// point at a missing shelf; mineral rows themselves always survive.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE minerals SET shelf_id = NULL WHERE shelf_id = ?")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM shelves WHERE id = ?")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, r.Delete(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShelfDeleteUnknownIDRollsBack(t *testing.T) {
	r, mock := newShelfMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM shelves WHERE id = ?)")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))
	mock.ExpectRollback()

	assert.ErrorIs(t, r.Delete(context.Background(), 99), ErrShelfNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
