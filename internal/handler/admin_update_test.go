package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsteinbach/mineral-catalog/internal/repository"
	"github.com/jsteinbach/mineral-catalog/internal/storage"
)

// newMockAdminHandler wires an AdminHandler onto a mocked database connection
// and a throwaway image directory.
func newMockAdminHandler(t *testing.T) (*AdminHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	images, err := storage.NewImageStore(t.TempDir())
	require.NoError(t, err)
	h := NewAdminHandler(
		repository.NewShowcaseRepo(db),
		repository.NewShelfRepo(db),
		repository.NewMineralRepo(db),
		images,
	)
	return h, mock
}

// putContext builds an echo context for a PUT with an urlencoded form body
// and the :id path parameter set.
func putContext(t *testing.T, values url.Values, id string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestUpdateShowcaseKeepsCreatedAt(t *testing.T) {
	h, mock := newMockAdminHandler(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, location, description, image_ref, created_at")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "code", "name", "location", "description", "image_ref", "created_at"}).
			AddRow(3, "V1", "Vitrine 1", nil, nil, nil, created))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM showcases WHERE code = ? AND id <> ?)")).
		WithArgs("V1", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE showcases")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := putContext(t, url.Values{"name": {"Vitrine 1"}, "code": {"V1"}}, "3")
	require.NoError(t, h.UpdateShowcase(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		CreatedAt time.Time `json:"created_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, created.Equal(body.CreatedAt),
		"created_at of the stored row must survive an update, got %s", body.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMineralKeepsCreatedAt(t *testing.T) {
	h, mock := newMockAdminHandler(t)
	created := time.Date(2023, 11, 20, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, number, name, color")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "number", "name", "color", "description", "location",
			"latitude", "longitude", "purchase_location", "rock_type",
			"shelf_id", "image_ref", "created_at",
		}).AddRow(7, "M-100", "Quarz", nil, nil, nil, nil, nil, nil, nil, nil, nil, created))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM minerals WHERE number = ? AND id <> ?)")).
		WithArgs("M-100", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE minerals")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := putContext(t, url.Values{"name": {"Quarz"}, "number": {"M-100"}}, "7")
	require.NoError(t, h.UpdateMineral(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		CreatedAt time.Time `json:"created_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, created.Equal(body.CreatedAt),
		"created_at of the stored row must survive an update, got %s", body.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
