package history

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/qrscan/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

const (
	listQuery   = `(?s)^SELECT\s+id,\s*device_id,\s*platform,\s*code,\s*event_category,\s*event_name,\s*created_at\s+FROM\s+scan_events\s+WHERE\s+device_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC,\s*id\s+DESC\s*$`
	appendQuery = `(?s)^INSERT\s+INTO\s+scan_events\s*\(device_id,\s*platform,\s*code,\s*event_category,\s*event_name\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*created_at\s*$`
)

var listColumns = []string{"id", "device_id", "platform", "code", "event_category", "event_name", "created_at"}

func TestList_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t1 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	t0 := t1.Add(-time.Hour)
	mock.ExpectQuery(listQuery).
		WithArgs("dev-1").
		WillReturnRows(sqlmock.NewRows(listColumns).
			AddRow("e2", "dev-1", "terminal", "B", "scan", "B", t1).
			AddRow("e1", "dev-1", "terminal", "A", "scan", "A", t0))

	got, err := repo.List(context.Background(), "dev-1")
	require.NoError(t, err)

	want := []models.ScanEvent{
		{ID: "e2", DeviceID: "dev-1", Platform: "terminal", Code: "B", EventCategory: "scan", EventName: "B", CreatedAt: t1},
		{ID: "e1", DeviceID: "dev-1", Platform: "terminal", Code: "A", EventCategory: "scan", EventName: "A", CreatedAt: t0},
	}
	assert.Empty(t, cmp.Diff(want, got))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQuery).WithArgs("dev-1").WillReturnRows(sqlmock.NewRows(listColumns))

	got, err := repo.List(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestList_Errors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(listQuery).WithArgs("dev-1").WillReturnError(errors.New("db down"))

		_, err := repo.List(context.Background(), "dev-1")
		require.Error(t, err)
		assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
	})

	t.Run("scan", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(listQuery).WithArgs("dev-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("e1"))

		_, err := repo.List(context.Background(), "dev-1")
		require.ErrorContains(t, err, "scan error")
	})

	t.Run("rows", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(listQuery).WithArgs("dev-1").
			WillReturnRows(sqlmock.NewRows(listColumns).
				AddRow("e1", "dev-1", "", "A", "scan", "A", time.Now()).
				RowError(0, errors.New("broken row")))

		_, err := repo.List(context.Background(), "dev-1")
		require.ErrorContains(t, err, "broken row")
	})
}

func TestAppend_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(appendQuery).
		WithArgs("dev-1", "terminal", "upi://pay?pa=a@b", "scan", "upi://pay?pa=a@b").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("e9", at))

	e := &models.ScanEvent{DeviceID: "dev-1", Platform: "terminal", Code: "upi://pay?pa=a@b", EventCategory: "scan", EventName: "upi://pay?pa=a@b"}
	got, err := repo.Append(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "e9", got.ID)
	assert.Equal(t, at, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppend_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(appendQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Append(context.Background(), &models.ScanEvent{DeviceID: "d", Code: "c"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
}
