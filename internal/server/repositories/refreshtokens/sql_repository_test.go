package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/clientbook/internal/common"
	"github.com/dmitrijs2005/clientbook/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, time.Time) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := NewSQLRepository(db, dbx.DialectPostgres)
	r.now = func() time.Time { return now }
	return r, mock, now
}

func TestCreate(t *testing.T) {
	repo, mock, now := newRepoWithMock(t)
	exp := now.Add(time.Hour)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO refresh_tokens (id,user_id,token,expires_at,created_at) VALUES ($1,$2,$3,$4,$5)`)).
		WithArgs(sqlmock.AnyArg(), "u1", "tok", exp, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), "u1", "tok", exp))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectExec(`INSERT INTO refresh_tokens`).WillReturnError(errors.New("down"))

	err := repo.Create(context.Background(), "u1", "tok", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
}

func TestFind(t *testing.T) {
	repo, mock, now := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, token, expires_at, created_at FROM refresh_tokens WHERE token = $1`)).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at"}).
			AddRow("r1", "u1", "tok", now.Add(time.Hour), now))

	got, err := repo.Find(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.False(t, got.Expired(now))
	assert.True(t, got.Expired(now.Add(time.Hour)))
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT .* FROM refresh_tokens`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_tokens WHERE token = $1`)).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "tok"))
	require.NoError(t, mock.ExpectationsWereMet())
}
