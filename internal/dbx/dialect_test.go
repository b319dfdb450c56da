package dbx

import (
	"context"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{
		"postgres": DialectPostgres,
		"PGX":      DialectPostgres,
		"sqlite":   DialectSQLite,
		" sqlite3": DialectSQLite,
	} {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDialect("mysql")
	assert.Error(t, err)
}

func TestDialect_BuilderPlaceholders(t *testing.T) {
	q, args, err := DialectPostgres.Builder().
		Select("id").From("clients").
		Where(sq.Eq{"id": "c1", "user_id": "u1"}).
		ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM clients WHERE id = $1 AND user_id = $2", q)
	assert.Equal(t, []any{"c1", "u1"}, args)

	q, _, err = DialectSQLite.Builder().
		Delete("entries").Where(sq.Eq{"id": "e1"}).
		ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM entries WHERE id = ?", q)
}

func TestDialect_Names(t *testing.T) {
	assert.Equal(t, "pgx", DialectPostgres.DriverName())
	assert.Equal(t, "sqlite", DialectSQLite.DriverName())
	assert.Equal(t, "postgres", DialectPostgres.GooseDialect())
	assert.Equal(t, "sqlite3", DialectSQLite.GooseDialect())
}

func TestOpen_SQLiteInMemory(t *testing.T) {
	db, err := Open(context.Background(), DialectSQLite, "file:dbx_open?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}
