package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/clientbook/internal/common"
	"github.com/dmitrijs2005/clientbook/internal/dbx"
	"github.com/dmitrijs2005/clientbook/internal/models"
)

var columns = []string{"id", "client_id", "description", "cost", "user_id", "created_at"}

type SQLRepository struct {
	db dbx.DBTX
	sb sq.StatementBuilderType
}

func NewSQLRepository(db dbx.DBTX, d dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, sb: d.Builder()}
}

func scan(row interface{ Scan(...any) error }) (models.Entry, error) {
	var e models.Entry
	err := row.Scan(&e.ID, &e.ClientID, &e.Description, &e.Cost, &e.OwnerID, &e.CreatedAt)
	return e, err
}

func (r *SQLRepository) List(ctx context.Context, ownerID string) ([]models.Entry, error) {
	return r.list(ctx, sq.Eq{"user_id": ownerID})
}

func (r *SQLRepository) ListByClient(ctx context.Context, clientID, ownerID string) ([]models.Entry, error) {
	return r.list(ctx, sq.Eq{"client_id": clientID, "user_id": ownerID})
}

func (r *SQLRepository) list(ctx context.Context, where sq.Eq) ([]models.Entry, error) {
	query, args, err := r.sb.Select(columns...).
		From("entries").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Entry, 0)
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Get(ctx context.Context, id, ownerID string) (*models.Entry, error) {
	query, args, err := r.sb.Select(columns...).
		From("entries").
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	e, err := scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &e, nil
}

func (r *SQLRepository) Insert(ctx context.Context, e *models.Entry) error {
	query, args, err := r.sb.Insert("entries").
		Columns(columns...).
		Values(e.ID, e.ClientID, e.Description, e.Cost.StringFixed(2), e.OwnerID, e.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	return r.delete(ctx, sq.Eq{"id": id, "user_id": ownerID})
}

func (r *SQLRepository) DeleteByClient(ctx context.Context, clientID, ownerID string) (int64, error) {
	return r.delete(ctx, sq.Eq{"client_id": clientID, "user_id": ownerID})
}

func (r *SQLRepository) delete(ctx context.Context, where sq.Eq) (int64, error) {
	query, args, err := r.sb.Delete("entries").Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// CountByClient counts every entry referencing the client, regardless of
// owner, since any of them blocks the client delete.
func (r *SQLRepository) CountByClient(ctx context.Context, clientID string) (int64, error) {
	query, args, err := r.sb.Select("COUNT(*)").
		From("entries").
		Where(sq.Eq{"client_id": clientID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
