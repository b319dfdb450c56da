package clients

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

var columns = []string{"id", "name", "user_id", "created_at"}

type SQLRepository struct {
	db dbx.DBTX
	sb sq.StatementBuilderType
}

func NewSQLRepository(db dbx.DBTX, d dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, sb: d.Builder()}
}

func scan(row interface{ Scan(...any) error }) (models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt)
	return c, err
}

func (r *SQLRepository) List(ctx context.Context, ownerID string) ([]models.Client, error) {
	query, args, err := r.sb.Select(columns...).
		From("clients").
		Where(sq.Eq{"user_id": ownerID}).
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

	result := make([]models.Client, 0)
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Get(ctx context.Context, id, ownerID string) (*models.Client, error) {
	query, args, err := r.sb.Select(columns...).
		From("clients").
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c, err := scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &c, nil
}

func (r *SQLRepository) Insert(ctx context.Context, c *models.Client) error {
	query, args, err := r.sb.Insert("clients").
		Columns(columns...).
		Values(c.ID, c.Name, c.OwnerID, c.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) UpdateName(ctx context.Context, id, ownerID, name string) (int64, error) {
	query, args, err := r.sb.Update("clients").
		Set("name", name).
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	return exec(ctx, r.db, query, args)
}

func (r *SQLRepository) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	query, args, err := r.sb.Delete("clients").
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	return exec(ctx, r.db, query, args)
}

func exec(ctx context.Context, db dbx.DBTX, query string, args []any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
