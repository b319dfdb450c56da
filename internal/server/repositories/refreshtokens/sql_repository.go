package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/clientbook/internal/common"
	"github.com/dmitrijs2005/clientbook/internal/dbx"
	"github.com/dmitrijs2005/clientbook/internal/server/models"
	"github.com/google/uuid"
)

type SQLRepository struct {
	db  dbx.DBTX
	sb  sq.StatementBuilderType
	now func() time.Time
}

func NewSQLRepository(db dbx.DBTX, d dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, sb: d.Builder(), now: time.Now}
}

func (r *SQLRepository) Create(ctx context.Context, userID, token string, expires time.Time) error {
	query, args, err := r.sb.Insert("refresh_tokens").
		Columns("id", "user_id", "token", "expires_at", "created_at").
		Values(uuid.NewString(), userID, token, expires.UTC(), r.now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	query, args, err := r.sb.Select("id", "user_id", "token", "expires_at", "created_at").
		From("refresh_tokens").
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	t := &models.RefreshToken{}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.UserID, &t.Token, &t.Expires, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *SQLRepository) Delete(ctx context.Context, token string) error {
	query, args, err := r.sb.Delete("refresh_tokens").Where(sq.Eq{"token": token}).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
