// Package users stores user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/clientbook/internal/server/models"
)

type Repository interface {
	// Create inserts user. A duplicate email yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
