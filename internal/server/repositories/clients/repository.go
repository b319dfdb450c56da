// Package clients stores the clients table. Every method is scoped by the
// owning user id.
package clients

import (
	"context"

	"github.com/dmitrijs2005/clientbook/internal/models"
)

type Repository interface {
	// List returns the owner's clients, newest first.
	List(ctx context.Context, ownerID string) ([]models.Client, error)
	// Get returns common.ErrorNotFound when no client matches id and owner.
	Get(ctx context.Context, id, ownerID string) (*models.Client, error)
	Insert(ctx context.Context, c *models.Client) error
	// UpdateName returns the number of rows changed.
	UpdateName(ctx context.Context, id, ownerID, name string) (int64, error)
	// Delete returns the number of rows removed.
	Delete(ctx context.Context, id, ownerID string) (int64, error)
}
