// Package entries stores the costed entries attached to clients. Every
// method is scoped by the owning user id.
package entries

import (
	"context"

	"github.com/dmitrijs2005/clientbook/internal/models"
)

type Repository interface {
	// List returns the owner's entries, newest first.
	List(ctx context.Context, ownerID string) ([]models.Entry, error)
	// ListByClient returns the owner's entries for one client, newest first.
	ListByClient(ctx context.Context, clientID, ownerID string) ([]models.Entry, error)
	// Get returns common.ErrorNotFound when no entry matches id and owner.
	Get(ctx context.Context, id, ownerID string) (*models.Entry, error)
	Insert(ctx context.Context, e *models.Entry) error
	Delete(ctx context.Context, id, ownerID string) (int64, error)
	DeleteByClient(ctx context.Context, clientID, ownerID string) (int64, error)
	CountByClient(ctx context.Context, clientID string) (int64, error)
}
