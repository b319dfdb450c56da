package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clientbook/internal/common"
	"github.com/dmitrijs2005/clientbook/internal/dbx"
	"github.com/dmitrijs2005/clientbook/internal/logging"
	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/dmitrijs2005/clientbook/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Publisher receives the change events produced by committed mutations.
type Publisher interface {
	Publish(ctx context.Context, ownerID string, events ...models.ChangeEvent)
}

// LedgerService implements the per-user clients and entries store. Every
// mutation runs in its own transaction and is published after commit.
type LedgerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   Publisher
	logger      logging.Logger

	newID func() string
	now   func() time.Time
}

func NewLedgerService(db *sql.DB, m repomanager.RepositoryManager, p Publisher, logger logging.Logger) *LedgerService {
	return &LedgerService{
		db:          db,
		repomanager: m,
		publisher:   p,
		logger:      logger,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

func (s *LedgerService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *LedgerService) ListClients(ctx context.Context, ownerID string) ([]models.Client, error) {
	items, err := s.repomanager.Clients(s.db).List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing clients: %w", err)
	}
	return items, nil
}

func (s *LedgerService) ListEntries(ctx context.Context, ownerID string) ([]models.Entry, error) {
	items, err := s.repomanager.Entries(s.db).List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return items, nil
}

// InsertClient stores a new client with a server generated id and
// timestamp.
func (s *LedgerService) InsertClient(ctx context.Context, ownerID, name string) (*models.Client, error) {
	c := models.Client{
		ID:        s.newID(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: s.timestamp(),
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Clients(tx).Insert(ctx, &c)
	})
	if err != nil {
		return nil, fmt.Errorf("error inserting client: %w", err)
	}

	s.publisher.Publish(ctx, ownerID, models.ClientEvent(models.OpInsert, c))
	return &c, nil
}

// UpdateClient renames a client. It returns common.ErrorNotFound when the
// client does not exist or belongs to someone else.
func (s *LedgerService) UpdateClient(ctx context.Context, ownerID, id, name string) (*models.Client, error) {
	var updated *models.Client
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Clients(tx)
		n, err := repo.UpdateName(ctx, id, ownerID, name)
		if err != nil {
			return err
		}
		if n == 0 {
			return common.ErrorNotFound
		}
		updated, err = repo.Get(ctx, id, ownerID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("client %s: %w", id, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("error updating client: %w", err)
	}

	s.publisher.Publish(ctx, ownerID, models.ClientEvent(models.OpUpdate, *updated))
	return updated, nil
}

// DeleteClient removes a client. The store does not cascade: the call
// fails with common.ErrConflict while any entry still references it.
func (s *LedgerService) DeleteClient(ctx context.Context, ownerID, id string) error {
	var deleted *models.Client
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Clients(tx)
		c, err := repo.Get(ctx, id, ownerID)
		if err != nil {
			return err
		}

		refs, err := s.repomanager.Entries(tx).CountByClient(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: client has %d entries", common.ErrConflict, refs)
		}

		if _, err := repo.Delete(ctx, id, ownerID); err != nil {
			return err
		}
		deleted = c
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return fmt.Errorf("client %s: %w", id, common.ErrorNotFound)
		case errors.Is(err, common.ErrConflict):
			return err
		}
		return fmt.Errorf("error deleting client: %w", err)
	}

	s.publisher.Publish(ctx, ownerID, models.ClientEvent(models.OpDelete, *deleted))
	return nil
}

// InsertEntry attaches a new entry to one of the owner's clients.
func (s *LedgerService) InsertEntry(ctx context.Context, ownerID, clientID, description string, cost decimal.Decimal) (*models.Entry, error) {
	if cost.IsNegative() {
		return nil, fmt.Errorf("%w: cost must not be negative", common.ErrValidation)
	}

	e := models.Entry{
		ID:          s.newID(),
		ClientID:    clientID,
		Description: description,
		Cost:        cost.Round(2),
		OwnerID:     ownerID,
		CreatedAt:   s.timestamp(),
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Clients(tx).Get(ctx, clientID, ownerID); err != nil {
			return err
		}
		return s.repomanager.Entries(tx).Insert(ctx, &e)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("client %s: %w", clientID, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("error inserting entry: %w", err)
	}

	s.publisher.Publish(ctx, ownerID, models.EntryEvent(models.OpInsert, e))
	return &e, nil
}

func (s *LedgerService) DeleteEntry(ctx context.Context, ownerID, id string) error {
	var deleted *models.Entry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Entries(tx)
		e, err := repo.Get(ctx, id, ownerID)
		if err != nil {
			return err
		}
		if _, err := repo.Delete(ctx, id, ownerID); err != nil {
			return err
		}
		deleted = e
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("entry %s: %w", id, common.ErrorNotFound)
		}
		return fmt.Errorf("error deleting entry: %w", err)
	}

	s.publisher.Publish(ctx, ownerID, models.EntryEvent(models.OpDelete, *deleted))
	return nil
}

// DeleteClientEntries removes every entry the owner has for a client and
// publishes one delete event per removed row. Deleting nothing is not an
// error.
func (s *LedgerService) DeleteClientEntries(ctx context.Context, ownerID, clientID string) (int, error) {
	var removed []models.Entry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Entries(tx)
		items, err := repo.ListByClient(ctx, clientID, ownerID)
		if err != nil {
			return err
		}
		n, err := repo.DeleteByClient(ctx, clientID, ownerID)
		if err != nil {
			return err
		}
		if int(n) != len(items) {
			s.logger.Warn(ctx, "entry count changed during bulk delete", "client_id", clientID, "listed", len(items), "deleted", n)
		}
		removed = items
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error deleting client entries: %w", err)
	}

	if len(removed) > 0 {
		events := make([]models.ChangeEvent, 0, len(removed))
		for _, e := range removed {
			events = append(events, models.EntryEvent(models.OpDelete, e))
		}
		s.publisher.Publish(ctx, ownerID, events...)
	}
	return len(removed), nil
}
