package syncer

import (
	"context"

	"github.com/dmitrijs2005/clientbook/internal/client/notify"
	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/shopspring/decimal"
)

// Every mutation below is a silent no-op without a signed-in user. None
// of them touch the mirror; the result arrives as a change event.

// AddClient creates a client and returns it, or nil on failure.
func (s *Synchronizer) AddClient(ctx context.Context, name string) *models.Client {
	if s.currentUser() == nil {
		return nil
	}

	c, err := s.remote.InsertClient(ctx, name)
	if err != nil {
		s.logger.Error(ctx, "failed to add client", "error", err)
		s.notifier.Notify(notify.Failure("Could not add client", err))
		return nil
	}

	s.notifier.Notify(notify.Success("Client added", name+" was added"))
	return c
}

// UpdateClient renames a client and relabels its open tab.
func (s *Synchronizer) UpdateClient(ctx context.Context, id, name string) bool {
	if s.currentUser() == nil {
		return false
	}

	if _, err := s.remote.UpdateClient(ctx, id, name); err != nil {
		s.logger.Error(ctx, "failed to update client", "client_id", id, "error", err)
		s.notifier.Notify(notify.Failure("Could not update client", err))
		return false
	}

	s.tabs.Rename(id, name)
	s.notifier.Notify(notify.Success("Client updated", "The client name was changed"))
	return true
}

// DeleteClient removes a client's entries and then the client. The client
// is kept when its entries cannot be removed. On success the client's tab
// is closed before DeleteClient returns.
func (s *Synchronizer) DeleteClient(ctx context.Context, id string) bool {
	if s.currentUser() == nil {
		return false
	}

	if _, err := s.remote.DeleteClientEntries(ctx, id); err != nil {
		s.logger.Error(ctx, "failed to delete client entries", "client_id", id, "error", err)
		s.notifier.Notify(notify.Failure("Could not delete client", err))
		return false
	}

	if err := s.remote.DeleteClient(ctx, id); err != nil {
		s.logger.Error(ctx, "failed to delete client", "client_id", id, "error", err)
		s.notifier.Notify(notify.Failure("Could not delete client", err))
		return false
	}

	s.tabs.Close(id)
	s.notifier.Notify(notify.Success("Client deleted", "The client and its entries were deleted"))
	return true
}

// AddEntry records a costed entry for a client and returns it, or nil on
// failure.
func (s *Synchronizer) AddEntry(ctx context.Context, clientID, description string, cost decimal.Decimal) *models.Entry {
	if s.currentUser() == nil {
		return nil
	}

	e, err := s.remote.InsertEntry(ctx, clientID, description, cost)
	if err != nil {
		s.logger.Error(ctx, "failed to add entry", "client_id", clientID, "error", err)
		s.notifier.Notify(notify.Failure("Could not add entry", err))
		return nil
	}

	s.notifier.Notify(notify.Success("Entry added", "The new entry was saved"))
	return e
}

func (s *Synchronizer) DeleteEntry(ctx context.Context, id string) bool {
	if s.currentUser() == nil {
		return false
	}

	if err := s.remote.DeleteEntry(ctx, id); err != nil {
		s.logger.Error(ctx, "failed to delete entry", "entry_id", id, "error", err)
		s.notifier.Notify(notify.Failure("Could not delete entry", err))
		return false
	}

	s.notifier.Notify(notify.Success("Entry deleted", "The entry was removed"))
	return true
}
