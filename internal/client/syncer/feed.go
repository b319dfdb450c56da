package syncer

import (
	"context"

	"github.com/dmitrijs2005/clientbook/internal/client/client"
	"github.com/dmitrijs2005/clientbook/internal/client/notify"
	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/sethvargo/go-retry"
)

// follow applies the events of one table until ctx is cancelled. A
// stream that ends early is replaced and the mirror reloaded, since
// events may have been missed in between.
func (s *Synchronizer) follow(ctx context.Context, epoch uint64, table models.Table, stream client.ChangeStream) {
	defer s.wg.Done()

	for {
		if stream == nil {
			var err error
			stream, err = s.resubscribe(ctx, table)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error(ctx, "giving up on live updates", "table", table, "error", err)
					s.notifier.Notify(notify.Failure("Live updates for "+string(table)+" stopped", err))
				}
				return
			}

			s.mu.Lock()
			if epoch != s.epoch {
				s.mu.Unlock()
				return
			}
			start := s.beginLoadLocked()
			s.mu.Unlock()
			s.load(ctx, epoch, start)
		}

		ev, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn(ctx, "change stream ended", "table", table, "error", err)
			stream = nil
			continue
		}
		s.apply(epoch, *ev)
	}
}

func (s *Synchronizer) resubscribe(ctx context.Context, table models.Table) (client.ChangeStream, error) {
	var stream client.ChangeStream
	err := retry.Do(ctx, s.newBackoff(), func(ctx context.Context) error {
		st, err := s.remote.Subscribe(ctx, table)
		if err != nil {
			s.logger.Debug(ctx, "resubscribe attempt failed", "table", table, "error", err)
			return retry.RetryableError(err)
		}
		stream = st
		return nil
	})
	return stream, err
}

// apply reconciles an event into the mirror. Events from an earlier
// session or for another owner are dropped.
func (s *Synchronizer) apply(epoch uint64, ev models.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch || s.user == nil || ev.OwnerID() != s.user.ID {
		return
	}
	s.reconcileLocked(ev)
	if s.loads > 0 {
		s.backlog = append(s.backlog, ev)
	}
}

func (s *Synchronizer) reconcileLocked(ev models.ChangeEvent) {
	switch {
	case ev.Table == models.TableClients && ev.Client != nil:
		s.clients = Reconcile(s.clients, ev.Operation, *ev.Client)
		switch ev.Operation {
		case models.OpUpdate:
			s.tabs.Rename(ev.Client.ID, ev.Client.Name)
		case models.OpDelete:
			s.tabs.Close(ev.Client.ID)
		}
	case ev.Table == models.TableEntries && ev.Entry != nil:
		s.entries = Reconcile(s.entries, ev.Operation, *ev.Entry)
	}
}
