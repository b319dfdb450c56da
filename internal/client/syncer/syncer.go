package syncer

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/clientbook/internal/client/client"
	"github.com/dmitrijs2005/clientbook/internal/client/notify"
	"github.com/dmitrijs2005/clientbook/internal/client/tabs"
	"github.com/dmitrijs2005/clientbook/internal/logging"
	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

// Remote is the part of the API client the synchronizer uses.
type Remote interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	InsertClient(ctx context.Context, name string) (*models.Client, error)
	UpdateClient(ctx context.Context, id, name string) (*models.Client, error)
	DeleteClient(ctx context.Context, id string) error

	ListEntries(ctx context.Context) ([]models.Entry, error)
	InsertEntry(ctx context.Context, clientID, description string, cost decimal.Decimal) (*models.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	DeleteClientEntries(ctx context.Context, clientID string) (int, error)

	Subscribe(ctx context.Context, table models.Table) (client.ChangeStream, error)
}

// Synchronizer is the session-scoped state of one signed-in user.
type Synchronizer struct {
	remote   Remote
	tabs     *tabs.Manager
	notifier notify.Notifier
	logger   logging.Logger

	newBackoff func() retry.Backoff

	mu      sync.Mutex
	user    *models.User
	epoch   uint64
	clients []models.Client
	entries []models.Entry
	// loads counts Loads in flight for the current epoch. While it is
	// positive every applied event is also kept in backlog so a finishing
	// Load can replay what its snapshot may have missed.
	loads   int
	backlog []models.ChangeEvent
	// loaded is set once a Load of the current user has finished.
	loaded bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSynchronizer(r Remote, t *tabs.Manager, n notify.Notifier, logger logging.Logger) *Synchronizer {
	return &Synchronizer{
		remote:   r,
		tabs:     t,
		notifier: n,
		logger:   logger.With("module", "sync"),
		newBackoff: func() retry.Backoff {
			return retry.WithMaxRetries(4, retry.NewExponential(500*time.Millisecond))
		},
	}
}

// SetUser switches the mirror to u. Subscriptions of the previous user
// are cancelled and the mirror and open tabs are cleared. For a non-nil u
// both tables are subscribed before the initial Load, so no change made
// during the load is lost. ctx bounds the lifetime of the subscriptions.
func (s *Synchronizer) SetUser(ctx context.Context, u *models.User) {
	s.mu.Lock()
	s.epoch++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.clients = nil
	s.entries = nil
	s.loads = 0
	s.backlog = nil
	s.loaded = false
	s.user = nil
	s.tabs.Reset()

	if u == nil {
		s.mu.Unlock()
		return
	}

	cp := *u
	s.user = &cp
	epoch := s.epoch
	start := s.beginLoadLocked()
	subCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	for _, table := range []models.Table{models.TableClients, models.TableEntries} {
		stream, err := s.remote.Subscribe(subCtx, table)
		if err != nil {
			s.logger.Warn(ctx, "subscribe failed", "table", table, "error", err)
			stream = nil
		}
		s.wg.Add(1)
		go s.follow(subCtx, epoch, table, stream)
	}

	s.load(ctx, epoch, start)
}

// Close cancels the live subscriptions and waits for them to finish.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	s.epoch++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// User returns a copy of the user the mirror belongs to, or nil.
func (s *Synchronizer) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Synchronizer) currentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Clients returns the mirrored clients, newest first.
func (s *Synchronizer) Clients() []models.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.clients)
}

// Entries returns every mirrored entry, newest first.
func (s *Synchronizer) Entries() []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Loading reports whether the mirror is not yet loaded for the current
// user or a Load is in progress. It starts true and stays true while
// nobody is signed in.
func (s *Synchronizer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.loaded || s.loads > 0
}

// Client looks a mirrored client up by id.
func (s *Synchronizer) Client(id string) (models.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.clients, func(c models.Client) bool { return c.ID == id })
	if i < 0 {
		return models.Client{}, false
	}
	return s.clients[i], true
}

// GetClientEntries returns the mirrored entries of one client in mirror
// order.
func (s *Synchronizer) GetClientEntries(clientID string) []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Entry
	for _, e := range s.entries {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	return out
}

// Load replaces both collections with a fresh snapshot from the server.
func (s *Synchronizer) Load(ctx context.Context) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	epoch := s.epoch
	start := s.beginLoadLocked()
	s.mu.Unlock()

	s.load(ctx, epoch, start)
}

func (s *Synchronizer) beginLoadLocked() int {
	s.loads++
	return len(s.backlog)
}

func (s *Synchronizer) load(ctx context.Context, epoch uint64, start int) {
	clients, clientsErr := s.remote.ListClients(ctx)
	entries, entriesErr := s.remote.ListEntries(ctx)

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		s.logger.Debug(ctx, "dropping stale load result")
		return
	}
	if clientsErr == nil {
		s.clients = clients
	}
	if entriesErr == nil {
		s.entries = entries
	}
	for _, ev := range s.backlog[start:] {
		s.reconcileLocked(ev)
	}
	s.loads--
	s.loaded = true
	if s.loads == 0 {
		s.backlog = nil
	}
	s.mu.Unlock()

	if clientsErr != nil {
		s.logger.Error(ctx, "failed to load clients", "error", clientsErr)
		s.notifier.Notify(notify.Failure("Could not load clients", clientsErr))
	}
	if entriesErr != nil {
		s.logger.Error(ctx, "failed to load entries", "error", entriesErr)
		s.notifier.Notify(notify.Failure("Could not load entries", entriesErr))
	}
}
