package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/clientbook/internal/dbx"
	"github.com/dmitrijs2005/clientbook/internal/logging"
	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/dmitrijs2005/clientbook/internal/server/config"
	"github.com/dmitrijs2005/clientbook/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a private in-memory sqlite database with the schema
// applied.
func newTestDB(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := dbx.Open(context.Background(), dbx.DialectSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewSQLRepositoryManager(dbx.DialectSQLite)
	require.NoError(t, rm.RunMigrations(context.Background(), db))
	return db, rm
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	owners []string
	events []models.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ownerID string, events ...models.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for range events {
		p.owners = append(p.owners, ownerID)
	}
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) Events() []models.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.ChangeEvent(nil), p.events...)
}

func (p *recordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.owners, p.events = nil, nil
}

// newLedger returns a ledger whose clock advances one second per call so
// that created_at ordering is deterministic.
func newLedger(t *testing.T) (*LedgerService, *recordingPublisher) {
	t.Helper()
	db, rm := newTestDB(t)
	pub := &recordingPublisher{}
	s := NewLedgerService(db, rm, pub, logging.Nop())

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	var tick int
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s, pub
}
