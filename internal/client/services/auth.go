// Package services contains application services for the clientbook
// client. This file defines the session provider: sign-in, registration,
// sign-out, session restore from the local database and identity change
// notifications.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/clientbook/internal/client/client"
	"github.com/dmitrijs2005/clientbook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clientbook/internal/common"
	"github.com/dmitrijs2005/clientbook/internal/dbx"
	"github.com/dmitrijs2005/clientbook/internal/logging"
	"github.com/dmitrijs2005/clientbook/internal/models"
)

const (
	keyRefreshToken = "refresh_token"
	keyUserID       = "user_id"
	keyEmail        = "email"
)

// AuthService holds the current identity. Watchers are told about every
// transition between identities, including to and from signed out.
type AuthService struct {
	client client.Client
	db     *sql.DB
	logger logging.Logger

	mu       sync.Mutex
	user     *models.User
	watchers map[int]func(*models.User)
	nextID   int
}

// NewAuthService binds the provider to an API client and the local
// database. Transparent token refreshes are persisted as they happen.
func NewAuthService(c client.Client, db *sql.DB, logger logging.Logger) *AuthService {
	a := &AuthService{
		client:   c,
		db:       db,
		logger:   logger.With("module", "auth"),
		watchers: make(map[int]func(*models.User)),
	}
	c.OnTokensRefreshed(func(s client.Session) {
		ctx := context.Background()
		if err := a.getMetadataRepo(a.db).Set(ctx, keyRefreshToken, []byte(s.RefreshToken)); err != nil {
			a.logger.Warn(ctx, "failed to persist refreshed token", "error", err)
		}
	})
	return a
}

func (a *AuthService) getMetadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (a *AuthService) CurrentUser() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

// Watch registers fn for identity transitions and returns a function that
// unregisters it. fn runs on the goroutine that caused the transition.
func (a *AuthService) Watch(fn func(*models.User)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.watchers[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.watchers, id)
		a.mu.Unlock()
	}
}

func (a *AuthService) setUser(u *models.User) {
	a.mu.Lock()
	changed := (a.user == nil) != (u == nil) || (u != nil && a.user.ID != u.ID)
	a.user = u
	fns := make([]func(*models.User), 0, len(a.watchers))
	for _, fn := range a.watchers {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range fns {
		if u == nil {
			fn(nil)
			continue
		}
		cp := *u
		fn(&cp)
	}
}

func (a *AuthService) establish(ctx context.Context, s *client.Session) error {
	err := dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.getMetadataRepo(tx)
		if err := repo.Set(ctx, keyRefreshToken, []byte(s.RefreshToken)); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyUserID, []byte(s.User.ID)); err != nil {
			return err
		}
		return repo.Set(ctx, keyEmail, []byte(s.User.Email))
	})
	if err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}

	user := s.User
	a.setUser(&user)
	return nil
}

// SignIn authenticates against the server and persists the session.
func (a *AuthService) SignIn(ctx context.Context, email, password string) error {
	s, err := a.client.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	return a.establish(ctx, s)
}

// Register creates an account and signs it in.
func (a *AuthService) Register(ctx context.Context, email, password string) error {
	s, err := a.client.Register(ctx, email, password)
	if err != nil {
		return err
	}
	return a.establish(ctx, s)
}

// SignOut ends the session. Local state is always cleared; a failure to
// revoke the token on the server is only logged.
func (a *AuthService) SignOut(ctx context.Context) error {
	if err := a.client.SignOut(ctx); err != nil {
		a.logger.Warn(ctx, "server sign-out failed", "error", err)
	}
	a.setUser(nil)
	if err := a.getMetadataRepo(a.db).Clear(ctx); err != nil {
		return fmt.Errorf("session clearing error: %w", err)
	}
	return nil
}

// Restore resumes the session saved by a previous run. It is a no-op when
// nothing is saved. A rejected refresh token is forgotten.
func (a *AuthService) Restore(ctx context.Context) error {
	repo := a.getMetadataRepo(a.db)
	token, err := repo.Get(ctx, keyRefreshToken)
	if err != nil {
		return err
	}
	if len(token) == 0 {
		return nil
	}

	s, err := a.client.Refresh(ctx, string(token))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, common.ErrTokenExpired) {
			_ = repo.Clear(ctx)
		}
		return fmt.Errorf("session restore error: %w", err)
	}
	return a.establish(ctx, s)
}

// SavedEmail returns the email of the last signed-in user, if any.
func (a *AuthService) SavedEmail(ctx context.Context) string {
	v, err := a.getMetadataRepo(a.db).Get(ctx, keyEmail)
	if err != nil {
		return ""
	}
	return string(v)
}
