package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/clientbook/internal/client/client"
	"github.com/dmitrijs2005/clientbook/internal/client/config"
	"github.com/dmitrijs2005/clientbook/internal/client/localdb"
	"github.com/dmitrijs2005/clientbook/internal/client/notify"
	"github.com/dmitrijs2005/clientbook/internal/client/services"
	"github.com/dmitrijs2005/clientbook/internal/client/syncer"
	"github.com/dmitrijs2005/clientbook/internal/client/tabs"
	"github.com/dmitrijs2005/clientbook/internal/logging"
	"github.com/dmitrijs2005/clientbook/internal/models"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	api  client.Client
	auth *services.AuthService
	sync *syncer.Synchronizer
	tabs *tabs.Manager

	reader     *bufio.Reader
	out        io.Writer
	httpClient *http.Client
	now        func() time.Time

	stopWatch func()
}

// NewApp opens the session database, connects to the server and wires the
// session provider to the synchronizer. ctx bounds the live subscriptions.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, "text", c.LogLevel)

	db, err := localdb.Open(ctx, c.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(ctx, c, logger, db, apiClient, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, apiClient client.Client, r *bufio.Reader, w io.Writer) *App {
	tm := tabs.New()
	a := &App{
		config:     c,
		logger:     logger,
		db:         db,
		api:        apiClient,
		auth:       services.NewAuthService(apiClient, db, logger),
		sync:       syncer.NewSynchronizer(apiClient, tm, notify.NewConsole(w), logger),
		tabs:       tm,
		reader:     r,
		out:        w,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		now:        time.Now,
	}
	a.stopWatch = a.auth.Watch(func(u *models.User) {
		a.sync.SetUser(ctx, u)
	})
	return a
}

// Run restores the previous session if there is one and runs the REPL
// until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to clientbook (type 'help' for commands)")

	rctx, cancel := a.requestContext(ctx)
	if err := a.auth.Restore(rctx); err != nil {
		a.logger.Warn(ctx, "could not restore session", "error", err)
		fmt.Fprintln(a.out, "Previous session could not be restored, please log in")
	} else if u := a.auth.CurrentUser(); u != nil {
		fmt.Fprintf(a.out, "Signed in as %s\n", u.Email)
	}
	cancel()

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	a.sync.Close()
	if err := a.api.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing connection", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing database", "error", err)
	}
}

func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) isLoggedIn() bool {
	return a.auth.CurrentUser() != nil
}

// getStatus renders "(email)" or "(email @ client)" for the prompt.
func (a *App) getStatus() string {
	u := a.auth.CurrentUser()
	if u == nil {
		return ""
	}
	s := u.Email
	if id := a.tabs.Active(); id != tabs.Main {
		for _, t := range a.tabs.List() {
			if t.ClientID == id {
				s += " @ " + t.ClientName
			}
		}
	}
	return "(" + s + ")"
}
