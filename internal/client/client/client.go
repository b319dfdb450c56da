package client

import (
	"context"

	"github.com/dmitrijs2005/clientbook/internal/api"
	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/shopspring/decimal"
)

// Session is the identity and token pair returned by the session calls.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

// ChangeStream yields change events until the subscription ends. Recv
// returns io.EOF on a clean end.
type ChangeStream interface {
	Recv() (*models.ChangeEvent, error)
}

type Client interface {
	Close() error

	Register(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// Refresh exchanges refreshToken for a new session and adopts it.
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	SignOut(ctx context.Context) error
	// ClearTokens forgets the current tokens without contacting the server.
	ClearTokens()
	// OnTokensRefreshed registers fn to be called after every transparent
	// token refresh.
	OnTokensRefreshed(fn func(Session))

	ListClients(ctx context.Context) ([]models.Client, error)
	InsertClient(ctx context.Context, name string) (*models.Client, error)
	UpdateClient(ctx context.Context, id, name string) (*models.Client, error)
	DeleteClient(ctx context.Context, id string) error

	ListEntries(ctx context.Context) ([]models.Entry, error)
	InsertEntry(ctx context.Context, clientID, description string, cost decimal.Decimal) (*models.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	DeleteClientEntries(ctx context.Context, clientID string) (int, error)

	Subscribe(ctx context.Context, table models.Table) (ChangeStream, error)

	CreateExportUpload(ctx context.Context, filename, contentType string) (*api.ExportUploadResponse, error)
}
