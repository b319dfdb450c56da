// Package repomanager vends repositories bound to a DBTX for the configured
// SQL dialect and applies the embedded schema migrations with goose.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/clientbook/internal/dbx"
	"github.com/dmitrijs2005/clientbook/internal/server/repositories/clients"
	"github.com/dmitrijs2005/clientbook/internal/server/repositories/entries"
	"github.com/dmitrijs2005/clientbook/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/clientbook/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Clients(db dbx.DBTX) clients.Repository
	Entries(db dbx.DBTX) entries.Repository
}
