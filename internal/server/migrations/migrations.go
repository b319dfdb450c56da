// Package migrations embeds the server schema for every supported dialect.
package migrations

import (
	"embed"

	"github.com/dmitrijs2005/clientbook/internal/dbx"
)

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// Dir returns the directory inside Migrations holding the dialect's files.
func Dir(d dbx.Dialect) string {
	if d == dbx.DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}
