// Package cli provides the interactive clientbook terminal client.
//
// It wires configuration, the local session database, the API client, the
// session provider and the synchronizer, then runs a REPL. Commands work
// on the synchronized mirror of the signed-in user's clients and entries:
//
//   - register, login, logout, whoami
//   - clients, addclient, rename, delclient
//   - open, close, tabs, show
//   - addentry, delentry
//   - export, share, refresh
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
