// Package models holds server-only records that never leave the server:
// stored credentials and refresh tokens.
package models

import "time"

// User is an account row. PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
