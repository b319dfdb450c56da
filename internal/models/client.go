package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a customer the user tracks work for. It is visible only to
// its owner.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Entry is a costed, timestamped note attached to exactly one Client.
// Entries are immutable once created.
type Entry struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
	OwnerID     string          `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// User is the authenticated identity as seen by both sides.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Record is implemented by every row kind that can flow through the
// change feed.
type Record interface {
	Client | Entry
	Key() string
	Owner() string
}

// Key returns the row identifier.
func (c Client) Key() string { return c.ID }

// Key returns the row identifier.
func (e Entry) Key() string { return e.ID }

// Owner returns the owning user id.
func (c Client) Owner() string { return c.OwnerID }

// Owner returns the owning user id.
func (e Entry) Owner() string { return e.OwnerID }
