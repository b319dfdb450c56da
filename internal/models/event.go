package models

import "fmt"

// Table names a synchronized collection.
type Table string

const (
	TableClients Table = "clients"
	TableEntries Table = "entries"
)

// ParseTable validates a table name received from the wire.
func ParseTable(s string) (Table, error) {
	switch Table(s) {
	case TableClients, TableEntries:
		return Table(s), nil
	default:
		return "", fmt.Errorf("unknown table %q", s)
	}
}

// Operation is the kind of row change reported by the feed.
type Operation string

const (
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// ChangeEvent reports one row change. Exactly one of Client and Entry is
// set, matching Table. For OpDelete the row carries its last known values.
type ChangeEvent struct {
	Table     Table     `json:"table"`
	Operation Operation `json:"operation"`
	Client    *Client   `json:"client,omitempty"`
	Entry     *Entry    `json:"entry,omitempty"`
}

// ClientEvent builds a change event for the clients table.
func ClientEvent(op Operation, c Client) ChangeEvent {
	return ChangeEvent{Table: TableClients, Operation: op, Client: &c}
}

// EntryEvent builds a change event for the entries table.
func EntryEvent(op Operation, e Entry) ChangeEvent {
	return ChangeEvent{Table: TableEntries, Operation: op, Entry: &e}
}

// OwnerID returns the owner of the changed row, or "" for a malformed event.
func (ev ChangeEvent) OwnerID() string {
	switch {
	case ev.Table == TableClients && ev.Client != nil:
		return ev.Client.OwnerID
	case ev.Table == TableEntries && ev.Entry != nil:
		return ev.Entry.OwnerID
	default:
		return ""
	}
}
