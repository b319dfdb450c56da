// Package models defines the domain records exchanged between the clientbook
// server and its clients: clients, their costed entries, and the change
// events that keep every connected session in sync.
package models
