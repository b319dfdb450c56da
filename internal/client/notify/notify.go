// Package notify delivers user-visible success and error messages.
package notify

import (
	"fmt"
	"io"
	"sync"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is one message shown to the user.
type Notification struct {
	Kind        Kind
	Title       string
	Description string
}

type Notifier interface {
	Notify(n Notification)
}

// Success builds a success notification.
func Success(title, description string) Notification {
	return Notification{Kind: KindSuccess, Title: title, Description: description}
}

// Failure builds an error notification whose description ends with the
// error text.
func Failure(prefix string, err error) Notification {
	return Notification{Kind: KindError, Title: "Error", Description: prefix + ": " + err.Error()}
}

// Console prints notifications as single lines.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mark := "[ok]"
	if n.Kind == KindError {
		mark = "[!!]"
	}
	fmt.Fprintf(c.w, "%s %s: %s\n", mark, n.Title, n.Description)
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	r.all = append(r.all, n)
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.all...)
}

// Last returns the most recent notification and whether there was one.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.all) == 0 {
		return Notification{}, false
	}
	return r.all[len(r.all)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.all = nil
	r.mu.Unlock()
}
