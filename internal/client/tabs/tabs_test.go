package tabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_OpenIsIdempotent(t *testing.T) {
	m := New()
	m.Open("c1", "Acme")
	once := m.List()
	m.Open("c1", "Acme")

	assert.Equal(t, once, m.List())
	assert.Equal(t, "c1", m.Active())
}

func TestManager_OpenAppendsInOrder(t *testing.T) {
	m := New()
	m.Open("c1", "Acme")
	m.Open("c2", "Globex")
	m.Open("c3", "Initech")

	assert.Equal(t, []Tab{{"c1", "Acme"}, {"c2", "Globex"}, {"c3", "Initech"}}, m.List())
	assert.Equal(t, "c3", m.Active())

	// reopening an existing tab activates it without moving it
	m.Open("c1", "Acme")
	assert.Equal(t, "c1", m.Active())
	assert.Equal(t, "c1", m.List()[0].ClientID)
}

func TestManager_Close(t *testing.T) {
	m := New()
	m.Open("c1", "Acme")
	m.Open("c2", "Globex")

	m.Close("missing")
	assert.Len(t, m.List(), 2)

	m.Close("c1")
	assert.Equal(t, []Tab{{"c2", "Globex"}}, m.List())
	assert.Equal(t, "c2", m.Active(), "closing an inactive tab keeps the active one")

	m.Close("c2")
	assert.Empty(t, m.List())
	assert.Equal(t, Main, m.Active())
	assert.False(t, m.Has("c2"))
}

func TestManager_RenameKeepsPosition(t *testing.T) {
	m := New()
	m.Open("c1", "Acme")
	m.Open("c2", "Globex")

	m.Rename("c1", "Acme Corp")
	m.Rename("missing", "x")

	assert.Equal(t, []Tab{{"c1", "Acme Corp"}, {"c2", "Globex"}}, m.List())
}

func TestManager_Activate(t *testing.T) {
	m := New()
	assert.False(t, m.Activate("c1"))

	m.Open("c1", "Acme")
	assert.True(t, m.Activate(Main))
	assert.Equal(t, Main, m.Active())
	assert.True(t, m.Activate("c1"))
	assert.Equal(t, "c1", m.Active())

	m.Reset()
	assert.Empty(t, m.List())
	assert.Equal(t, Main, m.Active())
}

func TestManager_ListIsACopy(t *testing.T) {
	m := New()
	m.Open("c1", "Acme")
	l := m.List()
	l[0].ClientName = "changed"
	assert.Equal(t, "Acme", m.List()[0].ClientName)
}
