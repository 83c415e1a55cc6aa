package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryJoinAndLookup(t *testing.T) {
	r := NewRegistry()

	r.Join("u1", "sock-1")

	h, ok := r.HandleOf("u1")
	assert.True(t, ok)
	assert.Equal(t, "sock-1", h)
	assert.True(t, r.Online("u1"))
	assert.False(t, r.Online("u2"))
}

func TestRegistryLastJoinWins(t *testing.T) {
	r := NewRegistry()

	r.Join("u1", "sock-old")
	r.Join("u1", "sock-new")

	h, ok := r.HandleOf("u1")
	assert.True(t, ok)
	assert.Equal(t, "sock-new", h)

	// Leaving with the superseded handle must not knock the user offline
	_, ok = r.Leave("sock-old")
	assert.False(t, ok)
	assert.True(t, r.Online("u1"))
}

func TestRegistryLeaveByHandle(t *testing.T) {
	r := NewRegistry()

	r.Join("u1", "sock-1")
	r.Join("u2", "sock-2")

	uid, ok := r.Leave("sock-1")
	assert.True(t, ok)
	assert.Equal(t, "u1", uid)
	assert.False(t, r.Online("u1"))
	assert.True(t, r.Online("u2"))

	// Unknown handle
	_, ok = r.Leave("sock-ghost")
	assert.False(t, ok)
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Snapshot())

	r.Join("u1", "s1")
	r.Join("u2", "s2")

	snap := r.Snapshot()
	assert.Len(t, snap, 2)
	assert.ElementsMatch(t, []string{"u1", "u2"}, snap)
}
