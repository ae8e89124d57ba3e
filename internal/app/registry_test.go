package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingbing01121-art/live-test/internal/domain"
)

func TestRegistryBindAndResolve(t *testing.T) {
	r := NewRegistry()
	conn := &mockConn{}
	cid := r.Register(conn)

	_, ok := r.Resolve("c1")
	assert.False(t, ok, "unbound identity must not resolve")

	require.NoError(t, r.Bind(cid, "c1", "alice"))

	got, ok := r.Resolve("c1")
	require.True(t, ok)
	assert.Same(t, conn, got.(*mockConn))

	name, ok := r.Username("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", name)
}

func TestRegistryBindValidation(t *testing.T) {
	r := NewRegistry()
	cid := r.Register(&mockConn{})

	assert.ErrorIs(t, r.Bind(cid, "", "alice"), domain.ErrClientIDEmpty)
	assert.ErrorIs(t, r.Bind(cid, "c1", ""), domain.ErrUsernameEmpty)
	assert.ErrorIs(t, r.Bind("no-such-conn", "c1", "alice"), ErrConnGone)
}

func TestRegistryRebindSupersedes(t *testing.T) {
	r := NewRegistry()
	conn1 := &mockConn{}
	conn2 := &mockConn{}
	cid1 := r.Register(conn1)
	cid2 := r.Register(conn2)

	require.NoError(t, r.Bind(cid1, "c1", "alice"))
	require.NoError(t, r.Bind(cid2, "c1", "alice"))

	got, ok := r.Resolve("c1")
	require.True(t, ok)
	assert.Same(t, conn2, got.(*mockConn))
}

func TestRegistryRemove(t *testing.T) {
	t.Run("current binding cleared", func(t *testing.T) {
		r := NewRegistry()
		cid := r.Register(&mockConn{})
		require.NoError(t, r.Bind(cid, "c1", "alice"))

		client, stale := r.Remove(cid)
		assert.Equal(t, domain.ClientID("c1"), client)
		assert.False(t, stale)
		_, ok := r.Resolve("c1")
		assert.False(t, ok)
	})

	t.Run("stale close keeps fresh binding", func(t *testing.T) {
		r := NewRegistry()
		cid1 := r.Register(&mockConn{})
		conn2 := &mockConn{}
		cid2 := r.Register(conn2)
		require.NoError(t, r.Bind(cid1, "c1", "alice"))
		require.NoError(t, r.Bind(cid2, "c1", "alice"))

		client, stale := r.Remove(cid1)
		assert.Equal(t, domain.ClientID("c1"), client)
		assert.True(t, stale)

		got, ok := r.Resolve("c1")
		require.True(t, ok)
		assert.Same(t, conn2, got.(*mockConn))
	})

	t.Run("anonymous connection", func(t *testing.T) {
		r := NewRegistry()
		cid := r.Register(&mockConn{})
		client, stale := r.Remove(cid)
		assert.Empty(t, client)
		assert.True(t, stale)
	})
}

func TestRegistryRoles(t *testing.T) {
	r := NewRegistry()
	cid := r.Register(&mockConn{})
	require.NoError(t, r.Bind(cid, "c1", "alice"))

	assert.Equal(t, domain.RoleNone, r.Role("c1"))
	r.SetRole("c1", domain.RoleBroadcaster)
	assert.Equal(t, domain.RoleBroadcaster, r.Role("c1"))
}
