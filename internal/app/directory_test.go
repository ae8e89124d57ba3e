package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingbing01121-art/live-test/internal/domain"
)

func TestDirectoryExpireChecksGeneration(t *testing.T) {
	d := NewDirectory()
	roomID, err := d.Create("bc1", "X", "")
	require.NoError(t, err)

	_, gen1, ok := d.BeginGrace(roomID)
	require.True(t, ok)

	_, _, err = d.Rejoin("bc1", roomID, "", "", false)
	require.NoError(t, err)

	// A second outage bumps the generation; the first timer's fire is void.
	_, gen2, ok := d.BeginGrace(roomID)
	require.True(t, ok)
	require.NotEqual(t, gen1, gen2)

	_, removed := d.Expire(roomID, gen1)
	assert.False(t, removed)
	_, removed = d.Expire(roomID, gen2)
	assert.True(t, removed)
}

func TestDirectoryBeginGraceOnlyFromActive(t *testing.T) {
	d := NewDirectory()
	roomID, err := d.Create("bc1", "X", "")
	require.NoError(t, err)

	_, _, ok := d.BeginGrace(roomID)
	require.True(t, ok)
	_, _, ok = d.BeginGrace(roomID)
	assert.False(t, ok, "already pending")

	_, _, ok = d.BeginGrace("no-such-room")
	assert.False(t, ok)
}

func TestDirectoryRejoinUpdatesNameAndPassword(t *testing.T) {
	d := NewDirectory()
	roomID, err := d.Create("bc1", "X", "old")
	require.NoError(t, err)
	_, _, ok := d.BeginGrace(roomID)
	require.True(t, ok)

	name, _, err := d.Rejoin("bc1", roomID, "Y", "new", true)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomName("Y"), name)

	_, err = d.Join("v1", roomID, "old")
	assert.ErrorIs(t, err, ErrPasswordIncorrect)
	_, err = d.Join("v1", roomID, "new")
	assert.NoError(t, err)
}

func TestDirectoryMembershipIndexCoversOwner(t *testing.T) {
	d := NewDirectory()
	roomID, err := d.Create("bc1", "X", "")
	require.NoError(t, err)

	got, ok := d.RoomOf("bc1")
	require.True(t, ok)
	assert.Equal(t, roomID, got)

	owned, ok := d.OwnedRoom("bc1")
	require.True(t, ok)
	assert.Equal(t, roomID, owned)

	_, err = d.Join("v1", roomID, "")
	require.NoError(t, err)
	_, ok = d.OwnedRoom("v1")
	assert.False(t, ok)
}

func TestDirectoryRemoveClearsAllIndexEntries(t *testing.T) {
	d := NewDirectory()
	roomID, err := d.Create("bc1", "X", "")
	require.NoError(t, err)
	_, err = d.Join("v1", roomID, "")
	require.NoError(t, err)

	viewers, ok := d.Remove(roomID)
	require.True(t, ok)
	assert.Equal(t, []domain.ClientID{"v1"}, viewers)

	_, ok = d.RoomOf("bc1")
	assert.False(t, ok)
	_, ok = d.RoomOf("v1")
	assert.False(t, ok)
	assert.Empty(t, d.List())
}
