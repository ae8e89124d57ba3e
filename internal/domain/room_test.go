package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoomValidation(t *testing.T) {
	_, err := NewRoom("r1", "", "bc1", "")
	assert.ErrorIs(t, err, ErrRoomNameEmpty)

	long := make([]byte, MaxRoomNameLen+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = NewRoom("r1", RoomName(long), "bc1", "")
	assert.ErrorIs(t, err, ErrRoomNameTooLong)
}

func TestRoomPassword(t *testing.T) {
	open, err := NewRoom("r1", "X", "bc1", "")
	require.NoError(t, err)
	assert.False(t, open.HasPassword())
	assert.True(t, open.CheckPassword(""))
	assert.True(t, open.CheckPassword("anything"))

	locked, err := NewRoom("r2", "Y", "bc1", "s3cret")
	require.NoError(t, err)
	assert.True(t, locked.HasPassword())
	assert.True(t, locked.CheckPassword("s3cret"))
	assert.False(t, locked.CheckPassword(""))
	assert.False(t, locked.CheckPassword("nope"))
}

func TestRoomMuteStaysWithinViewers(t *testing.T) {
	r, err := NewRoom("r1", "X", "bc1", "")
	require.NoError(t, err)

	assert.False(t, r.SetViewerMuted("ghost", true), "non-member cannot be muted")

	r.AddViewer("v1")
	require.True(t, r.SetViewerMuted("v1", true))
	assert.True(t, r.IsViewerMuted("v1"))

	r.RemoveViewer("v1", true)
	assert.False(t, r.IsViewerMuted("v1"), "muted set shrinks with viewers")
}

func TestRoomMutePreference(t *testing.T) {
	r, err := NewRoom("r1", "X", "bc1", "")
	require.NoError(t, err)

	r.AddViewer("v1")
	require.True(t, r.SetViewerMuted("v1", true))

	// Explicit leave keeps the preference for the next join.
	r.RemoveViewer("v1", true)
	assert.True(t, r.AddViewer("v1"))
	assert.True(t, r.IsViewerMuted("v1"))

	// Disconnect wipes it.
	r.RemoveViewer("v1", false)
	assert.False(t, r.AddViewer("v1"))
}

func TestRoomRejoinWait(t *testing.T) {
	r, err := NewRoom("r1", "X", "bc1", "")
	require.NoError(t, err)
	require.Equal(t, RoomActive, r.Status)

	gen1 := r.BeginRejoinWait()
	assert.Equal(t, RoomPendingRejoin, r.Status)

	r.EndRejoinWait()
	assert.Equal(t, RoomActive, r.Status)

	gen2 := r.BeginRejoinWait()
	assert.NotEqual(t, gen1, gen2)
}
