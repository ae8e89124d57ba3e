package app

import (
	"github.com/rs/zerolog/log"

	"github.com/bingbing01121-art/live-test/internal/core"
	"github.com/bingbing01121-art/live-test/internal/domain"
	"github.com/bingbing01121-art/live-test/internal/protocol"
)

// CreateRoom allocates a fresh Active room owned by the caller. An identity
// already sitting in some room is moved out of it first.
func (o *Orchestrator) CreateRoom(cid core.ConnID, name domain.RoomName, password string) (domain.RoomID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	client, ok := o.Registry.ClientOf(cid)
	if !ok {
		return "", ErrNotRegistered
	}
	o.detach(client)

	roomID, err := o.Rooms.Create(client, name, password)
	if err != nil {
		return "", err
	}
	o.Registry.SetRole(client, domain.RoleBroadcaster)
	return roomID, nil
}

// JoinRoom adds the caller to a room as a viewer and tells the broadcaster
// about the new member, mute status included.
func (o *Orchestrator) JoinRoom(cid core.ConnID, roomID domain.RoomID, password string) (protocol.JoinedRoom, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	client, ok := o.Registry.ClientOf(cid)
	if !ok {
		return protocol.JoinedRoom{}, ErrNotRegistered
	}
	o.detach(client)

	res, err := o.Rooms.Join(client, roomID, password)
	if err != nil {
		return protocol.JoinedRoom{}, err
	}
	o.Registry.SetRole(client, domain.RoleViewer)

	username, _ := o.Registry.Username(client)
	o.push(res.Owner, protocol.NewViewer{
		Type:     protocol.TypeNewViewer,
		ViewerID: client,
		Username: username,
		IsMuted:  res.Muted,
	})
	return protocol.JoinedRoom{
		Type:        protocol.TypeJoinedRoom,
		RoomID:      roomID,
		AnchorMuted: res.AnchorMuted,
		IsMuted:     res.Muted,
	}, nil
}

// LeaveRoom handles an explicit leave. A viewer's mute preference survives
// for its next join; an owner's leave is a deliberate act and tears the room
// down with no grace window.
func (o *Orchestrator) LeaveRoom(cid core.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	client, ok := o.Registry.ClientOf(cid)
	if !ok {
		return
	}
	o.leaveCurrent(client, true)
}

// RejoinRoom lets a reconnected broadcaster reclaim its room during the grace
// window. The pending teardown is cancelled before any viewer hears about the
// return, so a room that rejoined never emits room-closed.
func (o *Orchestrator) RejoinRoom(cid core.ConnID, roomID domain.RoomID, name domain.RoomName, password string, updatePassword bool) (domain.RoomName, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	client, ok := o.Registry.ClientOf(cid)
	if !ok {
		return "", ErrNotRegistered
	}
	roomName, viewers, err := o.Rooms.Rejoin(client, roomID, name, password, updatePassword)
	if err != nil {
		return "", err
	}
	o.Registry.SetRole(client, domain.RoleBroadcaster)
	for _, v := range viewers {
		o.push(v, protocol.BroadcasterRejoined{Type: protocol.TypeBroadcasterRejoined, RoomID: roomID})
	}
	return roomName, nil
}

// ListRooms snapshots the directory and resolves each broadcaster's username
// live. A broadcaster in the grace window simply lists without a name.
func (o *Orchestrator) ListRooms() []protocol.RoomSummary {
	infos := o.Rooms.List()
	out := make([]protocol.RoomSummary, 0, len(infos))
	for _, info := range infos {
		username, _ := o.Registry.Username(info.Owner)
		out = append(out, protocol.RoomSummary{
			RoomID:              info.ID,
			RoomName:            info.Name,
			BroadcasterName:     username,
			ViewerCount:         info.ViewerCount,
			IsPasswordProtected: info.PasswordProtected,
		})
	}
	return out
}

// detach moves an identity out of whatever room it is in before it creates or
// joins another one, keeping membership single-homed.
func (o *Orchestrator) detach(client domain.ClientID) {
	if _, ok := o.Rooms.RoomOf(client); !ok {
		return
	}
	log.Info().Str("module", "app").Str("client", string(client)).Msg("leaving current room before re-entry")
	o.leaveCurrent(client, true)
}

func (o *Orchestrator) leaveCurrent(client domain.ClientID, keepMutePref bool) {
	res, ok := o.Rooms.Leave(client, keepMutePref)
	if !ok {
		return
	}
	o.Registry.SetRole(client, domain.RoleNone)
	if res.WasOwner {
		o.closeRoom(res.RoomID)
		return
	}
	o.push(res.Owner, protocol.ViewerLeft{Type: protocol.TypeViewerLeft, ViewerID: client})
}

func (o *Orchestrator) closeRoom(roomID domain.RoomID) {
	viewers, ok := o.Rooms.Remove(roomID)
	if !ok {
		return
	}
	for _, v := range viewers {
		o.Registry.SetRole(v, domain.RoleNone)
		o.push(v, protocol.RoomClosed{Type: protocol.TypeRoomClosed, RoomID: roomID})
	}
}
