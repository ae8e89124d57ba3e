package domain

import "errors"

type (
	RoomName string
	RoomID   string
)

var (
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrRoomNameTooLong = errors.New("room name too long")
)

// RoomStatus is the room lifecycle state. A removed room has no status, it is
// simply gone from the directory.
type RoomStatus int

const (
	RoomActive RoomStatus = iota
	RoomPendingRejoin
)

func (s RoomStatus) String() string {
	if s == RoomPendingRejoin {
		return "pending_rejoin"
	}
	return "active"
}

// RejoinTimer is the handle of a scheduled room teardown. Stop reports whether
// the teardown had not fired yet.
type RejoinTimer interface {
	Stop() bool
}

// Room holds one broadcast room: the owning client, its viewers and their mute
// state. All fields are guarded by the directory that owns the room; Room
// itself carries no lock and no transport.
type Room struct {
	ID     RoomID
	Name   RoomName
	Owner  ClientID
	Status RoomStatus

	// AnchorMuted is the broadcaster's own mute flag.
	AnchorMuted bool

	password string

	viewers map[ClientID]struct{}
	muted   map[ClientID]struct{}

	// mutePref remembers a viewer muted by the broadcaster across an
	// explicit leave, so a returning viewer comes back muted. A disconnect
	// clears it.
	mutePref map[ClientID]struct{}

	// rejoin is non-nil iff Status == RoomPendingRejoin. rejoinGen lets a
	// fired timer detect that it was superseded.
	rejoin    RejoinTimer
	rejoinGen uint64
}

func NewRoom(id RoomID, name RoomName, owner ClientID, password string) (*Room, error) {
	if len(name) == 0 {
		return nil, ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return nil, ErrRoomNameTooLong
	}
	if len(password) > MaxPasswordLen {
		password = password[:MaxPasswordLen]
	}
	return &Room{
		ID:       id,
		Name:     name,
		Owner:    owner,
		Status:   RoomActive,
		password: password,
		viewers:  make(map[ClientID]struct{}),
		muted:    make(map[ClientID]struct{}),
		mutePref: make(map[ClientID]struct{}),
	}, nil
}

func (r *Room) HasPassword() bool { return r.password != "" }

// CheckPassword accepts anything when the room has no password.
func (r *Room) CheckPassword(p string) bool {
	return r.password == "" || r.password == p
}

func (r *Room) SetPassword(p string) {
	if len(p) > MaxPasswordLen {
		p = p[:MaxPasswordLen]
	}
	r.password = p
}

// AddViewer adds a viewer and re-applies a sticky mute preference.
// Reports whether the viewer starts out muted.
func (r *Room) AddViewer(id ClientID) bool {
	r.viewers[id] = struct{}{}
	if _, ok := r.mutePref[id]; ok {
		r.muted[id] = struct{}{}
		return true
	}
	return false
}

// RemoveViewer drops a viewer. The mute preference survives only when
// keepPref is set (explicit leave); a disconnect wipes it.
func (r *Room) RemoveViewer(id ClientID, keepPref bool) {
	delete(r.viewers, id)
	delete(r.muted, id)
	if !keepPref {
		delete(r.mutePref, id)
	}
}

func (r *Room) HasViewer(id ClientID) bool {
	_, ok := r.viewers[id]
	return ok
}

func (r *Room) ViewerCount() int { return len(r.viewers) }

// Viewers returns a snapshot safe to iterate after the directory lock is
// released.
func (r *Room) Viewers() []ClientID {
	out := make([]ClientID, 0, len(r.viewers))
	for id := range r.viewers {
		out = append(out, id)
	}
	return out
}

// SetViewerMuted mutates the mute set for a current viewer. Reports false when
// id is not a member. Re-applying the current state is allowed.
func (r *Room) SetViewerMuted(id ClientID, muted bool) bool {
	if !r.HasViewer(id) {
		return false
	}
	if muted {
		r.muted[id] = struct{}{}
		r.mutePref[id] = struct{}{}
	} else {
		delete(r.muted, id)
		delete(r.mutePref, id)
	}
	return true
}

func (r *Room) IsViewerMuted(id ClientID) bool {
	_, ok := r.muted[id]
	return ok
}

// BeginRejoinWait moves the room into the grace window. The timer handle is
// attached separately once scheduled.
func (r *Room) BeginRejoinWait() uint64 {
	r.Status = RoomPendingRejoin
	r.rejoinGen++
	return r.rejoinGen
}

func (r *Room) AttachRejoinTimer(t RejoinTimer) { r.rejoin = t }

// EndRejoinWait cancels a pending teardown and returns the room to Active.
func (r *Room) EndRejoinWait() {
	if r.rejoin != nil {
		r.rejoin.Stop()
		r.rejoin = nil
	}
	r.Status = RoomActive
}

// RejoinGen matches a fired timer against the wait that scheduled it.
func (r *Room) RejoinGen() uint64 { return r.rejoinGen }
