package app

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bingbing01121-art/live-test/internal/domain"
)

// Directory owns every room and the identity-to-room membership index (owners
// included, which is what enforces "one room per identity"). All room state
// transitions happen under its lock; callers get back plain snapshots, never
// live room pointers.
type Directory struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomID]*domain.Room
	byMember map[domain.ClientID]domain.RoomID
}

func NewDirectory() *Directory {
	return &Directory{
		rooms:    make(map[domain.RoomID]*domain.Room),
		byMember: make(map[domain.ClientID]domain.RoomID),
	}
}

// RoomInfo is a read-only listing row. The broadcaster username is not here:
// it is looked up live against the registry by the caller.
type RoomInfo struct {
	ID                domain.RoomID
	Name              domain.RoomName
	Owner             domain.ClientID
	ViewerCount       int
	PasswordProtected bool
}

// JoinResult is what a joining viewer needs to reconcile its UI immediately.
type JoinResult struct {
	Owner       domain.ClientID
	AnchorMuted bool
	Muted       bool
}

// LeaveResult describes what a departure touched.
type LeaveResult struct {
	RoomID   domain.RoomID
	Owner    domain.ClientID
	WasOwner bool
	Viewers  []domain.ClientID
}

func (d *Directory) Create(owner domain.ClientID, name domain.RoomName, password string) (domain.RoomID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := domain.RoomID(uuid.NewString())
	room, err := domain.NewRoom(id, name, owner, password)
	if err != nil {
		return "", err
	}
	d.rooms[id] = room
	d.byMember[owner] = id
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("owner", string(owner)).Msg("room created")
	return id, nil
}

// Join adds a viewer. Existence is checked before the password so a caller
// probing a dead room id never learns whether it was protected.
func (d *Directory) Join(client domain.ClientID, roomID domain.RoomID, password string) (JoinResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.rooms[roomID]
	if !ok {
		return JoinResult{}, ErrRoomNotFound
	}
	if !room.CheckPassword(password) {
		return JoinResult{}, ErrPasswordIncorrect
	}
	muted := room.AddViewer(client)
	d.byMember[client] = roomID
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("client", string(client)).Bool("muted", muted).Msg("viewer joined")
	return JoinResult{Owner: room.Owner, AnchorMuted: room.AnchorMuted, Muted: muted}, nil
}

// Leave removes an identity from whatever room it is in. keepMutePref holds
// the sticky mute preference across an explicit leave; a disconnect clears it.
// For an owner nothing is removed here, the caller picks teardown or grace.
func (d *Directory) Leave(client domain.ClientID, keepMutePref bool) (LeaveResult, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	roomID, ok := d.byMember[client]
	if !ok {
		return LeaveResult{}, false
	}
	room, ok := d.rooms[roomID]
	if !ok {
		delete(d.byMember, client)
		return LeaveResult{}, false
	}
	res := LeaveResult{RoomID: roomID, Owner: room.Owner, WasOwner: room.Owner == client}
	if res.WasOwner {
		res.Viewers = room.Viewers()
		return res, true
	}
	room.RemoveViewer(client, keepMutePref)
	delete(d.byMember, client)
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("client", string(client)).Msg("viewer left")
	return res, true
}

// BeginGrace moves an Active room into PendingRejoin after its owner dropped.
// Returns the viewers to notify and the generation the scheduled teardown must
// present to Expire.
func (d *Directory) BeginGrace(roomID domain.RoomID) (viewers []domain.ClientID, gen uint64, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, found := d.rooms[roomID]
	if !found || room.Status != domain.RoomActive {
		return nil, 0, false
	}
	gen = room.BeginRejoinWait()
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Msg("broadcaster gone, grace window opened")
	return room.Viewers(), gen, true
}

// AttachGraceTimer hands the scheduled teardown handle to the room so a rejoin
// can cancel it.
func (d *Directory) AttachGraceTimer(roomID domain.RoomID, t domain.RejoinTimer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if room, ok := d.rooms[roomID]; ok && room.Status == domain.RoomPendingRejoin {
		room.AttachRejoinTimer(t)
	}
}

// Rejoin lets the owning identity reclaim its room during the grace window.
// The pending teardown is cancelled synchronously, before any caller-side
// notification goes out.
func (d *Directory) Rejoin(client domain.ClientID, roomID domain.RoomID, name domain.RoomName, password string, updatePassword bool) (domain.RoomName, []domain.ClientID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.rooms[roomID]
	if !ok {
		return "", nil, ErrRejoinRejected
	}
	if room.Owner != client {
		return "", nil, ErrRejoinRejected
	}
	room.EndRejoinWait()
	if name != "" {
		room.Name = name
	}
	if updatePassword {
		room.SetPassword(password)
	}
	d.byMember[client] = roomID
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("client", string(client)).Msg("broadcaster rejoined")
	return room.Name, room.Viewers(), nil
}

// Expire runs the scheduled teardown. It fires only if the room still exists,
// is still waiting, and the wait is the same one that scheduled this timer;
// a rejoin that beat the timer to the lock wins.
func (d *Directory) Expire(roomID domain.RoomID, gen uint64) ([]domain.ClientID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.rooms[roomID]
	if !ok || room.Status != domain.RoomPendingRejoin || room.RejoinGen() != gen {
		return nil, false
	}
	viewers := room.Viewers()
	d.removeLocked(room)
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Int("viewers", len(viewers)).Msg("grace window expired, room removed")
	return viewers, true
}

// Remove tears a room down immediately (explicit owner leave).
func (d *Directory) Remove(roomID domain.RoomID) ([]domain.ClientID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.rooms[roomID]
	if !ok {
		return nil, false
	}
	viewers := room.Viewers()
	d.removeLocked(room)
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Msg("room removed")
	return viewers, true
}

func (d *Directory) removeLocked(room *domain.Room) {
	room.EndRejoinWait()
	for _, v := range room.Viewers() {
		delete(d.byMember, v)
	}
	delete(d.byMember, room.Owner)
	delete(d.rooms, room.ID)
}

// RoomOf reports the room an identity currently belongs to.
func (d *Directory) RoomOf(client domain.ClientID) (domain.RoomID, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byMember[client]
	return id, ok
}

// OwnedRoom reports the room an identity owns, if it owns one.
func (d *Directory) OwnedRoom(client domain.ClientID) (domain.RoomID, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byMember[client]
	if !ok {
		return "", false
	}
	room, ok := d.rooms[id]
	if !ok || room.Owner != client {
		return "", false
	}
	return id, true
}

// SetViewerMuted flips a viewer's mute state, broadcaster-authorized. The room
// is the one the target belongs to; the actor must own it.
func (d *Directory) SetViewerMuted(actor, target domain.ClientID, muted bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	roomID, ok := d.byMember[target]
	if !ok {
		return ErrNotAMember
	}
	room, ok := d.rooms[roomID]
	if !ok {
		return ErrNotAMember
	}
	if room.Owner != actor {
		return ErrNotAuthorized
	}
	if !room.SetViewerMuted(target, muted) {
		return ErrNotAMember
	}
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("target", string(target)).Bool("muted", muted).Msg("viewer mute set")
	return nil
}

// SetAnchorMuted flips the broadcaster's own mute flag on the room it owns.
func (d *Directory) SetAnchorMuted(anchor domain.ClientID, muted bool) ([]domain.ClientID, domain.RoomID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	roomID, ok := d.byMember[anchor]
	if !ok {
		return nil, "", ErrNotAuthorized
	}
	room, ok := d.rooms[roomID]
	if !ok || room.Owner != anchor {
		return nil, "", ErrNotAuthorized
	}
	room.AnchorMuted = muted
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Bool("muted", muted).Msg("anchor mute set")
	return room.Viewers(), roomID, nil
}

// CanKick checks that actor owns the room target is currently viewing.
func (d *Directory) CanKick(actor, target domain.ClientID) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	roomID, ok := d.byMember[target]
	if !ok {
		return ErrNotAMember
	}
	room, ok := d.rooms[roomID]
	if !ok {
		return ErrNotAMember
	}
	if room.Owner != actor {
		return ErrNotAuthorized
	}
	if !room.HasViewer(target) {
		return ErrNotAMember
	}
	return nil
}

func (d *Directory) List() []RoomInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]RoomInfo, 0, len(d.rooms))
	for _, room := range d.rooms {
		out = append(out, RoomInfo{
			ID:                room.ID,
			Name:              room.Name,
			Owner:             room.Owner,
			ViewerCount:       room.ViewerCount(),
			PasswordProtected: room.HasPassword(),
		})
	}
	return out
}
