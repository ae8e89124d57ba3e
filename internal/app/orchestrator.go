package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bingbing01121-art/live-test/internal/core"
	"github.com/bingbing01121-art/live-test/internal/domain"
	"github.com/bingbing01121-art/live-test/internal/protocol"
)

// Orchestrator ties the connection registry and the room directory together
// and runs every business flow. A single mutex serializes the mutating flows,
// including the deferred grace-window teardown, so no two flows ever interleave
// mid-update. Read-only queries go through the component locks directly.
type Orchestrator struct {
	mu sync.Mutex

	Registry *Registry
	Rooms    *Directory
	Sched    core.Scheduler

	Grace     time.Duration
	KickDelay time.Duration
}

// Connect registers a freshly opened, still anonymous socket.
func (o *Orchestrator) Connect(conn core.SignalConnection) core.ConnID {
	return o.Registry.Register(conn)
}

// RegisterIdentity binds a client-chosen identity to the connection. A repeat
// register from a new socket silently supersedes the old binding.
func (o *Orchestrator) RegisterIdentity(cid core.ConnID, client domain.ClientID, username string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Registry.Bind(cid, client, username)
}

// ClientOf is a read-only identity lookup for the transport layer.
func (o *Orchestrator) ClientOf(cid core.ConnID) (domain.ClientID, bool) {
	return o.Registry.ClientOf(cid)
}

// Disconnect runs the close-event cleanup. A stale close (the identity already
// rebound to a fresh socket) touches nothing beyond the dead connection
// itself. A viewer is dropped immediately; a broadcaster opens the grace
// window instead of tearing the room down.
func (o *Orchestrator) Disconnect(cid core.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	client, stale := o.Registry.Remove(cid)
	if stale || client == "" {
		return
	}

	if roomID, ok := o.Rooms.OwnedRoom(client); ok {
		o.beginGrace(roomID)
		return
	}

	if res, ok := o.Rooms.Leave(client, false); ok {
		o.push(res.Owner, protocol.ViewerLeft{Type: protocol.TypeViewerLeft, ViewerID: client})
	}
}

func (o *Orchestrator) beginGrace(roomID domain.RoomID) {
	viewers, gen, ok := o.Rooms.BeginGrace(roomID)
	if !ok {
		return
	}
	for _, v := range viewers {
		o.push(v, protocol.BroadcasterDisconnected{Type: protocol.TypeBroadcasterDisconnected, RoomID: roomID})
	}
	t := o.Sched.AfterFunc(o.Grace, func() { o.graceExpired(roomID, gen) })
	o.Rooms.AttachGraceTimer(roomID, t)
}

// graceExpired fires from the scheduler. The directory rechecks status and
// generation under its lock, so a rejoin that was already accepted wins even
// when the timer fired at the same moment.
func (o *Orchestrator) graceExpired(roomID domain.RoomID, gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	viewers, ok := o.Rooms.Expire(roomID, gen)
	if !ok {
		return
	}
	for _, v := range viewers {
		o.Registry.SetRole(v, domain.RoleNone)
		o.push(v, protocol.RoomClosed{Type: protocol.TypeRoomClosed, RoomID: roomID})
	}
}

// push delivers a server-originated message to an identity's current
// connection. Unresolvable targets are dropped; the relay path logs them, the
// rest of the flows simply skip a viewer that has no socket right now.
func (o *Orchestrator) push(client domain.ClientID, v any) {
	conn, ok := o.Registry.Resolve(client)
	if !ok {
		return
	}
	f, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Msg("push encode")
		return
	}
	if err := conn.TrySend(f); err != nil {
		log.Warn().Err(err).Str("module", "app").Str("client", string(client)).Msg("push dropped")
	}
}
