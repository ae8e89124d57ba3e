package app

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bingbing01121-art/live-test/internal/core"
	"github.com/bingbing01121-art/live-test/internal/domain"
)

type connEntry struct {
	Conn     core.SignalConnection
	Client   domain.ClientID
	Username string
	Role     domain.Role
}

// Registry owns the live connections and the identity index that maps a
// stable client id to its current socket. Rebinding silently supersedes a
// prior binding; a fresh binding is never erased by a stale socket's teardown.
type Registry struct {
	mu       sync.RWMutex
	conns    map[core.ConnID]*connEntry
	byClient map[domain.ClientID]core.ConnID
}

func NewRegistry() *Registry {
	return &Registry{
		conns:    make(map[core.ConnID]*connEntry),
		byClient: make(map[domain.ClientID]core.ConnID),
	}
}

// Register records a fresh, unbound connection and allocates its transient id.
func (r *Registry) Register(conn core.SignalConnection) core.ConnID {
	cid := core.ConnID(uuid.NewString())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[cid] = &connEntry{Conn: conn}
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("connection registered")
	return cid
}

// Bind attaches an identity to a connection and points the identity index at
// it, superseding any previous socket for the same identity.
func (r *Registry) Bind(cid core.ConnID, client domain.ClientID, username string) error {
	if err := domain.ValidateIdentity(client, username); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[cid]
	if !ok {
		return ErrConnGone
	}
	e.Client = client
	e.Username = username
	r.byClient[client] = cid
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Str("client", string(client)).Str("username", username).Msg("identity bound")
	return nil
}

// Resolve returns the live connection currently bound to an identity.
func (r *Registry) Resolve(client domain.ClientID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cid, ok := r.byClient[client]
	if !ok {
		return nil, false
	}
	e, ok := r.conns[cid]
	if !ok {
		return nil, false
	}
	return e.Conn, true
}

// ClientOf returns the identity bound to a connection, if any.
func (r *Registry) ClientOf(cid core.ConnID) (domain.ClientID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[cid]
	if !ok || e.Client == "" {
		return "", false
	}
	return e.Client, true
}

// Username looks up the identity's username live, through its current
// connection. Absent when the identity has no socket attached right now.
func (r *Registry) Username(client domain.ClientID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cid, ok := r.byClient[client]
	if !ok {
		return "", false
	}
	e, ok := r.conns[cid]
	if !ok {
		return "", false
	}
	return e.Username, true
}

// SetRole updates the role on the identity's current connection.
func (r *Registry) SetRole(client domain.ClientID, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cid, ok := r.byClient[client]; ok {
		if e, ok := r.conns[cid]; ok {
			e.Role = role
		}
	}
}

func (r *Registry) Role(client domain.ClientID) domain.Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cid, ok := r.byClient[client]; ok {
		if e, ok := r.conns[cid]; ok {
			return e.Role
		}
	}
	return domain.RoleNone
}

// Remove deletes a closed connection. The identity index entry is cleared only
// while it still points at this same socket: an identity that reconnected
// before the old socket's close event fired keeps its fresh binding, and the
// close is reported as stale so the caller skips room cleanup.
func (r *Registry) Remove(cid core.ConnID) (client domain.ClientID, stale bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[cid]
	if !ok {
		return "", true
	}
	delete(r.conns, cid)
	if e.Client == "" {
		return "", true
	}
	if cur, ok := r.byClient[e.Client]; !ok || cur != cid {
		log.Info().Str("module", "app.registry").Str("cid", string(cid)).Str("client", string(e.Client)).Msg("stale connection removed, binding kept")
		return e.Client, true
	}
	delete(r.byClient, e.Client)
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Str("client", string(e.Client)).Msg("connection removed")
	return e.Client, false
}
