package app

import (
	"github.com/rs/zerolog/log"

	"github.com/bingbing01121-art/live-test/internal/core"
	"github.com/bingbing01121-art/live-test/internal/domain"
	"github.com/bingbing01121-art/live-test/internal/protocol"
)

// SetViewerMuted is the broadcaster muting or unmuting a viewer of its room.
// Both sides get the new state; re-applying the current state still resends
// it, delivery is at-least-once. Unauthorized attempts are logged and dropped.
func (o *Orchestrator) SetViewerMuted(cid core.ConnID, target domain.ClientID, muted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	actor, ok := o.Registry.ClientOf(cid)
	if !ok {
		return
	}
	if err := o.Rooms.SetViewerMuted(actor, target, muted); err != nil {
		log.Warn().Err(err).Str("module", "app").Str("actor", string(actor)).Str("target", string(target)).Msg("mute refused")
		return
	}
	status := protocol.ViewerMutedStatus{Type: protocol.TypeViewerMutedStatus, ViewerID: target, IsMuted: muted}
	o.push(target, status)
	o.push(actor, status)
}

// SetAnchorMuted flips the broadcaster's own mute flag on the room it owns and
// broadcasts it to every current viewer.
func (o *Orchestrator) SetAnchorMuted(cid core.ConnID, muted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	anchor, ok := o.Registry.ClientOf(cid)
	if !ok {
		return
	}
	viewers, _, err := o.Rooms.SetAnchorMuted(anchor, muted)
	if err != nil {
		log.Warn().Err(err).Str("module", "app").Str("anchor", string(anchor)).Msg("anchor mute refused")
		return
	}
	typ := protocol.TypeAnchorUnmute
	if muted {
		typ = protocol.TypeAnchorMute
	}
	for _, v := range viewers {
		o.push(v, protocol.AnchorMuteState{Type: typ, AnchorID: anchor, IsMuted: muted})
	}
}

// KickViewer sends the target a notice and closes its connection shortly
// after, once the notice had time to flush. No kicked state is kept: the close
// event runs the ordinary disconnect cleanup.
func (o *Orchestrator) KickViewer(cid core.ConnID, target domain.ClientID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	actor, ok := o.Registry.ClientOf(cid)
	if !ok {
		return
	}
	if err := o.Rooms.CanKick(actor, target); err != nil {
		log.Warn().Err(err).Str("module", "app").Str("actor", string(actor)).Str("target", string(target)).Msg("kick refused")
		return
	}
	conn, ok := o.Registry.Resolve(target)
	if !ok {
		log.Warn().Str("module", "app").Str("target", string(target)).Msg("kick target has no connection")
		return
	}
	o.push(target, protocol.Kicked{Type: protocol.TypeKicked, Reason: "kicked by broadcaster"})
	log.Info().Str("module", "app").Str("actor", string(actor)).Str("target", string(target)).Msg("viewer kicked")
	o.Sched.AfterFunc(o.KickDelay, conn.Close)
}
