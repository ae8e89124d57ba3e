package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/bingbing01121-art/live-test/internal/core"
	"github.com/bingbing01121-art/live-test/internal/domain"
)

// Relay forwards one negotiation message (offer/answer/candidate) to the
// target identity's live connection. The body passes through untouched except
// that targetId is consumed and senderId is added so the recipient can
// address its reply. An unresolvable target drops the message: the peers
// retry negotiation at a higher layer, best-effort is enough here.
func (o *Orchestrator) Relay(cid core.ConnID, kind string, target domain.ClientID, body map[string]json.RawMessage) {
	sender, ok := o.Registry.ClientOf(cid)
	if !ok {
		log.Warn().Str("module", "app.relay").Str("kind", kind).Msg("relay from unregistered connection dropped")
		return
	}
	conn, ok := o.Registry.Resolve(target)
	if !ok {
		log.Warn().Str("module", "app.relay").Str("kind", kind).Str("sender", string(sender)).Str("target", string(target)).Msg("relay target unreachable, dropped")
		return
	}

	out := make(map[string]json.RawMessage, len(body)+2)
	for k, v := range body {
		out[k] = v
	}
	delete(out, "targetId")
	typ, _ := json.Marshal(kind)
	out["type"] = typ
	sid, _ := json.Marshal(sender)
	out["senderId"] = sid

	f, err := json.Marshal(out)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("relay encode")
		return
	}
	if err := conn.TrySend(core.Frame(f)); err != nil {
		log.Warn().Err(err).Str("module", "app.relay").Str("target", string(target)).Msg("relay send dropped")
	}
}
