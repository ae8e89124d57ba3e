package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/bingbing01121-art/live-test/internal/core"
	"github.com/bingbing01121-art/live-test/internal/domain"
	"github.com/bingbing01121-art/live-test/internal/protocol"
)

// handleRegister binds the client-chosen identity to this socket. Missing
// fields drop the message with nothing sent back; the reply carries the
// connectivity-helper list the client feeds into its peer connection.
func (ctl *Controller) handleRegister(
	cid core.ConnID,
	conn core.SignalConnection,
	data []byte,
) {
	type registerPayload struct {
		Type     string `json:"type"`
		Identity string `json:"identity"`
		Username string `json:"username"`
	}
	var p registerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad register payload")
		return
	}

	if err := ctl.Orch.RegisterIdentity(cid, domain.ClientID(p.Identity), p.Username); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("register refused")
		return
	}

	ctl.sendJSON(conn, protocol.Registered{
		Type:       protocol.TypeRegistered,
		ClientID:   domain.ClientID(p.Identity),
		ICEServers: ctl.Cfg.WebRTCICEServers(),
	})
}

func (ctl *Controller) handlePing(conn core.SignalConnection) {
	ctl.sendJSON(conn, protocol.Pong{Type: protocol.TypePong})
}
