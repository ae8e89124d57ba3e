package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/bingbing01121-art/live-test/internal/core"
	"github.com/bingbing01121-art/live-test/internal/domain"
)

// handleRelay forwards offer/answer/candidate envelopes point-to-point. The
// body is kept opaque so new negotiation fields pass through without a server
// change.
func (ctl *Controller) handleRelay(cid core.ConnID, kind string, data []byte) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("kind", kind).Msg("bad relay payload")
		return
	}

	rawTarget, ok := body["targetId"]
	if !ok {
		log.Warn().Str("module", "signal").Str("kind", kind).Msg("relay without targetId dropped")
		return
	}
	var target string
	if err := json.Unmarshal(rawTarget, &target); err != nil || target == "" {
		log.Warn().Str("module", "signal").Str("kind", kind).Msg("relay with bad targetId dropped")
		return
	}

	ctl.Orch.Relay(cid, kind, domain.ClientID(target), body)
}
