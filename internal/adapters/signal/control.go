package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/bingbing01121-art/live-test/internal/core"
	"github.com/bingbing01121-art/live-test/internal/domain"
)

func (ctl *Controller) handleMuteViewer(cid core.ConnID, data []byte, muted bool) {
	type mutePayload struct {
		Type     string `json:"type"`
		TargetID string `json:"targetId"`
	}
	var p mutePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad mute payload")
		return
	}
	ctl.Orch.SetViewerMuted(cid, domain.ClientID(p.TargetID), muted)
}

func (ctl *Controller) handleAnchorMute(cid core.ConnID, data []byte, muted bool) {
	type anchorPayload struct {
		Type     string `json:"type"`
		AnchorID string `json:"anchorId"`
		IsMuted  bool   `json:"isMuted"`
	}
	var p anchorPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad anchor mute payload")
		return
	}
	// The anchorId field is informational; authorization runs against the
	// identity bound to this connection.
	ctl.Orch.SetAnchorMuted(cid, muted)
}

func (ctl *Controller) handleKickUser(cid core.ConnID, data []byte) {
	type kickPayload struct {
		Type     string `json:"type"`
		TargetID string `json:"targetId"`
	}
	var p kickPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad kick payload")
		return
	}
	ctl.Orch.KickViewer(cid, domain.ClientID(p.TargetID))
}
