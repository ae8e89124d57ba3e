package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/bingbing01121-art/live-test/internal/core"
	"github.com/bingbing01121-art/live-test/internal/protocol"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, cid core.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("readPump closing")
		cancel()
		ctl.Orch.Disconnect(cid)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("readPump read error")
				return
			}
			ctl.handleMessage(cid, c, data)
		}
	}
}

// handleMessage decodes the envelope and dispatches. A fault in one handler
// must never take the process or another connection with it.
func (ctl *Controller) handleMessage(cid core.ConnID, c core.SignalConnection, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "signal").Str("cid", string(cid)).Any("panic", r).Msg("handler panic isolated")
		}
	}()

	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case protocol.TypeRegister:
		ctl.handleRegister(cid, c, data)
	case protocol.TypeCreateRoom:
		ctl.handleCreateRoom(cid, c, data)
	case protocol.TypeRejoinRoom:
		ctl.handleRejoinRoom(cid, c, data)
	case protocol.TypeListRooms:
		ctl.handleListRooms(c)
	case protocol.TypeJoinRoom:
		ctl.handleJoinRoom(cid, c, data)
	case protocol.TypeLeaveRoom:
		ctl.handleLeaveRoom(cid)
	case protocol.TypeMuteViewer:
		ctl.handleMuteViewer(cid, data, true)
	case protocol.TypeUnmuteViewer:
		ctl.handleMuteViewer(cid, data, false)
	case protocol.TypeAnchorMute:
		ctl.handleAnchorMute(cid, data, true)
	case protocol.TypeAnchorUnmute:
		ctl.handleAnchorMute(cid, data, false)
	case protocol.TypeKickUser:
		ctl.handleKickUser(cid, data)
	case protocol.TypeOffer, protocol.TypeAnswer, protocol.TypeCandidate:
		ctl.handleRelay(cid, env.Type, data)
	case protocol.TypePing:
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) sendJSON(c core.SignalConnection, v any) {
	f, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(f)
}

func (ctl *Controller) sendError(c core.SignalConnection, message, code string) {
	ctl.sendJSON(c, protocol.ErrorReply{Type: protocol.TypeError, Message: message, Code: code})
}
