package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/bingbing01121-art/live-test/internal/app"
	"github.com/bingbing01121-art/live-test/internal/core"
	"github.com/bingbing01121-art/live-test/internal/domain"
	"github.com/bingbing01121-art/live-test/internal/protocol"
)

func (ctl *Controller) handleCreateRoom(
	cid core.ConnID,
	conn core.SignalConnection,
	data []byte,
) {
	type createPayload struct {
		Type     string `json:"type"`
		RoomName string `json:"roomName"`
		Password string `json:"password"`
	}
	var p createPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create-room payload")
		return
	}

	roomID, err := ctl.Orch.CreateRoom(cid, domain.RoomName(p.RoomName), p.Password)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("create-room refused")
		return
	}
	ctl.sendJSON(conn, protocol.RoomCreated{
		Type:     protocol.TypeRoomCreated,
		RoomID:   roomID,
		RoomName: domain.RoomName(p.RoomName),
	})
}

func (ctl *Controller) handleJoinRoom(
	cid core.ConnID,
	conn core.SignalConnection,
	data []byte,
) {
	type joinPayload struct {
		Type     string `json:"type"`
		RoomID   string `json:"roomId"`
		Password string `json:"password"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join-room payload")
		return
	}

	if client, ok := ctl.Orch.ClientOf(cid); ok && !ctl.Limiter.Allow(client) {
		log.Warn().Str("module", "signal").Str("client", string(client)).Msg("join attempts rate limited")
		ctl.sendError(conn, "too many attempts", protocol.CodeRateLimited)
		return
	}

	resp, err := ctl.Orch.JoinRoom(cid, domain.RoomID(p.RoomID), p.Password)
	switch {
	case errors.Is(err, app.ErrRoomNotFound):
		ctl.sendError(conn, "room not found", protocol.CodeRoomNotFound)
		return
	case errors.Is(err, app.ErrPasswordIncorrect):
		ctl.sendError(conn, "password incorrect", protocol.CodePasswordIncorrect)
		return
	case err != nil:
		log.Warn().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("join-room refused")
		return
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *Controller) handleRejoinRoom(
	cid core.ConnID,
	conn core.SignalConnection,
	data []byte,
) {
	type rejoinPayload struct {
		Type     string  `json:"type"`
		RoomID   string  `json:"roomId"`
		RoomName string  `json:"roomName"`
		Password *string `json:"password"`
	}
	var p rejoinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad rejoin-room payload")
		return
	}

	password := ""
	if p.Password != nil {
		password = *p.Password
	}
	roomName, err := ctl.Orch.RejoinRoom(cid, domain.RoomID(p.RoomID), domain.RoomName(p.RoomName), password, p.Password != nil)
	if err != nil {
		ctl.sendJSON(conn, protocol.RejoinFailed{
			Type:    protocol.TypeRejoinFailed,
			Message: "room no longer exists or is not yours",
		})
		return
	}
	ctl.sendJSON(conn, protocol.RoomRejoined{
		Type:     protocol.TypeRoomRejoined,
		RoomID:   domain.RoomID(p.RoomID),
		RoomName: roomName,
	})
}

func (ctl *Controller) handleLeaveRoom(cid core.ConnID) {
	log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("leave-room")
	ctl.Orch.LeaveRoom(cid)
}

func (ctl *Controller) handleListRooms(conn core.SignalConnection) {
	ctl.sendJSON(conn, protocol.RoomList{
		Type:  protocol.TypeRoomList,
		Rooms: ctl.Orch.ListRooms(),
	})
}
