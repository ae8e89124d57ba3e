// Package protocol defines the wire envelope and the server-push payloads.
// Client payloads are decoded where they are handled; only messages the server
// originates get a named struct here.
package protocol

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"

	"github.com/bingbing01121-art/live-test/internal/core"
	"github.com/bingbing01121-art/live-test/internal/domain"
)

// Client to server.
const (
	TypeRegister     = "register"
	TypeCreateRoom   = "create-room"
	TypeRejoinRoom   = "rejoin-room"
	TypeListRooms    = "list-rooms"
	TypeJoinRoom     = "join-room"
	TypeLeaveRoom    = "leave-room"
	TypeMuteViewer   = "mute-viewer"
	TypeUnmuteViewer = "unmute-viewer"
	TypeKickUser     = "kick-user"
	TypePing         = "ping"
)

// Relayed verbatim between peers, both directions.
const (
	TypeOffer     = "offer"
	TypeAnswer    = "answer"
	TypeCandidate = "candidate"
)

// Anchor mute is both a request and its broadcast form.
const (
	TypeAnchorMute   = "live.anchor.mute"
	TypeAnchorUnmute = "live.anchor.unmute"
)

// Server to client.
const (
	TypeRegistered              = "registered"
	TypeRoomCreated             = "room-created"
	TypeRoomRejoined            = "room-rejoined"
	TypeRejoinFailed            = "rejoin-room-failed"
	TypeRoomList                = "room-list"
	TypeJoinedRoom              = "joined-room"
	TypeViewerMutedStatus       = "viewer-muted-status"
	TypeKicked                  = "kicked"
	TypeNewViewer               = "new-viewer"
	TypeViewerLeft              = "viewer-left"
	TypeBroadcasterDisconnected = "broadcaster-disconnected"
	TypeBroadcasterRejoined     = "broadcaster-rejoined"
	TypeRoomClosed              = "room-closed"
	TypeError                   = "error"
	TypePong                    = "pong"
)

// Machine codes on error replies the client can act on.
const (
	CodeRoomNotFound      = "room_not_found"
	CodePasswordIncorrect = "password_incorrect"
	CodeRateLimited       = "rate_limited"
)

// Envelope carries only the type tag; type-specific fields sit flat in the
// same JSON object.
type Envelope struct {
	Type string `json:"type"`
}

type Registered struct {
	Type       string             `json:"type"`
	ClientID   domain.ClientID    `json:"identity"`
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

type RoomCreated struct {
	Type     string          `json:"type"`
	RoomID   domain.RoomID   `json:"roomId"`
	RoomName domain.RoomName `json:"roomName"`
}

type RoomRejoined struct {
	Type     string          `json:"type"`
	RoomID   domain.RoomID   `json:"roomId"`
	RoomName domain.RoomName `json:"roomName"`
}

type RejoinFailed struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type RoomSummary struct {
	RoomID              domain.RoomID   `json:"roomId"`
	RoomName            domain.RoomName `json:"roomName"`
	BroadcasterName     string          `json:"broadcasterName,omitempty"`
	ViewerCount         int             `json:"viewerCount"`
	IsPasswordProtected bool            `json:"isPasswordProtected"`
}

type RoomList struct {
	Type  string        `json:"type"`
	Rooms []RoomSummary `json:"rooms"`
}

type JoinedRoom struct {
	Type        string        `json:"type"`
	RoomID      domain.RoomID `json:"roomId"`
	AnchorMuted bool          `json:"anchorMuted"`
	IsMuted     bool          `json:"isMuted"`
}

type NewViewer struct {
	Type     string          `json:"type"`
	ViewerID domain.ClientID `json:"viewerId"`
	Username string          `json:"username,omitempty"`
	IsMuted  bool            `json:"isMuted"`
}

type ViewerLeft struct {
	Type     string          `json:"type"`
	ViewerID domain.ClientID `json:"viewerId"`
}

type ViewerMutedStatus struct {
	Type     string          `json:"type"`
	ViewerID domain.ClientID `json:"viewerId"`
	IsMuted  bool            `json:"isMuted"`
}

type AnchorMuteState struct {
	Type     string          `json:"type"`
	AnchorID domain.ClientID `json:"anchorId"`
	IsMuted  bool            `json:"isMuted"`
}

type BroadcasterDisconnected struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
}

type BroadcasterRejoined struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
}

type RoomClosed struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
}

type Kicked struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type ErrorReply struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type Pong struct {
	Type string `json:"type"`
}

func Encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	return core.Frame(b), err
}
