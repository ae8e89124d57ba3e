// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxClientIDLen = 64
	MaxUsernameLen = 36
	MaxRoomNameLen = 64
	MaxPasswordLen = 64
)

var (
	ErrClientIDEmpty   = errors.New("client id empty")
	ErrClientIDTooLong = errors.New("client id too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUsernameTooLong = errors.New("username too long")
)

// ClientID is the stable identifier a client picks for itself. It survives
// reconnects; the transient connection id does not.
type ClientID string

// Role is what a connection is currently doing in a room, if anything.
type Role int

const (
	RoleNone Role = iota
	RoleBroadcaster
	RoleViewer
)

func (r Role) String() string {
	switch r {
	case RoleBroadcaster:
		return "broadcaster"
	case RoleViewer:
		return "viewer"
	default:
		return "none"
	}
}

// ValidateIdentity checks a register request's identity pair.
func ValidateIdentity(id ClientID, username string) error {
	if len(id) == 0 {
		return ErrClientIDEmpty
	}
	if len(id) > MaxClientIDLen {
		return ErrClientIDTooLong
	}
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
