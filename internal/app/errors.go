package app

import "errors"

var (
	ErrConnGone          = errors.New("connection gone")
	ErrNotRegistered     = errors.New("identity not registered")
	ErrRoomNotFound      = errors.New("room not found")
	ErrPasswordIncorrect = errors.New("password incorrect")
	ErrRejoinRejected    = errors.New("rejoin rejected")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrNotAMember        = errors.New("target is not a member")
)
