package adapter

import "errors"

var (
	ErrInvalidAddress = errors.New("invalid server address")
	ErrDial           = errors.New("dial failed")
)
