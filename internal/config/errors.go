package config

import "errors"

// Validation errors returned when configuration groups are incomplete or
// invalid. All of them are fatal at startup.
var (
	// ErrInvalidAuthConfigs indicates a half-specified credential.
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration")
	// ErrInvalidAdapterConfigs indicates a bad server address or
	// non-positive timeouts.
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidChatConfigs indicates an unparseable channel name, a
	// non-positive scrollback capacity or an unknown echo mode.
	ErrInvalidChatConfigs = errors.New("invalid chat configuration")
	// ErrInvalidReconnectConfigs indicates inverted or non-positive backoff
	// bounds.
	ErrInvalidReconnectConfigs = errors.New("invalid reconnect configuration")
)
