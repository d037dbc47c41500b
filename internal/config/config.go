// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "TUISEN_"

// StructuredConfig is the top-level configuration container for the
// go-chat-tui client. It aggregates all sub-configurations and is populated
// by merging built-in defaults, an optional config file, environment
// variables and command-line flags.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Auth holds the optional chat credential. Both fields empty means an
	// anonymous, receive-only session.
	Auth Auth `envPrefix:"AUTH_"`

	// Adapter holds the server address and transport timeouts.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Chat holds channel and scrollback settings.
	Chat Chat `envPrefix:"CHAT_"`

	// Reconnect holds the reconnect backoff settings.
	Reconnect Reconnect `envPrefix:"RECONNECT_"`

	// Log holds the client log file settings.
	Log Log `envPrefix:"LOG_"`

	// ConfigFile is the optional path to a JSON or TOML configuration file.
	// The format is chosen by extension; anything other than .json is read
	// as TOML.
	// Env: TUISEN_CONFIG, flag: -c / --config
	ConfigFile string `env:"CONFIG"`
}

// Auth holds the chat credential.
type Auth struct {
	// Username is the login name. Env: TUISEN_AUTH_USERNAME
	Username string `env:"USERNAME"`

	// Token is the OAuth token, with or without the "oauth:" prefix.
	// Env: TUISEN_AUTH_TOKEN
	Token string `env:"TOKEN"`
}

// Adapter holds transport settings.
type Adapter struct {
	// Address is the server URL: irc://host[:port] for plain TCP,
	// ircs://host[:port] for TLS.
	// Env: TUISEN_ADAPTER_ADDRESS
	Address string `env:"ADDRESS"`

	// DialTimeout bounds connection establishment.
	// Env: TUISEN_ADAPTER_DIAL_TIMEOUT
	DialTimeout time.Duration `env:"DIAL_TIMEOUT"`

	// HandshakeTimeout bounds the wait for the join acknowledgement.
	// Env: TUISEN_ADAPTER_HANDSHAKE_TIMEOUT
	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT"`

	// ReadTimeout is the longest the connection may stay silent before it
	// is considered dead. The server pings roughly every five minutes.
	// Env: TUISEN_ADAPTER_READ_TIMEOUT
	ReadTimeout time.Duration `env:"READ_TIMEOUT"`

	// WriteTimeout bounds every write.
	// Env: TUISEN_ADAPTER_WRITE_TIMEOUT
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT"`
}

// Chat holds channel and scrollback settings.
type Chat struct {
	// Channel is the channel to join, with or without the leading '#'.
	// Env: TUISEN_CHAT_CHANNEL
	Channel string `env:"CHANNEL"`

	// ScrollbackCapacity is the number of chat lines kept in memory.
	// Env: TUISEN_CHAT_SCROLLBACK
	ScrollbackCapacity int `env:"SCROLLBACK"`

	// Echo is "local" or "server"; see service.EchoMode.
	// Env: TUISEN_CHAT_ECHO
	Echo string `env:"ECHO"`

	// AnonymousFallback continues anonymously when the server rejects the
	// credential instead of stopping.
	// Env: TUISEN_CHAT_ANONYMOUS_FALLBACK
	AnonymousFallback bool `env:"ANONYMOUS_FALLBACK"`
}

// Reconnect holds the reconnect backoff settings.
type Reconnect struct {
	// Base is the first delay. Env: TUISEN_RECONNECT_BASE
	Base time.Duration `env:"BASE"`

	// Cap is the largest delay. Env: TUISEN_RECONNECT_CAP
	Cap time.Duration `env:"CAP"`

	// JitterPercent spreads each delay by +/- this percentage.
	// Env: TUISEN_RECONNECT_JITTER
	JitterPercent uint64 `env:"JITTER"`
}

// Log holds the client log file settings.
type Log struct {
	// Path is the log file. Empty means tuisen.log next to the executable.
	// Env: TUISEN_LOG_PATH
	Path string `env:"PATH"`

	// Level is a zerolog level name. Env: TUISEN_LOG_LEVEL
	Level string `env:"LEVEL"`
}

// DefaultConfigFile is loaded when present and no file is configured.
const DefaultConfigFile = "tuisen.toml"

// Defaults returns the built-in configuration.
func Defaults() *StructuredConfig {
	return &StructuredConfig{
		Adapter: Adapter{
			Address:          "ircs://irc.chat.twitch.tv:6697",
			DialTimeout:      10 * time.Second,
			HandshakeTimeout: 15 * time.Second,
			ReadTimeout:      6 * time.Minute,
			WriteTimeout:     5 * time.Second,
		},
		Chat: Chat{
			Channel:            "forsen",
			ScrollbackCapacity: 1000,
			Echo:               "local",
		},
		Reconnect: Reconnect{
			Base:          time.Second,
			Cap:           30 * time.Second,
			JitterPercent: 20,
		},
		Log: Log{
			Level: "info",
		},
	}
}
