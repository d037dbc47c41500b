package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-chat-tui/internal/adapter"
	"github.com/MKhiriev/go-chat-tui/models"
	"github.com/spf13/pflag"
)

// ClientAdapter holds the parsed server address and transport timeouts.
type ClientAdapter struct {
	Address          adapter.Address
	DialTimeout      time.Duration
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

// ClientChat holds chat settings.
type ClientChat struct {
	// Channel is the normalized channel to join.
	Channel models.ChannelName
	// ScrollbackCapacity is the number of retained chat lines.
	ScrollbackCapacity int
	// Echo is "local" or "server".
	Echo string
	// AnonymousFallback continues anonymously after an authentication failure.
	AnonymousFallback bool
}

// ClientReconnect holds the reconnect backoff settings.
type ClientReconnect struct {
	Base          time.Duration
	Cap           time.Duration
	JitterPercent uint64
}

// ClientLog holds log file settings.
type ClientLog struct {
	Path  string
	Level string
}

// ClientConfig is the validated client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// Credential is nil for anonymous sessions.
	Credential *models.Credential
	Adapter    ClientAdapter
	Chat       ClientChat
	Reconnect  ClientReconnect
	Log        ClientLog
	// ConfigFile is the file that was loaded, if any.
	ConfigFile string
}

// GetClientConfig builds and validates the client configuration from
// defaults, the config file, environment variables and the flags set on fs.
// fs may be nil.
func GetClientConfig(fs *pflag.FlagSet) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(fs)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return cfg.clientConfig()
}

// GetStructuredConfig loads and merges the configuration from all sources in
// the following priority order (later sources override non-zero fields):
//  1. Built-in defaults
//  2. Config file (path from flags or env, else ./tuisen.toml if present)
//  3. Environment variables
//  4. Command-line flags that were explicitly set
func GetStructuredConfig(fs *pflag.FlagSet) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(fs).
		withFile().
		build()
}

func (cfg *StructuredConfig) clientConfig() (*ClientConfig, error) {
	channel, err := models.ParseChannelName(cfg.Chat.Channel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidChatConfigs, err)
	}

	addr, err := adapter.ParseAddress(cfg.Adapter.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAdapterConfigs, err)
	}

	clientCfg := &ClientConfig{
		Adapter: ClientAdapter{
			Address:          addr,
			DialTimeout:      cfg.Adapter.DialTimeout,
			HandshakeTimeout: cfg.Adapter.HandshakeTimeout,
			ReadTimeout:      cfg.Adapter.ReadTimeout,
			WriteTimeout:     cfg.Adapter.WriteTimeout,
		},
		Chat: ClientChat{
			Channel:            channel,
			ScrollbackCapacity: cfg.Chat.ScrollbackCapacity,
			Echo:               strings.ToLower(strings.TrimSpace(cfg.Chat.Echo)),
			AnonymousFallback:  cfg.Chat.AnonymousFallback,
		},
		Reconnect: ClientReconnect{
			Base:          cfg.Reconnect.Base,
			Cap:           cfg.Reconnect.Cap,
			JitterPercent: cfg.Reconnect.JitterPercent,
		},
		Log: ClientLog{
			Path:  cfg.Log.Path,
			Level: cfg.Log.Level,
		},
		ConfigFile: cfg.ConfigFile,
	}

	if cfg.Auth.Username != "" || cfg.Auth.Token != "" {
		clientCfg.Credential = &models.Credential{
			Username: strings.TrimSpace(cfg.Auth.Username),
			Token:    strings.TrimSpace(cfg.Auth.Token),
		}
	}

	if err = clientCfg.validate(); err != nil {
		return nil, err
	}
	return clientCfg, nil
}
