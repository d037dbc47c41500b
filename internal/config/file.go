package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// fileConfig is the on-disk layout shared by JSON and TOML files. The
// top-level username, token and channel keys keep older tuisen.toml files
// working.
type fileConfig struct {
	Username string `json:"username" toml:"username"`
	Token    string `json:"token" toml:"token"`
	Channel  string `json:"channel" toml:"channel"`

	Auth struct {
		Username string `json:"username" toml:"username"`
		Token    string `json:"token" toml:"token"`
	} `json:"auth" toml:"auth"`

	Adapter struct {
		Address          string   `json:"address" toml:"address"`
		DialTimeout      Duration `json:"dial_timeout" toml:"dial_timeout"`
		HandshakeTimeout Duration `json:"handshake_timeout" toml:"handshake_timeout"`
		ReadTimeout      Duration `json:"read_timeout" toml:"read_timeout"`
		WriteTimeout     Duration `json:"write_timeout" toml:"write_timeout"`
	} `json:"adapter" toml:"adapter"`

	Chat struct {
		Channel            string `json:"channel" toml:"channel"`
		ScrollbackCapacity int    `json:"scrollback" toml:"scrollback"`
		Echo               string `json:"echo" toml:"echo"`
		AnonymousFallback  bool   `json:"anonymous_fallback" toml:"anonymous_fallback"`
	} `json:"chat" toml:"chat"`

	Reconnect struct {
		Base          Duration `json:"base" toml:"base"`
		Cap           Duration `json:"cap" toml:"cap"`
		JitterPercent uint64   `json:"jitter_percent" toml:"jitter_percent"`
	} `json:"reconnect" toml:"reconnect"`

	Log struct {
		Path  string `json:"path" toml:"path"`
		Level string `json:"level" toml:"level"`
	} `json:"log" toml:"log"`
}

func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var fc fileConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &fc)
	} else {
		err = toml.Unmarshal(data, &fc)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
	}

	cfg := &StructuredConfig{
		Auth: Auth{
			Username: firstNonEmpty(fc.Auth.Username, fc.Username),
			Token:    firstNonEmpty(fc.Auth.Token, fc.Token),
		},
		Adapter: Adapter{
			Address:          fc.Adapter.Address,
			DialTimeout:      time.Duration(fc.Adapter.DialTimeout),
			HandshakeTimeout: time.Duration(fc.Adapter.HandshakeTimeout),
			ReadTimeout:      time.Duration(fc.Adapter.ReadTimeout),
			WriteTimeout:     time.Duration(fc.Adapter.WriteTimeout),
		},
		Chat: Chat{
			Channel:            firstNonEmpty(fc.Chat.Channel, fc.Channel),
			ScrollbackCapacity: fc.Chat.ScrollbackCapacity,
			Echo:               fc.Chat.Echo,
			AnonymousFallback:  fc.Chat.AnonymousFallback,
		},
		Reconnect: Reconnect{
			Base:          time.Duration(fc.Reconnect.Base),
			Cap:           time.Duration(fc.Reconnect.Cap),
			JitterPercent: fc.Reconnect.JitterPercent,
		},
		Log: Log{
			Path:  fc.Log.Path,
			Level: fc.Log.Level,
		},
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Duration is a wrapper around time.Duration that decodes from strings like
// "1h" or "30s" in both JSON and TOML, and from integer nanoseconds in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		return d.UnmarshalText([]byte(value))
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
}

func (d *Duration) UnmarshalText(text []byte) error {
	tmp, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
