// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

// validate checks that the final merged [StructuredConfig] satisfies the
// invariants that do not depend on parsing.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if strings.TrimSpace(cfg.Adapter.Address) == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidAdapterConfigs)
	}
	return nil
}

func (cfg *ClientConfig) validate() error {
	if c := cfg.Credential; c != nil && (c.Username == "" || c.Token == "") {
		return fmt.Errorf("%w: username and token must be set together", ErrInvalidAuthConfigs)
	}

	a := cfg.Adapter
	if a.DialTimeout <= 0 || a.HandshakeTimeout <= 0 || a.ReadTimeout <= 0 || a.WriteTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidAdapterConfigs)
	}

	if cfg.Chat.ScrollbackCapacity <= 0 {
		return fmt.Errorf("%w: scrollback must be positive", ErrInvalidChatConfigs)
	}
	if cfg.Chat.Echo != "local" && cfg.Chat.Echo != "server" {
		return fmt.Errorf("%w: echo must be local or server, got %q", ErrInvalidChatConfigs, cfg.Chat.Echo)
	}

	r := cfg.Reconnect
	if r.Base <= 0 || r.Cap < r.Base {
		return fmt.Errorf("%w: need 0 < base <= cap", ErrInvalidReconnectConfigs)
	}
	if r.JitterPercent >= 100 {
		return fmt.Errorf("%w: jitter must be below 100%%", ErrInvalidReconnectConfigs)
	}

	return nil
}
