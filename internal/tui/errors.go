// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-chat-tui/internal/codec"
	"github.com/MKhiriev/go-chat-tui/internal/service"
)

func humanizeError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, codec.ErrEmptyBody):
		return "message is empty"
	case errors.Is(err, codec.ErrTooLong):
		return fmt.Sprintf("message is over %d bytes", codec.MaxBodyBytes)
	case errors.Is(err, service.ErrAnonymous):
		return "read-only: set a username and token to chat"
	case errors.Is(err, service.ErrNotConnected):
		return "not connected, message not sent"
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "broken pipe") ||
		strings.Contains(s, "connection reset") {
		return "network unavailable or server unreachable"
	}

	return err.Error()
}
