package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// DefaultChannel is joined when no channel is configured.
const DefaultChannel = ChannelName("forsen")

// ErrInvalidChannelName is returned by ParseChannelName for names that cannot
// be joined.
var ErrInvalidChannelName = errors.New("invalid channel name")

// ChannelName is a normalized channel identifier: lowercase, without the
// leading '#'. It is set once at startup and never changes.
type ChannelName string

// ParseChannelName trims and lowercases raw and strips a single leading '#'.
// Empty names and names containing whitespace, commas or control characters
// are rejected.
func ParseChannelName(raw string) (ChannelName, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.TrimPrefix(name, "#")
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidChannelName)
	}

	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == ',' || r == '#' {
			return "", fmt.Errorf("%w: %q", ErrInvalidChannelName, raw)
		}
	}

	return ChannelName(name), nil
}

// String returns the bare channel name.
func (c ChannelName) String() string {
	return string(c)
}

// Target returns the channel in its wire form, prefixed with '#'.
func (c ChannelName) Target() string {
	return "#" + string(c)
}
