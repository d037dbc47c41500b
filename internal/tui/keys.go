package tui

import (
	"unicode"

	"github.com/MKhiriev/go-chat-tui/internal/interaction"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	forceQuit  key.Binding
	clearLine  key.Binding
	deleteWord key.Binding
	enter      key.Binding
	backspace  key.Binding
	delete     key.Binding
	esc        key.Binding
	up         key.Binding
	down       key.Binding
	left       key.Binding
	right      key.Binding
	home       key.Binding
	end        key.Binding
	pgUp       key.Binding
	pgDown     key.Binding
}

var keys = keyMap{
	forceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
	clearLine:  key.NewBinding(key.WithKeys("ctrl+u")),
	deleteWord: key.NewBinding(key.WithKeys("alt+backspace", "ctrl+w")),
	enter:      key.NewBinding(key.WithKeys("enter")),
	backspace:  key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
	delete:     key.NewBinding(key.WithKeys("delete")),
	esc:        key.NewBinding(key.WithKeys("esc")),
	up:         key.NewBinding(key.WithKeys("up")),
	down:       key.NewBinding(key.WithKeys("down")),
	left:       key.NewBinding(key.WithKeys("left")),
	right:      key.NewBinding(key.WithKeys("right")),
	home:       key.NewBinding(key.WithKeys("home")),
	end:        key.NewBinding(key.WithKeys("end")),
	pgUp:       key.NewBinding(key.WithKeys("pgup")),
	pgDown:     key.NewBinding(key.WithKeys("pgdown")),
}

type binding struct {
	binding key.Binding
	key     interaction.Key
}

// Order matters: deleteWord has to be tried before backspace.
var bindings = []binding{
	{keys.forceQuit, interaction.Special(interaction.KeyForceQuit)},
	{keys.clearLine, interaction.Special(interaction.KeyClearLine)},
	{keys.deleteWord, interaction.Key{Type: interaction.KeyBackspace, Alt: true}},
	{keys.enter, interaction.Special(interaction.KeyEnter)},
	{keys.backspace, interaction.Special(interaction.KeyBackspace)},
	{keys.delete, interaction.Special(interaction.KeyDelete)},
	{keys.esc, interaction.Special(interaction.KeyEsc)},
	{keys.up, interaction.Special(interaction.KeyUp)},
	{keys.down, interaction.Special(interaction.KeyDown)},
	{keys.left, interaction.Special(interaction.KeyLeft)},
	{keys.right, interaction.Special(interaction.KeyRight)},
	{keys.home, interaction.Special(interaction.KeyHome)},
	{keys.end, interaction.Special(interaction.KeyEnd)},
	{keys.pgUp, interaction.Special(interaction.KeyPgUp)},
	{keys.pgDown, interaction.Special(interaction.KeyPgDown)},
}

// translateKey turns a terminal key message into machine keys. Pasted text
// yields one key per rune; keys the machine has no use for yield nothing.
func translateKey(msg tea.KeyMsg) []interaction.Key {
	for _, b := range bindings {
		if key.Matches(msg, b.binding) {
			return []interaction.Key{b.key}
		}
	}

	if msg.Type != tea.KeyRunes && msg.Type != tea.KeySpace {
		return nil
	}

	runes := msg.Runes
	if msg.Type == tea.KeySpace && len(runes) == 0 {
		runes = []rune{' '}
	}

	out := make([]interaction.Key, 0, len(runes))
	for _, r := range runes {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			r = ' '
		case unicode.IsControl(r):
			continue
		}
		out = append(out, interaction.Key{Type: interaction.KeyRune, Rune: r, Alt: msg.Alt})
	}
	return out
}
