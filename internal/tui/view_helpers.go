package tui

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"
	"unicode"

	"github.com/MKhiriev/go-chat-tui/internal/codec"
	"github.com/MKhiriev/go-chat-tui/internal/interaction"
	"github.com/MKhiriev/go-chat-tui/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

const (
	headerRows = 1
	inputRows  = 3
	statusRows = 1
)

// chatRows is the number of rows left for chat lines on a screen of the given
// height.
func chatRows(height int) int {
	return max(0, height-headerRows-inputRows-statusRows)
}

func renderScreen(s interaction.Snapshot, info models.AppBuildInfo, spin string, width, height int) string {
	rows := make([]string, 0, height)
	rows = append(rows, renderHeader(s, info, width))
	rows = append(rows, renderChat(s.Lines, s.BelowRows, width, chatRows(height))...)
	rows = append(rows, renderInput(s, width)...)
	rows = append(rows, renderStatus(s, spin, width))
	return strings.Join(rows, "\n")
}

// renderChat wraps lines to width, drops the below rows that lie under the
// viewport and keeps the bottom rows. Short histories are padded from the top
// so the newest line sits just above the input.
func renderChat(lines []models.ChatLine, below, width, rows int) []string {
	if rows <= 0 {
		return nil
	}

	var out []string
	for _, l := range lines {
		out = append(out, wrapLine(l, width)...)
	}
	out = out[:max(0, len(out)-below)]

	if len(out) > rows {
		return out[len(out)-rows:]
	}
	pad := make([]string, rows-len(out), rows)
	return append(pad, out...)
}

// wrapLine formats l and wraps it to width cells, one string per row.
func wrapLine(l models.ChatLine, width int) []string {
	text := nickStyle(l.Sender).Render(sanitize(l.Sender)) + ": " + sanitize(l.Body)
	if width > 0 {
		text = wrap.String(wordwrap.String(text, width), width)
	}
	return strings.Split(text, "\n")
}

// lineRows is the interaction.RowCounter matching renderChat.
func lineRows(l models.ChatLine, width int) int {
	return len(wrapLine(l, width))
}

func renderInput(s interaction.Snapshot, width int) []string {
	border := normalBorder
	if s.Mode == interaction.ModeInsert {
		border = insertBorder
	}

	inner := max(1, width-4)

	counter := fmt.Sprintf("%d/%d", len(s.Input), codec.MaxBodyBytes)
	counterView := helpStyle.Render(counter)
	if len(s.Input) > codec.MaxBodyBytes {
		counterView = errorStyle.Render(counter)
	}

	label := " " + strings.ToUpper(s.Mode.String()) + " "
	fill := max(0, width-4-runewidth.StringWidth(label)-runewidth.StringWidth(counter)-2)
	top := border.Render("╭─"+label+strings.Repeat("─", fill)+" ") + counterView + border.Render(" ─╮")

	var content string
	switch {
	case s.Mode == interaction.ModeInsert:
		content = renderInputLine(s.Input, s.Cursor, inner)
	case s.Input != "":
		content = truncate.StringWithTail(s.Input, uint(inner), "…")
	case s.Anonymous:
		content = helpStyle.Render(truncate.String("read-only session", uint(inner)))
	default:
		content = helpStyle.Render(truncate.String("press i to write a message", uint(inner)))
	}
	content += strings.Repeat(" ", max(0, inner-lipgloss.Width(content)))

	middle := border.Render("│ ") + content + border.Render(" │")
	bottom := border.Render("╰" + strings.Repeat("─", max(0, width-2)) + "╯")
	return []string{top, middle, bottom}
}

// renderInputLine shows the part of input around the cursor that fits in
// width cells. The cursor cell is drawn in reverse video.
func renderInputLine(input string, cursor, width int) string {
	runes := []rune(input)
	cursor = min(max(cursor, 0), len(runes))

	before := string(runes[:cursor])
	under, after := " ", ""
	if cursor < len(runes) {
		under = string(runes[cursor])
		after = string(runes[cursor+1:])
	}
	underWidth := max(1, runewidth.StringWidth(under))

	room := max(0, width-underWidth)
	if w := runewidth.StringWidth(before); w > room {
		before = runewidth.TruncateLeft(before, w-room, "")
	}
	after = runewidth.Truncate(after, max(0, room-runewidth.StringWidth(before)), "")

	return before + cursorStyle.Render(under) + after
}

func renderStatus(s interaction.Snapshot, spin string, width int) string {
	var left string
	switch s.Conn.Phase {
	case interaction.PhaseConnecting:
		left = spin + " connecting"
	case interaction.PhaseJoined:
		left = joinedStyle.Render("● joined " + s.Channel.Target())
	case interaction.PhaseDisconnected:
		left = warnStyle.Render(spin + " " + reconnectText(s.Conn))
	case interaction.PhaseAuthFailed:
		left = errorStyle.Render("✗ authentication failed")
	}
	if s.ScrollPosition > 0 {
		left += helpStyle.Render(fmt.Sprintf("  ↓ %d newer", s.NewerLines))
	}

	room := width - lipgloss.Width(left) - 2
	if room <= 0 || s.Notice.Empty() {
		return left
	}

	var right string
	if s.Notice.Err != nil {
		right = errorStyle.Render(truncate.StringWithTail(humanizeError(s.Notice.Err), uint(room), "…"))
	} else {
		right = warnStyle.Render(truncate.StringWithTail(sanitize(s.Notice.Text), uint(room), "…"))
	}

	gap := max(2, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func reconnectText(c interaction.ConnStatus) string {
	if c.RetryIn <= 0 {
		return fmt.Sprintf("reconnecting (attempt %d)", c.Attempt)
	}
	return fmt.Sprintf("reconnecting in %s (attempt %d)", c.RetryIn.Round(100*time.Millisecond), c.Attempt)
}

func nickStyle(nick string) lipgloss.Style {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(nick)))
	return lipgloss.NewStyle().Bold(true).Foreground(nickColors[h.Sum32()%uint32(len(nickColors))])
}

// sanitize drops control characters so wire text cannot move the cursor or
// change terminal modes.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
