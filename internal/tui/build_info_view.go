// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"strings"

	"github.com/MKhiriev/go-chat-tui/internal/interaction"
	"github.com/MKhiriev/go-chat-tui/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const appName = "tuisen"

func renderHeader(s interaction.Snapshot, info models.AppBuildInfo, width int) string {
	left := titleStyle.Render(s.Channel.Target()) + helpStyle.Render("  "+appName+" "+valueOrNA(info.BuildVersion()))
	if s.Anonymous {
		left += helpStyle.Render("  (anonymous)")
	}

	hint := "q quit · i write · esc stop · ↑↓ scroll"
	room := width - lipgloss.Width(left) - 2
	if room < len("q quit") {
		return truncate.String(left, uint(max(0, width)))
	}
	right := helpStyle.Render(truncate.String(hint, uint(room)))
	return left + strings.Repeat(" ", max(2, width-lipgloss.Width(left)-lipgloss.Width(right))) + right
}

func valueOrNA(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "N/A"
	}
	return v
}
