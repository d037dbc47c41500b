// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the interactive client application runtime.
//
// It wires the chat session, the scrollback, the interaction machine and the
// terminal UI into a single process lifecycle: connect once, then run the
// session loop and the UI side by side until the user quits.
package client
