// Package interaction holds the chat client's interactive state: the input
// mode, the pending input line, the scroll position over the scrollback and
// the connection status shown to the user.
//
// [Machine.Apply] is the only way to change that state. It consumes key
// presses, session events and a few UI notifications, performs no I/O and
// returns at most one [Effect] for the caller to carry out. The caller must
// apply inputs from a single goroutine.
package interaction
