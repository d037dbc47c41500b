// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package codec implements the line protocol spoken with the chat server.
//
// Inbound frames are parsed by [ParseFrame] into their IRC grammar parts
// (tags, prefix, command, params) and classified by [Decoder.Decode] into an
// [Event]. Unrecognized commands decode to [KindUnknown] instead of failing,
// and every frame is parsed independently, so a malformed line never affects
// the lines after it.
//
// Outbound frames are produced by the Encode* functions. The package performs
// no I/O.
package codec
