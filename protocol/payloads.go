// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/payloads.go
// Summary: Session payloads exchanged after the handshake.
// Notes: Encoded with Marshal/Unmarshal; field order is part of the wire format.

package protocol

import "github.com/framegrace/texeldesk/input"

// Resize reports a change of the client window.
type Resize struct {
	_ struct{} `cbor:",toarray"`

	Width          uint16
	Height         uint16
	ScaleFactor    uint32
	PhysicalWidth  uint32
	PhysicalHeight uint32
}

// FastPathInput carries a batch of input records in order.
type FastPathInput struct {
	_ struct{} `cbor:",toarray"`

	Events []input.FastPathEvent
}

// DesktopSize announces the size of the remote desktop. It precedes any
// bitmap and is resent whenever the desktop changes size.
type DesktopSize struct {
	_ struct{} `cbor:",toarray"`

	Width  uint16
	Height uint16
}

// BitmapUpdate replaces a rectangle of the desktop. Data holds Height rows
// of Width 32-bit little-endian XRGB pixels, compressed with Compression;
// RawLength is the uncompressed size.
type BitmapUpdate struct {
	_ struct{} `cbor:",toarray"`

	Left        uint16
	Top         uint16
	Width       uint16
	Height      uint16
	Compression Compression
	RawLength   uint32
	Data        []byte
}

// PointerPosition moves the client's cursor to desktop coordinates.
type PointerPosition struct {
	_ struct{} `cbor:",toarray"`

	X uint16
	Y uint16
}

// ClipboardSet transfers clipboard contents from client to server.
type ClipboardSet struct {
	_ struct{} `cbor:",toarray"`

	MimeType string
	Data     []byte
}

// ClipboardData delivers clipboard contents from server to client.
type ClipboardData struct {
	_ struct{} `cbor:",toarray"`

	MimeType string
	Data     []byte
}
