// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/protocol.go
// Summary: Frame layout shared by the remote desktop client and server.
// Usage: Every message is a 40-byte header followed by an opaque payload.

package protocol

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"sync"
)

const (
	magic      uint32 = 0x54584401 // "TXD\x01"
	headerSize        = 40

	// MaxPayload bounds the allocation made for an incoming frame. A full
	// 4096x2160 XRGB frame is well below it.
	MaxPayload = 64 << 20
)

// Flag bits for the header Flags byte.
const (
	FlagChecksum uint8 = 0x01
)

// Version is the negotiated protocol version implemented by this package.
const Version uint8 = 1

// MessageType enumerates the message categories exchanged between client
// and server.
type MessageType uint8

const (
	MsgHello MessageType = iota
	MsgWelcome
	MsgConnectRequest
	MsgConnectAccept
	MsgDisconnectNotice
	MsgPing
	MsgPong
	MsgError
	MsgResize
	MsgFastPathInput
	MsgDesktopSize
	MsgBitmapUpdate
	MsgPointerPosition
	MsgPointerHidden
	MsgPointerDefault
	MsgClipboardSet
	MsgClipboardData
)

var messageNames = [...]string{
	"hello", "welcome", "connect-request", "connect-accept", "disconnect",
	"ping", "pong", "error", "resize", "fastpath-input", "desktop-size",
	"bitmap-update", "pointer-position", "pointer-hidden", "pointer-default",
	"clipboard-set", "clipboard-data",
}

func (t MessageType) String() string {
	if int(t) < len(messageNames) {
		return messageNames[t]
	}
	return "unknown"
}

// Header describes the fixed portion of every frame exchanged over the wire.
type Header struct {
	Version    uint8
	Type       MessageType
	Flags      uint8
	Reserved   uint8
	SessionID  [16]byte
	Sequence   uint64
	PayloadLen uint32
	Checksum   uint32
}

var (
	ErrInvalidMagic     = errors.New("protocol: invalid magic")
	ErrUnsupportedVer   = errors.New("protocol: unsupported version")
	ErrShortPayload     = errors.New("protocol: payload shorter than declared length")
	ErrChecksumMismatch = errors.New("protocol: checksum mismatch")
	ErrPayloadTooLarge  = errors.New("protocol: payload exceeds limit")
)

// WriteMessage serialises the header and payload to the provided writer. The
// payload slice is written as-is; callers retain ownership of the buffer.
func WriteMessage(w io.Writer, hdr Header, payload []byte) error {
	if len(payload) > MaxPayload {
		return ErrPayloadTooLarge
	}
	hdr.PayloadLen = uint32(len(payload))

	buf := make([]byte, headerSize, headerSize+len(payload))
	binary.LittleEndian.PutUint32(buf[0:], magic)
	buf[4] = hdr.Version
	buf[5] = byte(hdr.Type)
	buf[6] = hdr.Flags
	buf[7] = hdr.Reserved
	copy(buf[8:24], hdr.SessionID[:])
	binary.LittleEndian.PutUint64(buf[24:32], hdr.Sequence)
	binary.LittleEndian.PutUint32(buf[32:36], hdr.PayloadLen)

	checksum := hdr.Checksum
	if hdr.Flags&FlagChecksum != 0 {
		checksum = frameChecksum(buf[4:36], payload)
	}
	binary.LittleEndian.PutUint32(buf[36:40], checksum)

	// One Write per frame keeps frames intact on connections shared by
	// several writers that serialise on a mutex.
	buf = append(buf, payload...)
	_, err := w.Write(buf)
	return err
}

// ReadMessage reads a header and payload from r. The returned payload points to
// a freshly allocated slice sized to the declared payload length.
func ReadMessage(r io.Reader) (Header, []byte, error) {
	var hdr Header
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return hdr, nil, err
	}

	if binary.LittleEndian.Uint32(buf[0:4]) != magic {
		return hdr, nil, ErrInvalidMagic
	}

	hdr.Version = buf[4]
	hdr.Type = MessageType(buf[5])
	hdr.Flags = buf[6]
	hdr.Reserved = buf[7]
	copy(hdr.SessionID[:], buf[8:24])
	hdr.Sequence = binary.LittleEndian.Uint64(buf[24:32])
	hdr.PayloadLen = binary.LittleEndian.Uint32(buf[32:36])
	hdr.Checksum = binary.LittleEndian.Uint32(buf[36:40])

	if hdr.Version != Version {
		return hdr, nil, ErrUnsupportedVer
	}
	if hdr.PayloadLen > MaxPayload {
		return hdr, nil, ErrPayloadTooLarge
	}

	payload := make([]byte, hdr.PayloadLen)
	if hdr.PayloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return hdr, nil, ErrShortPayload
			}
			return hdr, nil, err
		}
	}

	if hdr.Flags&FlagChecksum != 0 && frameChecksum(buf[4:36], payload) != hdr.Checksum {
		return hdr, nil, ErrChecksumMismatch
	}

	return hdr, payload, nil
}

func frameChecksum(header, payload []byte) uint32 {
	crc := crc32.NewIEEE()
	_, _ = crc.Write(header)
	if len(payload) > 0 {
		_, _ = crc.Write(payload)
	}
	return crc.Sum32()
}

// Writer stamps outgoing frames with the session ID and a monotonically
// increasing sequence number. It is safe for concurrent use.
type Writer struct {
	mu        sync.Mutex
	w         io.Writer
	sessionID [16]byte
	sequence  uint64
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// SetSessionID changes the session stamped on subsequent frames.
func (fw *Writer) SetSessionID(id [16]byte) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.sessionID = id
}

// Send writes one checksummed frame.
func (fw *Writer) Send(t MessageType, payload []byte) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.sequence++
	header := Header{
		Version:   Version,
		Type:      t,
		Flags:     FlagChecksum,
		SessionID: fw.sessionID,
		Sequence:  fw.sequence,
	}
	return WriteMessage(fw.w, header, payload)
}

// SendValue encodes v with the payload codec and sends it.
func (fw *Writer) SendValue(t MessageType, v any) error {
	payload, err := Marshal(v)
	if err != nil {
		return err
	}
	return fw.Send(t, payload)
}
