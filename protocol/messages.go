package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
)

var (
	errStringTooLong = errors.New("protocol: string exceeds 64KB limit")
	errPayloadShort  = errors.New("protocol: payload too short")
)

// Capability bits advertised in Hello.
const (
	CapCompressZstd uint32 = 1 << iota
	CapCompressLZ4
)

// Hello initiates the handshake from client to server.
type Hello struct {
	ClientID     [16]byte
	ClientName   string
	Capabilities uint32
}

// Welcome is returned by the server acknowledging the handshake. Compression
// is the codec the server will use for bitmap data.
type Welcome struct {
	SessionID   [16]byte
	ServerName  string
	Compression Compression
}

// ConnectRequest carries the client's initial window geometry.
type ConnectRequest struct {
	Width       uint16
	Height      uint16
	ScaleFactor uint32
}

// ConnectAccept is returned once the session is ready, with the desktop size
// the client should expect.
type ConnectAccept struct {
	SessionID [16]byte
	Width     uint16
	Height    uint16
}

// DisconnectNotice informs the peer that the session is closing.
type DisconnectNotice struct {
	ReasonCode uint16
	Message    string
}

// Disconnect reason codes.
const (
	DisconnectUserRequested uint16 = iota + 1
	DisconnectServerShutdown
	DisconnectNoUpdates
)

// Ping/Pong keep the connection alive.
type Ping struct {
	Timestamp int64
}

type Pong struct {
	Timestamp int64
}

// ErrorFrame communicates protocol-level errors. The sender closes the
// connection after writing it.
type ErrorFrame struct {
	Code    uint16
	Message string
}

func encodeString(buf *bytes.Buffer, value string) error {
	if len(value) > 0xFFFF {
		return errStringTooLong
	}
	if err := binary.Write(buf, binary.LittleEndian, uint16(len(value))); err != nil {
		return err
	}
	buf.WriteString(value)
	return nil
}

func decodeString(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", nil, errPayloadShort
	}
	length := int(binary.LittleEndian.Uint16(b[:2]))
	b = b[2:]
	if len(b) < length {
		return "", nil, errPayloadShort
	}
	return string(b[:length]), b[length:], nil
}

func EncodeHello(h Hello) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 22+len(h.ClientName)))
	buf.Write(h.ClientID[:])
	if err := encodeString(buf, h.ClientName); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, h.Capabilities); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeHello(b []byte) (Hello, error) {
	var h Hello
	if len(b) < 16 {
		return h, errPayloadShort
	}
	copy(h.ClientID[:], b[:16])
	name, rest, err := decodeString(b[16:])
	if err != nil {
		return h, err
	}
	h.ClientName = name
	if len(rest) < 4 {
		return h, errPayloadShort
	}
	h.Capabilities = binary.LittleEndian.Uint32(rest[:4])
	return h, nil
}

func EncodeWelcome(w Welcome) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 19+len(w.ServerName)))
	buf.Write(w.SessionID[:])
	if err := encodeString(buf, w.ServerName); err != nil {
		return nil, err
	}
	buf.WriteByte(byte(w.Compression))
	return buf.Bytes(), nil
}

func DecodeWelcome(b []byte) (Welcome, error) {
	var w Welcome
	if len(b) < 16 {
		return w, errPayloadShort
	}
	copy(w.SessionID[:], b[:16])
	name, rest, err := decodeString(b[16:])
	if err != nil {
		return w, err
	}
	if len(rest) < 1 {
		return w, errPayloadShort
	}
	w.ServerName = name
	w.Compression = Compression(rest[0])
	return w, nil
}

func EncodeConnectRequest(c ConnectRequest) ([]byte, error) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint16(buf[0:2], c.Width)
	binary.LittleEndian.PutUint16(buf[2:4], c.Height)
	binary.LittleEndian.PutUint32(buf[4:8], c.ScaleFactor)
	return buf, nil
}

func DecodeConnectRequest(b []byte) (ConnectRequest, error) {
	var c ConnectRequest
	if len(b) < 8 {
		return c, errPayloadShort
	}
	c.Width = binary.LittleEndian.Uint16(b[0:2])
	c.Height = binary.LittleEndian.Uint16(b[2:4])
	c.ScaleFactor = binary.LittleEndian.Uint32(b[4:8])
	return c, nil
}

func EncodeConnectAccept(c ConnectAccept) ([]byte, error) {
	buf := make([]byte, 20)
	copy(buf[:16], c.SessionID[:])
	binary.LittleEndian.PutUint16(buf[16:18], c.Width)
	binary.LittleEndian.PutUint16(buf[18:20], c.Height)
	return buf, nil
}

func DecodeConnectAccept(b []byte) (ConnectAccept, error) {
	var c ConnectAccept
	if len(b) < 20 {
		return c, errPayloadShort
	}
	copy(c.SessionID[:], b[:16])
	c.Width = binary.LittleEndian.Uint16(b[16:18])
	c.Height = binary.LittleEndian.Uint16(b[18:20])
	return c, nil
}

func EncodeDisconnectNotice(d DisconnectNotice) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 4+len(d.Message)))
	if err := binary.Write(buf, binary.LittleEndian, d.ReasonCode); err != nil {
		return nil, err
	}
	if err := encodeString(buf, d.Message); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeDisconnectNotice(b []byte) (DisconnectNotice, error) {
	var d DisconnectNotice
	if len(b) < 2 {
		return d, errPayloadShort
	}
	d.ReasonCode = binary.LittleEndian.Uint16(b[:2])
	msg, _, err := decodeString(b[2:])
	if err != nil {
		return d, err
	}
	d.Message = msg
	return d, nil
}

func EncodePing(p Ping) ([]byte, error) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(p.Timestamp))
	return buf, nil
}

func DecodePing(b []byte) (Ping, error) {
	var p Ping
	if len(b) < 8 {
		return p, errPayloadShort
	}
	p.Timestamp = int64(binary.LittleEndian.Uint64(b[:8]))
	return p, nil
}

func EncodePong(p Pong) ([]byte, error) {
	return EncodePing(Ping{Timestamp: p.Timestamp})
}

func DecodePong(b []byte) (Pong, error) {
	ping, err := DecodePing(b)
	if err != nil {
		return Pong{}, err
	}
	return Pong{Timestamp: ping.Timestamp}, nil
}

func EncodeErrorFrame(e ErrorFrame) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 4+len(e.Message)))
	if err := binary.Write(buf, binary.LittleEndian, e.Code); err != nil {
		return nil, err
	}
	if err := encodeString(buf, e.Message); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeErrorFrame(b []byte) (ErrorFrame, error) {
	var e ErrorFrame
	if len(b) < 2 {
		return e, errPayloadShort
	}
	e.Code = binary.LittleEndian.Uint16(b[:2])
	msg, _, err := decodeString(b[2:])
	if err != nil {
		return e, err
	}
	e.Message = msg
	return e, nil
}

// Error implements error so a received frame can be reported directly.
func (e ErrorFrame) Error() string {
	return "remote error: " + e.Message
}
