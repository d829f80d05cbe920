// Package packet defines the binary frames of the game server's query
// protocol. Every frame on the wire is a content-type byte, a 4-byte
// big-endian payload length and the payload itself. The payload encoding
// of each frame type is fixed by the server and must not change.
package packet

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPayload is the largest payload the client will accept or emit.
// Anything bigger is a protocol violation.
const MaxPayload = 0xffffff

// HeaderLen is the fixed size of the frame header.
const HeaderLen = 5

// Error represents a framing or codec error code.
type Error uint8

const (
	ErrBufferTooShort  Error = 1
	ErrVarintOverflow  Error = 2
	ErrPayloadTooLarge Error = 3
)

func (e Error) Error() string {
	switch e {
	case ErrBufferTooShort:
		return "buffer too short"
	case ErrVarintOverflow:
		return "varint overflow"
	case ErrPayloadTooLarge:
		return "payload too large"
	default:
		return "unknown error"
	}
}

// ContentType discriminates frame payloads. Outbound values occupy the low
// range, inbound values start at 16. Values not listed here are reserved by
// the server and must be tolerated by the client.
type ContentType uint8

const (
	// Outbound.
	TypeCommand   ContentType = 0 // remote admin command text
	TypeRaw       ContentType = 1 // raw content, no admin semantics
	TypeHandshake ContentType = 2 // authentication exchange

	// Inbound.
	TypeHandshakeAck ContentType = 16 // handshake verdict
	TypeConsole      ContentType = 17 // pushed console line
	TypeLog          ContentType = 18 // pushed log line
	TypeAdminSuccess ContentType = 19 // remote admin plaintext response
	TypeAdminFailure ContentType = 20 // remote admin unsuccessful response
	TypeException    ContentType = 21 // command raised an exception server side
)

func (t ContentType) String() string {
	switch t {
	case TypeCommand:
		return "COMMAND"
	case TypeRaw:
		return "RAW"
	case TypeHandshake:
		return "HANDSHAKE"
	case TypeHandshakeAck:
		return "HANDSHAKE_ACK"
	case TypeConsole:
		return "CONSOLE"
	case TypeLog:
		return "LOG"
	case TypeAdminSuccess:
		return "ADMIN_SUCCESS"
	case TypeAdminFailure:
		return "ADMIN_FAILURE"
	case TypeException:
		return "EXCEPTION"
	default:
		return fmt.Sprintf("RESERVED(%d)", uint8(t))
	}
}

// Packet is one decoded protocol frame.
type Packet interface {
	fmt.Stringer
	Type() ContentType
	Equal(Packet) bool
	EncodeTo(Encoder) error
	DecodeFrom(Decoder) error
}

// ReadFrom reads exactly one frame from r. Frames with a reserved content
// type are returned as *Unrecognized rather than failing, so that newer
// servers do not break older clients.
func ReadFrom(r io.Reader) (Packet, error) {
	header := make([]byte, HeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	contentType := ContentType(header[0])
	length := binary.BigEndian.Uint32(header[1:])
	if length > MaxPayload {
		return nil, ErrPayloadTooLarge
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	var p Packet
	switch contentType {
	case TypeCommand:
		p = &Command{}
	case TypeRaw:
		p = &Raw{}
	case TypeHandshake:
		p = &Handshake{}
	case TypeHandshakeAck:
		p = &HandshakeAck{}
	case TypeConsole:
		p = &Console{}
	case TypeLog:
		p = &LogLine{}
	case TypeAdminSuccess:
		p = &AdminResponse{Success: true}
	case TypeAdminFailure:
		p = &AdminResponse{}
	case TypeException:
		p = &CommandException{}
	default:
		return &Unrecognized{Kind: contentType, Payload: payload}, nil
	}
	if err := p.DecodeFrom(NewDecoder(payload)); err != nil {
		return nil, err
	}
	return p, nil
}

// WriteTo encodes p and writes it to w as a single framed message.
func WriteTo(w io.Writer, p Packet) error {
	enc := NewEncoder()
	if err := p.EncodeTo(enc); err != nil {
		return err
	}
	payload := enc.Bytes()
	if len(payload) > MaxPayload {
		return ErrPayloadTooLarge
	}
	bw := bufio.NewWriter(w)
	header := make([]byte, HeaderLen)
	header[0] = byte(p.Type())
	binary.BigEndian.PutUint32(header[1:], uint32(len(payload)))
	if _, err := bw.Write(header); err != nil {
		return err
	}
	if _, err := bw.Write(payload); err != nil {
		return err
	}
	return bw.Flush()
}
