package packet

import (
	"fmt"
)

// Flags is the client capability bitset sent during the handshake.
type Flags uint8

const (
	FlagSuppressResponses Flags = 1 << 0 // do not send command responses back
	FlagSubscribeConsole  Flags = 1 << 1 // push console lines to this client
	FlagSubscribeLogs     Flags = 1 << 2 // push log lines to this client
)

func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

// AckCode is the server's handshake verdict.
type AckCode uint8

const (
	AckAccepted        AckCode = 0
	AckInvalidPassword AckCode = 1
	AckRejected        AckCode = 2
)

func (c AckCode) String() string {
	switch c {
	case AckAccepted:
		return "Accepted"
	case AckInvalidPassword:
		return "Invalid Password"
	case AckRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Handshake is the first frame sent after the transport connects. The
// server answers with exactly one HandshakeAck before any other traffic.
type Handshake struct {
	Password    string
	Permissions uint64 // requested permission bitset
	KickPower   uint8  // requested kick power level
	Flags       Flags
	Username    string // optional, used for server side audit logs
}

func NewHandshake(password string) *Handshake {
	return &Handshake{
		Password:    password,
		Permissions: ^uint64(0),
		KickPower:   0xff,
	}
}

func (p *Handshake) Type() ContentType {
	return TypeHandshake
}
func (p *Handshake) String() string {
	return fmt.Sprintf("HANDSHAKE(perms=%#x, kick=%d, flags=%#x, user=%q)", p.Permissions, p.KickPower, p.Flags, p.Username)
}
func (p *Handshake) Equal(other Packet) bool {
	if other == nil || other.Type() != TypeHandshake {
		return false
	}
	o := other.(*Handshake)
	return p.Password == o.Password &&
		p.Permissions == o.Permissions &&
		p.KickPower == o.KickPower &&
		p.Flags == o.Flags &&
		p.Username == o.Username
}
func (p *Handshake) EncodeTo(w Encoder) error {
	w.WriteString(p.Password)
	w.WriteUInt64(p.Permissions)
	w.WriteUInt8(p.KickPower)
	w.WriteUInt8(uint8(p.Flags))
	w.WriteString(p.Username)
	return nil
}
func (p *Handshake) DecodeFrom(r Decoder) error {
	var err error
	if p.Password, err = r.ReadString(); err != nil {
		return err
	}
	if p.Permissions, err = r.ReadUInt64(); err != nil {
		return err
	}
	if p.KickPower, err = r.ReadUInt8(); err != nil {
		return err
	}
	flags, err := r.ReadUInt8()
	if err != nil {
		return err
	}
	p.Flags = Flags(flags)
	if p.Username, err = r.ReadString(); err != nil {
		return err
	}
	return nil
}

// HandshakeAck carries the server's verdict on a Handshake.
type HandshakeAck struct {
	Code AckCode
}

func NewHandshakeAck(code AckCode) *HandshakeAck {
	return &HandshakeAck{Code: code}
}

func (p *HandshakeAck) Type() ContentType {
	return TypeHandshakeAck
}
func (p *HandshakeAck) String() string {
	return fmt.Sprintf("HANDSHAKE_ACK(%s)", p.Code)
}
func (p *HandshakeAck) Equal(other Packet) bool {
	if other == nil || other.Type() != TypeHandshakeAck {
		return false
	}
	return p.Code == other.(*HandshakeAck).Code
}
func (p *HandshakeAck) EncodeTo(w Encoder) error {
	w.WriteUInt8(uint8(p.Code))
	return nil
}
func (p *HandshakeAck) DecodeFrom(r Decoder) error {
	code, err := r.ReadUInt8()
	if err != nil {
		return err
	}
	p.Code = AckCode(code)
	return nil
}
