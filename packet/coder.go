package packet

import (
	"encoding/binary"
)

// Encoder writes protocol fields into a growing buffer.
type Encoder interface {
	Bytes() []byte
	WriteBytes(p []byte)
	WriteUInt8(i uint8)
	WriteUInt64(i uint64)
	WriteVarint(i uint64)
	WriteData(data []byte)
	WriteString(s string)
}

// Decoder reads protocol fields from a fixed buffer.
type Decoder interface {
	ReadBytes(l uint64) ([]byte, error)
	ReadUInt8() (uint8, error)
	ReadUInt64() (uint64, error)
	ReadVarint() (uint64, error)
	ReadData() ([]byte, error)
	ReadString() (string, error)
	ReadAll() ([]byte, error)
}

func NewEncoder() Encoder {
	return &coder{pos: 0, buf: make([]byte, 0, 128)}
}
func NewDecoder(bytes []byte) Decoder {
	return &coder{pos: 0, buf: bytes}
}

type coder struct {
	pos uint64
	buf []byte
}

func (b *coder) Bytes() []byte {
	return b.buf
}

func (b *coder) WriteBytes(p []byte) {
	b.buf = append(b.buf, p...)
}
func (b *coder) WriteUInt8(i uint8) {
	b.buf = append(b.buf, i)
}
func (b *coder) WriteUInt64(i uint64) {
	b.buf = binary.BigEndian.AppendUint64(b.buf, i)
}
func (b *coder) WriteVarint(i uint64) {
	b.buf = binary.AppendUvarint(b.buf, i)
}

// WriteData writes a varint length prefix followed by the raw bytes.
func (b *coder) WriteData(data []byte) {
	b.WriteVarint(uint64(len(data)))
	if len(data) > 0 {
		b.WriteBytes(data)
	}
}
func (b *coder) WriteString(s string) {
	b.WriteData([]byte(s))
}

func (b *coder) ReadBytes(l uint64) ([]byte, error) {
	if l == 0 {
		return nil, nil
	}
	if b.pos+l > uint64(len(b.buf)) {
		return nil, ErrBufferTooShort
	}
	p := b.buf[b.pos : b.pos+l]
	b.pos += l
	return p, nil
}
func (b *coder) ReadUInt8() (uint8, error) {
	if b.pos+1 > uint64(len(b.buf)) {
		return 0, ErrBufferTooShort
	}
	i := b.buf[b.pos]
	b.pos++
	return i, nil
}
func (b *coder) ReadUInt64() (uint64, error) {
	bytes, err := b.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(bytes), nil
}
func (b *coder) ReadVarint() (uint64, error) {
	varint, n := binary.Uvarint(b.buf[b.pos:])
	if n < 0 {
		return 0, ErrVarintOverflow
	}
	if n == 0 {
		return 0, ErrBufferTooShort
	}
	b.pos += uint64(n)
	return varint, nil
}
func (b *coder) ReadData() ([]byte, error) {
	l, err := b.ReadVarint()
	if err != nil {
		return nil, err
	}
	return b.ReadBytes(l)
}
func (b *coder) ReadString() (string, error) {
	bytes, err := b.ReadData()
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
func (b *coder) ReadAll() ([]byte, error) {
	l := uint64(len(b.buf))
	if b.pos >= l {
		return nil, nil
	}
	p := b.buf[b.pos:]
	b.pos = l
	return p, nil
}
