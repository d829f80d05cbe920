package packet

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	testp(t, NewCommand("/kick 12345"))
	testp(t, NewRaw("hello"))
	testp(t, &Handshake{
		Password:    "hunter2",
		Permissions: 0xdeadbeef,
		KickPower:   7,
		Flags:       FlagSubscribeConsole | FlagSubscribeLogs,
		Username:    "ops",
	})
	testp(t, NewHandshake("secret"))
	testp(t, NewHandshakeAck(AckInvalidPassword))
	testp(t, NewConsole("[INFO] round started"))
	testp(t, NewLogLine("player joined"))
	testp(t, NewAdminResponse("done", true))
	testp(t, NewAdminResponse("no such player", false))
	testp(t, NewCommandException("NullReferenceException"))
}

func testp(t *testing.T, p Packet) {
	t.Helper()
	rw := &ReadWriter{}
	if err := WriteTo(rw, p); err != nil {
		t.Fatalf("%s: write: %v", p, err)
	}
	newp, err := ReadFrom(rw)
	if err != nil {
		t.Fatalf("%s: read: %v", p, err)
	}
	if !p.Equal(newp) {
		t.Errorf("round trip mismatch: sent %v, got %v", p, newp)
	}
}

func TestHandshakeDefaults(t *testing.T) {
	h := NewHandshake("pw")
	if h.Permissions != ^uint64(0) {
		t.Errorf("default permissions = %#x, want all bits", h.Permissions)
	}
	if h.KickPower != 0xff {
		t.Errorf("default kick power = %d, want 255", h.KickPower)
	}
}

func TestReservedTypeIsNotAnError(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{1, 2, 3}
	header := make([]byte, HeaderLen)
	header[0] = 0x7f
	binary.BigEndian.PutUint32(header[1:], uint32(len(payload)))
	buf.Write(header)
	buf.Write(payload)

	p, err := ReadFrom(&buf)
	if err != nil {
		t.Fatalf("reserved type should decode, got %v", err)
	}
	u, ok := p.(*Unrecognized)
	if !ok {
		t.Fatalf("got %T, want *Unrecognized", p)
	}
	if u.Kind != 0x7f || !bytes.Equal(u.Payload, payload) {
		t.Errorf("got %v, payload %v", u.Kind, u.Payload)
	}
}

func TestOversizedPayloadRejected(t *testing.T) {
	var buf bytes.Buffer
	header := make([]byte, HeaderLen)
	header[0] = byte(TypeConsole)
	binary.BigEndian.PutUint32(header[1:], MaxPayload+1)
	buf.Write(header)

	if _, err := ReadFrom(&buf); err != ErrPayloadTooLarge {
		t.Errorf("got %v, want ErrPayloadTooLarge", err)
	}
}

func TestAdminResponseContentTypes(t *testing.T) {
	if NewAdminResponse("", true).Type() != TypeAdminSuccess {
		t.Error("successful response must use the success content type")
	}
	if NewAdminResponse("", false).Type() != TypeAdminFailure {
		t.Error("unsuccessful response must use the failure content type")
	}
}

type ReadWriter struct {
	data []byte
}

func (w *ReadWriter) Write(p []byte) (n int, err error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *ReadWriter) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(w.data) == 0 {
		return 0, io.EOF
	}
	n = copy(p, w.data)
	w.data = w.data[n:]
	return n, nil
}
