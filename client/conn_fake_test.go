package client

import (
	"errors"
	"io"
	"sync"

	"kvarenzis.github.io/squery/packet"
)

type readResult struct {
	p   packet.Packet
	err error
}

// fakeConn scripts a server on the other end of the transport. The
// handshake is answered inline; command handling is pluggable.
type fakeConn struct {
	mu        sync.Mutex
	ackCode   packet.AckCode
	ackWith   packet.Packet // overrides the handshake reply when set
	dialErr   func(attempt int) error
	dials     int
	writes    []packet.Packet
	onCommand func(text string)
	writeGate chan struct{} // when set, WritePacket parks until it yields
	in        chan readResult
}

func newFakeConn() *fakeConn {
	return &fakeConn{ackCode: packet.AckAccepted}
}

func (c *fakeConn) Dial() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dials++
	if c.dialErr != nil {
		if err := c.dialErr(c.dials); err != nil {
			return err
		}
	}
	c.in = make(chan readResult, 64)
	return nil
}

func (c *fakeConn) WritePacket(p packet.Packet) error {
	c.mu.Lock()
	gate := c.writeGate
	c.mu.Unlock()
	if gate != nil {
		<-gate
	}
	c.mu.Lock()
	c.writes = append(c.writes, p)
	in := c.in
	onCommand := c.onCommand
	c.mu.Unlock()
	switch v := p.(type) {
	case *packet.Handshake:
		c.mu.Lock()
		reply := c.ackWith
		c.mu.Unlock()
		if reply == nil {
			reply = packet.NewHandshakeAck(c.ackCode)
		}
		in <- readResult{p: reply}
	case *packet.Command:
		if onCommand != nil {
			onCommand(v.Text)
		}
	}
	return nil
}

func (c *fakeConn) ReadPacket() (packet.Packet, error) {
	c.mu.Lock()
	in := c.in
	c.mu.Unlock()
	r, ok := <-in
	if !ok {
		return nil, io.EOF
	}
	return r.p, r.err
}

func (c *fakeConn) Close() error {
	return nil
}

// push delivers a frame as if the server sent it.
func (c *fakeConn) push(p packet.Packet) {
	c.mu.Lock()
	in := c.in
	c.mu.Unlock()
	in <- readResult{p: p}
}

// drop simulates a network failure on the read path.
func (c *fakeConn) drop() {
	c.mu.Lock()
	in := c.in
	c.mu.Unlock()
	in <- readResult{err: errors.New("connection reset by peer")}
}

func (c *fakeConn) dialCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dials
}

func (c *fakeConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func (c *fakeConn) respond(text string, success bool) {
	c.mu.Lock()
	c.onCommand = func(string) {
		c.push(packet.NewAdminResponse(text, success))
	}
	c.mu.Unlock()
}

func (c *fakeConn) echo() {
	c.mu.Lock()
	c.onCommand = func(cmd string) {
		c.push(packet.NewAdminResponse(cmd, true))
	}
	c.mu.Unlock()
}

func (c *fakeConn) setWriteGate(gate chan struct{}) {
	c.mu.Lock()
	c.writeGate = gate
	c.mu.Unlock()
}

func (c *fakeConn) silent() {
	c.mu.Lock()
	c.onCommand = nil
	c.mu.Unlock()
}
