package client

import (
	"net"

	"golang.org/x/net/websocket"
	"kvarenzis.github.io/squery/packet"
)

// Conn is the transport under one client. Dial tears down any previous
// socket before opening a new one, so two sockets never coexist. Close is
// idempotent.
type Conn interface {
	Dial() error
	Close() error
	ReadPacket() (packet.Packet, error)
	WritePacket(p packet.Packet) error
}

func newConn(network Network, addr string) Conn {
	switch network {
	case NetworkWS:
		return newWSConn("ws://" + addr + "/query")
	default:
		return newTCPConn(addr)
	}
}

type tcpConn struct {
	addr string
	conn *net.TCPConn
}

func newTCPConn(addr string) Conn {
	return &tcpConn{addr: addr}
}

func (c *tcpConn) Dial() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	tcpAddr, err := net.ResolveTCPAddr("tcp", c.addr)
	if err != nil {
		return err
	}
	conn, err := net.DialTCP("tcp", nil, tcpAddr)
	if err != nil {
		return err
	}
	conn.SetNoDelay(true)
	c.conn = conn
	return nil
}

func (c *tcpConn) WritePacket(p packet.Packet) error {
	return packet.WriteTo(c.conn, p)
}

func (c *tcpConn) ReadPacket() (packet.Packet, error) {
	return packet.ReadFrom(c.conn)
}

func (c *tcpConn) Close() error {
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// wsConn speaks the same frames over a websocket, for servers that only
// expose the query port through an http proxy.
type wsConn struct {
	url  string
	conn *websocket.Conn
}

func newWSConn(url string) Conn {
	return &wsConn{url: url}
}

func (c *wsConn) Dial() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	ws, err := websocket.Dial(c.url, "", "http://localhost/")
	if err != nil {
		return err
	}
	c.conn = ws
	return nil
}

func (c *wsConn) WritePacket(p packet.Packet) error {
	w, err := c.conn.NewFrameWriter(websocket.BinaryFrame)
	if err != nil {
		return err
	}
	return packet.WriteTo(w, p)
}

func (c *wsConn) ReadPacket() (packet.Packet, error) {
	r, err := c.conn.NewFrameReader()
	if err != nil {
		return nil, err
	}
	return packet.ReadFrom(r)
}

func (c *wsConn) Close() error {
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
