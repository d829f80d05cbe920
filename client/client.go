package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"kvarenzis.github.io/squery/internal/queue"
	"kvarenzis.github.io/squery/packet"
	"kvarenzis.github.io/squery/stats"
	"kvarenzis.github.io/squery/xerr"
	"kvarenzis.github.io/squery/xlog"
)

// CommandPrefix marks text as a remote admin command.
const CommandPrefix = "/"

// CommandResponse is the server's answer to one admin command.
type CommandResponse struct {
	Content string
	Success bool
}

// CommandError reports that the command raised an exception server side.
type CommandError struct {
	Text string
}

func (e *CommandError) Error() string {
	return "command execution failed: " + e.Text
}

// ConsoleFunc receives one pushed console or log line.
type ConsoleFunc func(line string, log bool)

// Client is one session to a game server's query port. Commands are
// serialized: the protocol has no request ids, so at most one command is in
// flight awaiting its response at any time.
type Client interface {
	Status() Status
	SessionID() string
	// SendCommand sends an admin command and waits for its response, the
	// configured timeout, or ctx. An optional timeout overrides the default
	// for this call only. In suppress mode it fires the frame and returns an
	// empty response immediately.
	SendCommand(ctx context.Context, command string, timeout ...time.Duration) (CommandResponse, error)
	// SendRaw fires raw content with no admin semantics and no response.
	SendRaw(text string) error
	// OnConsole registers a subscriber for pushed console and log lines.
	// All subscribers receive every line, in arrival order. Registrations
	// live until the client is closed.
	OnConsole(fn ConsoleFunc)
	// Close disposes the client: cancels the in-flight command, stops the
	// reconnection supervisor and releases the transport. Idempotent.
	Close() error
}

type client struct {
	mu        sync.Mutex
	addr      string
	opts      *Options
	conn      Conn
	gen       uint64 // bumped per established connection, guards stale recv loops
	status    Status
	closeErr  error
	session   string
	subs      []ConsoleFunc
	logger    *xlog.Logger
	retrier   *Retrier
	retrying  bool
	stats     stats.Handler
	permit    chan struct{}
	pending   pendingCell
	sendQueue *queue.Queue
	recvQueue *queue.Queue
}

// Dial connects to host:port, performs the password handshake and returns a
// ready client. A failed first connect is returned to the caller directly;
// the reconnection supervisor only owns disconnects of an established
// session.
func Dial(host string, port uint16, password string, options ...Option) (Client, error) {
	opts := newOptions(options...)
	opts.password = password
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	c := &client{
		addr:      addr,
		opts:      opts,
		status:    StatusOpening,
		logger:    opts.logger.With("addr", addr),
		retrier:   opts.retrier,
		stats:     opts.stats,
		permit:    make(chan struct{}, 1),
		sendQueue: queue.New(256),
		recvQueue: queue.New(1024),
	}
	if opts.transport != nil {
		c.conn = opts.transport
	} else {
		c.conn = newConn(opts.network, addr)
	}
	c.stats.ConnectBegin(&stats.ConnInfo{Address: addr})
	if err := c.connect(); err != nil {
		c.stats.ConnectEnd(&stats.ConnInfo{Address: addr}, err)
		c.dispose(err)
		return nil, err
	}
	c.stats.ConnectEnd(&stats.ConnInfo{Address: addr, Session: c.SessionID()}, nil)
	return c, nil
}

// connect dials the transport and runs the handshake. It must complete
// before any command traffic; the server answers the handshake with exactly
// one ack frame.
func (c *client) connect() error {
	if err := c.conn.Dial(); err != nil {
		return fmt.Errorf("%w: %w", xerr.ConnectionFailed, err)
	}
	hs := &packet.Handshake{
		Password:    c.opts.password,
		Permissions: c.opts.permissions,
		KickPower:   c.opts.kickPower,
		Flags:       c.opts.flags(),
		Username:    c.opts.username,
	}
	if err := c.conn.WritePacket(hs); err != nil {
		c.conn.Close()
		return fmt.Errorf("%w: %w", xerr.ConnectionFailed, err)
	}
	reply, err := c.conn.ReadPacket()
	if err != nil {
		c.conn.Close()
		return xerr.HandshakeProtocol
	}
	ack, ok := reply.(*packet.HandshakeAck)
	if !ok {
		c.conn.Close()
		return xerr.HandshakeProtocol
	}
	switch ack.Code {
	case packet.AckAccepted:
	case packet.AckInvalidPassword:
		c.conn.Close()
		return xerr.AuthenticationFailed
	default:
		c.conn.Close()
		return xerr.HandshakeProtocol
	}
	c.mu.Lock()
	if c.status == StatusClosed || c.status == StatusClosing {
		c.mu.Unlock()
		c.conn.Close()
		return xerr.ClientClosed
	}
	c.session = uuid.NewString()
	c.gen++
	gen := c.gen
	c.retrier.reset()
	c._setStatus(StatusOpened)
	c.mu.Unlock()
	c.logger.Info("session established", xlog.Session(c.SessionID()))
	go c.recv(gen, c.conn)
	return nil
}

func (c *client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *client) OnConsole(fn ConsoleFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

func (c *client) SendCommand(ctx context.Context, command string, timeout ...time.Duration) (CommandResponse, error) {
	var resp CommandResponse
	if strings.TrimSpace(command) == "" {
		return resp, xerr.EmptyCommand
	}
	if c.opts.suppress {
		return resp, c.sendSuppressed(command)
	}
	if !strings.HasPrefix(command, CommandPrefix) {
		return resp, xerr.MissingCommandPrefix
	}
	// The permit serializes concurrent senders against the single pending
	// slot. Released on every exit path below.
	select {
	case c.permit <- struct{}{}:
	case <-ctx.Done():
		return resp, context.Cause(ctx)
	}
	defer func() { <-c.permit }()

	switch c.Status() {
	case StatusOpened:
	case StatusClosed, StatusClosing:
		return resp, c.disposedErr()
	default:
		return resp, xerr.ConnectionLost
	}

	to := c.opts.commandTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		to = timeout[0]
	}
	s := c.pending.install()
	start := time.Now()
	if err := c.sendPacket(packet.NewCommand(command)); err != nil {
		c.pending.cancelSlot(s, err)
	}
	timer := time.NewTimer(to)
	defer timer.Stop()
	var out outcome
	select {
	case out = <-s.ch:
	case <-timer.C:
		// The timeout resolves only this slot; the connection stays open.
		c.pending.cancelSlot(s, xerr.CommandTimeout)
		out = <-s.ch
	case <-ctx.Done():
		c.pending.cancelSlot(s, context.Cause(ctx))
		out = <-s.ch
	}
	c.stats.CommandEnd(&stats.CommandInfo{Session: c.SessionID()}, outcomeOf(out), time.Since(start))
	return out.resp, out.err
}

// sendSuppressed fires a command with no correlation and no waiting. The
// server was told at handshake time not to answer, so unprefixed text is
// permitted here.
func (c *client) sendSuppressed(command string) error {
	if st := c.Status(); st == StatusClosed || st == StatusClosing {
		return c.disposedErr()
	}
	if err := c.sendPacket(packet.NewCommand(command)); err != nil {
		return err
	}
	c.stats.CommandEnd(&stats.CommandInfo{Session: c.SessionID(), Suppressed: true}, stats.OutcomeSuccess, 0)
	return nil
}

func (c *client) SendRaw(text string) error {
	if st := c.Status(); st == StatusClosed || st == StatusClosing {
		return c.disposedErr()
	}
	return c.sendPacket(packet.NewRaw(text))
}

func outcomeOf(out outcome) stats.Outcome {
	switch {
	case out.err == nil && out.resp.Success:
		return stats.OutcomeSuccess
	case out.err == nil:
		return stats.OutcomeFailure
	case errors.Is(out.err, xerr.CommandTimeout):
		return stats.OutcomeTimeout
	default:
		var cmdErr *CommandError
		if errors.As(out.err, &cmdErr) {
			return stats.OutcomeException
		}
		return stats.OutcomeError
	}
}

// sendPacket enqueues a frame on the serialized write path. Write failures
// surface through the disconnect path, not the return value; enqueueing
// fails only when the backlog is full or the client is disposed.
func (c *client) sendPacket(p packet.Packet) error {
	c.mu.Lock()
	conn, gen := c.conn, c.gen
	c.mu.Unlock()
	err := c.sendQueue.Push(func() {
		if c.Status() != StatusOpened {
			return
		}
		if err := conn.WritePacket(p); err != nil {
			c.tryClose(gen, CloseReasonNetworkError)
			return
		}
		c.logger.Debug("frame sent", xlog.Str("type", p.Type().String()))
	})
	if err != nil {
		if errors.Is(err, queue.ErrQueueIsFull) {
			return xerr.SendQueueFull
		}
		return c.disposedErr()
	}
	return nil
}

// recv is the receive loop for one connection generation. It dies with the
// connection; nothing registered here survives into the next session.
func (c *client) recv(gen uint64, conn Conn) {
	for {
		p, err := conn.ReadPacket()
		if err != nil {
			c.tryClose(gen, closeReasonOf(err))
			return
		}
		if err := c.recvQueue.Push(func() { c.dispatch(p) }); err != nil {
			if errors.Is(err, queue.ErrQueueIsStopped) {
				return
			}
			// A slow subscriber filled the dispatch queue. Shed the frame
			// and keep reading; the connection itself is healthy.
			c.logger.Warn("inbound dispatch queue full, frame dropped", xlog.Str("type", p.Type().String()))
		}
	}
}

func closeReasonOf(err error) CloseReason {
	var pe packet.Error
	switch {
	case errors.As(err, &pe):
		return CloseReasonProtocolError
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		return CloseReasonServerClose
	default:
		return CloseReasonNetworkError
	}
}

// dispatch routes one decoded inbound frame. Console and log lines fan out
// to subscribers; admin responses resolve the pending slot; everything else
// is dropped.
func (c *client) dispatch(p packet.Packet) {
	switch v := p.(type) {
	case *packet.Console:
		c.fanout(v.Line, false)
	case *packet.LogLine:
		c.fanout(v.Line, true)
	case *packet.AdminResponse:
		if !c.pending.resolve(CommandResponse{Content: v.Text, Success: v.Success}, nil) {
			c.logger.Debug("response with no pending command dropped")
		}
	case *packet.CommandException:
		if !c.pending.resolve(CommandResponse{}, &CommandError{Text: v.Text}) {
			c.logger.Debug("exception with no pending command dropped")
		}
	case *packet.Unrecognized:
		c.logger.Debug("unrecognized content type dropped", xlog.Str("type", v.Kind.String()))
	default:
		c.logger.Debug("unexpected frame dropped", xlog.Str("type", p.Type().String()))
	}
}

func (c *client) fanout(line string, log bool) {
	c.mu.Lock()
	subs := c.subs
	session := c.session
	c.mu.Unlock()
	c.stats.ConsoleLine(session, log)
	for _, fn := range subs {
		fn(line, log)
	}
}

// tryClose handles a dead connection of generation gen. Client initiated
// closes are terminal; everything else goes to the reconnection supervisor
// until the attempt budget runs out.
func (c *client) tryClose(gen uint64, reason error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.retrying {
		return
	}
	if c.status == StatusClosed || c.status == StatusClosing {
		return
	}
	c.logger.Warn("connection lost", xlog.Session(c.session), xlog.Err(reason))
	c.stats.Disconnect(c.session, reason)
	c.pending.cancel(xerr.ConnectionLost)
	if r, ok := reason.(CloseReason); ok && r == CloseReasonNormal {
		c.closeErr = xerr.ClientClosed
		c._setStatus(StatusClosed)
		return
	}
	delay, ok := c.retrier.next()
	if !ok {
		c.logger.Error("reconnect budget exhausted, disposing client", xlog.Session(c.session))
		c.closeErr = xerr.ReconnectExhausted
		c._setStatus(StatusClosed)
		return
	}
	c.retrying = true
	c._setStatus(StatusOpening)
	attempt := c.retrier.attempts()
	c.retrier.retry(delay, func() {
		c.stats.ConnectBegin(&stats.ConnInfo{Address: c.addr, Attempt: attempt})
		err := c.connect()
		c.stats.ConnectEnd(&stats.ConnInfo{Address: c.addr, Session: c.SessionID(), Attempt: attempt}, err)
		c.mu.Lock()
		c.retrying = false
		gen := c.gen
		c.mu.Unlock()
		if err != nil {
			c.logger.Warn("reconnect failed", xlog.Int("attempt", int(attempt)), xlog.Err(err))
			c.tryClose(gen, err)
		}
	})
}

func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusClosed {
		return nil
	}
	c.logger.Info("closing client", xlog.Session(c.session))
	c.stats.Disconnect(c.session, CloseReasonNormal)
	c.closeErr = xerr.ClientClosed
	c.pending.cancel(xerr.ClientClosed)
	c._setStatus(StatusClosed)
	return nil
}

func (c *client) disposedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeErr != nil {
		return c.closeErr
	}
	return xerr.ClientClosed
}

// dispose tears down a client that never reached Ready.
func (c *client) dispose(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeErr = err
	c._setStatus(StatusClosed)
}

// _setStatus must run under mu.
func (c *client) _setStatus(status Status) {
	if c.status == status {
		return
	}
	c.logger.Debug("status change", xlog.Str("from", c.status.String()), xlog.Str("to", status.String()))
	c.status = status
	if status == StatusClosed {
		c.retrier.cancel()
		c.sendQueue.Close()
		c.recvQueue.Close()
		if c.conn != nil {
			c.conn.Close()
		}
	}
}
