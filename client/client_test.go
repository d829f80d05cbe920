package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"kvarenzis.github.io/squery/backoff"
	"kvarenzis.github.io/squery/packet"
	"kvarenzis.github.io/squery/stats"
	"kvarenzis.github.io/squery/xerr"
)

func dialFake(t *testing.T, conn *fakeConn, options ...Option) Client {
	t.Helper()
	options = append(options, WithTransport(conn))
	c, err := Dial("127.0.0.1", 7777, "secret", options...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestDialPerformsHandshake(t *testing.T) {
	conn := newFakeConn()
	c := dialFake(t, conn,
		WithPermissions(0xdead),
		WithKickPower(3),
		WithUsername("ops"),
		WithSubscribeConsole(),
	)
	require.Equal(t, StatusOpened, c.Status())
	require.NotEmpty(t, c.SessionID())

	conn.mu.Lock()
	defer conn.mu.Unlock()
	require.NotEmpty(t, conn.writes)
	hs, ok := conn.writes[0].(*packet.Handshake)
	require.True(t, ok, "first frame must be the handshake")
	require.Equal(t, "secret", hs.Password)
	require.Equal(t, uint64(0xdead), hs.Permissions)
	require.Equal(t, uint8(3), hs.KickPower)
	require.Equal(t, "ops", hs.Username)
	require.True(t, hs.Flags.Has(packet.FlagSubscribeConsole))
	require.False(t, hs.Flags.Has(packet.FlagSuppressResponses))
}

func TestDialRejectsBadPassword(t *testing.T) {
	conn := newFakeConn()
	conn.ackCode = packet.AckInvalidPassword
	_, err := Dial("127.0.0.1", 7777, "wrong", WithTransport(conn))
	require.ErrorIs(t, err, xerr.AuthenticationFailed)
}

func TestDialRejectsMalformedHandshakeReply(t *testing.T) {
	conn := newFakeConn()
	conn.ackWith = packet.NewConsole("not an ack")
	_, err := Dial("127.0.0.1", 7777, "secret", WithTransport(conn))
	require.ErrorIs(t, err, xerr.HandshakeProtocol)

	conn = newFakeConn()
	conn.ackCode = packet.AckCode(99)
	_, err = Dial("127.0.0.1", 7777, "secret", WithTransport(conn))
	require.ErrorIs(t, err, xerr.HandshakeProtocol)
}

func TestSendCommand(t *testing.T) {
	conn := newFakeConn()
	conn.respond("player kicked", true)
	c := dialFake(t, conn)

	resp, err := c.SendCommand(context.Background(), "/kick 12345")
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "player kicked", resp.Content)
}

func TestSendCommandFailureResponse(t *testing.T) {
	conn := newFakeConn()
	conn.respond("no such player", false)
	c := dialFake(t, conn)

	resp, err := c.SendCommand(context.Background(), "/kick nobody")
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, "no such player", resp.Content)
}

func TestSendCommandException(t *testing.T) {
	conn := newFakeConn()
	conn.mu.Lock()
	conn.onCommand = func(string) {
		conn.push(packet.NewCommandException("NullReferenceException"))
	}
	conn.mu.Unlock()
	c := dialFake(t, conn)

	_, err := c.SendCommand(context.Background(), "/broken")
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Contains(t, cmdErr.Text, "NullReferenceException")
}

func TestEmptyCommandFailsWithoutIO(t *testing.T) {
	conn := newFakeConn()
	c := dialFake(t, conn)
	before := conn.writeCount()

	for _, cmd := range []string{"", "   ", "\t\n"} {
		_, err := c.SendCommand(context.Background(), cmd)
		require.ErrorIs(t, err, xerr.EmptyCommand)
	}
	require.Equal(t, before, conn.writeCount(), "validation must not touch the transport")
}

func TestUnprefixedCommandFailsWithoutIO(t *testing.T) {
	conn := newFakeConn()
	c := dialFake(t, conn)
	before := conn.writeCount()

	_, err := c.SendCommand(context.Background(), "kick 12345")
	require.ErrorIs(t, err, xerr.MissingCommandPrefix)
	require.Equal(t, before, conn.writeCount())
}

func TestSuppressModeNeverBlocks(t *testing.T) {
	conn := newFakeConn() // never responds to commands
	c := dialFake(t, conn, WithSuppressResponses())

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Unprefixed text is allowed in suppress mode.
		resp, err := c.SendCommand(context.Background(), "say hello")
		require.NoError(t, err)
		require.Equal(t, CommandResponse{}, resp)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("suppressed send must not block")
	}
	require.Eventually(t, func() bool {
		return conn.writeCount() >= 2 // handshake + command
	}, time.Second, 10*time.Millisecond)
}

func TestTimeoutLeavesConnectionOpen(t *testing.T) {
	conn := newFakeConn()
	conn.silent()
	c := dialFake(t, conn)

	_, err := c.SendCommand(context.Background(), "/slow", 50*time.Millisecond)
	require.ErrorIs(t, err, xerr.CommandTimeout)
	require.Equal(t, StatusOpened, c.Status(), "timeout must not close the connection")

	conn.respond("still here", true)
	resp, err := c.SendCommand(context.Background(), "/ping")
	require.NoError(t, err)
	require.Equal(t, "still here", resp.Content)
}

func TestSequentialCommandsNeverDeadlock(t *testing.T) {
	conn := newFakeConn()
	conn.echo()
	c := dialFake(t, conn)

	for i := 0; i < 20; i++ {
		cmd := fmt.Sprintf("/cmd %d", i)
		resp, err := c.SendCommand(context.Background(), cmd)
		require.NoError(t, err)
		require.Equal(t, cmd, resp.Content)
	}
}

func TestConcurrentSendersAreSerialized(t *testing.T) {
	conn := newFakeConn()
	conn.mu.Lock()
	conn.onCommand = func(cmd string) {
		go func() {
			time.Sleep(10 * time.Millisecond)
			conn.push(packet.NewAdminResponse(cmd, true))
		}()
	}
	conn.mu.Unlock()
	c := dialFake(t, conn)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cmd := fmt.Sprintf("/cmd %d", i)
			resp, err := c.SendCommand(context.Background(), cmd)
			require.NoError(t, err)
			// The permit guarantees each caller sees its own response.
			require.Equal(t, cmd, resp.Content)
		}(i)
	}
	wg.Wait()
}

func TestConsoleFanout(t *testing.T) {
	conn := newFakeConn()
	c := dialFake(t, conn, WithSubscribeConsole(), WithSubscribeLogs())

	type line struct {
		text string
		log  bool
	}
	var mu sync.Mutex
	var first, second []line
	c.OnConsole(func(text string, log bool) {
		mu.Lock()
		first = append(first, line{text, log})
		mu.Unlock()
	})
	c.OnConsole(func(text string, log bool) {
		mu.Lock()
		second = append(second, line{text, log})
		mu.Unlock()
	})

	conn.push(packet.NewConsole("round started"))
	conn.push(packet.NewLogLine("player joined"))
	conn.push(packet.NewConsole("round ended"))

	want := []line{{"round started", false}, {"player joined", true}, {"round ended", false}}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(first) == 3 && len(second) == 3
	}, time.Second, 10*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, want, first, "delivery order must match arrival order")
	require.Equal(t, want, second)
}

func TestPushNeverResolvesCommands(t *testing.T) {
	conn := newFakeConn()
	c := dialFake(t, conn)

	// Late responses with no pending command are dropped silently.
	conn.push(packet.NewAdminResponse("stale", true))
	conn.push(packet.NewConsole("noise"))
	time.Sleep(50 * time.Millisecond)

	conn.respond("fresh", true)
	resp, err := c.SendCommand(context.Background(), "/status")
	require.NoError(t, err)
	require.Equal(t, "fresh", resp.Content)
}

func TestUnrecognizedFramesAreDropped(t *testing.T) {
	conn := newFakeConn()
	c := dialFake(t, conn)

	conn.push(&packet.Unrecognized{Kind: 0x7f, Payload: []byte{1, 2, 3}})
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, StatusOpened, c.Status())
}

func TestInboundBurstDoesNotKillReceiveLoop(t *testing.T) {
	conn := newFakeConn()
	c := dialFake(t, conn, WithSubscribeConsole())

	// Park the dispatch worker inside the first subscriber callback, then
	// flood frames well past the inbound queue capacity. Overflow must be
	// shed, not kill the reader.
	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	c.OnConsole(func(string, bool) {
		once.Do(func() {
			close(started)
			<-block
		})
	})

	conn.push(packet.NewConsole("first"))
	<-started
	for i := 0; i < 1200; i++ {
		conn.push(packet.NewConsole("burst"))
	}
	close(block)

	require.Equal(t, StatusOpened, c.Status())
	conn.respond("pong", true)
	resp, err := c.SendCommand(context.Background(), "/ping")
	require.NoError(t, err, "receive loop must survive an inbound burst")
	require.Equal(t, "pong", resp.Content)
}

func TestSendBacklogFullSurfacesDistinctError(t *testing.T) {
	conn := newFakeConn()
	c := dialFake(t, conn)

	// Park the writer so the send queue can only fill up.
	gate := make(chan struct{})
	conn.setWriteGate(gate)
	defer close(gate)

	var err error
	for i := 0; i < 300; i++ {
		if err = c.SendRaw("spam"); err != nil {
			break
		}
	}
	require.ErrorIs(t, err, xerr.SendQueueFull)
	require.Equal(t, StatusOpened, c.Status(), "a full backlog is not a disposed client")
}

type recordingStats struct {
	stats.Noop
	mu          sync.Mutex
	disconnects []error
}

func (r *recordingStats) Disconnect(session string, reason error) {
	r.mu.Lock()
	r.disconnects = append(r.disconnects, reason)
	r.mu.Unlock()
}

func TestCloseReportsDisconnectToStats(t *testing.T) {
	conn := newFakeConn()
	rec := &recordingStats{}
	c := dialFake(t, conn, WithStats(rec))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.disconnects, 1, "close must report the disconnect exactly once")
	require.ErrorIs(t, rec.disconnects[0], CloseReasonNormal)
}

func TestReconnectAfterNetworkError(t *testing.T) {
	conn := newFakeConn()
	c := dialFake(t, conn)
	require.Equal(t, 1, conn.dialCount())

	conn.drop()
	require.Eventually(t, func() bool {
		return conn.dialCount() == 2 && c.Status() == StatusOpened
	}, time.Second, 5*time.Millisecond)

	// Exactly one reconnect attempt for one disconnect.
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 2, conn.dialCount())

	conn.respond("back", true)
	resp, err := c.SendCommand(context.Background(), "/status")
	require.NoError(t, err)
	require.Equal(t, "back", resp.Content)
}

func TestReconnectExhaustionDisposesClient(t *testing.T) {
	conn := newFakeConn()
	conn.mu.Lock()
	conn.dialErr = func(attempt int) error {
		if attempt == 1 {
			return nil
		}
		return errors.New("connection refused")
	}
	conn.mu.Unlock()
	c := dialFake(t, conn)

	conn.drop()
	require.Eventually(t, func() bool {
		return c.Status() == StatusClosed
	}, 2*time.Second, 5*time.Millisecond)

	// 1 initial dial + budget(10)+1 failed attempts, then terminal.
	require.Equal(t, 1+DefaultRetryLimit+1, conn.dialCount())

	_, err := c.SendCommand(context.Background(), "/status")
	require.ErrorIs(t, err, xerr.ReconnectExhausted)
}

func TestCloseIsIdempotentAndCancelsPending(t *testing.T) {
	conn := newFakeConn()
	conn.silent()
	c := dialFake(t, conn)

	errc := make(chan error, 1)
	go func() {
		_, err := c.SendCommand(context.Background(), "/hang")
		errc <- err
	}()
	require.Eventually(t, func() bool {
		return conn.writeCount() >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	select {
	case err := <-errc:
		require.ErrorIs(t, err, xerr.ClientClosed)
	case <-time.After(time.Second):
		t.Fatal("pending command must be cancelled on close")
	}

	_, err := c.SendCommand(context.Background(), "/after")
	require.ErrorIs(t, err, xerr.ClientClosed)
}

func TestClientInitiatedCloseDoesNotRetry(t *testing.T) {
	conn := newFakeConn()
	c := dialFake(t, conn)
	require.NoError(t, c.Close())

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, conn.dialCount(), "close must not trigger reconnects")
	require.Equal(t, StatusClosed, c.Status())
}

func TestContextCancelUnblocksSend(t *testing.T) {
	conn := newFakeConn()
	conn.silent()
	c := dialFake(t, conn)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.SendCommand(ctx, "/hang")
		errc <- err
	}()
	require.Eventually(t, func() bool {
		return conn.writeCount() >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancellation must unblock the send")
	}
	require.Equal(t, StatusOpened, c.Status())
}

func TestCustomRetrierBudget(t *testing.T) {
	conn := newFakeConn()
	conn.mu.Lock()
	conn.dialErr = func(attempt int) error {
		if attempt == 1 {
			return nil
		}
		return errors.New("connection refused")
	}
	conn.mu.Unlock()
	c := dialFake(t, conn, WithRetrier(NewRetrier(2, backoff.Immediate())))

	conn.drop()
	require.Eventually(t, func() bool {
		return c.Status() == StatusClosed
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, 1+2+1, conn.dialCount())
}
