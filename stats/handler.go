// Package stats defines the observer hooks the client fires for connection
// and command lifecycle events, plus a Prometheus implementation.
package stats

import (
	"time"
)

// ConnInfo identifies one connection attempt.
type ConnInfo struct {
	Address string // remote endpoint
	Session string // session id, set once the handshake succeeded
	Attempt int64  // 0 for the first connect, reconnect attempt number otherwise
}

// CommandInfo identifies one command send.
type CommandInfo struct {
	Session    string
	Suppressed bool // fire-and-forget send, no response expected
}

// Outcome classifies how a command resolved.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeException Outcome = "exception"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeError     Outcome = "error"
)

// Handler receives client lifecycle events. Implementations must be safe
// for concurrent use; the client calls them from both the send and receive
// paths.
type Handler interface {
	ConnectBegin(info *ConnInfo)
	ConnectEnd(info *ConnInfo, err error)
	CommandEnd(info *CommandInfo, outcome Outcome, elapsed time.Duration)
	ConsoleLine(session string, log bool)
	Disconnect(session string, reason error)
}

// Noop discards all events.
type Noop struct{}

func (Noop) ConnectBegin(info *ConnInfo)                                          {}
func (Noop) ConnectEnd(info *ConnInfo, err error)                                 {}
func (Noop) CommandEnd(info *CommandInfo, outcome Outcome, elapsed time.Duration) {}
func (Noop) ConsoleLine(session string, log bool)                                 {}
func (Noop) Disconnect(session string, reason error)                              {}
