// Package client implements the query protocol client: transport, password
// handshake, single-slot command correlation and the bounded reconnection
// supervisor.
package client

// Status represents the current state of the client connection.
type Status uint8

const (
	// StatusUnknown indicates the client status is unknown.
	StatusUnknown Status = iota
	// StatusClosed indicates the client is disposed. Terminal.
	StatusClosed
	// StatusOpened indicates a session is established and ready.
	StatusOpened
	// StatusOpening indicates a connect plus handshake is in progress.
	StatusOpening
	// StatusClosing indicates the client is shutting down.
	StatusClosing
)

func (s Status) String() string {
	switch s {
	case StatusClosed:
		return "Closed"
	case StatusOpened:
		return "Opened"
	case StatusOpening:
		return "Opening"
	case StatusClosing:
		return "Closing"
	default:
		return "Unknown"
	}
}

// CloseReason tags why a connection went away. Only CloseReasonNormal stops
// the reconnection supervisor; every other reason spends a retry attempt.
type CloseReason uint8

const (
	// CloseReasonNormal is a client initiated close.
	CloseReasonNormal CloseReason = iota
	// CloseReasonServerClose means the server ended the connection.
	CloseReasonServerClose
	// CloseReasonNetworkError means the transport failed.
	CloseReasonNetworkError
	// CloseReasonProtocolError means the peer sent an unreadable frame.
	CloseReasonProtocolError
)

func (c CloseReason) String() string {
	switch c {
	case CloseReasonNormal:
		return "Normal"
	case CloseReasonServerClose:
		return "Server Close"
	case CloseReasonNetworkError:
		return "Network Error"
	case CloseReasonProtocolError:
		return "Protocol Error"
	default:
		return "Unknown"
	}
}

func (c CloseReason) Error() string {
	return c.String()
}
