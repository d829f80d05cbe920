// Package xerr defines the error codes surfaced by the query client.
package xerr

type Error uint16

const (
	EmptyCommand Error = iota
	MissingCommandPrefix
	AuthenticationFailed
	HandshakeProtocol
	CommandTimeout
	ConnectionLost
	ReconnectExhausted
	ClientClosed
	ConnectionFailed
	CommandSuperseded
	SendQueueFull
)

var errorMap = map[Error]string{
	EmptyCommand:         "command is empty",
	MissingCommandPrefix: "command must start with the remote admin prefix",
	AuthenticationFailed: "handshake password rejected",
	HandshakeProtocol:    "malformed handshake reply",
	CommandTimeout:       "no response within the timeout",
	ConnectionLost:       "connection lost",
	ReconnectExhausted:   "reconnect attempts exhausted",
	ClientClosed:         "client is closed",
	ConnectionFailed:     "connection failed",
	CommandSuperseded:    "command superseded by a newer send",
	SendQueueFull:        "outbound send queue is full",
}

func (e Error) Error() string {
	return errorMap[e]
}
func (e Error) String() string {
	return errorMap[e]
}
