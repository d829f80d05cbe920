// Package squery is a client for the query/remote-admin protocol game
// servers expose for administrative control: command execution with a
// single in-flight correlation slot, console/log streaming, and automatic
// reconnection with a bounded retry budget.
//
// The real machinery lives in the client and packet packages; this package
// is the thin entry point callers are expected to use.
package squery

import (
	"kvarenzis.github.io/squery/client"
)

// Dial connects to the server's query port, authenticates, and returns a
// ready client. See the client package for options.
func Dial(host string, port uint16, password string, opts ...client.Option) (client.Client, error) {
	return client.Dial(host, port, password, opts...)
}
