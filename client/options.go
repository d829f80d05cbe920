package client

import (
	"time"

	"kvarenzis.github.io/squery/backoff"
	"kvarenzis.github.io/squery/packet"
	"kvarenzis.github.io/squery/stats"
	"kvarenzis.github.io/squery/xlog"
)

// DefaultCommandTimeout bounds a command awaiting its response.
const DefaultCommandTimeout = time.Second * 10

// DefaultRetryLimit is the reconnect attempt budget. Exceeding it disposes
// the client.
const DefaultRetryLimit = 10

type Network uint8

const (
	NetworkTCP Network = iota
	NetworkWS
)

func (n Network) String() string {
	switch n {
	case NetworkTCP:
		return "tcp"
	case NetworkWS:
		return "ws"
	default:
		return "unknown"
	}
}

// Options carry the credentials and capabilities fixed at construction.
// There is no reconfiguration after Dial; reconnects reuse these values
// verbatim.
type Options struct {
	password         string
	permissions      uint64
	kickPower        uint8
	username         string
	suppress         bool
	subscribeConsole bool
	subscribeLogs    bool
	network          Network
	transport        Conn
	logger           *xlog.Logger
	retrier          *Retrier
	stats            stats.Handler
	commandTimeout   time.Duration
}

type Option struct {
	f func(*Options)
}

func newOptions(options ...Option) *Options {
	opts := &Options{
		permissions:    ^uint64(0),
		kickPower:      0xff,
		network:        NetworkTCP,
		logger:         xlog.Default(),
		retrier:        NewRetrier(DefaultRetryLimit, backoff.Immediate()),
		stats:          stats.Noop{},
		commandTimeout: DefaultCommandTimeout,
	}
	for _, o := range options {
		o.f(opts)
	}
	return opts
}

func (o *Options) flags() packet.Flags {
	var f packet.Flags
	if o.suppress {
		f |= packet.FlagSuppressResponses
	}
	if o.subscribeConsole {
		f |= packet.FlagSubscribeConsole
	}
	if o.subscribeLogs {
		f |= packet.FlagSubscribeLogs
	}
	return f
}

// WithPermissions requests a permission bitset other than all-ones.
func WithPermissions(perms uint64) Option {
	return Option{f: func(o *Options) {
		o.permissions = perms
	}}
}

// WithKickPower requests a kick power level other than the maximum.
func WithKickPower(power uint8) Option {
	return Option{f: func(o *Options) {
		o.kickPower = power
	}}
}

// WithUsername names this client in the server's audit log.
func WithUsername(name string) Option {
	return Option{f: func(o *Options) {
		o.username = name
	}}
}

// WithSuppressResponses makes every send fire-and-forget. Commands return
// an empty response immediately and unprefixed text is allowed.
func WithSuppressResponses() Option {
	return Option{f: func(o *Options) {
		o.suppress = true
	}}
}

// WithSubscribeConsole asks the server to push console lines.
func WithSubscribeConsole() Option {
	return Option{f: func(o *Options) {
		o.subscribeConsole = true
	}}
}

// WithSubscribeLogs asks the server to push log lines.
func WithSubscribeLogs() Option {
	return Option{f: func(o *Options) {
		o.subscribeLogs = true
	}}
}

func WithNetwork(network Network) Option {
	return Option{f: func(o *Options) {
		o.network = network
	}}
}

// WithTransport substitutes a custom Conn. The address argument to Dial is
// ignored when set.
func WithTransport(conn Conn) Option {
	return Option{f: func(o *Options) {
		o.transport = conn
	}}
}

func WithLogger(logger *xlog.Logger) Option {
	return Option{f: func(o *Options) {
		o.logger = logger
	}}
}

// WithRetrier replaces the reconnection budget and delay strategy. The
// protocol's native behavior is DefaultRetryLimit immediate retries.
func WithRetrier(retrier *Retrier) Option {
	return Option{f: func(o *Options) {
		o.retrier = retrier
	}}
}

func WithStats(handler stats.Handler) Option {
	return Option{f: func(o *Options) {
		o.stats = handler
	}}
}

// WithCommandTimeout changes the default response timeout.
func WithCommandTimeout(timeout time.Duration) Option {
	return Option{f: func(o *Options) {
		o.commandTimeout = timeout
	}}
}
