package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus is a Handler backed by prometheus collectors.
type Prometheus struct {
	connects     *prometheus.CounterVec
	reconnects   prometheus.Counter
	commands     *prometheus.CounterVec
	duration     prometheus.Histogram
	consoleLines *prometheus.CounterVec
	connected    prometheus.Gauge
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "squery",
			Name:      "connects_total",
			Help:      "Connect plus handshake attempts by result.",
		}, []string{"result"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "squery",
			Name:      "reconnect_attempts_total",
			Help:      "Reconnect attempts after an unexpected disconnect.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "squery",
			Name:      "commands_total",
			Help:      "Commands sent by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "squery",
			Name:      "command_duration_seconds",
			Help:      "Time from command send to slot resolution.",
			Buckets:   prometheus.DefBuckets,
		}),
		consoleLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "squery",
			Name:      "console_lines_total",
			Help:      "Console and log lines delivered to subscribers.",
		}, []string{"kind"}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "squery",
			Name:      "connected",
			Help:      "1 while a session is established.",
		}),
	}
	reg.MustRegister(p.connects, p.reconnects, p.commands, p.duration, p.consoleLines, p.connected)
	return p
}

func (p *Prometheus) ConnectBegin(info *ConnInfo) {
	if info.Attempt > 0 {
		p.reconnects.Inc()
	}
}

func (p *Prometheus) ConnectEnd(info *ConnInfo, err error) {
	if err != nil {
		p.connects.WithLabelValues("error").Inc()
		return
	}
	p.connects.WithLabelValues("ok").Inc()
	p.connected.Set(1)
}

func (p *Prometheus) CommandEnd(info *CommandInfo, outcome Outcome, elapsed time.Duration) {
	p.commands.WithLabelValues(string(outcome)).Inc()
	if !info.Suppressed {
		p.duration.Observe(elapsed.Seconds())
	}
}

func (p *Prometheus) ConsoleLine(session string, log bool) {
	kind := "console"
	if log {
		kind = "log"
	}
	p.consoleLines.WithLabelValues(kind).Inc()
}

func (p *Prometheus) Disconnect(session string, reason error) {
	p.connected.Set(0)
}
