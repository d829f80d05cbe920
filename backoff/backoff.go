// Package backoff provides retry delay strategies for the reconnection
// supervisor. The protocol's native behavior is immediate retry, so
// Immediate is the default; the others exist for callers that want to be
// gentler with a flapping server.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Backoff yields the delay to wait before retry attempt number count.
type Backoff interface {
	Next(count int64) time.Duration
}

// Default returns the strategy the original protocol uses: no delay at all.
func Default() Backoff {
	return Immediate()
}

// Immediate retries without any delay.
func Immediate() Backoff {
	return Constant(0)
}

// Constant waits the same duration before every retry.
func Constant(dur time.Duration) Backoff {
	return constantBackoff{duration: dur}
}

// Linear waits base + step*count.
func Linear(base, step time.Duration) Backoff {
	return linearBackoff{base: base, step: step}
}

// Exponential waits base * exp^count.
func Exponential(base time.Duration, exp float64) Backoff {
	return exponentialBackoff{base: base, exponent: exp}
}

// Random waits a uniformly random duration between min and max.
func Random(min, max time.Duration) Backoff {
	return randomBackoff{min: min, max: max}
}

type constantBackoff struct {
	duration time.Duration
}

func (b constantBackoff) Next(count int64) time.Duration {
	return b.duration
}

type linearBackoff struct {
	base time.Duration
	step time.Duration
}

func (b linearBackoff) Next(count int64) time.Duration {
	return b.base + time.Duration(count)*b.step
}

type exponentialBackoff struct {
	base     time.Duration
	exponent float64
}

func (b exponentialBackoff) Next(count int64) time.Duration {
	return time.Duration(float64(b.base) * math.Pow(b.exponent, float64(count)))
}

type randomBackoff struct {
	min time.Duration
	max time.Duration
}

func (b randomBackoff) Next(count int64) time.Duration {
	return time.Duration(float64(b.min) + float64(b.max-b.min)*rand.Float64())
}
