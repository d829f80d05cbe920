package client

import (
	"sync"
	"sync/atomic"
	"time"

	"kvarenzis.github.io/squery/backoff"
)

// Retrier budgets reconnect attempts. The counter grows with every attempt
// and resets to zero when a session is established; once the count passes
// the limit the client is disposed for good.
type Retrier struct {
	mu      sync.Mutex
	limit   int64
	count   atomic.Int64
	backoff backoff.Backoff
	stop    chan struct{}
}

func NewRetrier(limit int64, b backoff.Backoff) *Retrier {
	return &Retrier{
		limit:   limit,
		backoff: b,
	}
}

// next consumes one attempt. It reports false once the budget is spent.
func (r *Retrier) next() (time.Duration, bool) {
	if r.count.Load() > r.limit {
		return 0, false
	}
	n := r.count.Add(1)
	return r.backoff.Next(n), true
}

// attempts returns how many attempts have been consumed since the last
// successful connect.
func (r *Retrier) attempts() int64 {
	return r.count.Load()
}

// reset clears the counter after a successful connect.
func (r *Retrier) reset() {
	r.count.Store(0)
}

// cancel aborts a scheduled retry, if any.
func (r *Retrier) cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop == nil {
		return
	}
	close(r.stop)
	r.stop = nil
}

// retry runs fn after delay unless cancelled first.
func (r *Retrier) retry(delay time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		return
	}
	stop := make(chan struct{})
	r.stop = stop
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			r.mu.Lock()
			if r.stop == stop {
				r.stop = nil
			}
			r.mu.Unlock()
			fn()
		case <-stop:
		}
	}()
}
