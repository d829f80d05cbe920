package client

import (
	"sync"

	"kvarenzis.github.io/squery/xerr"
)

type outcome struct {
	resp CommandResponse
	err  error
}

// slot is one command awaiting its response. It resolves exactly once; the
// buffered channel lets the resolver never block.
type slot struct {
	once sync.Once
	ch   chan outcome
}

func newSlot() *slot {
	return &slot{ch: make(chan outcome, 1)}
}

func (s *slot) resolve(resp CommandResponse, err error) {
	s.once.Do(func() {
		s.ch <- outcome{resp: resp, err: err}
	})
}

// pendingCell holds the single in-flight command slot. The protocol has no
// request ids, so correlation is this one guarded cell: installing a new
// slot force-cancels the previous one, and replace-and-cancel cannot race
// with a resolving inbound message.
type pendingCell struct {
	mu   sync.Mutex
	slot *slot
}

// install makes a fresh slot current, superseding any unresolved one.
func (c *pendingCell) install() *slot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slot != nil {
		c.slot.resolve(CommandResponse{}, xerr.CommandSuperseded)
	}
	c.slot = newSlot()
	return c.slot
}

// resolve settles the current slot and clears it. It reports false when no
// command is pending, which is how late server pushes get dropped.
func (c *pendingCell) resolve(resp CommandResponse, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slot == nil {
		return false
	}
	c.slot.resolve(resp, err)
	c.slot = nil
	return true
}

// cancel settles the current slot with err, if any slot is pending.
func (c *pendingCell) cancel(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slot != nil {
		c.slot.resolve(CommandResponse{}, err)
		c.slot = nil
	}
}

// cancelSlot settles s with err only while s is still the current slot.
// Used by the timeout path so a response that won the race is kept.
func (c *pendingCell) cancelSlot(s *slot, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slot == s {
		s.resolve(CommandResponse{}, err)
		c.slot = nil
	}
}
