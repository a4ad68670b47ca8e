package errs

import (
	"log/slog"
	"sync"
)

// Channel is the single-slot cross-thread error mailbox described in spec
// §4.B. The capture engine's apartment thread posts through ThrowIn; any
// host-facing call drains it with ThrowOut at operation entry. At most one
// error is held: a second ThrowIn while one is pending is logged and
// discarded, on the assumption that the earliest error is the root cause.
type Channel struct {
	mu      sync.Mutex
	pending *Error
	log     *slog.Logger
}

// NewChannel builds an empty channel. log may be nil, in which case
// slog.Default() is used for the discard-on-second-error diagnostic.
func NewChannel(log *slog.Logger) *Channel {
	if log == nil {
		log = slog.Default()
	}
	return &Channel{log: log}
}

// ThrowIn posts e into the channel. If an error is already pending, e is
// logged and discarded rather than overwriting the pending one.
func (c *Channel) ThrowIn(e *Error) {
	if e == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.log.Warn("error channel already holds a pending error, discarding newcomer",
			"pending", c.pending.Error(), "discarded", e.Error())
		return
	}
	c.pending = e
}

// HasPending reports whether an error is waiting, without draining it —
// used by the engine's run loop to notice a posted error and stop without
// consuming it (the host-facing ThrowOut call still needs to see it).
func (c *Channel) HasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// ThrowOut drains the channel, returning the pending error (or nil if empty)
// and clearing the slot.
func (c *Channel) ThrowOut() *Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.pending
	c.pending = nil
	return e
}

// DropWithPending logs and discards any pending error without surfacing it to
// a caller — used when a Stream/Session is being torn down and no further
// host call will ever drain the channel.
func (c *Channel) DropWithPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.log.Warn("dropping pending error on teardown", "error", c.pending.Error())
		c.pending = nil
	}
}
