package control

import (
	"sync"
	"time"

	"github.com/reelmark/reelmark/internal/clock"
)

// DefaultMessage is shown for failures no describer recognised.
const DefaultMessage = "Playback failed. Try again, or open the link in a browser to confirm it still plays."

// Options configure an adapter.
type Options struct {
	Clock    clock.Clock
	Describe func(err error) string
	Volume   float64

	// PollInterval is how often the adapter re-reads backend state.
	PollInterval time.Duration

	// OnError is told about every terminal failure, after the status moved
	// to the error state.
	OnError func(err error)
}

// Option mutates Options.
type Option func(*Options)

// WithClock injects the clock used for polling.
func WithClock(c clock.Clock) Option {
	return func(o *Options) { o.Clock = c }
}

// WithDescriber sets how failures are turned into user-facing messages.
func WithDescriber(describe func(err error) string) Option {
	return func(o *Options) { o.Describe = describe }
}

// WithVolume sets the initial volume.
func WithVolume(v float64) Option {
	return func(o *Options) { o.Volume = v }
}

// WithPollInterval sets the backend status poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(o *Options) { o.PollInterval = d }
}

// WithOnError sets the terminal error callback.
func WithOnError(fn func(err error)) Option {
	return func(o *Options) { o.OnError = fn }
}

// NewOptions applies opts over the defaults.
func NewOptions(defaultPoll time.Duration, opts ...Option) Options {
	o := Options{
		Clock:        clock.Real{},
		Describe:     func(error) string { return DefaultMessage },
		Volume:       1,
		PollInterval: defaultPoll,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPoll
	}
	return o
}

// Core is the status bookkeeping shared by adapters: the single-writer
// snapshot, its subscribers and the disposed flag.
type Core struct {
	mu       sync.Mutex
	status   Status
	disposed bool
	hub      Hub
	describe func(error) string
	onError  func(error)
}

// NewCore returns a Core holding initial.
func NewCore(initial Status, describe func(error) string) *Core {
	if describe == nil {
		describe = func(error) string { return DefaultMessage }
	}
	return &Core{status: initial, describe: describe}
}

// NotifyErrors makes Fail call fn. It must be set before the core is shared.
func (c *Core) NotifyErrors(fn func(error)) *Core {
	c.onError = fn
	return c
}

// Status returns the current snapshot.
func (c *Core) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Subscribe registers l for future snapshots.
func (c *Core) Subscribe(l Listener) func() {
	return c.hub.Subscribe(l)
}

// Update replaces the snapshot with fn(current) and publishes it. It reports
// false, without calling fn, once the core is disposed.
func (c *Core) Update(fn func(Status) Status) (Status, bool) {
	c.mu.Lock()
	if c.disposed {
		s := c.status
		c.mu.Unlock()
		return s, false
	}
	next := fn(c.status)
	c.status = next
	c.hub.enqueue(next)
	c.mu.Unlock()

	c.hub.flush()
	return next, true
}

// Refresh is Update for polled readings: subscribers are only notified when
// fn actually changed the snapshot.
func (c *Core) Refresh(fn func(Status) Status) (Status, bool) {
	c.mu.Lock()
	if c.disposed {
		s := c.status
		c.mu.Unlock()
		return s, false
	}
	next := fn(c.status)
	changed := next != c.status
	if changed {
		c.status = next
		c.hub.enqueue(next)
	}
	c.mu.Unlock()

	if changed {
		c.hub.flush()
	}
	return next, changed
}

// Fail moves to the error state with a described message and hands err to
// the error callback. A disposed core drops the failure.
func (c *Core) Fail(err error) {
	message := c.describe(err)
	if _, ok := c.Update(func(s Status) Status { return s.WithError(message) }); !ok {
		return
	}
	if c.onError != nil {
		c.onError(err)
	}
}

// Alive returns ErrDisposed after Dispose.
func (c *Core) Alive() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrDisposed
	}
	return nil
}

// Dispose marks the core disposed and drops subscribers. It reports whether
// this call did the disposal.
func (c *Core) Dispose() bool {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return false
	}
	c.disposed = true
	c.mu.Unlock()

	c.hub.Close()
	return true
}
