// Package session owns one playback at a time: it classifies the input,
// consults the gate, builds the adapter through the router and drives its
// load through the resilience engine. Sessions are constructed and disposed
// explicitly; nothing here is global.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/history"
	"github.com/reelmark/reelmark/internal/clock"
	"github.com/reelmark/reelmark/log"
	"github.com/reelmark/reelmark/renderer"
	"github.com/reelmark/reelmark/resilience"
	"github.com/reelmark/reelmark/router"
	"github.com/reelmark/reelmark/source"
)

var (
	// ErrClosed is returned by Open after Close.
	ErrClosed = errors.New("session closed")

	// ErrNoSurface is returned when an embedded source is opened before a
	// renderer surface is attached.
	ErrNoSurface = errors.New("embedded renderer surface is not attached")
)

// UnsupportedError reports a source no backend can play.
type UnsupportedError struct {
	Descriptor source.Descriptor
}

func (e *UnsupportedError) Error() string {
	if msg, ok := e.Descriptor.DiagnosticMessage.Get(); ok {
		return msg
	}
	return resilience.Describe(resilience.Verdict{Category: resilience.CategoryUnsupported}, e.Descriptor, 0)
}

// SurfaceFactory mounts a renderer surface on demand.
type SurfaceFactory func() (renderer.Surface, error)

// Options configure a Session.
type Options struct {
	Gate           Gate
	Clock          clock.Clock
	Policy         resilience.Policy
	Volume         float64
	PollInterval   time.Duration
	StatusInterval time.Duration
	Autoplay       bool
	History        bool
	Surfaces       SurfaceFactory

	// OnError is told about every terminal failure of the open source,
	// including playback errors raised after it was ready.
	OnError func(err error)
}

// Option mutates Options.
type Option func(*Options)

func WithGate(g Gate) Option                     { return func(o *Options) { o.Gate = g } }
func WithClock(c clock.Clock) Option             { return func(o *Options) { o.Clock = c } }
func WithPolicy(p resilience.Policy) Option      { return func(o *Options) { o.Policy = p } }
func WithVolume(v float64) Option                { return func(o *Options) { o.Volume = v } }
func WithAutoplay(on bool) Option                { return func(o *Options) { o.Autoplay = on } }
func WithHistory(on bool) Option                 { return func(o *Options) { o.History = on } }
func WithSurfaceFactory(f SurfaceFactory) Option { return func(o *Options) { o.Surfaces = f } }
func WithOnError(fn func(err error)) Option      { return func(o *Options) { o.OnError = fn } }

// WithIntervals sets the native poll and embedded status intervals.
func WithIntervals(poll, status time.Duration) Option {
	return func(o *Options) {
		o.PollInterval = poll
		o.StatusInterval = status
	}
}

// Session is one screen's playback.
type Session struct {
	router *router.Router
	opts   Options
	hub    control.Hub

	mu          sync.Mutex
	surface     renderer.Surface
	ownsSurface bool
	desc        source.Descriptor
	adapter     control.Adapter
	engine      *resilience.Engine
	unsubscribe func()
	last        control.Status
	gen         int
	closed      bool
}

// New returns an idle session that builds adapters through r.
func New(r *router.Router, opts ...Option) *Session {
	o := Options{
		Gate:     AllowAll,
		Clock:    clock.Real{},
		Policy:   resilience.DefaultPolicy(),
		Volume:   1,
		Autoplay: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Session{
		router: r,
		opts:   o,
		last:   control.InitialStatus(o.Volume),
	}
}

// AttachSurface hands the session a mounted renderer surface. The caller
// keeps ownership of it; a surface the session mounted itself is closed.
// The new surface is used from the next Open on.
func (s *Session) AttachSurface(surface renderer.Surface) {
	s.mu.Lock()
	previous, owned := s.surface, s.ownsSurface
	s.surface = surface
	s.ownsSurface = false
	s.mu.Unlock()

	if owned && previous != nil && previous != surface {
		closeSurface(previous)
	}
}

// Open classifies input and starts playing it, replacing whatever was
// playing. The previous adapter and its pending retries are disposed first,
// so a new URL always starts with a fresh retry count.
func (s *Session) Open(input string) (source.Descriptor, error) {
	desc := source.Classify(input)
	target := router.Route(desc)
	if target == router.TargetUnsupported {
		return desc, &UnsupportedError{Descriptor: desc}
	}
	if err := s.opts.Gate.Allow(desc); err != nil {
		return desc, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return desc, ErrClosed
	}

	s.teardownLocked()

	if target == router.TargetEmbedded && s.surface == nil && s.opts.Surfaces != nil {
		surface, err := s.opts.Surfaces()
		if err != nil {
			return desc, fmt.Errorf("mount renderer: %w", err)
		}
		s.surface = surface
		s.ownsSurface = true
	}

	s.gen++
	gen := s.gen

	interval := s.opts.PollInterval
	if target == router.TargetEmbedded {
		interval = s.opts.StatusInterval
	}
	adapter := s.router.CreateAdapter(desc, s.surface,
		control.WithClock(s.opts.Clock),
		control.WithDescriber(resilience.Describer(desc)),
		control.WithVolume(s.opts.Volume),
		control.WithPollInterval(interval),
		control.WithOnError(func(err error) { s.failed(gen, err) }),
	)
	if adapter == nil {
		return desc, ErrNoSurface
	}

	s.desc = desc
	s.adapter = adapter
	s.unsubscribe = adapter.Subscribe(func(st control.Status) {
		s.forward(gen, st)
	})
	s.engine = resilience.New(adapter, desc,
		resilience.WithPolicy(s.opts.Policy),
		resilience.WithClock(s.opts.Clock),
		resilience.WithOnSettled(func(f *resilience.Failure) {
			s.settled(gen, adapter, f)
		}),
	)

	log.With(log.Fields{"backend": adapter.Backend(), "platform": desc.PlatformLabel}).
		Infof("session: opening %s", desc.Target)
	engine := s.engine
	// Start outside the lock: adapters may report synchronously.
	s.mu.Unlock()
	engine.Start()
	s.mu.Lock()

	return desc, nil
}

func (s *Session) forward(gen int, st control.Status) {
	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	prev := s.last
	s.last = st
	desc := s.desc
	s.mu.Unlock()

	if s.opts.History && prev.State != st.State &&
		(st.State == control.StatePaused || st.State == control.StateEnded) {
		s.record(desc, st)
	}
	s.hub.Publish(st)
}

// settled resumes and starts playback once the load succeeded.
func (s *Session) settled(gen int, adapter control.Adapter, failure *resilience.Failure) {
	s.mu.Lock()
	current := gen == s.gen && !s.closed
	desc := s.desc
	s.mu.Unlock()
	if !current {
		return
	}

	if failure != nil {
		log.With(log.Fields{"attempts": failure.Attempts, "category": failure.Category}).
			Errorf("session: %s failed: %v", desc, failure.Err)
		return
	}

	if s.opts.History {
		if entry, ok, err := history.Get(desc); err == nil && ok {
			if at, resume := entry.ResumeAt(); resume {
				log.Infof("session: resuming %s at %.0fs", desc, at)
				_ = adapter.Seek(at)
			}
		}
	}
	if s.opts.Autoplay {
		_ = adapter.Play()
	}
}

// failed logs playback errors and hands every terminal failure to OnError.
// Exhausted load sequences are logged by settled.
func (s *Session) failed(gen int, err error) {
	s.mu.Lock()
	current := gen == s.gen && !s.closed
	desc := s.desc
	s.mu.Unlock()
	if !current {
		return
	}

	var exhausted *resilience.Failure
	if !errors.As(err, &exhausted) {
		log.With(log.Fields{"platform": desc.PlatformLabel, "category": resilience.Classify(err, desc).Category}).
			Errorf("session: %s stopped playing: %v", desc, err)
	}
	if s.opts.OnError != nil {
		s.opts.OnError(err)
	}
}

func (s *Session) record(desc source.Descriptor, st control.Status) {
	if err := history.Save(history.NewEntry(desc, st.CurrentTime, st.Duration)); err != nil {
		log.Warnf("session: save history: %v", err)
	}
}

// teardownLocked disposes the current engine and adapter, engine first so no
// retry can fire into a disposed adapter.
func (s *Session) teardownLocked() {
	if s.engine != nil {
		s.engine.Dispose()
		s.engine = nil
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.adapter != nil {
		if s.opts.History && s.last.Active() && s.last.CurrentTime > 0 {
			s.record(s.desc, s.last)
		}
		_ = s.adapter.Dispose()
		s.adapter = nil
	}
	s.last = control.InitialStatus(s.opts.Volume)
}

// Controller returns the active adapter, or nil when nothing is open.
func (s *Session) Controller() control.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adapter == nil {
		return nil
	}
	return s.adapter
}

// Backend names the active adapter's backend.
func (s *Session) Backend() (control.Backend, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adapter == nil {
		return "", false
	}
	return s.adapter.Backend(), true
}

// Descriptor returns the descriptor of the open source.
func (s *Session) Descriptor() source.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desc
}

// Status returns the latest snapshot of the open source.
func (s *Session) Status() control.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Retries returns the retry bookkeeping of the current load sequence.
func (s *Session) Retries() resilience.RetrySession {
	s.mu.Lock()
	engine := s.engine
	s.mu.Unlock()
	if engine == nil {
		return resilience.RetrySession{}
	}
	return engine.Session()
}

// Subscribe registers l for status snapshots of whichever source is open.
func (s *Session) Subscribe(l control.Listener) func() {
	return s.hub.Subscribe(l)
}

// Close disposes the open source and any surface the session mounted itself.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.teardownLocked()
	s.closed = true
	surface, owns := s.surface, s.ownsSurface
	s.surface = nil
	s.mu.Unlock()

	s.hub.Close()
	if owns && surface != nil {
		closeSurface(surface)
	}
	return nil
}

func closeSurface(surface renderer.Surface) {
	if err := surface.Close(); err != nil {
		log.Debugf("session: close surface: %v", err)
	}
}
