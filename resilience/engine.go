package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/reelmark/reelmark/config"
	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/internal/clock"
	"github.com/reelmark/reelmark/key"
	"github.com/reelmark/reelmark/log"
	"github.com/reelmark/reelmark/source"
	"github.com/spf13/viper"
)

// Policy bounds one load sequence.
type Policy struct {
	MaxRetries  int
	LoadTimeout time.Duration

	// Backoff is the delay before the first retry; later retries wait
	// proportionally longer. Zero relaunches immediately.
	Backoff time.Duration
}

// DefaultPolicy is four retries, a 30 second load timeout and a one second back-off.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:  4,
		LoadTimeout: 30 * time.Second,
		Backoff:     time.Second,
	}
}

// PolicyFromConfig reads the policy from the resilience.* config keys.
func PolicyFromConfig() Policy {
	return Policy{
		MaxRetries:  viper.GetInt(key.ResilienceMaxRetries),
		LoadTimeout: config.LoadTimeout(),
		Backoff:     config.Backoff(),
	}
}

// RetrySession is the bookkeeping of one load sequence. A new URL always gets
// a new session.
type RetrySession struct {
	Attempts   int
	Retries    int
	MaxRetries int

	// AttemptStartedAt is when the live (or last) attempt was launched.
	AttemptStartedAt time.Time

	// LastCategory is the category of the latest failed attempt, empty
	// until one fails.
	LastCategory Category
	Causes       []Verdict
	Settled      bool
	Failure      *Failure
}

// Option configures an Engine.
type Option func(*Engine)

func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithOnSettled registers fn to run once the sequence succeeds (nil) or fails
// terminally.
func WithOnSettled(fn func(*Failure)) Option {
	return func(e *Engine) { e.onSettled = fn }
}

// Engine runs the load state machine for one adapter: each attempt is
// started, then succeeds, times out or fails. Retryable failures relaunch the
// load until the policy is exhausted.
type Engine struct {
	adapter   control.Adapter
	desc      source.Descriptor
	policy    Policy
	clock     clock.Clock
	onSettled func(*Failure)

	mu       sync.Mutex
	session  RetrySession
	attempt  int // id of the live attempt
	resolved bool
	cancel   context.CancelFunc
	timer    clock.Stopper
	disposed bool
}

// New returns an engine for adapter playing desc. Call Start to begin.
func New(adapter control.Adapter, desc source.Descriptor, opts ...Option) *Engine {
	e := &Engine{
		adapter: adapter,
		desc:    desc,
		policy:  DefaultPolicy(),
		clock:   clock.Real{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.policy.MaxRetries < 0 {
		e.policy.MaxRetries = 0
	}
	e.session.MaxRetries = e.policy.MaxRetries
	return e
}

// Start launches the first attempt.
func (e *Engine) Start() {
	e.launch()
}

// Session returns a copy of the sequence bookkeeping.
func (e *Engine) Session() RetrySession {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.session
	s.Causes = append([]Verdict(nil), e.session.Causes...)
	return s
}

func (e *Engine) launch() {
	if e.abandoned() {
		return
	}

	e.mu.Lock()
	if e.disposed || e.session.Settled {
		e.mu.Unlock()
		return
	}
	e.attempt++
	id := e.attempt
	e.resolved = false
	e.session.Attempts++
	e.session.AttemptStartedAt = e.clock.Now()
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.timer = e.clock.AfterFunc(e.policy.LoadTimeout, func() {
		e.settle(id, ErrLoadTimeout)
	})
	attempts := e.session.Attempts
	e.mu.Unlock()

	e.logger().With(log.Fields{"attempt": attempts}).Debugf("load attempt started")
	e.adapter.Load(ctx, func(err error) {
		e.settle(id, err)
	})
}

// settle records the outcome of attempt id. Outcomes of superseded attempts
// and anything after Dispose are dropped.
func (e *Engine) settle(id int, err error) {
	if e.abandoned() {
		return
	}

	e.mu.Lock()
	if e.disposed || id != e.attempt || e.resolved {
		e.mu.Unlock()
		return
	}
	e.resolved = true
	e.stopTimerLocked()

	if err == nil {
		e.session.Settled = true
		e.mu.Unlock()
		e.notify(nil)
		return
	}

	// The attempt is abandoned either way.
	e.cancel()

	verdict := Classify(err, e.desc)
	e.session.Causes = append(e.session.Causes, verdict)
	e.session.LastCategory = verdict.Category
	e.logger().With(log.Fields{
		"attempt":  e.session.Attempts,
		"category": verdict.Category,
	}).Warnf("load attempt failed: %v", err)

	if verdict.Retryable && e.session.Retries < e.policy.MaxRetries {
		e.session.Retries++
		delay := e.policy.Backoff * time.Duration(e.session.Retries)
		if delay <= 0 {
			e.mu.Unlock()
			e.launch()
			return
		}
		e.timer = e.clock.AfterFunc(delay, e.launch)
		e.mu.Unlock()
		return
	}

	failure := &Failure{
		Verdict:  verdict,
		Platform: e.desc.PlatformLabel,
		Attempts: e.session.Attempts,
		Message:  Describe(verdict, e.desc, e.session.Attempts),
		Err:      err,
	}
	e.session.Settled = true
	e.session.Failure = failure
	e.mu.Unlock()

	e.adapter.Fail(failure)
	e.notify(failure)
}

// abandoned disposes the engine once its adapter was disposed behind its
// back, dropping the sequence so nothing else is launched or reported.
func (e *Engine) abandoned() bool {
	if e.adapter.Alive() == nil {
		return false
	}

	e.mu.Lock()
	first := !e.disposed
	e.session = RetrySession{MaxRetries: e.policy.MaxRetries}
	e.mu.Unlock()

	if first {
		e.logger().Debugf("adapter disposed, dropping load sequence")
	}
	e.Dispose()
	return true
}

func (e *Engine) logger() log.Entry {
	return log.With(log.Fields{
		"platform": e.desc.PlatformLabel,
		"kind":     e.desc.Kind,
		"target":   e.desc.Target,
	})
}

func (e *Engine) notify(f *Failure) {
	if e.onSettled != nil {
		e.onSettled(f)
	}
}

// Dispose cancels the live attempt and any pending timeout or retry. It is idempotent.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.disposed = true
	e.stopTimerLocked()
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Engine) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
