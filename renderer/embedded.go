package renderer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/internal/clock"
	"github.com/reelmark/reelmark/log"
	"github.com/reelmark/reelmark/source"
)

// DefaultStatusInterval is how often the page is asked for its player status.
const DefaultStatusInterval = time.Second

const (
	commandQueue     = 64
	disposePauseWait = 2 * time.Second
)

// errPageMediaError wraps an error the page's media element reported.
var errPageMediaError = errors.New("embedded player reported an error")

// pageStatus is what the status scripts return. Pointer fields are nil when
// the page could not tell.
type pageStatus struct {
	Present  bool     `json:"present"`
	Paused   bool     `json:"paused"`
	Ended    bool     `json:"ended"`
	Waiting  bool     `json:"waiting"`
	Time     *float64 `json:"time"`
	Duration *float64 `json:"duration"`
	Volume   *float64 `json:"volume"`
	Muted    bool     `json:"muted"`
	Rate     *float64 `json:"rate"`
	Error    *string  `json:"error"`
}

// Embedded drives a platform's own player inside a Surface. It cannot observe
// playback internals directly: state, volume, muted and rate are
// authoritative, while times keep their last known value until the page
// reports finite ones.
type Embedded struct {
	core     *control.Core
	surface  Surface
	url      string
	family   Family
	clock    clock.Clock
	interval time.Duration

	// commands run in issue order on a single goroutine.
	commands chan func(context.Context)
	ctx      context.Context
	cancel   context.CancelFunc

	mu          sync.Mutex
	poller      clock.Stopper
	loaded      bool
	pendingPlay bool
}

// NewEmbedded returns an adapter that plays desc inside surface.
func NewEmbedded(surface Surface, desc source.Descriptor, opts ...control.Option) *Embedded {
	o := control.NewOptions(DefaultStatusInterval, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	e := &Embedded{
		core:     control.NewCore(control.InitialStatus(o.Volume), o.Describe).NotifyErrors(o.OnError),
		surface:  surface,
		url:      desc.EmbedURL(),
		family:   FamilyFor(desc),
		clock:    o.Clock,
		interval: o.PollInterval,
		commands: make(chan func(context.Context), commandQueue),
		ctx:      ctx,
		cancel:   cancel,
	}
	go e.dispatch()
	return e
}

func (e *Embedded) Backend() control.Backend { return control.BackendEmbedded }

// URL is the page the adapter navigates to.
func (e *Embedded) URL() string { return e.url }

func (e *Embedded) dispatch() {
	for {
		select {
		case <-e.ctx.Done():
			return
		case cmd := <-e.commands:
			cmd(e.ctx)
		}
	}
}

// enqueue schedules cmd after every previously issued command.
func (e *Embedded) enqueue(cmd func(context.Context)) {
	select {
	case e.commands <- cmd:
	case <-e.ctx.Done():
	}
}

// run evaluates a control script, logging failures. Command failures do not
// change state; a broken page shows up on the next status read.
func (e *Embedded) run(command Command, args ...interface{}) {
	e.enqueue(func(ctx context.Context) {
		out, err := e.surface.Eval(ctx, Script(e.family, command), args...)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Warnf("renderer %s: %v", command, err)
		case out == "missing":
			log.Debugf("renderer %s: no player on page yet", command)
		}
	})
}

// Load navigates the surface to the embed page and applies the current
// volume, mute and rate once it has loaded.
func (e *Embedded) Load(ctx context.Context, report func(error)) {
	if e.core.Alive() != nil {
		return
	}

	e.mu.Lock()
	e.stopPollerLocked()
	e.loaded = false
	e.pendingPlay = false
	e.mu.Unlock()

	e.core.Update(func(s control.Status) control.Status {
		return s.WithState(control.StateLoading).WithPosition(0, 0)
	})

	go e.load(ctx, report)
}

func (e *Embedded) load(ctx context.Context, report func(error)) {
	status, err := e.surface.Navigate(ctx, e.url)
	if ctx.Err() != nil || e.core.Alive() != nil {
		return
	}
	if err == nil && status >= 400 {
		err = &control.HTTPError{Code: status, URL: e.url}
	}
	if err != nil {
		log.Infof("renderer load of %s failed: %v", e.url, err)
		report(err)
		return
	}

	current := e.core.Status()
	e.run(CommandVolume, current.Volume)
	e.run(muteCommand(current.Muted))
	e.run(CommandRate, current.PlaybackRate)

	e.core.Update(func(s control.Status) control.Status {
		return s.WithState(control.StateReady)
	})

	e.mu.Lock()
	e.loaded = true
	play := e.pendingPlay
	e.pendingPlay = false
	if e.core.Alive() == nil {
		e.poller = e.clock.Every(e.interval, e.tick)
	}
	e.mu.Unlock()

	if play {
		_ = e.Play()
	}
	report(nil)
}

// tick queues a status read behind any pending commands.
func (e *Embedded) tick() {
	e.enqueue(func(ctx context.Context) {
		out, err := e.surface.Eval(ctx, Script(e.family, CommandStatus))
		if err != nil {
			if ctx.Err() == nil {
				log.Debugf("renderer status: %v", err)
			}
			return
		}
		e.apply(out)
	})
}

// apply folds a status script result into the snapshot.
func (e *Embedded) apply(raw string) {
	var ps pageStatus
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		log.Debugf("renderer status: unreadable %q: %v", raw, err)
		return
	}
	if !ps.Present {
		return
	}
	if ps.Error != nil {
		e.fail(&control.PlaybackError{Err: fmt.Errorf("%w: %s", errPageMediaError, *ps.Error)})
		return
	}

	e.core.Refresh(func(s control.Status) control.Status {
		if s.State == control.StateError || s.State == control.StateLoading {
			return s
		}
		current, duration := s.CurrentTime, s.Duration
		if finite(ps.Duration) {
			duration = *ps.Duration
		}
		if finite(ps.Time) {
			current = *ps.Time
		}
		s = s.WithPosition(current, duration)
		if finite(ps.Volume) {
			s.Volume = control.ClampVolume(*ps.Volume)
		}
		if finite(ps.Rate) && *ps.Rate > 0 {
			s.PlaybackRate = control.ClampRate(*ps.Rate)
		}
		s.Muted = ps.Muted
		return s.WithState(pageState(s.State, ps))
	})
}

func pageState(prev control.State, ps pageStatus) control.State {
	switch {
	case ps.Ended:
		return control.StateEnded
	case ps.Waiting:
		return control.StateBuffering
	case !ps.Paused:
		return control.StatePlaying
	case prev == control.StateReady:
		return control.StateReady
	default:
		return control.StatePaused
	}
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func (e *Embedded) fail(err error) {
	e.mu.Lock()
	e.stopPollerLocked()
	e.mu.Unlock()
	e.core.Fail(err)
}

// Fail moves to the terminal error state and stops status reads.
func (e *Embedded) Fail(err error) {
	e.fail(err)
}

func (e *Embedded) Alive() error {
	return e.core.Alive()
}

func (e *Embedded) Play() error {
	if err := e.core.Alive(); err != nil {
		return err
	}
	e.mu.Lock()
	if !e.loaded {
		e.pendingPlay = true
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	e.run(CommandPlay)
	e.core.Update(func(s control.Status) control.Status {
		if s.State == control.StateError {
			return s
		}
		return s.WithState(control.StatePlaying)
	})
	return nil
}

func (e *Embedded) Pause() error {
	if err := e.core.Alive(); err != nil {
		return err
	}
	e.mu.Lock()
	e.pendingPlay = false
	loaded := e.loaded
	e.mu.Unlock()
	if !loaded {
		return nil
	}

	e.run(CommandPause)
	e.core.Update(func(s control.Status) control.Status {
		if s.State != control.StatePlaying && s.State != control.StateBuffering {
			return s
		}
		return s.WithState(control.StatePaused)
	})
	return nil
}

// Stop pauses and rewinds the page's player.
func (e *Embedded) Stop() error {
	if err := e.core.Alive(); err != nil {
		return err
	}
	e.mu.Lock()
	e.pendingPlay = false
	loaded := e.loaded
	e.mu.Unlock()
	if !loaded {
		return nil
	}

	e.run(CommandPause)
	e.run(CommandSeek, 0.0)
	e.core.Update(func(s control.Status) control.Status {
		if s.State == control.StateError {
			return s
		}
		return s.WithState(control.StatePaused).WithPosition(0, s.Duration)
	})
	return nil
}

func (e *Embedded) Seek(seconds float64) error {
	if err := e.core.Alive(); err != nil {
		return err
	}
	if !e.isLoaded() {
		return nil
	}
	target := control.ClampSeek(seconds, e.core.Status().Duration)
	e.run(CommandSeek, target)
	e.core.Update(func(s control.Status) control.Status {
		return s.WithPosition(target, s.Duration)
	})
	return nil
}

func (e *Embedded) SetVolume(volume float64) error {
	if err := e.core.Alive(); err != nil {
		return err
	}
	volume = control.ClampVolume(volume)
	if e.isLoaded() {
		e.run(CommandVolume, volume)
	}
	e.core.Update(func(s control.Status) control.Status {
		s.Volume = volume
		return s
	})
	return nil
}

func (e *Embedded) SetPlaybackRate(rate float64) error {
	if err := e.core.Alive(); err != nil {
		return err
	}
	rate = control.ClampRate(rate)
	if e.isLoaded() {
		e.run(CommandRate, rate)
	}
	e.core.Update(func(s control.Status) control.Status {
		s.PlaybackRate = rate
		return s
	})
	return nil
}

func (e *Embedded) SetMuted(muted bool) error {
	if err := e.core.Alive(); err != nil {
		return err
	}
	if e.isLoaded() {
		e.run(muteCommand(muted))
	}
	e.core.Update(func(s control.Status) control.Status {
		s.Muted = muted
		return s
	})
	return nil
}

func muteCommand(muted bool) Command {
	if muted {
		return CommandMute
	}
	return CommandUnmute
}

func (e *Embedded) EnterFullscreen() error {
	return e.setFullscreen(true, CommandFullscreen)
}

func (e *Embedded) ExitFullscreen() error {
	return e.setFullscreen(false, CommandExitFullscreen)
}

func (e *Embedded) setFullscreen(on bool, command Command) error {
	if err := e.core.Alive(); err != nil {
		return err
	}
	if e.isLoaded() {
		e.run(command)
	}
	e.core.Update(func(s control.Status) control.Status {
		s.Fullscreen = on
		return s
	})
	return nil
}

func (e *Embedded) Status() control.Status {
	return e.core.Status()
}

func (e *Embedded) Subscribe(listener control.Listener) func() {
	return e.core.Subscribe(listener)
}

// Dispose stops status reads and the command queue. The surface belongs to
// the caller and stays open; a loaded page is paused on a best-effort basis.
func (e *Embedded) Dispose() error {
	if !e.core.Dispose() {
		return nil
	}
	e.mu.Lock()
	e.stopPollerLocked()
	wasLoaded := e.loaded
	e.loaded = false
	e.mu.Unlock()
	e.cancel()

	if wasLoaded {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), disposePauseWait)
			defer cancel()
			if _, err := e.surface.Eval(ctx, Script(e.family, CommandPause)); err != nil {
				log.Debugf("renderer dispose: %v", err)
			}
		}()
	}
	return nil
}

func (e *Embedded) isLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

func (e *Embedded) stopPollerLocked() {
	if e.poller != nil {
		e.poller.Stop()
		e.poller = nil
	}
}
