package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/internal/clock"
	"github.com/reelmark/reelmark/log"
)

// DefaultPollInterval is how often the native adapter re-reads the engine.
const DefaultPollInterval = 250 * time.Millisecond

// Source is what the native adapter hands to its engine.
type Source struct {
	Target  string
	Headers map[string]string
}

// Native adapts an Engine to control.Adapter. The engine does not push every
// property, so status is kept in sync by polling.
type Native struct {
	core   *control.Core
	engine Engine
	prober Prober
	source Source
	clock  clock.Clock
	poll   time.Duration

	mu          sync.Mutex
	poller      clock.Stopper
	loaded      bool
	pendingPlay bool
}

// NewNative returns an adapter for source played through engine. prober may be nil.
func NewNative(engine Engine, prober Prober, source Source, opts ...control.Option) *Native {
	o := control.NewOptions(DefaultPollInterval, opts...)
	return &Native{
		core:   control.NewCore(control.InitialStatus(o.Volume), o.Describe).NotifyErrors(o.OnError),
		engine: engine,
		prober: prober,
		source: source,
		clock:  o.Clock,
		poll:   o.PollInterval,
	}
}

func (n *Native) Backend() control.Backend { return control.BackendNative }

// Load probes the target, then opens it paused. The adapter stays ready until
// Play; a Play issued while loading is applied once the engine has the file.
func (n *Native) Load(ctx context.Context, report func(error)) {
	if n.core.Alive() != nil {
		return
	}

	n.mu.Lock()
	n.stopPollerLocked()
	n.loaded = false
	n.pendingPlay = false
	n.mu.Unlock()

	n.core.Update(func(s control.Status) control.Status {
		return s.WithState(control.StateLoading).WithPosition(0, 0)
	})

	go n.load(ctx, report)
}

func (n *Native) load(ctx context.Context, report func(error)) {
	var err error
	if n.prober != nil {
		err = n.prober.Probe(ctx, n.source.Target)
	}
	if err == nil {
		err = n.engine.Open(ctx, n.source.Target, n.source.Headers)
	}
	if ctx.Err() != nil || n.core.Alive() != nil {
		return
	}
	if err != nil {
		log.Infof("native load of %s failed: %v", n.source.Target, err)
		report(err)
		return
	}

	current := n.core.Status()
	n.command("volume", n.engine.SetVolume(current.Volume*100))
	n.command("mute", n.engine.SetMuted(current.Muted))
	n.command("speed", n.engine.SetSpeed(current.PlaybackRate))

	snap, snapErr := n.engine.Snapshot()
	n.core.Update(func(s control.Status) control.Status {
		s = s.WithState(control.StateReady)
		if snapErr == nil {
			s = s.WithPosition(snap.Position, snap.Duration)
		}
		return s
	})

	n.mu.Lock()
	n.loaded = true
	play := n.pendingPlay
	n.pendingPlay = false
	if n.core.Alive() == nil {
		n.poller = n.clock.Every(n.poll, n.tick)
	}
	n.mu.Unlock()

	if play {
		_ = n.Play()
	}
	report(nil)
}

// tick re-reads the engine and publishes the derived snapshot if it changed.
func (n *Native) tick() {
	snap, err := n.engine.Snapshot()
	if err != nil {
		if errors.Is(err, ErrEngineExited) {
			n.fail(&control.PlaybackError{Err: err})
			return
		}
		log.Debugf("native poll: %v", err)
		return
	}
	if snap.Failure != nil {
		n.fail(&control.PlaybackError{Err: snap.Failure})
		return
	}

	n.core.Refresh(func(s control.Status) control.Status {
		if s.State == control.StateError || s.State == control.StateLoading {
			return s
		}
		s = s.WithPosition(snap.Position, snap.Duration)
		s.Volume = control.ClampVolume(snap.Volume / 100)
		s.Muted = snap.Muted
		if snap.Speed > 0 {
			s.PlaybackRate = control.ClampRate(snap.Speed)
		}
		s.Fullscreen = snap.Fullscreen
		return s.WithState(inferState(s.State, snap))
	})
}

func (n *Native) fail(err error) {
	n.mu.Lock()
	n.stopPollerLocked()
	n.mu.Unlock()
	n.core.Fail(err)
}

// Fail moves to the terminal error state and stops polling.
func (n *Native) Fail(err error) {
	n.fail(err)
}

func (n *Native) Alive() error {
	return n.core.Alive()
}

func (n *Native) Play() error {
	if err := n.core.Alive(); err != nil {
		return err
	}
	n.mu.Lock()
	if !n.loaded {
		n.pendingPlay = true
		n.mu.Unlock()
		return nil
	}
	n.mu.Unlock()

	n.command("play", n.engine.SetPaused(false))
	n.core.Update(func(s control.Status) control.Status {
		if s.State == control.StateError {
			return s
		}
		return s.WithState(control.StatePlaying)
	})
	return nil
}

func (n *Native) Pause() error {
	if err := n.core.Alive(); err != nil {
		return err
	}
	n.mu.Lock()
	n.pendingPlay = false
	loaded := n.loaded
	n.mu.Unlock()
	if !loaded {
		return nil
	}

	n.command("pause", n.engine.SetPaused(true))
	n.core.Update(func(s control.Status) control.Status {
		if s.State != control.StatePlaying && s.State != control.StateBuffering {
			return s
		}
		return s.WithState(control.StatePaused)
	})
	return nil
}

// Stop pauses and rewinds to the start; the source stays loaded.
func (n *Native) Stop() error {
	if err := n.core.Alive(); err != nil {
		return err
	}
	n.mu.Lock()
	n.pendingPlay = false
	loaded := n.loaded
	n.mu.Unlock()
	if !loaded {
		return nil
	}

	n.command("pause", n.engine.SetPaused(true))
	n.command("seek", n.engine.Seek(0))
	n.core.Update(func(s control.Status) control.Status {
		if s.State == control.StateError {
			return s
		}
		return s.WithState(control.StatePaused).WithPosition(0, s.Duration)
	})
	return nil
}

func (n *Native) Seek(seconds float64) error {
	if err := n.core.Alive(); err != nil {
		return err
	}
	target := control.ClampSeek(seconds, n.core.Status().Duration)
	if !n.isLoaded() {
		return nil
	}

	n.command("seek", n.engine.Seek(target))
	n.core.Update(func(s control.Status) control.Status {
		return s.WithPosition(target, s.Duration)
	})
	return nil
}

func (n *Native) SetVolume(volume float64) error {
	if err := n.core.Alive(); err != nil {
		return err
	}
	volume = control.ClampVolume(volume)
	if n.isLoaded() {
		n.command("volume", n.engine.SetVolume(volume*100))
	}
	n.core.Update(func(s control.Status) control.Status {
		s.Volume = volume
		return s
	})
	return nil
}

func (n *Native) SetPlaybackRate(rate float64) error {
	if err := n.core.Alive(); err != nil {
		return err
	}
	rate = control.ClampRate(rate)
	if n.isLoaded() {
		n.command("speed", n.engine.SetSpeed(rate))
	}
	n.core.Update(func(s control.Status) control.Status {
		s.PlaybackRate = rate
		return s
	})
	return nil
}

func (n *Native) SetMuted(muted bool) error {
	if err := n.core.Alive(); err != nil {
		return err
	}
	if n.isLoaded() {
		n.command("mute", n.engine.SetMuted(muted))
	}
	n.core.Update(func(s control.Status) control.Status {
		s.Muted = muted
		return s
	})
	return nil
}

func (n *Native) EnterFullscreen() error { return n.setFullscreen(true) }
func (n *Native) ExitFullscreen() error  { return n.setFullscreen(false) }

func (n *Native) setFullscreen(on bool) error {
	if err := n.core.Alive(); err != nil {
		return err
	}
	if n.isLoaded() {
		n.command("fullscreen", n.engine.SetFullscreen(on))
	}
	n.core.Update(func(s control.Status) control.Status {
		s.Fullscreen = on
		return s
	})
	return nil
}

func (n *Native) Status() control.Status {
	return n.core.Status()
}

func (n *Native) Subscribe(listener control.Listener) func() {
	return n.core.Subscribe(listener)
}

// Dispose stops polling and closes the engine. Engine errors are logged, not returned.
func (n *Native) Dispose() error {
	if !n.core.Dispose() {
		return nil
	}

	n.mu.Lock()
	n.stopPollerLocked()
	n.loaded = false
	n.mu.Unlock()

	if err := n.engine.Stop(); err != nil {
		log.Debugf("native dispose: stop: %v", err)
	}
	if err := n.engine.Close(); err != nil {
		log.Debugf("native dispose: close: %v", err)
	}
	return nil
}

func (n *Native) isLoaded() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.loaded
}

func (n *Native) stopPollerLocked() {
	if n.poller != nil {
		n.poller.Stop()
		n.poller = nil
	}
}

// command logs a failed engine call. Failures that matter surface on the next poll.
func (n *Native) command(name string, err error) {
	if err != nil {
		log.Warnf("native %s: %v", name, err)
	}
}
