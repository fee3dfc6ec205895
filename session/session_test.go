package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/filesystem"
	"github.com/reelmark/reelmark/history"
	"github.com/reelmark/reelmark/internal/clock"
	"github.com/reelmark/reelmark/player"
	"github.com/reelmark/reelmark/renderer"
	"github.com/reelmark/reelmark/resilience"
	"github.com/reelmark/reelmark/router"
	"github.com/reelmark/reelmark/source"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

// engine is a scripted player.Engine shared by every adapter for one target.
type engine struct {
	mu      sync.Mutex
	openErr error
	opens   int
	state   player.EngineState
}

func (e *engine) Open(context.Context, string, map[string]string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opens++
	if e.openErr == nil {
		e.state.Duration = 100
	}
	return e.openErr
}

func (e *engine) SetPaused(p bool) error { e.mu.Lock(); e.state.Paused = p; e.mu.Unlock(); return nil }
func (e *engine) Seek(t float64) error   { e.mu.Lock(); e.state.Position = t; e.mu.Unlock(); return nil }
func (e *engine) SetVolume(float64) error {
	return nil
}
func (e *engine) SetSpeed(float64) error   { return nil }
func (e *engine) SetMuted(bool) error      { return nil }
func (e *engine) SetFullscreen(bool) error { return nil }
func (e *engine) Stop() error              { return nil }
func (e *engine) Close() error             { return nil }
func (e *engine) Snapshot() (player.EngineState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	s.Volume, s.Speed = 100, 1
	return s, nil
}

func (e *engine) openCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opens
}

type engines struct {
	mu sync.Mutex
	by map[string]*engine
}

func (es *engines) get(target string) *engine {
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.by == nil {
		es.by = make(map[string]*engine)
	}
	if es.by[target] == nil {
		es.by[target] = &engine{state: player.EngineState{Paused: true}}
	}
	return es.by[target]
}

func (es *engines) factory(desc source.Descriptor) player.Engine {
	return es.get(desc.Target)
}

func (e *engine) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Failure = err
}

// surface is a renderer.Surface whose page always has a paused player.
type surface struct {
	mu        sync.Mutex
	navigated []string
	closed    int
}

func (f *surface) Navigate(_ context.Context, url string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigated = append(f.navigated, url)
	return 200, nil
}

func (f *surface) Eval(_ context.Context, script string, _ ...interface{}) (string, error) {
	if strings.Contains(script, "JSON.stringify") {
		return `{"present":true,"paused":true}`, nil
	}
	return "ok", nil
}

func (f *surface) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *surface) closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *surface) navigations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.navigated...)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestSession(t *testing.T) {
	Convey("Given a session over scripted engines", t, func() {
		So(history.Clear(), ShouldBeNil)
		es := &engines{}
		fake := clock.NewFake()
		s := New(router.New(es.factory, nil),
			WithClock(fake),
			WithPolicy(resilience.Policy{MaxRetries: 4, LoadTimeout: 30 * time.Second, Backoff: time.Second}),
			WithIntervals(250*time.Millisecond, time.Second),
			WithHistory(true),
		)
		Reset(func() { _ = s.Close() })

		Convey("Opening a direct file autoplays natively", func() {
			desc, err := s.Open("https://example.com/video.mp4")
			So(err, ShouldBeNil)
			So(desc.Kind, ShouldEqual, source.KindDirectFile)
			So(eventually(func() bool { return s.Status().State == control.StatePlaying }), ShouldBeTrue)

			backend, ok := s.Backend()
			So(ok, ShouldBeTrue)
			So(backend, ShouldEqual, control.BackendNative)
			So(s.Controller(), ShouldNotBeNil)
		})

		Convey("Subscribers see the open source's snapshots", func() {
			var mu sync.Mutex
			var states []control.State
			s.Subscribe(func(st control.Status) {
				mu.Lock()
				states = append(states, st.State)
				mu.Unlock()
			})
			_, err := s.Open("https://example.com/video.mp4")
			So(err, ShouldBeNil)
			So(eventually(func() bool {
				mu.Lock()
				defer mu.Unlock()
				return len(states) > 0 && states[len(states)-1] == control.StatePlaying
			}), ShouldBeTrue)
			So(states[0], ShouldEqual, control.StateLoading)
		})

		Convey("Switching URLs drops the old retry sequence", func() {
			first := es.get("https://example.com/first.mp4")
			first.openErr = &control.HTTPError{Code: 503}

			_, err := s.Open("https://example.com/first.mp4")
			So(err, ShouldBeNil)
			So(eventually(func() bool { return s.Retries().Retries == 1 }), ShouldBeTrue)

			_, err = s.Open("https://example.com/second.mp4")
			So(err, ShouldBeNil)
			So(s.Retries().Retries, ShouldEqual, 0)

			fake.Advance(time.Minute)
			time.Sleep(20 * time.Millisecond)
			So(first.openCount(), ShouldEqual, 1)
			So(s.Descriptor().Target, ShouldEqual, "https://example.com/second.mp4")
		})

		Convey("Exhausted retries end in a described error", func() {
			es.get("https://example.com/gone.mp4").openErr = &control.HTTPError{Code: 404}
			_, err := s.Open("https://example.com/gone.mp4")
			So(err, ShouldBeNil)
			So(eventually(func() bool { return s.Status().State == control.StateError }), ShouldBeTrue)
			So(s.Status().Error.MustGet(), ShouldContainSubstring, "not found")
			So(s.Retries().Retries, ShouldEqual, 0)
		})

		Convey("Playback resumes from history", func() {
			desc := source.Classify("https://example.com/video.mp4")
			So(history.Save(history.NewEntry(desc, 40, 100)), ShouldBeNil)

			_, err := s.Open("https://example.com/video.mp4")
			So(err, ShouldBeNil)
			So(eventually(func() bool { return s.Status().State == control.StatePlaying }), ShouldBeTrue)
			So(s.Status().CurrentTime, ShouldEqual, 40)
		})

		Convey("Unsupported sources never create an adapter", func() {
			desc, err := s.Open("https://www.netflix.com/watch/80100172")
			var unsupported *UnsupportedError
			So(errors.As(err, &unsupported), ShouldBeTrue)
			So(desc.Kind, ShouldEqual, source.KindUnsupportedDRM)
			So(err.Error(), ShouldNotBeEmpty)
			So(s.Controller(), ShouldBeNil)

			_, err = s.Open("")
			So(errors.As(err, &unsupported), ShouldBeTrue)
		})

		Convey("Embedded sources need a surface", func() {
			_, err := s.Open("https://vimeo.com/76979871")
			So(err, ShouldEqual, ErrNoSurface)
		})

		Convey("An attached surface plays embedded sources and outlives the session", func() {
			attached := &surface{}
			s.AttachSurface(attached)

			_, err := s.Open("https://vimeo.com/76979871")
			So(err, ShouldBeNil)
			backend, _ := s.Backend()
			So(backend, ShouldEqual, control.BackendEmbedded)
			So(eventually(func() bool { return s.Status().State == control.StatePlaying }), ShouldBeTrue)
			So(attached.navigations(), ShouldHaveLength, 1)
			So(attached.navigations()[0], ShouldContainSubstring, "76979871")

			So(s.Close(), ShouldBeNil)
			So(attached.closes(), ShouldEqual, 0)
		})

		Convey("Leaving a playing source saves its position", func() {
			first := source.Classify("https://example.com/first.mp4")
			_, err := s.Open(first.Input)
			So(err, ShouldBeNil)
			So(eventually(func() bool { return s.Status().State == control.StatePlaying }), ShouldBeTrue)
			So(s.Controller().Seek(30), ShouldBeNil)

			_, err = s.Open("https://example.com/second.mp4")
			So(err, ShouldBeNil)
			entry, ok, err := history.Get(first)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(entry.Position, ShouldEqual, 30)
		})

		Convey("Leaving a failed source saves nothing", func() {
			first := source.Classify("https://example.com/broken.mp4")
			_, err := s.Open(first.Input)
			So(err, ShouldBeNil)
			So(eventually(func() bool { return s.Status().State == control.StatePlaying }), ShouldBeTrue)
			So(s.Controller().Seek(30), ShouldBeNil)

			es.get(first.Target).fail(errors.New("decoder gave up"))
			fake.Advance(250 * time.Millisecond)
			So(eventually(func() bool { return s.Status().State == control.StateError }), ShouldBeTrue)
			So(s.Status().CurrentTime, ShouldEqual, 30)

			_, err = s.Open("https://example.com/second.mp4")
			So(err, ShouldBeNil)
			_, ok, err := history.Get(first)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("Close is idempotent and final", func() {
			_, err := s.Open("https://example.com/video.mp4")
			So(err, ShouldBeNil)
			So(s.Close(), ShouldBeNil)
			So(s.Close(), ShouldBeNil)
			So(s.Controller(), ShouldBeNil)

			_, err = s.Open("https://example.com/video.mp4")
			So(err, ShouldEqual, ErrClosed)
		})
	})
}

func TestTierGate(t *testing.T) {
	Convey("TierGate", t, func() {
		restricted := source.Descriptor{Kind: source.KindRestricted, PlatformLabel: "Adult site"}
		web := source.Descriptor{Kind: source.KindGenericWeb}

		open := TierGate{Tier: FreeTier}
		So(open.Allow(restricted), ShouldBeNil)

		strict := TierGate{Tier: FreeTier, RestrictedRequiresTier: true}
		So(errors.Is(strict.Allow(restricted), ErrVetoed), ShouldBeTrue)
		So(strict.Allow(web), ShouldBeNil)

		paid := TierGate{Tier: "plus", RestrictedRequiresTier: true}
		So(paid.Allow(restricted), ShouldBeNil)
	})

	Convey("A vetoing gate stops Open before any adapter exists", t, func() {
		s := New(router.New((&engines{}).factory, nil), WithGate(GateFunc(func(source.Descriptor) error {
			return ErrVetoed
		})))
		_, err := s.Open("https://example.com/video.mp4")
		So(err, ShouldEqual, ErrVetoed)
		So(s.Controller(), ShouldBeNil)
	})
}

func TestSurfaceOwnership(t *testing.T) {
	Convey("Given a session that mounts its own surface", t, func() {
		var mounted []*surface
		s := New(router.New((&engines{}).factory, nil),
			WithClock(clock.NewFake()),
			WithSurfaceFactory(func() (renderer.Surface, error) {
				sf := &surface{}
				mounted = append(mounted, sf)
				return sf, nil
			}),
		)
		Reset(func() { _ = s.Close() })

		Convey("The surface is mounted once and reused", func() {
			_, err := s.Open("https://vimeo.com/76979871")
			So(err, ShouldBeNil)
			_, err = s.Open("https://vimeo.com/22439234")
			So(err, ShouldBeNil)
			So(mounted, ShouldHaveLength, 1)
			So(eventually(func() bool { return len(mounted[0].navigations()) == 2 }), ShouldBeTrue)
		})

		Convey("Native sources mount nothing", func() {
			_, err := s.Open("https://example.com/video.mp4")
			So(err, ShouldBeNil)
			So(mounted, ShouldBeEmpty)
		})

		Convey("Close closes the mounted surface", func() {
			_, err := s.Open("https://vimeo.com/76979871")
			So(err, ShouldBeNil)
			So(s.Close(), ShouldBeNil)
			So(mounted[0].closes(), ShouldEqual, 1)
		})

		Convey("Attaching a surface closes the mounted one", func() {
			_, err := s.Open("https://vimeo.com/76979871")
			So(err, ShouldBeNil)

			attached := &surface{}
			s.AttachSurface(attached)
			So(mounted[0].closes(), ShouldEqual, 1)

			_, err = s.Open("https://vimeo.com/22439234")
			So(err, ShouldBeNil)
			So(mounted, ShouldHaveLength, 1)
			So(eventually(func() bool { return len(attached.navigations()) == 1 }), ShouldBeTrue)

			So(s.Close(), ShouldBeNil)
			So(attached.closes(), ShouldEqual, 0)
			So(mounted[0].closes(), ShouldEqual, 1)
		})

		Convey("Attaching the same surface again closes nothing", func() {
			attached := &surface{}
			s.AttachSurface(attached)
			s.AttachSurface(attached)
			So(attached.closes(), ShouldEqual, 0)
		})

		Convey("A failing factory fails Open", func() {
			s = New(router.New((&engines{}).factory, nil),
				WithSurfaceFactory(func() (renderer.Surface, error) { return nil, errors.New("no browser") }),
			)
			_, err := s.Open("https://vimeo.com/76979871")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "no browser")
		})
	})
}

func TestOnError(t *testing.T) {
	Convey("Given a session with an error callback", t, func() {
		So(history.Clear(), ShouldBeNil)
		es := &engines{}
		fake := clock.NewFake()
		errs := make(chan error, 8)
		s := New(router.New(es.factory, nil),
			WithClock(fake),
			WithPolicy(resilience.Policy{MaxRetries: 1, LoadTimeout: 30 * time.Second}),
			WithIntervals(250*time.Millisecond, time.Second),
			WithOnError(func(err error) { errs <- err }),
		)
		Reset(func() { _ = s.Close() })

		next := func() error {
			select {
			case err := <-errs:
				return err
			case <-time.After(2 * time.Second):
				return nil
			}
		}

		Convey("A playback error after ready is reported", func() {
			_, err := s.Open("https://example.com/video.mp4")
			So(err, ShouldBeNil)
			So(eventually(func() bool { return s.Status().State == control.StatePlaying }), ShouldBeTrue)

			es.get("https://example.com/video.mp4").fail(errors.New("decoder gave up"))
			fake.Advance(250 * time.Millisecond)

			var playback *control.PlaybackError
			So(errors.As(next(), &playback), ShouldBeTrue)
			So(s.Status().State, ShouldEqual, control.StateError)
		})

		Convey("An exhausted load is reported once", func() {
			es.get("https://example.com/gone.mp4").openErr = &control.HTTPError{Code: 404}
			_, err := s.Open("https://example.com/gone.mp4")
			So(err, ShouldBeNil)

			var failure *resilience.Failure
			So(errors.As(next(), &failure), ShouldBeTrue)
			So(failure.Category, ShouldEqual, resilience.CategoryNotFound)
			So(len(errs), ShouldEqual, 0)
		})

		Convey("Errors of a replaced source are dropped", func() {
			_, err := s.Open("https://example.com/first.mp4")
			So(err, ShouldBeNil)
			So(eventually(func() bool { return s.Status().State == control.StatePlaying }), ShouldBeTrue)
			_, err = s.Open("https://example.com/second.mp4")
			So(err, ShouldBeNil)

			es.get("https://example.com/first.mp4").fail(errors.New("decoder gave up"))
			fake.Advance(250 * time.Millisecond)
			So(len(errs), ShouldEqual, 0)
		})
	})
}

func TestDisposedAdapter(t *testing.T) {
	Convey("Disposing a native adapter directly stops its retry sequence", t, func() {
		es := &engines{}
		fake := clock.NewFake()
		desc := source.Classify("https://example.com/flaky.mp4")
		es.get(desc.Target).openErr = &control.HTTPError{Code: 503}

		adapter := router.New(es.factory, nil).CreateAdapter(desc, nil, control.WithClock(fake))
		settled := make(chan *resilience.Failure, 8)
		e := resilience.New(adapter, desc,
			resilience.WithPolicy(resilience.Policy{MaxRetries: 4, LoadTimeout: 30 * time.Second, Backoff: time.Second}),
			resilience.WithClock(fake),
			resilience.WithOnSettled(func(f *resilience.Failure) { settled <- f }),
		)
		e.Start()
		So(eventually(func() bool { return e.Session().Retries == 1 }), ShouldBeTrue)

		So(adapter.Dispose(), ShouldBeNil)
		for i := 0; i < 20; i++ {
			fake.Advance(40 * time.Second)
		}
		time.Sleep(20 * time.Millisecond)

		So(es.get(desc.Target).openCount(), ShouldEqual, 1)
		So(len(settled), ShouldEqual, 0)
		So(e.Session().Attempts, ShouldEqual, 0)
		So(fake.Pending(), ShouldEqual, 0)
	})
}
