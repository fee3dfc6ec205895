package control

import (
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// memory is a minimal Controller backed only by a Core.
type memory struct {
	*Core
}

func newMemory() *memory {
	return &memory{Core: NewCore(InitialStatus(1), nil)}
}

func (m *memory) set(fn func(Status) Status) error {
	if err := m.Alive(); err != nil {
		return err
	}
	m.Update(fn)
	return nil
}

func (m *memory) Play() error {
	return m.set(func(s Status) Status { return s.WithState(StatePlaying) })
}
func (m *memory) Pause() error {
	return m.set(func(s Status) Status { return s.WithState(StatePaused) })
}
func (m *memory) Stop() error { return m.set(func(s Status) Status { return s.WithState(StateIdle) }) }
func (m *memory) Seek(t float64) error {
	return m.set(func(s Status) Status { return s.WithPosition(t, s.Duration) })
}
func (m *memory) SetVolume(v float64) error {
	return m.set(func(s Status) Status { s.Volume = ClampVolume(v); return s })
}
func (m *memory) SetPlaybackRate(r float64) error {
	return m.set(func(s Status) Status { s.PlaybackRate = ClampRate(r); return s })
}
func (m *memory) SetMuted(muted bool) error {
	return m.set(func(s Status) Status { s.Muted = muted; return s })
}
func (m *memory) EnterFullscreen() error {
	return m.set(func(s Status) Status { s.Fullscreen = true; return s })
}
func (m *memory) ExitFullscreen() error {
	return m.set(func(s Status) Status { s.Fullscreen = false; return s })
}
func (m *memory) Dispose() error { m.Core.Dispose(); return nil }

var _ Controller = (*memory)(nil)

func TestClamp(t *testing.T) {
	Convey("Clamping helpers", t, func() {
		So(ClampVolume(-1), ShouldEqual, 0)
		So(ClampVolume(5), ShouldEqual, 1)
		So(ClampRate(0.1), ShouldEqual, MinRate)
		So(ClampRate(3), ShouldEqual, MaxRate)
		So(ClampSeek(150, 100), ShouldEqual, 100)
		So(ClampSeek(-4, 100), ShouldEqual, 0)
		So(ClampSeek(500, 0), ShouldEqual, 500)
	})
}

func TestDerived(t *testing.T) {
	Convey("Given a controller with a known duration", t, func() {
		m := newMemory()
		m.Update(func(s Status) Status { return s.WithState(StatePlaying).WithPosition(50, 100) })

		Convey("Forward and Rewind clamp through Seek", func() {
			So(Forward(m, 30), ShouldBeNil)
			So(m.Status().CurrentTime, ShouldEqual, 80)
			So(Forward(m, 100), ShouldBeNil)
			So(m.Status().CurrentTime, ShouldEqual, 100)
			So(Rewind(m, 500), ShouldBeNil)
			So(m.Status().CurrentTime, ShouldEqual, 0)
		})

		Convey("Toggles flip the current flags", func() {
			So(ToggleMute(m), ShouldBeNil)
			So(m.Status().Muted, ShouldBeTrue)
			So(ToggleMute(m), ShouldBeNil)
			So(m.Status().Muted, ShouldBeFalse)

			So(ToggleFullscreen(m), ShouldBeNil)
			So(m.Status().Fullscreen, ShouldBeTrue)

			So(TogglePlay(m), ShouldBeNil)
			So(m.Status().State, ShouldEqual, StatePaused)
		})

		Convey("Commands after dispose report ErrDisposed", func() {
			So(m.Dispose(), ShouldBeNil)
			So(m.Dispose(), ShouldBeNil)
			So(errors.Is(m.Play(), ErrDisposed), ShouldBeTrue)
		})
	})
}

func TestStatus(t *testing.T) {
	Convey("Status invariants", t, func() {
		s := InitialStatus(2)
		So(s.Volume, ShouldEqual, 1)
		So(s.Validate(), ShouldBeNil)

		failed := s.WithError("boom")
		So(failed.Validate(), ShouldBeNil)
		So(failed.WithState(StateLoading).Error.IsPresent(), ShouldBeFalse)

		So(s.WithPosition(120, 100).CurrentTime, ShouldEqual, 100)

		bad := s
		bad.State = StateError
		So(bad.Validate(), ShouldNotBeNil)
	})
}

func TestHub(t *testing.T) {
	Convey("Given a hub", t, func() {
		var h Hub

		Convey("Listeners receive snapshots in publish order", func() {
			var got []float64
			h.Subscribe(func(s Status) { got = append(got, s.CurrentTime) })
			for i := 1; i <= 3; i++ {
				h.Publish(Status{CurrentTime: float64(i)})
			}
			So(got, ShouldResemble, []float64{1, 2, 3})
		})

		Convey("A listener that publishes does not reorder delivery", func() {
			var got []float64
			h.Subscribe(func(s Status) {
				got = append(got, s.CurrentTime)
				if s.CurrentTime == 1 {
					h.Publish(Status{CurrentTime: 3})
				}
			})
			h.Subscribe(func(s Status) {
				if s.CurrentTime == 1 {
					got = append(got, 2)
				}
			})
			h.Publish(Status{CurrentTime: 1})
			So(got, ShouldResemble, []float64{1, 2, 3})
		})

		Convey("Unsubscribed and closed hubs deliver nothing", func() {
			count := 0
			unsubscribe := h.Subscribe(func(Status) { count++ })
			h.Publish(Status{})
			unsubscribe()
			unsubscribe()
			h.Publish(Status{})
			So(count, ShouldEqual, 1)

			h.Subscribe(func(Status) { count++ })
			h.Close()
			h.Publish(Status{})
			So(count, ShouldEqual, 1)
		})

		Convey("Concurrent publishers deliver every snapshot exactly once", func() {
			var mu sync.Mutex
			seen := map[float64]int{}
			h.Subscribe(func(s Status) {
				mu.Lock()
				seen[s.CurrentTime]++
				mu.Unlock()
			})

			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					h.Publish(Status{CurrentTime: float64(i)})
				}(i)
			}
			wg.Wait()
			h.flush()

			mu.Lock()
			defer mu.Unlock()
			So(len(seen), ShouldEqual, 50)
			for _, n := range seen {
				So(n, ShouldEqual, 1)
			}
		})
	})
}

func TestCoreRefresh(t *testing.T) {
	Convey("Refresh only publishes changes", t, func() {
		c := NewCore(InitialStatus(1), nil)
		var got []Status
		c.Subscribe(func(s Status) { got = append(got, s) })

		_, changed := c.Refresh(func(s Status) Status { return s })
		So(changed, ShouldBeFalse)
		So(got, ShouldBeEmpty)

		_, changed = c.Refresh(func(s Status) Status { return s.WithPosition(3, 10) })
		So(changed, ShouldBeTrue)
		So(got, ShouldHaveLength, 1)

		c.Dispose()
		_, changed = c.Refresh(func(s Status) Status { return s.WithPosition(4, 10) })
		So(changed, ShouldBeFalse)
		So(c.Status().CurrentTime, ShouldEqual, 3)
	})

	Convey("Fail uses the describer", t, func() {
		c := NewCore(InitialStatus(1), func(err error) string { return "nope: " + err.Error() })
		c.Fail(errors.New("boom"))
		So(c.Status().State, ShouldEqual, StateError)
		So(c.Status().Error.MustGet(), ShouldEqual, "nope: boom")
		So(c.Status().Validate(), ShouldBeNil)
	})

	Convey("Fail hands the error to the callback until disposed", t, func() {
		var got []error
		c := NewCore(InitialStatus(1), nil).NotifyErrors(func(err error) { got = append(got, err) })
		boom := errors.New("boom")
		c.Fail(boom)
		So(got, ShouldResemble, []error{boom})

		c.Dispose()
		c.Fail(errors.New("late"))
		So(got, ShouldHaveLength, 1)
	})

	Convey("WithOnError reaches the options", t, func() {
		called := false
		o := NewOptions(time.Second, WithOnError(func(error) { called = true }))
		o.OnError(nil)
		So(called, ShouldBeTrue)
	})
}
