package intent

import (
	"testing"

	"github.com/reelmark/reelmark/control"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given typed commands", t, func() {
		cases := []struct {
			text   string
			action Action
			value  mo.Option[float64]
		}{
			{"play", ActionPlay, mo.None[float64]()},
			{"Pause.", ActionPause, mo.None[float64]()},
			{"please pause the video", ActionPause, mo.None[float64]()},
			{"stop", ActionStop, mo.None[float64]()},
			{"forward 30", ActionForward, mo.Some(30.0)},
			{"skip ahead 2 minutes", ActionForward, mo.Some(120.0)},
			{"go back 15 seconds", ActionRewind, mo.Some(15.0)},
			{"rewind", ActionRewind, mo.None[float64]()},
			{"seek to 1:30", ActionSeek, mo.Some(90.0)},
			{"volume 50%", ActionVolume, mo.Some(0.5)},
			{"volume 0.3", ActionVolume, mo.Some(0.3)},
			{"volume up", ActionVolumeUp, mo.None[float64]()},
			{"quieter", ActionVolumeDown, mo.None[float64]()},
			{"mute", ActionMute, mo.None[float64]()},
			{"unmute", ActionUnmute, mo.None[float64]()},
			{"speed 1.5x", ActionSpeed, mo.Some(1.5)},
			{"normal speed", ActionSpeed, mo.Some(1.0)},
			{"faster", ActionFaster, mo.None[float64]()},
			{"full screen", ActionFullscreen, mo.None[float64]()},
			{"exit fullscreen", ActionExitFullscreen, mo.None[float64]()},
		}

		for _, c := range cases {
			in, ok := Parse(c.text)
			So(ok, ShouldBeTrue)
			So(in.Action, ShouldEqual, c.action)
			So(in.Value, ShouldResemble, c.value)
		}
	})

	Convey("Given noisy transcriptions", t, func() {
		Convey("Misspellings within tolerance should match", func() {
			in, ok := Parse("paws")
			So(ok, ShouldBeTrue)
			So(in.Action, ShouldEqual, ActionPause)

			in, ok = Parse("fulscreen")
			So(ok, ShouldBeTrue)
			So(in.Action, ShouldEqual, ActionFullscreen)
		})

		Convey("Abbreviations should match", func() {
			in, ok := Parse("vol up")
			So(ok, ShouldBeTrue)
			So(in.Action, ShouldEqual, ActionVolumeUp)
		})

		Convey("Unrelated text should not match", func() {
			_, ok := Parse("what is the weather")
			So(ok, ShouldBeFalse)

			_, ok = Parse("")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Commands that need a number should require one", t, func() {
		_, ok := Parse("seek")
		So(ok, ShouldBeFalse)

		_, ok = Parse("volume")
		So(ok, ShouldBeFalse)

		_, ok = Parse("speed")
		So(ok, ShouldBeFalse)
	})

	Convey("Words that parse as special floats should not count as numbers", t, func() {
		_, ok := parseNumber("inf")
		So(ok, ShouldBeFalse)

		_, ok = parseNumber("nan")
		So(ok, ShouldBeFalse)
	})
}

// memory is a Controller backed only by a Core.
type memory struct {
	*control.Core
}

func newMemory() *memory {
	status := control.InitialStatus(0.5).WithState(control.StatePlaying).WithPosition(60, 600)
	return &memory{Core: control.NewCore(status, nil)}
}

func (m *memory) set(fn func(control.Status) control.Status) error {
	if err := m.Alive(); err != nil {
		return err
	}
	m.Update(fn)
	return nil
}

func (m *memory) Play() error {
	return m.set(func(s control.Status) control.Status { return s.WithState(control.StatePlaying) })
}

func (m *memory) Pause() error {
	return m.set(func(s control.Status) control.Status { return s.WithState(control.StatePaused) })
}

func (m *memory) Stop() error {
	return m.set(func(s control.Status) control.Status { return s.WithState(control.StateIdle) })
}

func (m *memory) Seek(t float64) error {
	return m.set(func(s control.Status) control.Status { return s.WithPosition(t, s.Duration) })
}

func (m *memory) SetVolume(v float64) error {
	return m.set(func(s control.Status) control.Status { s.Volume = control.ClampVolume(v); return s })
}

func (m *memory) SetPlaybackRate(r float64) error {
	return m.set(func(s control.Status) control.Status { s.PlaybackRate = control.ClampRate(r); return s })
}

func (m *memory) SetMuted(muted bool) error {
	return m.set(func(s control.Status) control.Status { s.Muted = muted; return s })
}

func (m *memory) EnterFullscreen() error {
	return m.set(func(s control.Status) control.Status { s.Fullscreen = true; return s })
}

func (m *memory) ExitFullscreen() error {
	return m.set(func(s control.Status) control.Status { s.Fullscreen = false; return s })
}

func (m *memory) Dispose() error {
	m.Core.Dispose()
	return nil
}

func TestApply(t *testing.T) {
	Convey("Given a playing controller at one minute", t, func() {
		m := newMemory()

		run := func(text string) control.Status {
			in, ok := Parse(text)
			So(ok, ShouldBeTrue)
			So(Apply(m, in), ShouldBeNil)
			return m.Status()
		}

		Convey("Pause and play should change state", func() {
			So(run("pause").State, ShouldEqual, control.StatePaused)
			So(run("resume").State, ShouldEqual, control.StatePlaying)
		})

		Convey("Skips should be relative to the current position", func() {
			So(run("forward 30").CurrentTime, ShouldEqual, 90)
			So(run("rewind").CurrentTime, ShouldEqual, 80)
			So(run("go back 5 minutes").CurrentTime, ShouldEqual, 0)
		})

		Convey("Seek should be absolute", func() {
			So(run("jump to 2:00").CurrentTime, ShouldEqual, 120)
		})

		Convey("Volume commands should be clamped", func() {
			So(run("volume 80%").Volume, ShouldAlmostEqual, 0.8)
			So(run("louder").Volume, ShouldAlmostEqual, 0.9)
			So(run("volume 300").Volume, ShouldEqual, 1)
		})

		Convey("Speed commands should be clamped", func() {
			So(run("faster").PlaybackRate, ShouldEqual, 1.25)
			So(run("speed 10").PlaybackRate, ShouldEqual, control.MaxRate)
			So(run("normal speed").PlaybackRate, ShouldEqual, 1)
		})

		Convey("Mute and fullscreen should toggle flags", func() {
			So(run("mute").Muted, ShouldBeTrue)
			So(run("unmute").Muted, ShouldBeFalse)
			So(run("fullscreen").Fullscreen, ShouldBeTrue)
			So(run("exit fullscreen").Fullscreen, ShouldBeFalse)
		})

		Convey("Custom steps should be honoured", func() {
			in, _ := Parse("forward")
			So(Steps{Seek: 45}.Apply(m, in), ShouldBeNil)
			So(m.Status().CurrentTime, ShouldEqual, 105)
		})

		Convey("A disposed controller should refuse", func() {
			So(m.Dispose(), ShouldBeNil)
			So(Apply(m, Intent{Action: ActionPlay}), ShouldEqual, control.ErrDisposed)
		})

		Convey("An unknown action should fail", func() {
			So(Apply(m, Intent{Action: "dance"}), ShouldNotBeNil)
		})
	})
}
