package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/resilience"
	"github.com/reelmark/reelmark/source"
	. "github.com/smartystreets/goconvey/convey"
)

type memory struct {
	*control.Core
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

type fakePlayer struct {
	ctrl    *memory
	openErr error
	opened  []string
}

func newFakePlayer() *fakePlayer {
	status := control.InitialStatus(0.5).WithState(control.StatePaused).WithPosition(100, 1000)
	return &fakePlayer{ctrl: &memory{Core: control.NewCore(status, nil)}}
}

func (p *fakePlayer) Open(input string) (source.Descriptor, error) {
	p.opened = append(p.opened, input)
	return source.Classify(input), p.openErr
}

func (p *fakePlayer) Controller() control.Controller { return p.ctrl }

func (p *fakePlayer) Backend() (control.Backend, bool) { return control.BackendNative, true }

func (p *fakePlayer) Retries() resilience.RetrySession { return resilience.RetrySession{} }

func (p *fakePlayer) Subscribe(l control.Listener) func() { return p.ctrl.Subscribe(l) }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeys(t *testing.T) {
	Convey("Given a player view over a paused source", t, func() {
		player := newFakePlayer()
		m := newModel(&Options{Input: "https://example.com/a.mp4", Player: player})
		status := func() control.Status { return player.ctrl.Status() }

		Convey("Space should toggle playback", func() {
			m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			So(status().State, ShouldEqual, control.StatePlaying)
			m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			So(status().State, ShouldEqual, control.StatePaused)
		})

		Convey("Arrows should skip and change volume", func() {
			m.Update(tea.KeyMsg{Type: tea.KeyRight})
			So(status().CurrentTime, ShouldEqual, 110)
			m.Update(tea.KeyMsg{Type: tea.KeyLeft})
			m.Update(tea.KeyMsg{Type: tea.KeyLeft})
			So(status().CurrentTime, ShouldEqual, 90)
			m.Update(tea.KeyMsg{Type: tea.KeyUp})
			So(status().Volume, ShouldAlmostEqual, 0.6)
		})

		Convey("Letter keys should toggle flags and speed", func() {
			m.Update(runes("m"))
			So(status().Muted, ShouldBeTrue)
			m.Update(runes("f"))
			So(status().Fullscreen, ShouldBeTrue)
			m.Update(runes("]"))
			So(status().PlaybackRate, ShouldEqual, 1.25)
		})

		Convey("The command prompt should parse and apply typed commands", func() {
			m.Update(runes(":"))
			So(m.keymap.prompting, ShouldBeTrue)

			m.inputC.SetValue("seek 2:00")
			m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			So(m.keymap.prompting, ShouldBeFalse)
			So(status().CurrentTime, ShouldEqual, 120)
			So(m.notice, ShouldEqual, "seek 120")

			m.Update(runes(":"))
			m.inputC.SetValue("sing a song")
			m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			So(m.notice, ShouldContainSubstring, "unknown command")
		})

		Convey("Escape should leave the prompt without running anything", func() {
			m.Update(runes(":"))
			m.inputC.SetValue("mute")
			m.Update(tea.KeyMsg{Type: tea.KeyEsc})
			So(m.keymap.prompting, ShouldBeFalse)
			So(status().Muted, ShouldBeFalse)
		})

		Convey("Commands on a disposed controller should surface the error", func() {
			So(player.ctrl.Dispose(), ShouldBeNil)
			m.Update(runes("s"))
			So(m.notice, ShouldEqual, control.ErrDisposed.Error())
		})

		Convey("q should quit", func() {
			_, cmd := m.Update(runes("q"))
			So(cmd, ShouldNotBeNil)
			So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
		})
	})
}

func TestMessages(t *testing.T) {
	Convey("Given a player view", t, func() {
		player := newFakePlayer()
		m := newModel(&Options{Input: "https://example.com/a.mp4", Player: player})

		Convey("Opening should run through the player", func() {
			msg := m.open()()
			m.Update(msg)
			So(player.opened, ShouldResemble, []string{"https://example.com/a.mp4"})
			So(m.opening, ShouldBeFalse)
			So(m.desc.IsPresent(), ShouldBeTrue)
			So(m.View(), ShouldContainSubstring, "paused")
		})

		Convey("An open failure should be rendered", func() {
			player.openErr = errors.New("boom")
			m.Update(m.open()())
			So(m.err, ShouldNotBeNil)
			So(m.View(), ShouldContainSubstring, "boom")
		})

		Convey("Published snapshots should reach the view", func() {
			So(player.ctrl.Play(), ShouldBeNil)
			msg := m.waitForStatus()()
			m.Update(msg)
			So(m.status.State, ShouldEqual, control.StatePlaying)
		})

		Convey("A slow view should only drop old snapshots", func() {
			for i := 0; i < statusBuffer*2; i++ {
				So(player.ctrl.Seek(float64(i)), ShouldBeNil)
			}
			var last control.Status
			for len(m.updates) > 0 {
				last = control.Status(m.waitForStatus()().(statusMsg))
			}
			So(last.CurrentTime, ShouldEqual, statusBuffer*2-1)
		})

		Convey("A status error should be rendered", func() {
			m.Update(m.open()())
			m.Update(statusMsg(control.InitialStatus(1).WithError("Source not found")))
			So(m.View(), ShouldContainSubstring, "Source not found")
		})
	})
}
