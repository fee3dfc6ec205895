package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/intent"
	"github.com/reelmark/reelmark/log"
	"github.com/reelmark/reelmark/open"
	"github.com/reelmark/reelmark/source"
	"github.com/samber/mo"
)

type statusMsg control.Status

type openedMsg struct {
	desc source.Descriptor
	err  error
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinnerC.Tick, m.open(), m.waitForStatus())
}

func (m *model) open() tea.Cmd {
	input := m.options.Input
	player := m.options.Player
	return func() tea.Msg {
		desc, err := player.Open(input)
		return openedMsg{desc: desc, err: err}
	}
}

func (m *model) waitForStatus() tea.Cmd {
	return func() tea.Msg {
		return statusMsg(<-m.updates)
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case openedMsg:
		m.opening = false
		m.desc = mo.Some(msg.desc)
		m.err = msg.err
		if c := m.options.Player.Controller(); c != nil {
			m.status = c.Status()
		}
		return m, nil
	case statusMsg:
		m.status = control.Status(msg)
		return m, m.waitForStatus()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinnerC, cmd = m.spinnerC.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.forceQuit) {
			return m, tea.Quit
		}
		if m.keymap.prompting {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.cancel):
		m.closePrompt()
		return m, nil
	case key.Matches(msg, m.keymap.confirm):
		text := m.inputC.Value()
		m.closePrompt()
		m.runCommand(text)
		return m, nil
	}

	var cmd tea.Cmd
	m.inputC, cmd = m.inputC.Update(msg)
	return m, cmd
}

func (m *model) closePrompt() {
	m.keymap.prompting = false
	m.inputC.Reset()
	m.inputC.Blur()
}

func (m *model) runCommand(text string) {
	in, ok := intent.Parse(text)
	if !ok {
		m.notice = fmt.Sprintf("unknown command %q", text)
		return
	}
	m.notice = in.String()
	m.apply(in)
}

func (m *model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keymap
	switch {
	case key.Matches(msg, k.quit):
		return m, tea.Quit
	case key.Matches(msg, k.showHelp):
		m.helpC.ShowAll = !m.helpC.ShowAll
	case key.Matches(msg, k.command):
		k.prompting = true
		m.inputC.Focus()
		return m, textinput.Blink
	case key.Matches(msg, k.openURL):
		m.openInBrowser()
	case key.Matches(msg, k.reload):
		m.opening = true
		m.err = nil
		m.notice = ""
		return m, m.open()
	case key.Matches(msg, k.playPause):
		m.apply(intent.Intent{Action: intent.ActionToggle})
	case key.Matches(msg, k.stop):
		m.apply(intent.Intent{Action: intent.ActionStop})
	case key.Matches(msg, k.forward):
		m.apply(intent.Intent{Action: intent.ActionForward})
	case key.Matches(msg, k.rewind):
		m.apply(intent.Intent{Action: intent.ActionRewind})
	case key.Matches(msg, k.volumeUp):
		m.apply(intent.Intent{Action: intent.ActionVolumeUp})
	case key.Matches(msg, k.volumeDown):
		m.apply(intent.Intent{Action: intent.ActionVolumeDown})
	case key.Matches(msg, k.mute):
		m.apply(intent.Intent{Action: intent.ActionToggleMute})
	case key.Matches(msg, k.faster):
		m.apply(intent.Intent{Action: intent.ActionFaster})
	case key.Matches(msg, k.slower):
		m.apply(intent.Intent{Action: intent.ActionSlower})
	case key.Matches(msg, k.fullscreen):
		m.apply(intent.Intent{Action: intent.ActionToggleFullscreen})
	}
	return m, nil
}

func (m *model) apply(in intent.Intent) {
	c := m.options.Player.Controller()
	if c == nil {
		m.notice = "nothing is playing"
		return
	}
	if err := m.options.Steps.Apply(c, in); err != nil {
		log.Warnf("tui: %s: %v", in, err)
		m.notice = err.Error()
	}
}

func (m *model) openInBrowser() {
	desc, ok := m.desc.Get()
	if !ok || desc.Local {
		return
	}
	if err := open.Descriptor(desc); err != nil {
		m.notice = err.Error()
		return
	}
	m.notice = "opened in browser"
}
