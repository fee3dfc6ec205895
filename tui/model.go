package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/intent"
	"github.com/reelmark/reelmark/source"
	"github.com/reelmark/reelmark/style"
	"github.com/reelmark/reelmark/util"
	"github.com/samber/mo"
)

// statusBuffer bounds the snapshots queued between the session and the view.
// Older snapshots are dropped when the view falls behind; only the newest
// matters for rendering.
const statusBuffer = 16

type model struct {
	options *Options
	keymap  *keymap

	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model
	inputC    textinput.Model

	updates     chan control.Status
	unsubscribe func()

	desc    mo.Option[source.Descriptor]
	status  control.Status
	opening bool
	notice  string
	err     error

	width, height int
}

func newModel(options *Options) *model {
	if options.Steps == (intent.Steps{}) {
		options.Steps = intent.DefaultSteps()
	}

	m := &model{
		options: options,
		keymap:  newKeymap(),
		updates: make(chan control.Status, statusBuffer),
		status:  control.InitialStatus(1),
		opening: true,
	}

	m.helpC = help.New()

	m.spinnerC = spinner.New()
	m.spinnerC.Spinner = spinner.Dot
	m.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	m.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	m.inputC = textinput.New()
	m.inputC.Placeholder = "forward 30, volume 50%, speed 1.5 ..."
	m.inputC.CharLimit = 80
	m.inputC.Prompt = ": "

	m.unsubscribe = options.Player.Subscribe(m.push)

	if w, h, err := util.TerminalSize(); err == nil {
		m.resize(w, h)
	}

	return m
}

// push hands a snapshot to the view without ever blocking the publisher.
func (m *model) push(s control.Status) {
	for {
		select {
		case m.updates <- s:
			return
		default:
		}
		select {
		case <-m.updates:
		default:
		}
	}
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	m.helpC.Width = width
	m.progressC.Width = util.Max(10, width-24)
	m.inputC.Width = util.Max(10, width-8)
}
