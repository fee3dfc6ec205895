// Package tui is the terminal player view: it opens one source in a session
// and maps keys and typed commands onto the active controller.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/intent"
	"github.com/reelmark/reelmark/resilience"
	"github.com/reelmark/reelmark/source"
)

// Player is the part of a session the view drives.
type Player interface {
	Open(input string) (source.Descriptor, error)
	Controller() control.Controller
	Backend() (control.Backend, bool)
	Retries() resilience.RetrySession
	Subscribe(listener control.Listener) func()
}

// Options configure the player view.
type Options struct {
	Input  string
	Player Player
	Steps  intent.Steps
}

// Run opens options.Input and blocks until the user quits.
func Run(options *Options) error {
	model := newModel(options)
	defer model.unsubscribe()

	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
