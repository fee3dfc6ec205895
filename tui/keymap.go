package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/reelmark/reelmark/color"
	"github.com/reelmark/reelmark/style"
)

type keymap struct {
	quit, forceQuit,
	playPause, stop,
	forward, rewind,
	volumeUp, volumeDown, mute,
	faster, slower,
	fullscreen,
	command, confirm, cancel,
	openURL, reload,
	showHelp key.Binding

	prompting bool
}

func newKeymap() *keymap {
	return &keymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" ", "k"),
			key.WithHelp(style.Fg(color.Orange)("space"), style.Fg(color.Orange)("play/pause")),
		),
		stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "forward"),
		),
		rewind: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "rewind"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("up", "+"),
			key.WithHelp("↑", "louder"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("down", "-"),
			key.WithHelp("↓", "quieter"),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		faster: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "faster"),
		),
		slower: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "slower"),
		),
		fullscreen: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fullscreen"),
		),
		command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		openURL: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *keymap) ShortHelp() []key.Binding {
	if k.prompting {
		return []key.Binding{k.confirm, k.cancel}
	}
	return []key.Binding{k.playPause, k.forward, k.rewind, k.command, k.showHelp, k.quit}
}

func (k *keymap) FullHelp() [][]key.Binding {
	if k.prompting {
		return [][]key.Binding{k.ShortHelp()}
	}
	return [][]key.Binding{
		{k.playPause, k.stop, k.forward, k.rewind},
		{k.volumeUp, k.volumeDown, k.mute, k.fullscreen},
		{k.faster, k.slower, k.command, k.reload},
		{k.openURL, k.showHelp, k.quit},
	}
}
