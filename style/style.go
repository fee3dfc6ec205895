// Package style holds the lipgloss renderers used by the player view and the
// CLI output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/reelmark/reelmark/color"
	"github.com/reelmark/reelmark/control"
)

// New returns an empty style.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

func colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a renderer that paints text with c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return colored(c, "").Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

var Title = func(s string) string {
	return colored(color.New("230"), color.New("62")).Padding(0, 1).Render(s)
}

var ErrorTitle = func(s string) string {
	return colored(color.New("230"), color.Red).Padding(0, 1).Render(s)
}

// Tag renders s as a padded block.
func Tag(fg, bg lipgloss.Color) func(string) string {
	return func(s string) string { return colored(fg, bg).Padding(0, 1).Render(s) }
}

// State paints a playback state label by how healthy it is.
func State(state control.State) func(string) string {
	switch state {
	case control.StatePlaying:
		return Fg(SuccessColor)
	case control.StateLoading, control.StateBuffering:
		return Fg(WarningColor)
	case control.StateError:
		return Fg(ErrorColor)
	case control.StateEnded, control.StateIdle:
		return Faint
	default:
		return Fg(Text)
	}
}

// Backend renders the tag naming which backend plays the source.
func Backend(backend control.Backend) func(string) string {
	if backend == control.BackendEmbedded {
		return Tag(Base, Peach)
	}
	return Tag(Base, SecondaryColor)
}
