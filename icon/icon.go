// Package icon renders playback symbols in the variant chosen by the user.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII, kaomoji,
// or Unicode squares.
package icon

import (
	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants returns all icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get returns the rendered symbol for i, or an empty string for unknown icons.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.get()
}

// ForState picks the icon describing a playback state.
func ForState(s control.State) Icon {
	switch s {
	case control.StatePlaying:
		return Play
	case control.StatePaused, control.StateReady:
		return Pause
	case control.StateLoading, control.StateBuffering:
		return Loading
	case control.StateEnded:
		return Ended
	case control.StateError:
		return Fail
	default:
		return Idle
	}
}
