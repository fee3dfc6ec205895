package intent

import (
	"fmt"

	"github.com/reelmark/reelmark/control"
)

// Steps are the increments used by relative commands.
type Steps struct {
	Seek   float64
	Volume float64
	Rate   float64
}

// DefaultSteps skip 10 seconds, change volume by a tenth and speed by a quarter.
func DefaultSteps() Steps {
	return Steps{Seek: 10, Volume: 0.1, Rate: 0.25}
}

// Apply issues the control calls for in using the default steps.
func Apply(c control.Controller, in Intent) error {
	return DefaultSteps().Apply(c, in)
}

// Apply issues the control calls for in. Out-of-range values are clamped by
// the controller.
func (s Steps) Apply(c control.Controller, in Intent) error {
	status := c.Status()
	value := in.Value.OrElse(0)

	switch in.Action {
	case ActionPlay:
		return c.Play()
	case ActionPause:
		return c.Pause()
	case ActionToggle:
		return control.TogglePlay(c)
	case ActionStop:
		return c.Stop()
	case ActionForward:
		return control.Forward(c, in.Value.OrElse(s.Seek))
	case ActionRewind:
		return control.Rewind(c, in.Value.OrElse(s.Seek))
	case ActionSeek:
		return c.Seek(value)
	case ActionVolume:
		return c.SetVolume(value)
	case ActionVolumeUp:
		return c.SetVolume(status.Volume + s.Volume)
	case ActionVolumeDown:
		return c.SetVolume(status.Volume - s.Volume)
	case ActionMute:
		return c.SetMuted(true)
	case ActionUnmute:
		return c.SetMuted(false)
	case ActionToggleMute:
		return control.ToggleMute(c)
	case ActionFaster:
		return c.SetPlaybackRate(status.PlaybackRate + s.Rate)
	case ActionSlower:
		return c.SetPlaybackRate(status.PlaybackRate - s.Rate)
	case ActionSpeed:
		return c.SetPlaybackRate(value)
	case ActionFullscreen:
		return c.EnterFullscreen()
	case ActionExitFullscreen:
		return c.ExitFullscreen()
	case ActionToggleFullscreen:
		return control.ToggleFullscreen(c)
	default:
		return fmt.Errorf("unknown action %q", in.Action)
	}
}
