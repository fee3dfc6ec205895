package player

import "github.com/reelmark/reelmark/control"

// inferState derives the coarse state from an engine reading. prev is the
// state before this reading; it keeps ready distinct from paused until the
// first play.
func inferState(prev control.State, e EngineState) control.State {
	switch {
	case prev == control.StateError:
		return control.StateError
	case e.Idle && !e.EOF:
		return control.StateIdle
	case e.Buffering && !e.Paused:
		return control.StateBuffering
	case !e.Paused:
		if e.EOF {
			return control.StateEnded
		}
		return control.StatePlaying
	case e.EOF, e.Duration > 0 && e.Position >= e.Duration:
		return control.StateEnded
	case prev == control.StateReady:
		return control.StateReady
	default:
		return control.StatePaused
	}
}
