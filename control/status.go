package control

import (
	"fmt"

	"github.com/samber/mo"
)

// State is the coarse playback state.
type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StateReady     State = "ready"
	StatePlaying   State = "playing"
	StatePaused    State = "paused"
	StateBuffering State = "buffering"
	StateEnded     State = "ended"
	StateError     State = "error"
)

// Rate bounds.
const (
	MinRate = 0.25
	MaxRate = 2.0
)

// Status is an immutable snapshot of an adapter's playback state. Adapters
// replace it wholesale; callers only ever receive copies.
type Status struct {
	State        State             `json:"state"`
	CurrentTime  float64           `json:"current_time"`
	Duration     float64           `json:"duration"`
	Volume       float64           `json:"volume"`
	Muted        bool              `json:"muted"`
	PlaybackRate float64           `json:"playback_rate"`
	Fullscreen   bool              `json:"fullscreen"`
	Error        mo.Option[string] `json:"error"`
}

// Listener receives status snapshots.
type Listener func(Status)

// InitialStatus is the status of a freshly created adapter.
func InitialStatus(volume float64) Status {
	return Status{
		State:        StateIdle,
		Volume:       ClampVolume(volume),
		PlaybackRate: 1,
	}
}

// Active reports whether the source is loaded and not in a terminal state.
func (s Status) Active() bool {
	switch s.State {
	case StateReady, StatePlaying, StatePaused, StateBuffering:
		return true
	default:
		return false
	}
}

// Validate checks the snapshot invariants.
func (s Status) Validate() error {
	switch {
	case s.CurrentTime < 0 || s.Duration < 0:
		return fmt.Errorf("negative time: current=%v duration=%v", s.CurrentTime, s.Duration)
	case s.Duration > 0 && s.CurrentTime > s.Duration:
		return fmt.Errorf("current time %v past duration %v", s.CurrentTime, s.Duration)
	case s.Volume < 0 || s.Volume > 1:
		return fmt.Errorf("volume %v out of range", s.Volume)
	case s.PlaybackRate < MinRate || s.PlaybackRate > MaxRate:
		return fmt.Errorf("playback rate %v out of range", s.PlaybackRate)
	case s.Error.IsPresent() != (s.State == StateError):
		return fmt.Errorf("error message presence does not match state %s", s.State)
	}
	return nil
}

// WithError returns a copy in the terminal error state.
func (s Status) WithError(message string) Status {
	s.State = StateError
	s.Error = mo.Some(message)
	return s
}

// WithState returns a copy in state, clearing any error unless state is StateError.
func (s Status) WithState(state State) Status {
	s.State = state
	if state != StateError {
		s.Error = mo.None[string]()
	}
	return s
}

// WithPosition returns a copy with time fields clamped to their invariants.
func (s Status) WithPosition(current, duration float64) Status {
	if duration < 0 || duration != duration {
		duration = 0
	}
	s.Duration = duration
	s.CurrentTime = ClampSeek(current, duration)
	return s
}
