// Package player implements the native playback backend: a media engine that
// decodes files and HLS directly, and the adapter that exposes it through the
// control surface.
package player

import (
	"context"
	"errors"
)

// ErrEngineExited is returned once the engine process has gone away.
var ErrEngineExited = errors.New("media engine exited")

// EngineState is one reading of the engine's properties. Position, Duration
// and Volume use the engine's own units (seconds, seconds, percent).
type EngineState struct {
	Paused     bool
	Idle       bool
	Buffering  bool
	EOF        bool
	Position   float64
	Duration   float64
	Volume     float64
	Muted      bool
	Speed      float64
	Fullscreen bool

	// Failure is set when the engine gave up on the current file.
	Failure error
}

// Engine is a platform media engine able to decode sources directly.
type Engine interface {
	// Open loads target paused and blocks until the engine reports the file as
	// loaded, reports a failure, or ctx is done.
	Open(ctx context.Context, target string, headers map[string]string) error

	SetPaused(paused bool) error
	Seek(seconds float64) error
	SetVolume(percent float64) error
	SetSpeed(rate float64) error
	SetMuted(muted bool) error
	SetFullscreen(on bool) error

	// Stop unloads the current file and leaves the engine idle.
	Stop() error

	// Snapshot reads the engine's current properties.
	Snapshot() (EngineState, error)

	Close() error
}

// Prober checks that a target is reachable before the engine is asked to open it.
type Prober interface {
	Probe(ctx context.Context, target string) error
}
