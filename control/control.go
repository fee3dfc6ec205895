// Package control defines the backend-independent playback control surface.
// Every adapter implements Controller; callers never learn which backend is active.
package control

import "context"

// Controller is the capability set shared by every playback backend.
//
// Commands return as soon as they are issued. Their visible effect, and any
// failure discovered afterwards, arrives through Subscribe. The only error a
// command reports directly is ErrDisposed.
type Controller interface {
	Play() error
	Pause() error
	Stop() error

	// Seek moves to an absolute position, clamped to [0, duration].
	Seek(seconds float64) error

	// SetVolume clamps to [0, 1].
	SetVolume(volume float64) error

	// SetPlaybackRate clamps to [MinRate, MaxRate].
	SetPlaybackRate(rate float64) error

	SetMuted(muted bool) error
	EnterFullscreen() error
	ExitFullscreen() error

	// Status returns the latest snapshot.
	Status() Status

	// Subscribe registers a listener for every subsequent snapshot, delivered in
	// production order. The returned function removes the listener.
	Subscribe(listener Listener) (unsubscribe func())

	// Dispose stops background work and releases the backend. It is idempotent
	// and never fails because the backend already went away.
	Dispose() error
}

// Backend names the family of an adapter.
type Backend string

const (
	BackendNative   Backend = "native"
	BackendEmbedded Backend = "embedded-renderer"
)

// Adapter is a Controller that can load its source. The load outcome is
// reported exactly once through report: nil when the source became ready,
// the failure otherwise. Timeouts and retries are the caller's concern.
type Adapter interface {
	Controller

	Backend() Backend

	// Load begins loading and returns immediately. It resets the status to
	// loading and clears any previous error. Cancelling ctx abandons the attempt;
	// report must not be called after ctx is done.
	Load(ctx context.Context, report func(err error))

	// Fail moves the adapter to the terminal error state with a user-facing message.
	Fail(err error)

	// Alive returns ErrDisposed once the adapter has been disposed.
	Alive() error
}
