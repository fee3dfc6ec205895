package control

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrDisposed is returned by commands issued after Dispose.
var ErrDisposed = errors.New("player disposed")

// ErrSourceNotFound reports a local reference that does not exist.
var ErrSourceNotFound = errors.New("source not found")

// ErrMalformedStream reports a manifest or container the backend cannot parse.
var ErrMalformedStream = errors.New("malformed stream")

// HTTPError is a load failure carrying the HTTP status the host answered with.
type HTTPError struct {
	Code int
	URL  string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d %s: %s", e.Code, http.StatusText(e.Code), e.URL)
}

// PlaybackError is a failure raised after the source was already ready.
type PlaybackError struct {
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback failed: %v", e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}
