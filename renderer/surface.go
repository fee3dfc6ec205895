// Package renderer implements the embedded-renderer backend: a browser
// surface that hosts the platform's own player page, driven by injected
// control scripts.
package renderer

import "context"

// Surface is a live embedded web surface.
type Surface interface {
	// Navigate opens url and waits for the page to load. It returns the HTTP
	// status of the main document, or 0 when none was observed.
	Navigate(ctx context.Context, url string) (int, error)

	// Eval runs a JavaScript function expression with args and returns its
	// string result.
	Eval(ctx context.Context, script string, args ...interface{}) (string, error)

	Close() error
}
