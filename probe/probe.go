// Package probe checks that a native-path source is reachable before the
// media engine is asked to open it. The engine does not expose HTTP status
// codes, so the probe is where 403s, 404s and 5xxs are observed, along with
// HLS manifests too broken to play.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/grafov/m3u8"
	"github.com/reelmark/reelmark/constant"
	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/filesystem"
	"github.com/reelmark/reelmark/internal/cache"
	"github.com/reelmark/reelmark/log"
	"github.com/reelmark/reelmark/source"
)

const (
	// maxManifestBytes caps how much of a manifest is read for validation.
	maxManifestBytes = 4 << 20

	// reachableTTL is how long a successful probe is remembered.
	reachableTTL = 10 * time.Minute

	cacheNamespace = "probe"
)

// Prober implements player.Prober over HTTP.
type Prober struct {
	client   *http.Client
	useCache bool
}

// Option configures a Prober.
type Option func(*Prober)

// WithCache remembers successful probes for a short while.
func WithCache(enabled bool) Option {
	return func(p *Prober) { p.useCache = enabled }
}

// New returns a prober that issues requests through client.
func New(client *http.Client, opts ...Option) *Prober {
	p := &Prober{client: client}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type record struct {
	Status int `json:"status"`
}

// Probe returns nil when target looks playable. Failures are
// *control.HTTPError, control.ErrSourceNotFound, control.ErrMalformedStream or
// a transport error.
func (p *Prober) Probe(ctx context.Context, target string) error {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return probeLocal(target)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return probeLocal(u.Path)
	case "http", "https":
	default:
		// content://, rtmp:// and rtsp:// cannot be checked from here.
		return nil
	}

	key := cache.GenerateKey(target, cacheNamespace)
	if p.useCache {
		var r record
		if cache.Read(key, reachableTTL, &r) {
			log.Debugf("probe: %s reachable (cached)", target)
			return nil
		}
	}

	manifest := source.Classify(target).IsAdaptive(source.FormatHLS)
	if err := p.fetch(ctx, target, manifest); err != nil {
		return err
	}

	if p.useCache {
		if err := cache.Write(key, record{Status: http.StatusOK}); err != nil {
			log.Warnf("probe: cache write: %v", err)
		}
	}
	return nil
}

func (p *Prober) fetch(ctx context.Context, target string, manifest bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("Accept", "*/*")
	if !manifest {
		// A single byte is enough to learn the status without downloading media.
		req.Header.Set("Range", "bytes=0-0")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &control.HTTPError{Code: resp.StatusCode, URL: target}
	}
	if !manifest {
		return nil
	}
	return validateManifest(io.LimitReader(resp.Body, maxManifestBytes))
}

// validateManifest rejects playlists the engine would fail on.
func validateManifest(r io.Reader) error {
	playlist, listType, err := m3u8.DecodeFrom(r, true)
	if err != nil {
		return fmt.Errorf("%w: %v", control.ErrMalformedStream, err)
	}

	switch listType {
	case m3u8.MASTER:
		master, ok := playlist.(*m3u8.MasterPlaylist)
		if !ok || len(master.Variants) == 0 {
			return fmt.Errorf("%w: master playlist has no variants", control.ErrMalformedStream)
		}
	case m3u8.MEDIA:
		media, ok := playlist.(*m3u8.MediaPlaylist)
		if !ok || media.Count() == 0 && media.Closed {
			return fmt.Errorf("%w: media playlist has no segments", control.ErrMalformedStream)
		}
	}
	return nil
}

func probeLocal(path string) error {
	if _, err := filesystem.API().Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", control.ErrSourceNotFound, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return nil
}
