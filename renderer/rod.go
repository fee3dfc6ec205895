package renderer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/reelmark/reelmark/log"
)

// documentStatusWait bounds how long Navigate waits for the main document's
// response event after the page reported load.
const documentStatusWait = 2 * time.Second

// RodOptions configure the browser behind a RodSurface.
type RodOptions struct {
	Headless bool
	// Bin is the browser executable. Empty lets the launcher find or fetch one.
	Bin     string
	DataDir string
}

// RodSurface is a Surface backed by a Chromium tab driven over CDP.
type RodSurface struct {
	browser *rod.Browser
	page    *rod.Page

	closeOnce sync.Once
}

// NewRodSurface launches a browser and opens a blank tab.
func NewRodSurface(opts RodOptions) (*RodSurface, error) {
	l := launcher.New().
		Headless(opts.Headless).
		Set("autoplay-policy", "no-user-gesture-required")
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.DataDir != "" {
		l = l.UserDataDir(opts.DataDir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	return &RodSurface{browser: browser, page: page}, nil
}

// Navigate loads url and captures the main document's HTTP status from the
// network domain.
func (s *RodSurface) Navigate(ctx context.Context, url string) (int, error) {
	page := s.page.Context(ctx)

	statusCh := make(chan int, 1)
	listenCtx, stopListening := context.WithCancel(ctx)
	defer stopListening()

	wait := page.Context(listenCtx).EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		statusCh <- e.Response.Status
		return true
	})
	go wait()

	if err := page.Navigate(url); err != nil {
		return 0, fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return 0, fmt.Errorf("wait load: %w", err)
	}

	select {
	case status := <-statusCh:
		return status, nil
	case <-time.After(documentStatusWait):
		log.Debugf("renderer: no document response observed for %s", url)
		return 0, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Eval runs script in the current page.
func (s *RodSurface) Eval(ctx context.Context, script string, args ...interface{}) (string, error) {
	res, err := s.page.Context(ctx).Eval(script, args...)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// Close shuts down the browser. Calling it more than once is safe.
func (s *RodSurface) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.browser.Close()
	})
	return err
}
