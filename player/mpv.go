package player

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/reelmark/reelmark/constant"
	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/log"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitGrace         = 3 * time.Second
)

var errNotStarted = errors.New("mpv not started")

// MPV implements Engine using mpv's JSON-IPC protocol. Properties mpv pushes
// are mirrored from the event stream; the rest are read on Snapshot.
type MPV struct {
	title      string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	events     *EventListener
	ipcMu      sync.Mutex // serializes socket writes
	startMu    sync.Mutex

	stateMu sync.Mutex
	mirror  EngineState
	waiter  chan error // pending Open, if any
}

// NewMPV creates an engine that starts mpv lazily on the first Open.
func NewMPV(title string) *MPV {
	return &MPV{
		title:  sanitizeTitle(title),
		exited: make(chan struct{}),
		mirror: EngineState{Idle: true, Volume: 100, Speed: 1},
	}
}

// Open loads target into mpv, starting the process if needed.
func (m *MPV) Open(ctx context.Context, target string, headers map[string]string) error {
	safeTarget, err := sanitizeMediaTarget(target)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if err := m.ensureStarted(); err != nil {
		return err
	}

	waiter := make(chan error, 1)
	m.stateMu.Lock()
	m.waiter = waiter
	m.mirror.Failure = nil
	m.mirror.EOF = false
	m.mirror.Position = 0
	m.mirror.Duration = 0
	m.stateMu.Unlock()

	if _, err := m.sendCommand("set_property", "http-header-fields", headerFields(headers)); err != nil {
		log.Warnf("mpv: set headers: %v", err)
	}
	if _, err := m.sendCommand("set_property", "pause", true); err != nil {
		return fmt.Errorf("pause before load: %w", err)
	}
	if _, err := m.sendCommand("loadfile", safeTarget, "replace"); err != nil {
		return fmt.Errorf("loadfile: %w", err)
	}

	select {
	case err := <-waiter:
		return err
	case <-m.exited:
		return ErrEngineExited
	case <-ctx.Done():
		m.abandon(waiter, func() { _, _ = m.sendCommand("stop") })
		return ctx.Err()
	}
}

// abandon drops waiter and runs stop, unless a newer Open already replaced
// the waiter. stateMu is held across stop so a newer loadfile lands after it.
func (m *MPV) abandon(waiter chan error, stop func()) bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.waiter != waiter {
		return false
	}
	m.waiter = nil
	stop()
	return true
}

// ensureStarted launches mpv in idle mode and attaches the event listener.
func (m *MPV) ensureStarted() error {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	if m.cmd != nil {
		select {
		case <-m.exited:
			return ErrEngineExited
		default:
			return nil
		}
	}

	// os.TempDir() rather than /tmp: macOS $TMPDIR is /var/folders/...
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.App, randomBytes))

	// Only pass what playback control needs; respect the user's mpv.conf otherwise.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
		"--pause=yes",
	}
	if m.title != "" {
		args = append(args,
			fmt.Sprintf("--force-media-title=%s", m.title),
			fmt.Sprintf("--title=%s", m.title), // some mpv builds only respect --title
		)
	}

	cmd := exec.Command("mpv", args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}
	m.cmd = cmd

	exited := m.exited
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.events = NewEventListener(m.socketPath, m.handleEvent)
	if err := m.events.Start(); err != nil {
		return fmt.Errorf("mpv events: %w", err)
	}
	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// handleEvent folds an mpv event into the mirrored state.
func (m *MPV) handleEvent(ev Event) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	switch ev.Name {
	case "pause":
		m.mirror.Paused = asBool(ev.Data)
	case "paused-for-cache":
		m.mirror.Buffering = asBool(ev.Data)
	case "eof-reached":
		m.mirror.EOF = asBool(ev.Data)
	case "idle-active":
		m.mirror.Idle = asBool(ev.Data)
	case "time-pos":
		m.mirror.Position = asFloat(ev.Data)
	case "duration":
		m.mirror.Duration = asFloat(ev.Data)
	case "file-loaded":
		m.mirror.Idle = false
		m.resolveLocked(nil)
	case "end-file":
		if ev.Reason != "error" {
			return
		}
		err := loadFailure(ev.FileError)
		if !m.resolveLocked(err) {
			m.mirror.Failure = err
		}
	}
}

// resolveLocked hands err to a pending Open. It reports whether one was waiting.
func (m *MPV) resolveLocked(err error) bool {
	if m.waiter == nil {
		return false
	}
	m.waiter <- err
	m.waiter = nil
	return true
}

// loadFailure maps mpv's end-file error text onto the shared taxonomy.
func loadFailure(fileError string) error {
	lower := strings.ToLower(fileError)
	switch {
	case strings.Contains(lower, "unrecognized file format"),
		strings.Contains(lower, "no audio or video data"):
		return fmt.Errorf("%w: %s", control.ErrMalformedStream, fileError)
	case strings.Contains(lower, "not found"), strings.Contains(lower, "no such file"):
		return fmt.Errorf("%w: %s", control.ErrSourceNotFound, fileError)
	case fileError == "":
		return errors.New("mpv could not open the file")
	default:
		return fmt.Errorf("mpv: %s", fileError)
	}
}

// Snapshot combines mirrored properties with the ones mpv does not push.
func (m *MPV) Snapshot() (EngineState, error) {
	if !m.running() {
		return EngineState{}, ErrEngineExited
	}

	volume, err := m.getFloatProperty("volume")
	if errors.Is(err, ErrEngineExited) {
		return EngineState{}, err
	}
	speed, _ := m.getFloatProperty("speed")
	muted, _ := m.getBoolProperty("mute")
	fullscreen, _ := m.getBoolProperty("fullscreen")

	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if err == nil {
		m.mirror.Volume = volume
	}
	if speed > 0 {
		m.mirror.Speed = speed
	}
	m.mirror.Muted = muted
	m.mirror.Fullscreen = fullscreen

	return m.mirror, nil
}

func (m *MPV) SetPaused(paused bool) error     { return m.set("pause", paused) }
func (m *MPV) SetVolume(percent float64) error { return m.set("volume", percent) }
func (m *MPV) SetSpeed(rate float64) error     { return m.set("speed", rate) }
func (m *MPV) SetMuted(muted bool) error       { return m.set("mute", muted) }
func (m *MPV) SetFullscreen(on bool) error     { return m.set("fullscreen", on) }

// Seek moves playback to the given absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	if !m.running() {
		return errNotStarted
	}
	_, err := m.sendCommand("seek", seconds, "absolute")
	return err
}

// Stop unloads the current file.
func (m *MPV) Stop() error {
	if !m.running() {
		return nil
	}
	_, err := m.sendCommand("stop")
	return err
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	if m.cmd == nil {
		return nil
	}

	if m.events != nil {
		m.events.Stop()
	}

	select {
	case <-m.exited:
	default:
		// Try graceful quit via IPC
		_, _ = m.sendCommand("quit")

		select {
		case <-m.exited:
		case <-time.After(quitGrace):
			_ = killProcess(m.cmd)
		}
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

func (m *MPV) running() bool {
	m.startMu.Lock()
	started := m.cmd != nil
	m.startMu.Unlock()
	if !started {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

func (m *MPV) set(property string, value interface{}) error {
	if !m.running() {
		return errNotStarted
	}
	_, err := m.sendCommand("set_property", property, value)
	return err
}

// getFloatProperty is a helper to retrieve a float64 mpv property via IPC.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand("get_property", name)
	if err != nil {
		return 0, err
	}
	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}
	return val, nil
}

func (m *MPV) getBoolProperty(name string) (bool, error) {
	data, err := m.sendCommand("get_property", name)
	if err != nil {
		return false, err
	}
	return asBool(data), nil
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

// headerFields renders headers in mpv's comma separated "Name: value" list form.
func headerFields(headers map[string]string) string {
	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, k)
	}
	sort.Strings(names)

	fields := make([]string, 0, len(names))
	for _, k := range names {
		// Commas separate list entries.
		fields = append(fields, fmt.Sprintf("%s: %s", k, strings.ReplaceAll(headers[k], ",", "%2C")))
	}
	return strings.Join(fields, ",")
}

// sanitizeMediaTarget validates that a target is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// URLs must not look like flags
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "rtmp", "rtmps", "rtsp", "rtsps", "content":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

// sanitizeTitle flattens whitespace so the title survives the command line.
func sanitizeTitle(title string) string {
	t := strings.ReplaceAll(title, "\n", " ")
	t = strings.ReplaceAll(t, "\r", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	t = strings.ReplaceAll(t, "\x00", "")
	return strings.TrimSpace(t)
}
