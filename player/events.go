package player

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/reelmark/reelmark/log"
)

// Event is one asynchronous notification from mpv: either a property change
// (Name is the property) or a named event such as "file-loaded" or "end-file".
type Event struct {
	Name string
	Data interface{}

	// Reason and FileError are set on end-file events.
	Reason    string
	FileError string
}

// EventCallback receives mpv events in arrival order.
type EventCallback func(Event)

// observed lists the properties mpv pushes on change. Volume, mute, speed and
// fullscreen are not observed and must be read by polling.
var observed = []string{
	"pause",
	"paused-for-cache",
	"eof-reached",
	"idle-active",
	"time-pos",
	"duration",
}

// EventListener keeps a persistent IPC connection open and forwards events.
type EventListener struct {
	socketPath string
	conn       net.Conn
	callback   EventCallback
	stopCh     chan struct{}
	mu         sync.Mutex
	listening  bool
}

// NewEventListener creates a new event listener for the given socket.
func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
		stopCh:     make(chan struct{}),
	}
}

// Start opens the event connection and registers the property observers on it.
// Observers are tied to the client connection, so they must be sent on conn itself.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for id, name := range observed {
		payload, err := json.Marshal(ipcCommand{Command: []interface{}{"observe_property", id + 1, name}})
		if err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true

	go el.readLoop()

	log.Debugf("mpv event listener started on %s (observing: %s)", el.socketPath, strings.Join(observed, ", "))
	return nil
}

// Stop terminates the event listener.
func (el *EventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	close(el.stopCh)
	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

// readLoop reads newline-delimited events from the persistent connection.
func (el *EventListener) readLoop() {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	buf := make([]byte, 4096)
	var remainder []byte

	for {
		select {
		case <-el.stopCh:
			return
		default:
		}

		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := el.conn.Read(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			select {
			case <-el.stopCh:
			default:
				log.Warnf("event listener read error: %v", err)
			}
			return
		}

		data := append(remainder, buf[:n]...)
		remainder = nil

		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			// Last incomplete line goes to remainder for next read
			if i == len(lines)-1 && !strings.HasSuffix(string(data), "\n") {
				remainder = []byte(line)
				continue
			}

			if ev, ok := parseEvent(line); ok && el.callback != nil {
				el.callback(ev)
			}
		}
	}
}

// parseEvent decodes one mpv event line. Command replies are ignored.
func parseEvent(line string) (Event, bool) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Event{}, false
	}

	eventType, ok := raw["event"].(string)
	if !ok {
		return Event{}, false
	}

	switch eventType {
	case "property-change":
		name, _ := raw["name"].(string)
		if name == "" {
			return Event{}, false
		}
		return Event{Name: name, Data: raw["data"]}, true
	case "end-file":
		reason, _ := raw["reason"].(string)
		fileError, _ := raw["file_error"].(string)
		return Event{Name: eventType, Data: raw, Reason: reason, FileError: fileError}, true
	default:
		return Event{Name: eventType, Data: raw}, true
	}
}
