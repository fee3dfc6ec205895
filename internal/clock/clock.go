// Package clock abstracts timers so that polling, load timeouts and retry
// back-off can be driven by a fake clock in tests.
package clock

import (
	"sync"
	"time"
)

// Stopper cancels a scheduled callback. Stop reports whether the callback was
// still pending.
type Stopper interface {
	Stop() bool
}

// Clock schedules one-shot and repeating callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
	Every(d time.Duration, f func()) Stopper
}

// Real is the wall clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Every runs f on its own goroutine each time d elapses until stopped.
// Ticks that arrive while f is still running are dropped.
func (Real) Every(d time.Duration, f func()) Stopper {
	t := &ticker{
		t:    time.NewTicker(d),
		done: make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.t.C:
				f()
			}
		}
	}()
	return t
}

type ticker struct {
	t    *time.Ticker
	done chan struct{}
	once sync.Once
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.t.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}
