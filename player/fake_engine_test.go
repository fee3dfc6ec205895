package player

import (
	"context"
	"errors"
	"sync"
)

type fakeEngine struct {
	mu       sync.Mutex
	state    EngineState
	openErr  error
	snapErr  error
	opened   []string
	seeks    []float64
	volumes  []float64
	stopped  int
	closed   int
	blockCtx bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{state: EngineState{Paused: true, Volume: 100, Speed: 1}}
}

func (f *fakeEngine) Open(ctx context.Context, target string, _ map[string]string) error {
	f.mu.Lock()
	f.opened = append(f.opened, target)
	block, err := f.blockCtx, f.openErr
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (f *fakeEngine) SetPaused(paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Paused = paused
	return nil
}

func (f *fakeEngine) Seek(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	f.state.Position = seconds
	return nil
}

func (f *fakeEngine) SetVolume(percent float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumes = append(f.volumes, percent)
	f.state.Volume = percent
	return nil
}

func (f *fakeEngine) SetSpeed(rate float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Speed = rate
	return nil
}

func (f *fakeEngine) SetMuted(muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Muted = muted
	return nil
}

func (f *fakeEngine) SetFullscreen(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Fullscreen = on
	return nil
}

func (f *fakeEngine) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return nil
}

func (f *fakeEngine) Snapshot() (EngineState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.snapErr
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return errors.New("already gone")
}

func (f *fakeEngine) set(fn func(*EngineState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.state)
}

type fakeProber struct {
	err   error
	calls int
}

func (p *fakeProber) Probe(context.Context, string) error {
	p.calls++
	return p.err
}
