package convert

import (
	"context"
	"errors"
	"sync"

	"adconvert/internal/engine"
)

type fakeEngine struct {
	mu       sync.Mutex
	loadErr  error
	writeErr error
	readErr  error
	loads    int
	files    map[string][]byte
	execArgs [][]string
	deleted  []string
	closed   bool
	exec     func(ctx context.Context, args []string, events chan<- engine.Event) error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{files: make(map[string][]byte)}
}

func (f *fakeEngine) Load(context.Context, engine.Resources) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.loadErr
}

func (f *fakeEngine) WriteFile(_ context.Context, name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.files[name] = append([]byte(nil), data...)
	return nil
}

func (f *fakeEngine) Exec(ctx context.Context, args []string, events chan<- engine.Event) error {
	f.mu.Lock()
	f.execArgs = append(f.execArgs, append([]string(nil), args...))
	exec := f.exec
	f.mu.Unlock()
	if exec != nil {
		if err := exec(ctx, args, events); err != nil {
			return err
		}
	}
	f.mu.Lock()
	f.files[args[len(args)-1]] = []byte("mp4:" + args[len(args)-1])
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) ReadFile(_ context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	data, ok := f.files[name]
	if !ok {
		return nil, errors.New("no such file: " + name)
	}
	return append([]byte(nil), data...), nil
}

func (f *fakeEngine) DeleteFile(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, name)
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeEngine) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func (f *fakeEngine) outputs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for name := range f.files {
		if name != InputName {
			names = append(names, name)
		}
	}
	return names
}
