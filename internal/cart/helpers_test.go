package cart

import (
	"context"
	"io"
	"log/slog"
	"sync"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type write struct {
	key  string
	data string
}

// memSlot is an in-memory CartSlot. When gate is set, every Store call
// announces itself on started and waits for gate before completing.
type memSlot struct {
	mu       sync.Mutex
	data     map[string][]byte
	writes   []write
	loadErr  error
	storeErr error
	gate     chan struct{}
	started  chan string
}

func newMemSlot() *memSlot {
	return &memSlot{data: make(map[string][]byte)}
}

func (m *memSlot) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	d, ok := m.data[key]
	if !ok {
		return nil, apperrors.NotFound("cart", key)
	}
	return d, nil
}

func (m *memSlot) Store(_ context.Context, key string, value []byte) error {
	if m.started != nil {
		m.started <- key
	}
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	m.data[key] = value
	m.writes = append(m.writes, write{key: key, data: string(value)})
	return nil
}

func (m *memSlot) put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = []byte(value)
}

func (m *memSlot) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return string(d), ok
}

func (m *memSlot) history() []write {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]write(nil), m.writes...)
}
