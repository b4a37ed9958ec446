package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

// Writer saves cart snapshots to the slot on a background goroutine.
// Snapshots queued for the same key coalesce: only the latest is written.
// Failed writes are logged and dropped; the in-memory cart is unaffected.
type Writer struct {
	slot    repository.CartSlot
	logger  *slog.Logger
	timeout time.Duration

	mu       sync.Mutex
	pending  map[string][]byte
	order    []string
	inflight map[string][]byte
	busy     bool
	idle     chan struct{}
	closed   bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// NewWriter starts the background loop. Each slot write gets its own
// timeout, detached from the request that caused it.
func NewWriter(slot repository.CartSlot, logger *slog.Logger, timeout time.Duration) *Writer {
	w := &Writer{
		slot:     slot,
		logger:   logger,
		timeout:  timeout,
		pending:  make(map[string][]byte),
		inflight: make(map[string][]byte),
		idle:     closedChan(),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Enqueue schedules data to be written under key and returns immediately.
func (w *Writer) Enqueue(key string, data []byte) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("cart writer closed, dropping snapshot", slog.String("key", key))
		return
	}
	if _, queued := w.pending[key]; !queued {
		w.order = append(w.order, key)
	}
	w.pending[key] = data
	if !w.busy {
		w.busy = true
		w.idle = make(chan struct{})
	}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Latest returns the newest snapshot for key that has not yet reached the
// slot, so a store reopened before the write lands does not read stale data.
func (w *Writer) Latest(key string) ([]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if data, ok := w.pending[key]; ok {
		return data, true
	}
	data, ok := w.inflight[key]
	return data, ok
}

// Flush blocks until every snapshot queued so far has been attempted.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	idle := w.idle
	w.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting snapshots, drains the queue and waits for the loop
// to exit or ctx to expire.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.stop)
	}
	w.mu.Unlock()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if len(w.order) == 0 {
			if w.busy {
				w.busy = false
				close(w.idle)
			}
			w.mu.Unlock()
			return
		}
		key := w.order[0]
		w.order = w.order[1:]
		data := w.pending[key]
		delete(w.pending, key)
		w.inflight[key] = data
		w.mu.Unlock()

		w.write(key, data)

		w.mu.Lock()
		delete(w.inflight, key)
		w.mu.Unlock()
	}
}

func (w *Writer) write(key string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.slot.Store(ctx, key, data); err != nil {
		persistTotal.WithLabelValues("error").Inc()
		w.logger.Error("failed to persist cart",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	persistTotal.WithLabelValues("ok").Inc()
}

// PersistHook queues every new cart state with w.
func PersistHook(w *Writer) Hook {
	return func(key string, _ domain.Command, next domain.Cart) {
		data, err := Encode(next)
		if err != nil {
			w.logger.Error("failed to encode cart", slog.String("key", key), slog.String("error", err.Error()))
			return
		}
		w.Enqueue(key, data)
	}
}
