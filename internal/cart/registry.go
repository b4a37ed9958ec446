package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Registry hands out the Store of each session, hydrating it from the slot
// the first time it is opened.
type Registry struct {
	slot   repository.CartSlot
	writer *Writer
	logger *slog.Logger
	hooks  []Hook

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry wires persistence through writer. extra hooks run after the
// persistence hook.
func NewRegistry(slot repository.CartSlot, writer *Writer, logger *slog.Logger, extra ...Hook) *Registry {
	hooks := append([]Hook{PersistHook(writer)}, extra...)
	return &Registry{
		slot:   slot,
		writer: writer,
		logger: logger,
		hooks:  hooks,
		stores: make(map[string]*Store),
	}
}

// Open returns the session's store. Concurrent callers for the same session
// share one store and all wait for its hydration.
func (r *Registry) Open(ctx context.Context, session string) *Store {
	r.mu.Lock()
	s, ok := r.stores[session]
	if !ok {
		s = NewStore(session, r.hooks...)
		r.stores[session] = s
		openStores.Set(float64(len(r.stores)))
	}
	s.touch()
	r.mu.Unlock()

	s.hydrate.Do(func() { r.hydrate(ctx, s) })
	return s
}

// Release forgets the session's store. Its latest state is still queued in
// the writer, so reopening it later sees the same cart.
func (r *Registry) Release(session string) {
	r.mu.Lock()
	delete(r.stores, session)
	openStores.Set(float64(len(r.stores)))
	r.mu.Unlock()
}

// Sweep releases stores that have not been used for idle.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for session, s := range r.stores {
		if s.idleSince().Before(cutoff) {
			delete(r.stores, session)
			n++
		}
	}
	openStores.Set(float64(len(r.stores)))
	return n
}

// RunJanitor sweeps idle stores every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(idle); n > 0 {
				r.logger.Debug("released idle carts", slog.Int("count", n))
			}
		}
	}
}

// Len is the number of stores held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// hydrate restores s from the slot. Any failure leaves the cart empty. The
// load is detached from the caller's cancellation: an aborted request must
// not leave the session with an empty cart that later overwrites the slot.
func (r *Registry) hydrate(ctx context.Context, s *Store) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.writer.timeout)
	defer cancel()
	key := s.Key()
	data, fromWriter := r.writer.Latest(key)
	if !fromWriter {
		var err error
		data, err = r.slot.Load(ctx, key)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			hydrationsTotal.WithLabelValues("empty").Inc()
			return
		case err != nil:
			hydrationsTotal.WithLabelValues("error").Inc()
			r.logger.WarnContext(ctx, "failed to load cart, starting empty",
				slog.String("session", key),
				slog.String("error", err.Error()),
			)
			return
		}
	}

	items, err := Decode(data)
	if err != nil {
		hydrationsTotal.WithLabelValues("malformed").Inc()
		r.logger.WarnContext(ctx, "discarding malformed cart snapshot",
			slog.String("session", key),
			slog.String("error", err.Error()),
		)
		return
	}
	hydrationsTotal.WithLabelValues("restored").Inc()
	s.Dispatch(domain.SetCart{Items: items})
}
