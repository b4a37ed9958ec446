// Package cart holds the in-memory cart of each session and keeps it in sync
// with its durable slot.
package cart

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/utafrali/storefront/internal/domain"
)

// Hook observes a state change. Hooks run synchronously inside Dispatch,
// in registration order, while the store is locked, so they must not block
// or call back into the store.
type Hook func(key string, cmd domain.Command, next domain.Cart)

// Store is the cart of one session. Dispatch applies commands one at a
// time; readers always see a complete state.
type Store struct {
	key   string
	hooks []Hook

	mu    sync.Mutex
	items domain.Cart

	hydrate  sync.Once
	lastUsed atomic.Int64
}

// NewStore returns an empty store for key.
func NewStore(key string, hooks ...Hook) *Store {
	s := &Store{key: key, hooks: hooks, items: domain.Empty()}
	s.touch()
	return s
}

func (s *Store) Key() string { return s.key }

// Dispatch reduces cmd into the current cart and returns the new state. The
// hooks only run when the command changed something.
func (s *Store) Dispatch(cmd domain.Command) domain.Cart {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.items
	next := domain.Reduce(prev, cmd)
	if !changed(prev, next, cmd) {
		return next.Clone()
	}
	s.items = next
	for _, h := range s.hooks {
		h(s.key, cmd, next)
	}
	return next.Clone()
}

// Items returns a copy of the current cart.
func (s *Store) Items() domain.Cart {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

func (s *Store) touch() { s.lastUsed.Store(time.Now().UnixNano()) }

func (s *Store) idleSince() time.Time { return time.Unix(0, s.lastUsed.Load()) }

// changed reports whether next differs from prev. Reduce never mutates its
// input and returns prev itself for no-ops, so an unchanged non-empty result
// shares prev's backing array. Clear and Set always count as changes so the
// slot is rewritten even when the cart was already empty.
func changed(prev, next domain.Cart, cmd domain.Command) bool {
	switch cmd.(type) {
	case domain.ClearCart, domain.SetCart:
		return true
	}
	if len(prev) != len(next) {
		return true
	}
	return len(prev) > 0 && &prev[0] != &next[0]
}
