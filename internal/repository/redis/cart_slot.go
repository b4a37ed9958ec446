package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const keyPrefix = "cart:"

// CartSlot stores serialized carts as plain Redis strings under
// "cart:<session>". Every write refreshes the TTL so abandoned carts expire.
type CartSlot struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewCartSlot(client *goredis.Client, ttl time.Duration) *CartSlot {
	return &CartSlot{client: client, ttl: ttl}
}

func slotKey(session string) string {
	return keyPrefix + session
}

func (s *CartSlot) Load(ctx context.Context, session string) ([]byte, error) {
	data, err := s.client.Get(ctx, slotKey(session)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, apperrors.NotFound("cart", session)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	return data, nil
}

func (s *CartSlot) Store(ctx context.Context, session string, value []byte) error {
	if err := s.client.Set(ctx, slotKey(session), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}
