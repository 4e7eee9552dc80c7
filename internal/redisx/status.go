package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/orders"
	"github.com/redis/go-redis/v9"
)

type StatusCache struct {
	Client *redis.Client
}

func (c *StatusCache) Put(ctx context.Context, v orders.StatusView) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, fmt.Sprintf(KeyOrderStatus, v.OrderID), b, TTLStatusCache).Err()
}

// PutIfAbsent fills an empty slot only. Readers use it so a view loaded
// from the database never replaces one written after a transition.
func (c *StatusCache) PutIfAbsent(ctx context.Context, v orders.StatusView) (bool, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	return c.Client.SetNX(ctx, fmt.Sprintf(KeyOrderStatus, v.OrderID), b, TTLStatusCache).Result()
}

// Get reports ok=false on a cache miss.
func (c *StatusCache) Get(ctx context.Context, orderID string) (orders.StatusView, bool, error) {
	var v orders.StatusView
	b, err := c.Client.Get(ctx, fmt.Sprintf(KeyOrderStatus, orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, false, err
	}
	return v, true, nil
}
