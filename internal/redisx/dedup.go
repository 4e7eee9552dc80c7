package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Dedup remembers processed message ids per service for TTLDedup.
type Dedup struct {
	Client  *redis.Client
	Service string
}

func (d *Dedup) key(id string) string {
	return fmt.Sprintf(KeyDedup, d.Service, id)
}

func (d *Dedup) Seen(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	return Exists(ctx, d.Client, d.key(id))
}

func (d *Dedup) Mark(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return d.Client.Set(ctx, d.key(id), "1", TTLDedup).Err()
}
