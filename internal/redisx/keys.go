package redisx

import "time"

const (
	// Cache status order: order_status:{order_id} -> StatusView JSON
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{id}
	KeyDedup = "dedup:%s:%s"

	// Token bucket per client: hash ratelimit:{scope}:{client}
	KeyRateLimit = "ratelimit:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
