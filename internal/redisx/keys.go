package redisx

import "time"

const (
	// Admin session: session:{token} -> JSON session record
	KeySession = "session:%s"

	// Idempotent checkout: idem:order:create:{Idempotency-Key} -> order id
	KeyIdemOrderCreate = "idem:order:create:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
