package driven

import (
	"context"
	"time"
)

// RunLock provides distributed locking so at most one transmitter run is
// active per channel configuration, even when the scheduler (mis)delivers
// the same configuration to two workers.
type RunLock interface {
	// Acquire attempts to acquire a named lock with the given TTL.
	// Returns true if acquired, false if another holder has it. The lock
	// auto-expires after TTL so a crashed worker cannot wedge a
	// configuration forever.
	Acquire(ctx context.Context, name string, ttl time.Duration) (acquired bool, err error)

	// Release releases a named lock held by this instance. Best-effort;
	// safe to call for locks that already expired.
	Release(ctx context.Context, name string) error

	// Extend extends the TTL of a currently held lock. Long runs extend
	// between chunks to keep the lock alive.
	Extend(ctx context.Context, name string, ttl time.Duration) error

	// Ping checks if the lock backend is healthy.
	Ping(ctx context.Context) error
}
