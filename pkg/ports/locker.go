package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker grants exclusive ownership of a key across processes.
// The runner uses it to keep a script from running twice at the same time.
type Locker interface {
	// Lock blocks until the key is acquired or ctx is done. The lock expires
	// after ttl if it is never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
