package port

import "context"

type CacheRepository interface {
	// SetIdempotency records a checkout request id, returns false if already seen
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ClearIdempotency forgets a request id so a failed checkout can be retried
	ClearIdempotency(ctx context.Context, key string) error

	// AcquireCheckoutLock takes the per-user checkout lock, returns false if held
	AcquireCheckoutLock(ctx context.Context, userID int64) (bool, error)

	// ReleaseCheckoutLock frees the lock taken by AcquireCheckoutLock
	ReleaseCheckoutLock(ctx context.Context, userID int64) error
}
