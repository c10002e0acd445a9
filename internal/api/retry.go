package api

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
)

// ChildrenLister lists one page of a block's children.
type ChildrenLister interface {
	ListBlockChildren(ctx context.Context, blockID, cursor string) (*BlockChildren, error)
}

// RetryingLister retries rate-limited and server-side failures of the
// wrapped lister with exponential backoff, honouring Retry-After.
type RetryingLister struct {
	next     ChildrenLister
	attempts uint
	delay    time.Duration
	maxDelay time.Duration
}

func NewRetryingLister(next ChildrenLister, attempts uint, delay time.Duration) *RetryingLister {
	if attempts == 0 {
		attempts = 1
	}
	return &RetryingLister{
		next:     next,
		attempts: attempts,
		delay:    delay,
		maxDelay: 30 * time.Second,
	}
}

func (r *RetryingLister) ListBlockChildren(ctx context.Context, blockID, cursor string) (*BlockChildren, error) {
	return retry.DoWithData(
		func() (*BlockChildren, error) {
			return r.next.ListBlockChildren(ctx, blockID, cursor)
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.MaxDelay(r.maxDelay),
		retry.DelayType(retryAfterDelay),
		retry.RetryIf(IsRetryable),
		retry.LastErrorOnly(true),
	)
}

func retryAfterDelay(n uint, err error, cfg *retry.Config) time.Duration {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}
	return retry.BackOffDelay(n, err, cfg)
}
