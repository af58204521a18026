package broker

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how long a consumer keeps re-running a failing handler
// before the message is dead-lettered.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy retries three times starting at 200ms.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      3,
	InitialInterval: 200 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

// Handle runs h with exponential backoff. Permanent errors stop the retries.
// The returned error is the last handler error.
func (p RetryPolicy) Handle(ctx context.Context, h Handler, msg Message) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, p.MaxRetries), ctx)

	return backoff.Retry(func() error {
		err := h(ctx, msg)
		if err != nil && IsPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
