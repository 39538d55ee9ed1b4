package presign

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

const defaultRetryBase = 200 * time.Millisecond

type retrying struct {
	next    Presigner
	retries uint64
	base    time.Duration
}

// WithRetry retries failed calls of p with exponential backoff. Invalid URLs and
// non temporary service errors are returned immediately.
func WithRetry(p Presigner, retries uint64, base time.Duration) Presigner {
	if base <= 0 {
		base = defaultRetryBase
	}
	return &retrying{next: p, retries: retries, base: base}
}

func (r *retrying) Presign(ctx context.Context, objectURL string, expiration time.Duration) (string, error) {
	var url string
	err := retry.Do(
		ctx,
		retry.WithMaxRetries(r.retries, retry.NewExponential(r.base)),
		func(ctx context.Context) error {
			var err error
			url, err = r.next.Presign(ctx, objectURL, expiration)
			if err == nil {
				return nil
			}
			if permanent(err) {
				return err
			}
			return retry.RetryableError(err)
		},
	)
	if err != nil {
		return "", err
	}
	return url, nil
}

func permanent(err error) bool {
	if errors.Is(err, ErrInvalidObjectURL) || errors.Is(err, ErrDisabled) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return !statusErr.Temporary()
	}
	return false
}
