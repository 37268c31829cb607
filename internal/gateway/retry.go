package gateway

import (
	"errors"
	"time"

	"github.com/mwantia/goshare/pkg/log"

	"context"
)

// withFloodRetry runs a gateway call and, on a flood-wait signal, suspends
// for the dictated duration and retries the same call once. A flood-wait on
// the retry propagates to the caller; no further retries happen.
func withFloodRetry[T any](ctx context.Context, logger log.LoggerService, op string, fn func() (T, error)) (T, error) {
	out, err := fn()
	if err == nil {
		return out, nil
	}

	var flood *FloodWaitError
	if !errors.As(err, &flood) {
		return out, err
	}

	logger.Warn("Flood wait on %s, retrying in %s", op, flood.RetryAfter)

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-time.After(flood.RetryAfter):
	}

	return fn()
}
