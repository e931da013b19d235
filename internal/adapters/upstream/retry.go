package upstream

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/greenshelf/scorer/pkg/logger"
)

// Fetch runs fn under the given time budget, retrying exactly once when the
// first attempt fails with a transient error and budget remains. Timeouts
// and bad queries are never retried. The same policy applies to all three
// source adapters.
func Fetch[T any](ctx context.Context, budget time.Duration, fn func(context.Context) (T, *Failure)) (T, *Failure) {
	deadline := time.Now().Add(budget)

	attemptCtx, cancel := context.WithDeadline(ctx, deadline)
	result, failure := fn(attemptCtx)
	cancel()

	if failure == nil || !failure.Retryable() {
		return result, failure
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		failure.Kind = KindTimeout
		return result, failure
	}

	logger.Debug("retrying transient adapter failure",
		zap.String("source", failure.Source),
		zap.Duration("remaining", remaining),
		zap.Error(failure.Err),
	)

	retryCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	return fn(retryCtx)
}
