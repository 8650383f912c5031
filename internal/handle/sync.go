// internal/handle/sync.go
package handle

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/scalpel-dom/internal/driver"
)

// synchronize runs fn against the handle's current binding until it
// succeeds or the wait budget runs out. Remote UI state changes
// asynchronously with respect to this goroutine, so a single call is
// inherently racy; every observable operation goes through here.
//
// Only errors in the driver's transient taxonomy are retried. Anything
// else, including programmer errors surfaced by the backend, returns on the
// first attempt. When the handle is reloadable a recovery pass runs between
// attempts so a re-resolved binding gets the next try. Once the deadline
// elapses the last transient failure is returned wrapped in a TimeoutError.
func synchronize[T any](ctx context.Context, h *Handle, op driver.Op, fn func(context.Context, driver.Binding) (T, error)) (T, error) {
	var zero T

	ctx, cancel := context.WithTimeout(ctx, h.waitTimeout)
	defer cancel()

	// The limiter starts with one token, so the first attempt runs
	// immediately and subsequent attempts are paced at the poll interval.
	limiter := rate.NewLimiter(rate.Every(h.pollInterval), 1)

	var last error
	for attempt := 1; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			if last != nil {
				return zero, &TimeoutError{Op: op, Budget: h.waitTimeout, Last: last}
			}
			return zero, err
		}

		v, err := fn(ctx, h.binding)
		if err == nil {
			return v, nil
		}
		if !driver.IsTransient(err) {
			return zero, err
		}
		last = err
		h.logger.Debug("transient driver failure, will retry",
			zap.Stringer("op", opStringer(op)),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if ctx.Err() != nil {
			return zero, &TimeoutError{Op: op, Budget: h.waitTimeout, Last: last}
		}
		if h.reloadable {
			if rerr := h.reload(ctx); rerr != nil {
				if ctx.Err() != nil {
					return zero, &TimeoutError{Op: op, Budget: h.waitTimeout, Last: last}
				}
				return zero, rerr
			}
		}
	}
}

// syncAction adapts error-only binding calls to synchronize.
func syncAction(ctx context.Context, h *Handle, op driver.Op, fn func(context.Context, driver.Binding) error) error {
	_, err := synchronize(ctx, h, op, func(ctx context.Context, b driver.Binding) (struct{}, error) {
		return struct{}{}, fn(ctx, b)
	})
	return err
}

type opStringer driver.Op

func (o opStringer) String() string { return string(o) }
