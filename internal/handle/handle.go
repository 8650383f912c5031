// internal/handle/handle.go
package handle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-dom/api/schemas"
	"github.com/xkilldash9x/scalpel-dom/internal/driver"
)

// Default wait policy, used when the caller passes zero values. The real
// values normally come from config.SessionConfig.
const (
	DefaultWaitTimeout  = 2 * time.Second
	DefaultPollInterval = 50 * time.Millisecond
)

// Options configure a new Handle. All fields are optional except what the
// constructor itself requires.
type Options struct {
	// Reloadable enables stale-reference recovery. Handles obtained through
	// ephemeral paths must leave this off so they never silently swap
	// identity.
	Reloadable bool
	// WaitTimeout bounds the total wall-clock time synchronize may spend
	// retrying one operation.
	WaitTimeout time.Duration
	// PollInterval paces retries within the wait budget.
	PollInterval time.Duration
	// VisibleTextOnly makes Text return only rendered text, matching the
	// session-level text policy.
	VisibleTextOnly bool
	Logger          *zap.Logger
}

// Handle is a stable local reference to one remote DOM element. The remote
// node can detach, move, or be replaced as the page mutates; the handle
// keeps working by retrying transient failures and, when reloadable,
// re-resolving its original locator against its scope.
//
// A Handle is owned by a single logical flow. It holds no internal locking:
// reload swaps the binding in place while every action reads it, so
// concurrent use from multiple goroutines requires external serialization.
type Handle struct {
	id      string
	binding driver.Binding
	scope   driver.Scope
	locator schemas.Locator

	reloadable      bool
	waitTimeout     time.Duration
	pollInterval    time.Duration
	visibleTextOnly bool
	logger          *zap.Logger
}

// New wraps a freshly resolved binding. The locator and scope must be the
// ones the binding was resolved from; they are the source of truth for
// recovery. binding must be non-nil, and scope must be non-nil when
// opts.Reloadable is set.
func New(binding driver.Binding, scope driver.Scope, locator schemas.Locator, opts Options) (*Handle, error) {
	if binding == nil {
		return nil, errors.New("handle: binding must not be nil")
	}
	if opts.Reloadable && scope == nil {
		return nil, errors.New("handle: reloadable handle requires a scope")
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultWaitTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Handle{
		id:              id,
		binding:         binding,
		scope:           scope,
		locator:         locator,
		reloadable:      opts.Reloadable,
		waitTimeout:     opts.WaitTimeout,
		pollInterval:    opts.PollInterval,
		visibleTextOnly: opts.VisibleTextOnly,
		logger:          logger.Named("handle").With(zap.String("handle_id", id), zap.Stringer("locator", locator)),
	}, nil
}

// Locator returns the immutable locator the handle was constructed from.
func (h *Handle) Locator() schemas.Locator { return h.locator }

// Reloadable reports whether the handle participates in stale-reference
// recovery.
func (h *Handle) Reloadable() bool { return h.reloadable }

// Reload re-resolves the handle's locator against its scope and swaps in
// the fresh binding. It is a no-op on non-reloadable handles. When the
// lookup finds nothing, or the driver reports the element obsolete, the
// previous binding stays in place and Reload returns nil; recovery is
// best-effort and idempotent. Every other failure propagates.
func (h *Handle) Reload(ctx context.Context) error {
	if !h.reloadable {
		return nil
	}
	return h.reload(ctx)
}

func (h *Handle) reload(ctx context.Context) error {
	fresh, err := h.scope.ReloadAndFind(ctx, h.locator)
	if err != nil {
		if driver.IsNotFound(err) || driver.IsInvalidElement(err) {
			h.logger.Debug("reload found no replacement, keeping current binding",
				zap.Stringer("kind", driver.KindOf(err)))
			return nil
		}
		return fmt.Errorf("reloading element: %w", err)
	}
	if fresh == nil {
		// A scope returning (nil, nil) is treated like no match.
		return nil
	}
	h.binding = fresh
	h.logger.Debug("binding refreshed from scope")
	return nil
}

// Inspect renders a one-line diagnostic summary of the element. It never
// fails: when the driver reports the element reference invalid the summary
// is a distinct obsolete marker, and when the driver cannot supply a
// location path the path is simply omitted.
func (h *Handle) Inspect(ctx context.Context) string {
	tag, err := h.binding.TagName(ctx)
	if err != nil {
		if driver.IsInvalidElement(err) {
			return "Element{obsolete}"
		}
		return "Element{tag=?}"
	}
	path, err := h.binding.Path(ctx)
	if err != nil {
		if driver.IsInvalidElement(err) {
			return "Element{obsolete}"
		}
		// Path is optional detail; not-supported and transient failures
		// alike just drop it.
		return fmt.Sprintf("Element{tag=%s}", tag)
	}
	return fmt.Sprintf("Element{tag=%s path=%s}", tag, path)
}

// supportsExtended consults the binding's static capability descriptor.
// Callers must check this before dispatching any extended-argument form;
// the extended call is never attempted speculatively.
func (h *Handle) supportsExtended(op driver.Op) bool {
	return h.binding.Capabilities().SupportsExtended(op)
}
