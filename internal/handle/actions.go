// internal/handle/actions.go
package handle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-dom/api/schemas"
	"github.com/xkilldash9x/scalpel-dom/internal/driver"
)

// ClickOption customizes a pointer action. Passing any option switches the
// dispatch to the driver's extended form, which requires the driver to
// declare ExtendedClick capability.
type ClickOption func(*schemas.ClickOptions)

// WithModifiers holds the given modifier keys down during the click.
func WithModifiers(mods ...schemas.KeyModifier) ClickOption {
	return func(o *schemas.ClickOptions) {
		for _, m := range mods {
			o.Modifiers |= m
		}
	}
}

// WithOffset clicks at an offset from the element's top-left corner instead
// of its center.
func WithOffset(x, y float64) ClickOption {
	return func(o *schemas.ClickOptions) {
		o.Offset = &schemas.Position{X: x, Y: y}
	}
}

// SetOption customizes a value mutation. Passing any option switches to the
// driver's extended form, which requires ExtendedSet capability.
type SetOption func(*schemas.SetOptions)

// WithRapidFill writes the value in one driver call instead of simulating
// keystrokes.
func WithRapidFill() SetOption {
	return func(o *schemas.SetOptions) { o.RapidFill = true }
}

// WithKeyDelay paces simulated keystrokes.
func WithKeyDelay(d time.Duration) SetOption {
	return func(o *schemas.SetOptions) { o.KeyDelay = d }
}

func buildClickOptions(opts []ClickOption) *schemas.ClickOptions {
	if len(opts) == 0 {
		return nil
	}
	conf := &schemas.ClickOptions{}
	for _, opt := range opts {
		opt(conf)
	}
	return conf
}

func buildSetOptions(opts []SetOption) *schemas.SetOptions {
	if len(opts) == 0 {
		return nil
	}
	conf := &schemas.SetOptions{}
	for _, opt := range opts {
		opt(conf)
	}
	return conf
}

// pointerAction dispatches one of the click variants, branching on whether
// extended arguments were supplied. No options means the minimal form is
// used unconditionally, so limited drivers keep working; with options the
// capability descriptor is checked first and the call fails fast when the
// driver cannot honor them.
func (h *Handle) pointerAction(
	ctx context.Context,
	op driver.Op,
	opts []ClickOption,
	minimal func(context.Context, driver.Binding) error,
	extended func(context.Context, driver.Binding, schemas.ClickOptions) error,
) error {
	conf := buildClickOptions(opts)
	if conf == nil {
		return syncAction(ctx, h, op, minimal)
	}
	if !h.supportsExtended(op) {
		return &CapabilityError{Op: op}
	}
	return syncAction(ctx, h, op, func(ctx context.Context, b driver.Binding) error {
		return extended(ctx, b, *conf)
	})
}

// Click clicks the element.
func (h *Handle) Click(ctx context.Context, opts ...ClickOption) error {
	return h.pointerAction(ctx, driver.OpClick, opts,
		func(ctx context.Context, b driver.Binding) error { return b.Click(ctx) },
		func(ctx context.Context, b driver.Binding, o schemas.ClickOptions) error { return b.ClickWith(ctx, o) },
	)
}

// RightClick opens the element's context menu.
func (h *Handle) RightClick(ctx context.Context, opts ...ClickOption) error {
	return h.pointerAction(ctx, driver.OpRightClick, opts,
		func(ctx context.Context, b driver.Binding) error { return b.RightClick(ctx) },
		func(ctx context.Context, b driver.Binding, o schemas.ClickOptions) error { return b.RightClickWith(ctx, o) },
	)
}

// DoubleClick double-clicks the element.
func (h *Handle) DoubleClick(ctx context.Context, opts ...ClickOption) error {
	return h.pointerAction(ctx, driver.OpDoubleClick, opts,
		func(ctx context.Context, b driver.Binding) error { return b.DoubleClick(ctx) },
		func(ctx context.Context, b driver.Binding, o schemas.ClickOptions) error { return b.DoubleClickWith(ctx, o) },
	)
}

// Set writes a new form value. A read-only target is refused outright with
// a ReadOnlyError before the mutation is dispatched, regardless of driver
// capability; the driver's set implementation is never invoked for it.
func (h *Handle) Set(ctx context.Context, value any, opts ...SetOption) error {
	ro, err := h.ReadOnly(ctx)
	if err != nil {
		return fmt.Errorf("checking read-only state before set: %w", err)
	}
	if ro {
		return &ReadOnlyError{Locator: h.locator.String()}
	}

	conf := buildSetOptions(opts)
	if conf == nil {
		return syncAction(ctx, h, driver.OpSet, func(ctx context.Context, b driver.Binding) error {
			return b.SetValue(ctx, value)
		})
	}
	if !h.supportsExtended(driver.OpSet) {
		return &CapabilityError{Op: driver.OpSet}
	}
	return syncAction(ctx, h, driver.OpSet, func(ctx context.Context, b driver.Binding) error {
		return b.SetValueWith(ctx, value, *conf)
	})
}

// Hover moves the pointer over the element.
func (h *Handle) Hover(ctx context.Context) error {
	return syncAction(ctx, h, driver.OpHover, func(ctx context.Context, b driver.Binding) error {
		return b.Hover(ctx)
	})
}

// Trigger dispatches a DOM event by name on the element.
func (h *Handle) Trigger(ctx context.Context, event string) error {
	return syncAction(ctx, h, driver.OpTrigger, func(ctx context.Context, b driver.Binding) error {
		return b.Trigger(ctx, event)
	})
}

// SendKeys types a keystroke sequence into the element.
func (h *Handle) SendKeys(ctx context.Context, keys string) error {
	return syncAction(ctx, h, driver.OpSendKeys, func(ctx context.Context, b driver.Binding) error {
		return b.SendKeys(ctx, keys)
	})
}

// DragTo drags the element onto the target handle. Both handles must come
// from the same driver backend.
func (h *Handle) DragTo(ctx context.Context, target *Handle) error {
	if target == nil {
		return fmt.Errorf("handle: drag target must not be nil")
	}
	return syncAction(ctx, h, driver.OpDragTo, func(ctx context.Context, b driver.Binding) error {
		return b.DragTo(ctx, target.binding)
	})
}

// SelectOption selects an <option> element. Selecting an option that is
// disabled, or already selected, is semantically unusual; those cases are
// reported as advisory log warnings and never fail the call.
func (h *Handle) SelectOption(ctx context.Context) error {
	if disabled, err := h.Disabled(ctx); err == nil && disabled {
		h.logger.Warn("selecting a disabled option", zap.Stringer("locator", h.locator))
	}
	if selected, err := h.Selected(ctx); err == nil && selected {
		h.logger.Warn("option is already selected", zap.Stringer("locator", h.locator))
	}
	return syncAction(ctx, h, driver.OpSelect, func(ctx context.Context, b driver.Binding) error {
		return b.SelectOption(ctx)
	})
}

// UnselectOption clears an <option> inside a multi-select.
func (h *Handle) UnselectOption(ctx context.Context) error {
	return syncAction(ctx, h, driver.OpUnselect, func(ctx context.Context, b driver.Binding) error {
		return b.UnselectOption(ctx)
	})
}
