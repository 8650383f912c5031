// internal/handle/queries.go
package handle

import (
	"context"

	"github.com/xkilldash9x/scalpel-dom/internal/driver"
)

// Text returns the element's text, honoring the session's visible-text
// policy: with VisibleTextOnly set only rendered text is returned,
// otherwise the full text content.
func (h *Handle) Text(ctx context.Context) (string, error) {
	if h.visibleTextOnly {
		return h.VisibleText(ctx)
	}
	return h.AllText(ctx)
}

// AllText returns the element's full text content.
func (h *Handle) AllText(ctx context.Context) (string, error) {
	return synchronize(ctx, h, driver.OpText, func(ctx context.Context, b driver.Binding) (string, error) {
		return b.AllText(ctx)
	})
}

// VisibleText returns only the text a user could currently see.
func (h *Handle) VisibleText(ctx context.Context) (string, error) {
	return synchronize(ctx, h, driver.OpText, func(ctx context.Context, b driver.Binding) (string, error) {
		return b.VisibleText(ctx)
	})
}

type attrResult struct {
	value string
	ok    bool
}

// Attribute reads one attribute by name. ok is false when the attribute is
// absent on the element.
func (h *Handle) Attribute(ctx context.Context, name string) (string, bool, error) {
	res, err := synchronize(ctx, h, driver.OpAttribute, func(ctx context.Context, b driver.Binding) (attrResult, error) {
		v, ok, err := b.Attribute(ctx, name)
		return attrResult{value: v, ok: ok}, err
	})
	return res.value, res.ok, err
}

// Value reads the current form value. Multi-selects yield []string,
// everything else a string.
func (h *Handle) Value(ctx context.Context) (any, error) {
	return synchronize(ctx, h, driver.OpValue, func(ctx context.Context, b driver.Binding) (any, error) {
		return b.Value(ctx)
	})
}

// TagName returns the lowercase tag name.
func (h *Handle) TagName(ctx context.Context) (string, error) {
	return synchronize(ctx, h, driver.OpTagName, func(ctx context.Context, b driver.Binding) (string, error) {
		return b.TagName(ctx)
	})
}

// Path returns the driver's location path for the element.
func (h *Handle) Path(ctx context.Context) (string, error) {
	return synchronize(ctx, h, driver.OpPath, func(ctx context.Context, b driver.Binding) (string, error) {
		return b.Path(ctx)
	})
}

func (h *Handle) boolState(ctx context.Context, fn func(context.Context, driver.Binding) (bool, error)) (bool, error) {
	return synchronize(ctx, h, driver.OpState, fn)
}

// Visible reports whether the element is currently rendered.
func (h *Handle) Visible(ctx context.Context) (bool, error) {
	return h.boolState(ctx, func(ctx context.Context, b driver.Binding) (bool, error) { return b.Visible(ctx) })
}

// Checked reports checkbox/radio state.
func (h *Handle) Checked(ctx context.Context) (bool, error) {
	return h.boolState(ctx, func(ctx context.Context, b driver.Binding) (bool, error) { return b.Checked(ctx) })
}

// Disabled reports whether the element refuses interaction.
func (h *Handle) Disabled(ctx context.Context) (bool, error) {
	return h.boolState(ctx, func(ctx context.Context, b driver.Binding) (bool, error) { return b.Disabled(ctx) })
}

// ReadOnly reports whether the element's value cannot be set.
func (h *Handle) ReadOnly(ctx context.Context) (bool, error) {
	return h.boolState(ctx, func(ctx context.Context, b driver.Binding) (bool, error) { return b.ReadOnly(ctx) })
}

// Selected reports option selection state.
func (h *Handle) Selected(ctx context.Context) (bool, error) {
	return h.boolState(ctx, func(ctx context.Context, b driver.Binding) (bool, error) { return b.Selected(ctx) })
}

// Multiple reports whether a select accepts more than one option.
func (h *Handle) Multiple(ctx context.Context) (bool, error) {
	return h.boolState(ctx, func(ctx context.Context, b driver.Binding) (bool, error) { return b.Multiple(ctx) })
}
