// File: internal/driver/cdp/binding.go
package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/scalpel-dom/api/schemas"
	"github.com/xkilldash9x/scalpel-dom/internal/driver"
)

// node is one remote element, addressed by the unique XPath captured when
// it was resolved. Every operation re-resolves the path in the live page;
// the stale sentinel comes back when the node is gone or detached.
type node struct {
	browser *Browser
	path    string
}

var (
	_ driver.Binding = (*node)(nil)
	_ driver.Scope   = (*node)(nil)
)

func (n *node) Capabilities() driver.Capabilities {
	return driver.Capabilities{ExtendedClick: true, ExtendedSet: true}
}

// eval runs a page-side body with `el` bound to this node.
func (n *node) eval(ctx context.Context, op driver.Op, body string, out any) error {
	return evalEnvelope(ctx, n.browser, op, n.path, nodeExpr(n.path, body), out)
}

// evalEnvelope evaluates expr and unpacks the sentinel-or-value envelope.
func evalEnvelope(ctx context.Context, b *Browser, op driver.Op, selector, expr string, out any) error {
	var env envelope
	if err := b.run(ctx, b.cfg.ActionTimeout, chromedp.Evaluate(expr, &env)); err != nil {
		return fmt.Errorf("cdp: %s: %w", op, err)
	}
	if env.Err != "" {
		return sentinelError(op, selector, env.Err)
	}
	if out != nil && len(env.V) > 0 {
		if err := json.Unmarshal(env.V, out); err != nil {
			return fmt.Errorf("cdp: %s: decoding result: %w", op, err)
		}
	}
	return nil
}

// -- Queries --

func (n *node) TagName(ctx context.Context) (string, error) {
	var tag string
	err := n.eval(ctx, driver.OpTagName, `return {v: el.tagName.toLowerCase()};`, &tag)
	return tag, err
}

func (n *node) Attribute(ctx context.Context, name string) (string, bool, error) {
	var value *string
	body := fmt.Sprintf(`return {v: el.getAttribute(%s)};`, jsQuote(name))
	if err := n.eval(ctx, driver.OpAttribute, body, &value); err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

func (n *node) AllText(ctx context.Context) (string, error) {
	var text string
	err := n.eval(ctx, driver.OpText, `return {v: __normalize(el.textContent || '')};`, &text)
	return text, err
}

func (n *node) VisibleText(ctx context.Context) (string, error) {
	var text string
	body := `
if (!__rendered(el)) return {v: ''};
return {v: __normalize(el.innerText || '')};`
	err := n.eval(ctx, driver.OpText, body, &text)
	return text, err
}

func (n *node) Value(ctx context.Context) (any, error) {
	var raw any
	body := `
if (el.tagName === 'SELECT' && el.multiple) {
  return {v: Array.from(el.selectedOptions).map((o) => o.value)};
}
if ('value' in el) return {v: el.value};
return {v: el.textContent || ''};`
	if err := n.eval(ctx, driver.OpValue, body, &raw); err != nil {
		return nil, err
	}
	// Multi-select values decode as []any; give callers []string.
	if list, ok := raw.([]any); ok {
		values := make([]string, 0, len(list))
		for _, item := range list {
			s, _ := item.(string)
			values = append(values, s)
		}
		return values, nil
	}
	return raw, nil
}

func (n *node) Path(ctx context.Context) (string, error) {
	var path string
	err := n.eval(ctx, driver.OpPath, `return {v: __uniquePath(el)};`, &path)
	return path, err
}

// -- State queries --

func (n *node) boolState(ctx context.Context, body string) (bool, error) {
	var state bool
	err := n.eval(ctx, driver.OpState, body, &state)
	return state, err
}

func (n *node) Visible(ctx context.Context) (bool, error) {
	return n.boolState(ctx, `return {v: __rendered(el)};`)
}

func (n *node) Checked(ctx context.Context) (bool, error) {
	return n.boolState(ctx, `return {v: !!el.checked};`)
}

func (n *node) Disabled(ctx context.Context) (bool, error) {
	// :disabled covers disabled fieldset and optgroup ancestors too.
	return n.boolState(ctx, `return {v: el.matches(':disabled')};`)
}

func (n *node) ReadOnly(ctx context.Context) (bool, error) {
	return n.boolState(ctx, `return {v: !!el.readOnly};`)
}

func (n *node) Selected(ctx context.Context) (bool, error) {
	return n.boolState(ctx, `return {v: !!el.selected};`)
}

func (n *node) Multiple(ctx context.Context) (bool, error) {
	return n.boolState(ctx, `return {v: !!el.multiple};`)
}

// -- Value mutation --

func setValueBody(value any) (string, error) {
	literal, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("cdp: encoding value: %w", err)
	}
	return fmt.Sprintf(`
const v = %s;
if (typeof v === 'boolean') {
  if (el.type !== 'checkbox' && el.type !== 'radio') return {err: %q};
  if (el.checked !== v) {
    el.checked = v;
    el.dispatchEvent(new Event('change', {bubbles: true}));
  }
  return {v: true};
}
if (el.isContentEditable) {
  el.textContent = String(v);
} else if ('value' in el) {
  el.focus();
  el.value = String(v);
} else {
  return {err: %q};
}
el.dispatchEvent(new Event('input', {bubbles: true}));
el.dispatchEvent(new Event('change', {bubbles: true}));
return {v: true};`, string(literal), sentinelNotSupported, sentinelNotSupported), nil
}

func (n *node) SetValue(ctx context.Context, value any) error {
	body, err := setValueBody(value)
	if err != nil {
		return err
	}
	return n.eval(ctx, driver.OpSet, body, nil)
}

func (n *node) SetValueWith(ctx context.Context, value any, opts schemas.SetOptions) error {
	if opts.RapidFill {
		return n.SetValue(ctx, value)
	}
	text, ok := value.(string)
	if !ok {
		// Only strings can be typed keystroke by keystroke.
		return n.SetValue(ctx, value)
	}

	clearBody := fmt.Sprintf(`
if (!('value' in el) && !el.isContentEditable) return {err: %q};
el.focus();
if ('value' in el) el.value = '';
else el.textContent = '';
return {v: true};`, sentinelNotSupported)
	if err := n.eval(ctx, driver.OpSet, clearBody, nil); err != nil {
		return err
	}

	if opts.KeyDelay <= 0 {
		if err := n.browser.run(ctx, n.browser.cfg.ActionTimeout, input.InsertText(text)); err != nil {
			return fmt.Errorf("cdp: %s: inserting text: %w", driver.OpSet, err)
		}
	} else {
		for _, r := range text {
			if err := n.browser.run(ctx, n.browser.cfg.ActionTimeout, input.InsertText(string(r))); err != nil {
				return fmt.Errorf("cdp: %s: inserting text: %w", driver.OpSet, err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.KeyDelay):
			}
		}
	}

	return n.eval(ctx, driver.OpSet,
		`el.dispatchEvent(new Event('change', {bubbles: true})); return {v: true};`, nil)
}

// -- Pointer actions --

type boxGeometry struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// geometry scrolls the node into view and returns its viewport box. A
// zero-size box means the node is not yet interactable.
func (n *node) geometry(ctx context.Context, op driver.Op) (boxGeometry, error) {
	var box boxGeometry
	body := fmt.Sprintf(`
el.scrollIntoView({block: 'center', inline: 'center'});
const rect = el.getBoundingClientRect();
if (!rect.width && !rect.height) return {err: %q};
return {v: {x: rect.left, y: rect.top, w: rect.width, h: rect.height}};`, sentinelNotReady)
	err := n.eval(ctx, op, body, &box)
	return box, err
}

func pointAt(box boxGeometry, offset *schemas.Position) (float64, float64) {
	if offset != nil {
		return box.X + offset.X, box.Y + offset.Y
	}
	return box.X + box.W/2, box.Y + box.H/2
}

// mouseModifiers converts the public modifier bitmask to the protocol's.
func mouseModifiers(m schemas.KeyModifier) input.Modifier {
	var mods input.Modifier
	if m&schemas.ModAlt != 0 {
		mods |= input.ModifierAlt
	}
	if m&schemas.ModCtrl != 0 {
		mods |= input.ModifierCtrl
	}
	if m&schemas.ModMeta != 0 {
		mods |= input.ModifierMeta
	}
	if m&schemas.ModShift != 0 {
		mods |= input.ModifierShift
	}
	return mods
}

func (n *node) dispatchClick(ctx context.Context, op driver.Op, button input.MouseButton, clicks int, opts schemas.ClickOptions) error {
	box, err := n.geometry(ctx, op)
	if err != nil {
		return err
	}
	x, y := pointAt(box, opts.Offset)
	mods := mouseModifiers(opts.Modifiers)

	action := chromedp.ActionFunc(func(ctx context.Context) error {
		move := input.DispatchMouseEvent(input.MouseMoved, x, y).WithModifiers(mods)
		if err := move.Do(ctx); err != nil {
			return err
		}
		for i := 1; i <= clicks; i++ {
			press := input.DispatchMouseEvent(input.MousePressed, x, y).
				WithButton(button).
				WithClickCount(int64(i)).
				WithModifiers(mods)
			if err := press.Do(ctx); err != nil {
				return err
			}
			release := input.DispatchMouseEvent(input.MouseReleased, x, y).
				WithButton(button).
				WithClickCount(int64(i)).
				WithModifiers(mods)
			if err := release.Do(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err := n.browser.run(ctx, n.browser.cfg.ActionTimeout, action); err != nil {
		return fmt.Errorf("cdp: %s: dispatching mouse events: %w", op, err)
	}
	return nil
}

func (n *node) Click(ctx context.Context) error {
	return n.dispatchClick(ctx, driver.OpClick, input.Left, 1, schemas.ClickOptions{})
}

func (n *node) RightClick(ctx context.Context) error {
	return n.dispatchClick(ctx, driver.OpRightClick, input.Right, 1, schemas.ClickOptions{})
}

func (n *node) DoubleClick(ctx context.Context) error {
	return n.dispatchClick(ctx, driver.OpDoubleClick, input.Left, 2, schemas.ClickOptions{})
}

func (n *node) ClickWith(ctx context.Context, opts schemas.ClickOptions) error {
	return n.dispatchClick(ctx, driver.OpClick, input.Left, 1, opts)
}

func (n *node) RightClickWith(ctx context.Context, opts schemas.ClickOptions) error {
	return n.dispatchClick(ctx, driver.OpRightClick, input.Right, 1, opts)
}

func (n *node) DoubleClickWith(ctx context.Context, opts schemas.ClickOptions) error {
	return n.dispatchClick(ctx, driver.OpDoubleClick, input.Left, 2, opts)
}

func (n *node) Hover(ctx context.Context) error {
	box, err := n.geometry(ctx, driver.OpHover)
	if err != nil {
		return err
	}
	x, y := pointAt(box, nil)
	action := chromedp.ActionFunc(func(ctx context.Context) error {
		return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
	})
	if err := n.browser.run(ctx, n.browser.cfg.ActionTimeout, action); err != nil {
		return fmt.Errorf("cdp: %s: dispatching mouse move: %w", driver.OpHover, err)
	}
	return nil
}

// -- Events and keys --

func (n *node) Trigger(ctx context.Context, event string) error {
	body := fmt.Sprintf(
		`el.dispatchEvent(new Event(%s, {bubbles: true, cancelable: true})); return {v: true};`,
		jsQuote(event))
	return n.eval(ctx, driver.OpTrigger, body, nil)
}

func (n *node) SendKeys(ctx context.Context, keys string) error {
	if err := n.eval(ctx, driver.OpSendKeys, `el.focus(); return {v: true};`, nil); err != nil {
		return err
	}
	if err := n.browser.run(ctx, n.browser.cfg.ActionTimeout, input.InsertText(keys)); err != nil {
		return fmt.Errorf("cdp: %s: inserting text: %w", driver.OpSendKeys, err)
	}
	return nil
}

func (n *node) DragTo(ctx context.Context, target driver.Binding) error {
	dest, ok := target.(*node)
	if !ok {
		return fmt.Errorf("cdp: %s: target element belongs to a different backend", driver.OpDragTo)
	}
	body := fmt.Sprintf(`
const src = __resolve(%s);
if (!src) return {err: %q};
const dst = __resolve(%s);
if (!dst) return {err: %q};
const dt = new DataTransfer();
const fire = (el, type) => el.dispatchEvent(
  new DragEvent(type, {bubbles: true, cancelable: true, dataTransfer: dt}));
fire(src, 'dragstart');
fire(dst, 'dragenter');
fire(dst, 'dragover');
fire(dst, 'drop');
fire(src, 'dragend');
return {v: true};`, jsQuote(n.path), sentinelStale, jsQuote(dest.path), sentinelStale)
	return evalEnvelope(ctx, n.browser, driver.OpDragTo, n.path, rootExpr(body), nil)
}

// -- Option selection --

func (n *node) SelectOption(ctx context.Context) error {
	body := fmt.Sprintf(`
if (el.tagName !== 'OPTION') return {err: %q};
const sel = el.closest('select');
if (!sel) return {err: 'detached_option'};
if (!sel.multiple) {
  for (const o of sel.options) o.selected = false;
}
if (!el.selected) {
  el.selected = true;
  sel.dispatchEvent(new Event('change', {bubbles: true}));
}
return {v: true};`, sentinelNotSupported)
	return n.eval(ctx, driver.OpSelect, body, nil)
}

func (n *node) UnselectOption(ctx context.Context) error {
	body := fmt.Sprintf(`
if (el.tagName !== 'OPTION') return {err: %q};
const sel = el.closest('select');
if (!sel || !sel.multiple) return {err: 'single_choice'};
if (el.selected) {
  el.selected = false;
  sel.dispatchEvent(new Event('change', {bubbles: true}));
}
return {v: true};`, sentinelNotSupported)
	return n.eval(ctx, driver.OpUnselect, body, nil)
}

// -- Element as resolution scope --

// ReloadAndFind resolves loc among this element's descendants. The element
// itself is re-resolved first, so a vanished scope surfaces as stale.
func (n *node) ReloadAndFind(ctx context.Context, loc schemas.Locator) (driver.Binding, error) {
	body := "const scope = el;\n" + findFilterJS(loc)
	var path string
	if err := evalEnvelope(ctx, n.browser, driver.OpFind, loc.String(), nodeExpr(n.path, body), &path); err != nil {
		return nil, err
	}
	return &node{browser: n.browser, path: path}, nil
}
