// internal/driver/htmldoc/binding.go
package htmldoc

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/scalpel-dom/api/schemas"
	"github.com/xkilldash9x/scalpel-dom/internal/driver"
)

// binding is one element inside a Document's current tree. It holds a raw
// node pointer; once the node is no longer reachable from the document root
// (removed, or the whole tree was replaced) every operation reports a stale
// reference.
type binding struct {
	doc  *Document
	node *html.Node
}

var (
	_ driver.Binding = (*binding)(nil)
	_ driver.Scope   = (*binding)(nil)
)

// Capabilities declares the minimal form only: no modifier/offset clicks,
// no extended set. Callers that pass extended arguments must fail before
// reaching this driver.
func (b *binding) Capabilities() driver.Capabilities {
	return driver.Capabilities{}
}

// ensureAttached verifies the node is still part of the document tree.
func (b *binding) ensureAttached(op driver.Op) error {
	for n := b.node; n != nil; n = n.Parent {
		if n == b.doc.root {
			return nil
		}
	}
	return driver.NewError(driver.KindStaleReference, op, nodePath(b.node), nil)
}

func (b *binding) TagName(context.Context) (string, error) {
	if err := b.ensureAttached(driver.OpTagName); err != nil {
		return "", err
	}
	return strings.ToLower(b.node.Data), nil
}

func (b *binding) Attribute(_ context.Context, name string) (string, bool, error) {
	if err := b.ensureAttached(driver.OpAttribute); err != nil {
		return "", false, err
	}
	v, ok := getAttr(b.node, name)
	return v, ok, nil
}

func (b *binding) AllText(context.Context) (string, error) {
	if err := b.ensureAttached(driver.OpText); err != nil {
		return "", err
	}
	return allText(b.node), nil
}

func (b *binding) VisibleText(context.Context) (string, error) {
	if err := b.ensureAttached(driver.OpText); err != nil {
		return "", err
	}
	return visibleText(b.node), nil
}

func (b *binding) Value(context.Context) (any, error) {
	if err := b.ensureAttached(driver.OpValue); err != nil {
		return nil, err
	}
	switch strings.ToLower(b.node.Data) {
	case "select":
		values := selectedOptionValues(b.node)
		if hasAttr(b.node, "multiple") {
			return values, nil
		}
		if len(values) > 0 {
			return values[0], nil
		}
		// A single select with no explicit selection reports its first
		// enabled option, matching browser behavior.
		if first := firstOption(b.node); first != nil {
			return optionValue(first), nil
		}
		return "", nil
	case "textarea":
		return rawText(b.node), nil
	default:
		v, _ := getAttr(b.node, "value")
		return v, nil
	}
}

func (b *binding) Path(context.Context) (string, error) {
	if err := b.ensureAttached(driver.OpPath); err != nil {
		return "", err
	}
	return nodePath(b.node), nil
}

func (b *binding) Visible(context.Context) (bool, error) {
	if err := b.ensureAttached(driver.OpState); err != nil {
		return false, err
	}
	return nodeVisible(b.node), nil
}

func (b *binding) Checked(context.Context) (bool, error) {
	if err := b.ensureAttached(driver.OpState); err != nil {
		return false, err
	}
	return hasAttr(b.node, "checked"), nil
}

func (b *binding) Disabled(context.Context) (bool, error) {
	if err := b.ensureAttached(driver.OpState); err != nil {
		return false, err
	}
	return nodeDisabled(b.node), nil
}

func (b *binding) ReadOnly(context.Context) (bool, error) {
	if err := b.ensureAttached(driver.OpState); err != nil {
		return false, err
	}
	return hasAttr(b.node, "readonly"), nil
}

func (b *binding) Selected(context.Context) (bool, error) {
	if err := b.ensureAttached(driver.OpState); err != nil {
		return false, err
	}
	return hasAttr(b.node, "selected"), nil
}

func (b *binding) Multiple(context.Context) (bool, error) {
	if err := b.ensureAttached(driver.OpState); err != nil {
		return false, err
	}
	return hasAttr(b.node, "multiple"), nil
}

func (b *binding) SetValue(ctx context.Context, value any) error {
	if err := b.ensureAttached(driver.OpSet); err != nil {
		return err
	}
	tag := strings.ToLower(b.node.Data)
	switch v := value.(type) {
	case bool:
		inputType, _ := getAttr(b.node, "type")
		if tag != "input" || (inputType != "checkbox" && inputType != "radio") {
			return fmt.Errorf("htmldoc: boolean value on non-checkable element <%s>", tag)
		}
		if v {
			setAttr(b.node, "checked", "checked")
		} else {
			removeAttr(b.node, "checked")
		}
	case string:
		switch tag {
		case "textarea":
			replaceText(b.node, v)
		case "input":
			setAttr(b.node, "value", v)
		default:
			if hasAttr(b.node, "contenteditable") {
				replaceText(b.node, v)
				break
			}
			return fmt.Errorf("htmldoc: cannot set value of <%s>", tag)
		}
	default:
		return fmt.Errorf("htmldoc: unsupported value type %T", value)
	}
	b.doc.recordEvent(b.node, "change")
	return nil
}

func (b *binding) SetValueWith(_ context.Context, _ any, _ schemas.SetOptions) error {
	return driver.NewError(driver.KindNotSupported, driver.OpSet, nodePath(b.node), nil)
}

func (b *binding) Click(context.Context) error {
	if err := b.ensureAttached(driver.OpClick); err != nil {
		return err
	}
	b.applyClickSemantics()
	b.doc.recordEvent(b.node, "click")
	return nil
}

func (b *binding) RightClick(context.Context) error {
	if err := b.ensureAttached(driver.OpRightClick); err != nil {
		return err
	}
	b.doc.recordEvent(b.node, "contextmenu")
	return nil
}

func (b *binding) DoubleClick(context.Context) error {
	if err := b.ensureAttached(driver.OpDoubleClick); err != nil {
		return err
	}
	b.doc.recordEvent(b.node, "dblclick")
	return nil
}

func (b *binding) ClickWith(_ context.Context, _ schemas.ClickOptions) error {
	return driver.NewError(driver.KindNotSupported, driver.OpClick, nodePath(b.node), nil)
}

func (b *binding) RightClickWith(_ context.Context, _ schemas.ClickOptions) error {
	return driver.NewError(driver.KindNotSupported, driver.OpRightClick, nodePath(b.node), nil)
}

func (b *binding) DoubleClickWith(_ context.Context, _ schemas.ClickOptions) error {
	return driver.NewError(driver.KindNotSupported, driver.OpDoubleClick, nodePath(b.node), nil)
}

func (b *binding) Hover(context.Context) error {
	if err := b.ensureAttached(driver.OpHover); err != nil {
		return err
	}
	b.doc.recordEvent(b.node, "mouseover")
	return nil
}

func (b *binding) Trigger(_ context.Context, event string) error {
	if err := b.ensureAttached(driver.OpTrigger); err != nil {
		return err
	}
	b.doc.recordEvent(b.node, event)
	return nil
}

func (b *binding) SendKeys(_ context.Context, keys string) error {
	if err := b.ensureAttached(driver.OpSendKeys); err != nil {
		return err
	}
	switch strings.ToLower(b.node.Data) {
	case "textarea":
		replaceText(b.node, rawText(b.node)+keys)
	case "input":
		current, _ := getAttr(b.node, "value")
		setAttr(b.node, "value", current+keys)
	}
	b.doc.recordEvent(b.node, "keydown")
	return nil
}

func (b *binding) DragTo(_ context.Context, target driver.Binding) error {
	if err := b.ensureAttached(driver.OpDragTo); err != nil {
		return err
	}
	dest, ok := target.(*binding)
	if !ok {
		return driver.NewError(driver.KindNotSupported, driver.OpDragTo, nodePath(b.node),
			fmt.Errorf("drag target belongs to a different backend (%T)", target))
	}
	if err := dest.ensureAttached(driver.OpDragTo); err != nil {
		return err
	}
	b.doc.recordEvent(b.node, "dragstart")
	b.doc.recordEvent(dest.node, "drop")
	return nil
}

func (b *binding) SelectOption(context.Context) error {
	if err := b.ensureAttached(driver.OpSelect); err != nil {
		return err
	}
	if strings.ToLower(b.node.Data) != "option" {
		return fmt.Errorf("htmldoc: select_option on non-option element <%s>", b.node.Data)
	}
	sel := ancestorByTag(b.node, "select")
	if sel != nil && !hasAttr(sel, "multiple") {
		for _, opt := range descendantsByTag(sel, "option") {
			removeAttr(opt, "selected")
		}
	}
	setAttr(b.node, "selected", "selected")
	if sel != nil {
		b.doc.recordEvent(sel, "change")
	}
	return nil
}

func (b *binding) UnselectOption(context.Context) error {
	if err := b.ensureAttached(driver.OpUnselect); err != nil {
		return err
	}
	if strings.ToLower(b.node.Data) != "option" {
		return fmt.Errorf("htmldoc: unselect_option on non-option element <%s>", b.node.Data)
	}
	sel := ancestorByTag(b.node, "select")
	if sel == nil || !hasAttr(sel, "multiple") {
		return fmt.Errorf("htmldoc: cannot unselect option from a single-choice select")
	}
	removeAttr(b.node, "selected")
	b.doc.recordEvent(sel, "change")
	return nil
}

// ReloadAndFind implements driver.Scope, letting an element act as the
// resolution scope for handles found inside it. The tree is live, so the
// "reload" part is just validating the scope element is still attached.
func (b *binding) ReloadAndFind(ctx context.Context, loc schemas.Locator) (driver.Binding, error) {
	if err := b.ensureAttached(driver.OpFind); err != nil {
		return nil, err
	}
	n, err := b.doc.resolveFirst(ctx, b.node, loc)
	if err != nil {
		return nil, err
	}
	return &binding{doc: b.doc, node: n}, nil
}

// applyClickSemantics mutates form state the way a browser would for the
// few element kinds where a click has a durable effect.
func (b *binding) applyClickSemantics() {
	tag := strings.ToLower(b.node.Data)
	inputType, _ := getAttr(b.node, "type")
	switch {
	case tag == "input" && inputType == "checkbox":
		if hasAttr(b.node, "checked") {
			removeAttr(b.node, "checked")
		} else {
			setAttr(b.node, "checked", "checked")
		}
	case tag == "input" && inputType == "radio":
		name, _ := getAttr(b.node, "name")
		if form := ancestorByTag(b.node, "form"); form != nil && name != "" {
			for _, peer := range descendantsByTag(form, "input") {
				peerName, _ := getAttr(peer, "name")
				if t, _ := getAttr(peer, "type"); t == "radio" && peerName == name {
					removeAttr(peer, "checked")
				}
			}
		}
		setAttr(b.node, "checked", "checked")
	case tag == "details":
		if hasAttr(b.node, "open") {
			removeAttr(b.node, "open")
		} else {
			setAttr(b.node, "open", "open")
		}
	}
}
