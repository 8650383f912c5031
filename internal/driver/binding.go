// internal/driver/binding.go
package driver

import (
	"context"

	"github.com/xkilldash9x/scalpel-dom/api/schemas"
)

// Binding is the driver-specific representation of one remote DOM node. A
// handle owns exactly one Binding at a time and replaces it wholesale when
// it re-resolves; the pointer is never shared with callers.
//
// Every method that can fail against the live document returns either nil
// or a *Error whose Kind classifies the failure. Errors a backend cannot
// classify must be returned unwrapped so they propagate as unexpected.
//
// The extended-form methods (ClickWith, SetValueWith, ...) are only called
// after the caller has consulted Capabilities; a backend that does not
// declare support may implement them as a KindNotSupported return.
type Binding interface {
	// Capabilities returns the backend's static capability descriptor.
	Capabilities() Capabilities

	// TagName returns the lowercase element tag name.
	TagName(ctx context.Context) (string, error)
	// Attribute reads one attribute by name. ok is false when the attribute
	// is absent (as opposed to present and empty).
	Attribute(ctx context.Context, name string) (value string, ok bool, err error)
	// AllText extracts the element's full text content, rendered or not.
	AllText(ctx context.Context) (string, error)
	// VisibleText extracts only text the user could currently see.
	VisibleText(ctx context.Context) (string, error)
	// Value reads the current form value. Multi-selects return []string,
	// everything else returns string.
	Value(ctx context.Context) (any, error)
	// Path returns a location path (an XPath) for the node, for diagnostics.
	Path(ctx context.Context) (string, error)

	// Boolean state queries.
	Visible(ctx context.Context) (bool, error)
	Checked(ctx context.Context) (bool, error)
	Disabled(ctx context.Context) (bool, error)
	ReadOnly(ctx context.Context) (bool, error)
	Selected(ctx context.Context) (bool, error)
	Multiple(ctx context.Context) (bool, error)

	// SetValue writes a form value using the minimal form.
	SetValue(ctx context.Context, value any) error
	// SetValueWith writes a form value with extended options.
	SetValueWith(ctx context.Context, value any, opts schemas.SetOptions) error

	// Pointer actions, minimal forms.
	Click(ctx context.Context) error
	RightClick(ctx context.Context) error
	DoubleClick(ctx context.Context) error
	// Pointer actions, extended forms.
	ClickWith(ctx context.Context, opts schemas.ClickOptions) error
	RightClickWith(ctx context.Context, opts schemas.ClickOptions) error
	DoubleClickWith(ctx context.Context, opts schemas.ClickOptions) error

	Hover(ctx context.Context) error
	// Trigger dispatches a DOM event by name on the node.
	Trigger(ctx context.Context, event string) error
	// SendKeys types a keystroke sequence into the node.
	SendKeys(ctx context.Context, keys string) error
	// DragTo drags this node onto another binding from the same backend.
	DragTo(ctx context.Context, target Binding) error

	// SelectOption marks an <option> node selected, deselecting siblings
	// when the owning <select> is single-choice.
	SelectOption(ctx context.Context) error
	// UnselectOption clears an <option> inside a multi-select.
	UnselectOption(ctx context.Context) error
}

// Scope is the context a locator was originally resolved against: the
// document root or an enclosing element. A handle keeps a non-owning
// reference to its scope purely so it can re-resolve itself.
type Scope interface {
	// ReloadAndFind refreshes the scope's own view of the document, then
	// resolves the first match for the locator. It returns a
	// KindNotFound-tagged error when nothing matches; any other failure is
	// returned as-is.
	ReloadAndFind(ctx context.Context, loc schemas.Locator) (Binding, error)
}
