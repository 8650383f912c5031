package schemas

import "time"

// -- Locator Schemas --

// SelectorKind identifies the query language a locator value is written in.
type SelectorKind string

const (
	SelectorCSS   SelectorKind = "css"
	SelectorXPath SelectorKind = "xpath"
)

// LocatorOptions are the lookup options captured when an element was first
// resolved. They travel with the locator so a re-resolution behaves exactly
// like the original lookup.
type LocatorOptions struct {
	// VisibleOnly restricts matches to elements currently rendered visible.
	VisibleOnly bool `json:"visible_only"`
	// ExactText, when non-empty, requires the match's visible text to equal
	// this string.
	ExactText string `json:"exact_text,omitempty"`
}

// Locator is the immutable description of how an element was found: the
// selector language, the selector itself, and the options that were in
// effect. It is captured at handle construction and reused verbatim when a
// stale handle re-resolves itself.
type Locator struct {
	Kind    SelectorKind   `json:"kind"`
	Value   string         `json:"value"`
	Options LocatorOptions `json:"options"`
}

// String renders the locator in a log-friendly form.
func (l Locator) String() string {
	return string(l.Kind) + ":" + l.Value
}

// -- Input Schemas --

// KeyModifier is a bitmask of active keyboard modifiers. The values
// correspond directly to the CDP input.DispatchMouseEvent modifiers
// bitfield so the chromedp driver can pass them through unchanged.
type KeyModifier int

const (
	ModNone  KeyModifier = 0
	ModAlt   KeyModifier = 1
	ModCtrl  KeyModifier = 2
	ModMeta  KeyModifier = 4
	ModShift KeyModifier = 8
)

// Position is an offset in CSS pixels relative to an element's border-box
// top-left corner.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ClickOptions is the extended argument form for pointer actions (click,
// right click, double click). A driver that does not declare support for it
// must never receive one; callers consult the driver's capability
// descriptor first.
type ClickOptions struct {
	// Modifiers held down for the duration of the click.
	Modifiers KeyModifier `json:"modifiers"`
	// Offset of the pointer from the element's top-left corner. Nil means
	// the element's center.
	Offset *Position `json:"offset,omitempty"`
}

// SetOptions is the extended argument form for value mutation.
type SetOptions struct {
	// RapidFill bypasses per-key input simulation and writes the value in
	// one driver call.
	RapidFill bool `json:"rapid_fill"`
	// KeyDelay inserts a pause between simulated keystrokes when RapidFill
	// is off.
	KeyDelay time.Duration `json:"key_delay"`
}
