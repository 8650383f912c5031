// File: internal/driver/cdp/js.go
package cdp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xkilldash9x/scalpel-dom/internal/driver"
)

// Every page-side operation evaluates to an envelope: either a sentinel
// error string or a JSON value. The sentinel vocabulary is fixed so Go can
// classify page-side failures without parsing free-form messages.
const (
	sentinelStale        = "stale"
	sentinelNotReady     = "not_ready"
	sentinelObsolete     = "obsolete"
	sentinelNotFound     = "not_found"
	sentinelNotSupported = "not_supported"
)

type envelope struct {
	Err string          `json:"err,omitempty"`
	V   json.RawMessage `json:"v,omitempty"`
}

// classify maps a page-side sentinel to an error kind. Unrecognized
// sentinels classify as unknown so they propagate as unexpected failures.
func classify(sentinel string) driver.Kind {
	switch sentinel {
	case sentinelStale:
		return driver.KindStaleReference
	case sentinelNotReady:
		return driver.KindNotReady
	case sentinelObsolete:
		return driver.KindObsolete
	case sentinelNotFound:
		return driver.KindNotFound
	case sentinelNotSupported:
		return driver.KindNotSupported
	default:
		return driver.KindUnknown
	}
}

// sentinelError converts a non-empty envelope error into a tagged driver
// error for the given operation and selector.
func sentinelError(op driver.Op, selector, sentinel string) error {
	return driver.NewError(classify(sentinel), op, selector, errors.New(sentinel))
}

// jsQuote renders s as a JavaScript string literal. JSON string encoding is
// a valid JS literal, including the U+2028/U+2029 escapes.
func jsQuote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshal of a string cannot fail; keep the fallback total anyway.
		return `""`
	}
	return string(b)
}

// jsHelpers is prepended to every evaluated expression. It resolves a node
// from its stored XPath and computes the unique XPath of a found node, so
// bindings stay addressable across re-resolution.
const jsHelpers = `
const __resolve = (path) => {
  const r = document.evaluate(path, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null);
  const el = r.singleNodeValue;
  if (!el || !el.isConnected) return null;
  return el;
};
const __uniquePath = (el) => {
  if (el.id) return '//*[@id=' + JSON.stringify(el.id) + ']';
  const parts = [];
  let cur = el;
  while (cur && cur.nodeType === Node.ELEMENT_NODE) {
    let idx = 1;
    for (let sib = cur.previousElementSibling; sib; sib = sib.previousElementSibling) {
      if (sib.tagName === cur.tagName) idx++;
    }
    parts.unshift(cur.tagName.toLowerCase() + '[' + idx + ']');
    cur = cur.parentElement;
  }
  return '/' + parts.join('/');
};
const __rendered = (el) => {
  if (!el.getClientRects().length) return false;
  const style = window.getComputedStyle(el);
  return style.visibility !== 'hidden';
};
const __normalize = (s) => s.replace(/\s+/g, ' ').trim();
`

// nodeExpr wraps body in a function receiving the element resolved from
// path. A vanished node short-circuits to the stale sentinel before body
// runs.
func nodeExpr(path, body string) string {
	return fmt.Sprintf(`(() => {
%s
const el = __resolve(%s);
if (!el) return {err: %q};
%s
})()`, jsHelpers, jsQuote(path), sentinelStale, body)
}

// rootExpr wraps body in a function with no element pre-resolved; body sees
// only the helper functions.
func rootExpr(body string) string {
	return fmt.Sprintf(`(() => {
%s
%s
})()`, jsHelpers, body)
}
