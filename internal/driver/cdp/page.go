// File: internal/driver/cdp/page.go
package cdp

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/scalpel-dom/api/schemas"
	"github.com/xkilldash9x/scalpel-dom/internal/driver"
)

// Page is the document-level resolution scope. The document is always the
// current one, so reloading the scope is a no-op and ReloadAndFind is plain
// resolution.
type Page struct {
	browser *Browser
}

var _ driver.Scope = (*Page)(nil)

// Find resolves the first match for loc in the current document.
func (p *Page) Find(ctx context.Context, loc schemas.Locator) (driver.Binding, error) {
	body := "const scope = document;\n" + findFilterJS(loc)
	var path string
	if err := evalEnvelope(ctx, p.browser, driver.OpFind, loc.String(), rootExpr(body), &path); err != nil {
		return nil, err
	}
	return &node{browser: p.browser, path: path}, nil
}

func (p *Page) ReloadAndFind(ctx context.Context, loc schemas.Locator) (driver.Binding, error) {
	return p.Find(ctx, loc)
}

// findFilterJS builds the page-side matching loop for loc. It expects a
// `scope` variable (document or an element) to be in scope and returns the
// unique XPath of the first candidate surviving the locator's filters.
func findFilterJS(loc schemas.Locator) string {
	exact := "null"
	if loc.Options.ExactText != "" {
		exact = jsQuote(loc.Options.ExactText)
	}
	return fmt.Sprintf(`
let candidates = [];
try {
  if (%s === 'xpath') {
    const base = scope === document ? document : scope;
    const r = document.evaluate(%s, base, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
    for (let i = 0; i < r.snapshotLength; i++) candidates.push(r.snapshotItem(i));
  } else {
    candidates = Array.from(scope.querySelectorAll(%s));
  }
} catch (e) {
  return {err: 'selector:' + e.message};
}
const visibleOnly = %t;
const exact = %s;
for (const c of candidates) {
  if (c.nodeType !== Node.ELEMENT_NODE) continue;
  if (visibleOnly && !__rendered(c)) continue;
  if (exact !== null && __normalize(c.innerText || '') !== exact) continue;
  return {v: __uniquePath(c)};
}
return {err: %q};`,
		jsQuote(string(loc.Kind)),
		jsQuote(loc.Value),
		jsQuote(loc.Value),
		loc.Options.VisibleOnly,
		exact,
		sentinelNotFound)
}
