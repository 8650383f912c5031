// internal/driver/htmldoc/document.go

// Package htmldoc implements the driver boundary over an in-process HTML
// tree. There is no real browser behind it: interactions mutate the parsed
// document directly (toggling checkboxes, recording dispatched events), and
// lookups re-query the live tree. It backs deterministic tests and offline
// inspection, and deliberately declares the minimal capability set so the
// capability-negotiation path gets exercised against a limited backend.
package htmldoc

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/scalpel-dom/api/schemas"
	"github.com/xkilldash9x/scalpel-dom/internal/driver"
)

// Event is one DOM event the document has observed, kept for assertions and
// diagnostics.
type Event struct {
	Path string
	Name string
}

// Document owns a parsed HTML tree and acts as the root scope for lookups.
// Replacing the content (SetContent) swaps the whole tree; bindings into
// the old tree then report stale references, exactly like a page navigation
// under a real browser.
type Document struct {
	logger *zap.Logger
	root   *html.Node
	events []Event
}

// Parse builds a document from an HTML stream.
func Parse(r io.Reader, logger *zap.Logger) (*Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parsing document: %w", err)
	}
	return &Document{logger: logger.Named("htmldoc"), root: root}, nil
}

// ParseString builds a document from an HTML string.
func ParseString(content string, logger *zap.Logger) (*Document, error) {
	return Parse(strings.NewReader(content), logger)
}

// SetContent replaces the document tree. All bindings resolved against the
// previous tree become stale.
func (d *Document) SetContent(content string) error {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("htmldoc: reparsing document: %w", err)
	}
	d.root = root
	d.logger.Debug("document content replaced")
	return nil
}

// Events returns the events dispatched against this document so far.
func (d *Document) Events() []Event { return d.events }

func (d *Document) recordEvent(n *html.Node, name string) {
	d.events = append(d.events, Event{Path: nodePath(n), Name: name})
}

// Find resolves the first match for a locator against the current tree.
func (d *Document) Find(ctx context.Context, loc schemas.Locator) (driver.Binding, error) {
	n, err := d.resolveFirst(ctx, d.root, loc)
	if err != nil {
		return nil, err
	}
	return &binding{doc: d, node: n}, nil
}

// ReloadAndFind implements driver.Scope. The tree is live, so reloading the
// scope is just re-querying the current root.
func (d *Document) ReloadAndFind(ctx context.Context, loc schemas.Locator) (driver.Binding, error) {
	return d.Find(ctx, loc)
}

// resolveFirst runs the locator under the given subtree root and returns
// the first match after option filtering.
func (d *Document) resolveFirst(ctx context.Context, scope *html.Node, loc schemas.Locator) (*html.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var nodes []*html.Node
	switch loc.Kind {
	case schemas.SelectorCSS:
		// Compile explicitly: goquery's Find swallows the parse error and
		// matches nothing, which would misreport a broken selector as an
		// honest no-match.
		sel, err := cascadia.Compile(loc.Value)
		if err != nil {
			return nil, fmt.Errorf("htmldoc: invalid css selector %q: %w", loc.Value, err)
		}
		nodes = goquery.NewDocumentFromNode(scope).FindMatcher(sel).Nodes
	case schemas.SelectorXPath:
		found, err := htmlquery.QueryAll(scope, loc.Value)
		if err != nil {
			return nil, fmt.Errorf("htmldoc: invalid xpath %q: %w", loc.Value, err)
		}
		nodes = found
	default:
		return nil, fmt.Errorf("htmldoc: unknown selector kind %q", loc.Kind)
	}

	for _, n := range nodes {
		if n.Type != html.ElementNode {
			continue
		}
		if loc.Options.VisibleOnly && !nodeVisible(n) {
			continue
		}
		if loc.Options.ExactText != "" && visibleText(n) != loc.Options.ExactText {
			continue
		}
		return n, nil
	}
	return nil, driver.NewError(driver.KindNotFound, driver.OpFind, loc.String(), nil)
}
