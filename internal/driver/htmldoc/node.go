// internal/driver/htmldoc/node.go
package htmldoc

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// -- Attribute helpers --

func getAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, name string) bool {
	_, ok := getAttr(n, name)
	return ok
}

func setAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if strings.EqualFold(n.Attr[i].Key, name) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	for i := range n.Attr {
		if strings.EqualFold(n.Attr[i].Key, name) {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// -- Tree walking --

func ancestorByTag(n *html.Node, tag string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && strings.EqualFold(p.Data, tag) {
			return p
		}
	}
	return nil
}

func descendantsByTag(root *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && strings.EqualFold(c.Data, tag) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// -- Text extraction --

// allText is the element's full text content with whitespace collapsed.
func allText(n *html.Node) string {
	return normalizeSpace(htmlquery.InnerText(n))
}

// rawText returns the concatenated text children without normalization.
// Used for textarea values, where whitespace is data.
func rawText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// visibleText collects text from rendered subtrees only.
func visibleText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(c.Data)
				sb.WriteByte(' ')
			case html.ElementNode:
				if elementRendered(c) {
					walk(c)
				}
			}
		}
	}
	if elementRendered(n) || n.Type != html.ElementNode {
		walk(n)
	}
	return normalizeSpace(sb.String())
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// replaceText swaps an element's children for a single text node.
func replaceText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// -- Visibility and state heuristics --

var neverRendered = map[string]bool{
	"script":   true,
	"style":    true,
	"head":     true,
	"template": true,
	"meta":     true,
	"link":     true,
	"noscript": true,
}

// elementRendered checks the element's own presentation only, not its
// ancestors.
func elementRendered(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return true
	}
	tag := strings.ToLower(n.Data)
	if neverRendered[tag] {
		return false
	}
	if hasAttr(n, "hidden") {
		return false
	}
	if tag == "input" {
		if t, _ := getAttr(n, "type"); strings.EqualFold(t, "hidden") {
			return false
		}
	}
	if style, ok := getAttr(n, "style"); ok {
		compact := strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(compact, "display:none") || strings.Contains(compact, "visibility:hidden") {
			return false
		}
	}
	return true
}

// nodeVisible walks the ancestor chain: an element is visible only when it
// and every ancestor are rendered.
func nodeVisible(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && !elementRendered(p) {
			return false
		}
	}
	return true
}

// nodeDisabled covers the element's own disabled attribute plus the
// containers that disable their descendants (optgroup, fieldset, select).
func nodeDisabled(n *html.Node) bool {
	if hasAttr(n, "disabled") {
		return true
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		switch strings.ToLower(p.Data) {
		case "optgroup", "fieldset", "select":
			if hasAttr(p, "disabled") {
				return true
			}
		}
	}
	return false
}

// -- Select/option helpers --

func optionValue(opt *html.Node) string {
	if v, ok := getAttr(opt, "value"); ok {
		return v
	}
	return allText(opt)
}

func selectedOptionValues(sel *html.Node) []string {
	var out []string
	for _, opt := range descendantsByTag(sel, "option") {
		if hasAttr(opt, "selected") {
			out = append(out, optionValue(opt))
		}
	}
	return out
}

// firstOption returns the select's default option: the first one that is
// not disabled, per the HTML default-selectedness rules.
func firstOption(sel *html.Node) *html.Node {
	for _, opt := range descendantsByTag(sel, "option") {
		if !nodeDisabled(opt) {
			return opt
		}
	}
	return nil
}
