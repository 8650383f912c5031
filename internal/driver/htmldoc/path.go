// internal/driver/htmldoc/path.go
package htmldoc

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// nodePath builds an XPath locating the node inside its document. An
// ancestor with an id attribute is used as the anchor when available, which
// keeps paths short and stable across unrelated document edits; otherwise
// the path runs from the root with 1-based sibling indices.
func nodePath(n *html.Node) string {
	if n == nil {
		return ""
	}

	var segments []string
	for cur := n; cur != nil && cur.Type != html.DocumentNode; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		tag := strings.ToLower(cur.Data)
		if tag == "" {
			continue
		}

		if id, ok := getAttr(cur, "id"); ok && id != "" {
			segments = append(segments, fmt.Sprintf(`//*[@id=%q]`, id))
			break
		}

		// 1-based position among same-tag element siblings.
		pos := 1
		for prev := cur.PrevSibling; prev != nil; prev = prev.PrevSibling {
			if prev.Type == html.ElementNode && strings.EqualFold(prev.Data, tag) {
				pos++
			}
		}
		segments = append(segments, fmt.Sprintf("%s[%d]", tag, pos))
	}

	if len(segments) == 0 {
		return "/"
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	path := strings.Join(segments, "/")
	if !strings.HasPrefix(path, "//*[@id=") {
		path = "/" + path
	}
	return path
}
