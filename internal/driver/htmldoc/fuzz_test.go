// internal/driver/htmldoc/fuzz_test.go
package htmldoc

import (
	"context"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"

	"github.com/xkilldash9x/scalpel-dom/api/schemas"
)

// FuzzFind hammers locator resolution with arbitrary selector strings in
// both query languages. Malformed locators must come back as errors, never
// as panics, and must never be classified as the expected not-found kind by
// accident of parsing.
func FuzzFind(f *testing.F) {
	f.Add([]byte("#go"))
	f.Add([]byte(`//input[@name='username']`))
	f.Add([]byte("p.greeting > b"))
	f.Add([]byte("///[[["))

	f.Fuzz(func(t *testing.T, data []byte) {
		fc := fuzz.NewConsumer(data)
		selector, err := fc.GetString()
		if err != nil {
			return
		}
		useXPath, err := fc.GetBool()
		if err != nil {
			return
		}

		doc, err := ParseString(fixturePage, nil)
		if err != nil {
			t.Fatalf("fixture must parse: %v", err)
		}

		kind := schemas.SelectorCSS
		if useXPath {
			kind = schemas.SelectorXPath
		}
		_, _ = doc.Find(context.Background(), schemas.Locator{Kind: kind, Value: selector})
	})
}
