// File: cmd/inspect.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/scalpel-dom/api/schemas"
	"github.com/xkilldash9x/scalpel-dom/internal/config"
	"github.com/xkilldash9x/scalpel-dom/internal/driver"
	"github.com/xkilldash9x/scalpel-dom/internal/driver/cdp"
	"github.com/xkilldash9x/scalpel-dom/internal/driver/htmldoc"
	"github.com/xkilldash9x/scalpel-dom/internal/handle"
	"github.com/xkilldash9x/scalpel-dom/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	inspectCSS         []string
	inspectXPath       []string
	inspectVisibleOnly bool
	inspectJSON        bool
	inspectBrowser     bool
)

// inspectReport is what one selector resolves to. Err is set instead of the
// element fields when resolution or readback failed.
type inspectReport struct {
	Selector string `json:"selector"`
	Err      string `json:"error,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Path     string `json:"path,omitempty"`
	Text     string `json:"text,omitempty"`
	Value    any    `json:"value,omitempty"`
	Visible  bool   `json:"visible"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <url-or-file>",
	Short: "Resolve selectors in a document and report what they point at.",
	Long: `Inspect loads a document from a URL or local file, resolves each given
selector to an element handle, and reports tag, location path, text, value
and visibility. With --browser the document is loaded in headless Chrome;
otherwise it is parsed in-process.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(inspectCSS)+len(inspectXPath) == 0 {
			return fmt.Errorf("at least one --css or --xpath selector is required")
		}
		locators := collectLocators()

		ctx := cmd.Context()
		logger := observability.GetLogger()

		scope, cleanup, err := openScope(ctx, args[0], cfg.Browser, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		reports := inspectAll(ctx, scope, locators, cfg.Session, logger)
		return renderReports(cmd.OutOrStdout(), reports)
	},
}

func init() {
	inspectCmd.Flags().StringArrayVarP(&inspectCSS, "css", "s", nil, "CSS selector to inspect (repeatable)")
	inspectCmd.Flags().StringArrayVarP(&inspectXPath, "xpath", "x", nil, "XPath selector to inspect (repeatable)")
	inspectCmd.Flags().BoolVar(&inspectVisibleOnly, "visible-only", false, "only match elements currently rendered visible")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "emit the report as JSON")
	inspectCmd.Flags().BoolVar(&inspectBrowser, "browser", false, "load the document in headless Chrome instead of parsing in-process")
	rootCmd.AddCommand(inspectCmd)
}

func collectLocators() []schemas.Locator {
	opts := schemas.LocatorOptions{VisibleOnly: inspectVisibleOnly}
	locators := make([]schemas.Locator, 0, len(inspectCSS)+len(inspectXPath))
	for _, sel := range inspectCSS {
		locators = append(locators, schemas.Locator{Kind: schemas.SelectorCSS, Value: sel, Options: opts})
	}
	for _, sel := range inspectXPath {
		locators = append(locators, schemas.Locator{Kind: schemas.SelectorXPath, Value: sel, Options: opts})
	}
	return locators
}

// openScope loads the target document and returns the resolution scope for
// it, plus a cleanup releasing whatever backs it.
func openScope(ctx context.Context, target string, browserCfg config.BrowserConfig, logger *zap.Logger) (driver.Scope, func(), error) {
	if inspectBrowser {
		browser, err := cdp.New(ctx, browserCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		url := target
		if !isURL(url) {
			abs, err := filepath.Abs(target)
			if err != nil {
				browser.Close()
				return nil, nil, fmt.Errorf("resolving %s: %w", target, err)
			}
			url = "file://" + abs
		}
		if err := browser.Navigate(ctx, url); err != nil {
			browser.Close()
			return nil, nil, err
		}
		return browser.Root(), browser.Close, nil
	}

	content, err := fetchDocument(ctx, target)
	if err != nil {
		return nil, nil, err
	}
	doc, err := htmldoc.ParseString(content, logger)
	if err != nil {
		return nil, nil, err
	}
	return doc, func() {}, nil
}

func fetchDocument(ctx context.Context, target string) (string, error) {
	if isURL(target) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return "", fmt.Errorf("building request for %s: %w", target, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("fetching %s: %w", target, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("fetching %s: unexpected status %s", target, resp.Status)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", target, err)
		}
		return string(body), nil
	}
	body, err := os.ReadFile(target)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", target, err)
	}
	return string(body), nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// inspectAll resolves every locator concurrently. Per-selector failures are
// reported in place rather than aborting the batch.
func inspectAll(ctx context.Context, scope driver.Scope, locators []schemas.Locator, session config.SessionConfig, logger *zap.Logger) []inspectReport {
	reports := make([]inspectReport, len(locators))
	g, gctx := errgroup.WithContext(ctx)
	for i, loc := range locators {
		g.Go(func() error {
			reports[i] = inspectOne(gctx, scope, loc, session, logger)
			return nil
		})
	}
	// Workers only ever return nil; the group exists for the fan-out and the
	// shared cancellation context.
	_ = g.Wait()
	return reports
}

func inspectOne(ctx context.Context, scope driver.Scope, loc schemas.Locator, session config.SessionConfig, logger *zap.Logger) inspectReport {
	report := inspectReport{Selector: loc.String()}

	binding, err := scope.ReloadAndFind(ctx, loc)
	if err != nil {
		report.Err = err.Error()
		return report
	}
	el, err := handle.New(binding, scope, loc, handle.Options{
		Reloadable:      session.Reloadable,
		WaitTimeout:     session.WaitTimeout,
		PollInterval:    session.PollInterval,
		VisibleTextOnly: session.VisibleTextOnly,
		Logger:          logger,
	})
	if err != nil {
		report.Err = err.Error()
		return report
	}

	if report.Tag, err = el.TagName(ctx); err != nil {
		report.Err = err.Error()
		return report
	}
	if report.Path, err = el.Path(ctx); err != nil {
		// Some backends cannot produce a path; the report just omits it.
		logger.Debug("path unavailable", zap.Stringer("locator", loc), zap.Error(err))
	}
	if report.Text, err = el.Text(ctx); err != nil {
		report.Err = err.Error()
		return report
	}
	if report.Value, err = el.Value(ctx); err != nil {
		report.Value = nil
	}
	if report.Visible, err = el.Visible(ctx); err != nil {
		report.Err = err.Error()
	}
	return report
}

func renderReports(w io.Writer, reports []inspectReport) error {
	if inspectJSON {
		out, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
	for _, r := range reports {
		if r.Err != "" {
			fmt.Fprintf(w, "%-30s ERROR %s\n", r.Selector, r.Err)
			continue
		}
		fmt.Fprintf(w, "%-30s Element{tag=%s path=%s} visible=%t text=%q\n",
			r.Selector, r.Tag, r.Path, r.Visible, r.Text)
	}
	return nil
}
