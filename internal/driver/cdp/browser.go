// File: internal/driver/cdp/browser.go

// Package cdp implements the driver boundary against a live Chromium
// instance over the DevTools protocol. Elements are addressed by the
// unique XPath captured at resolution time; every operation re-resolves
// the path in the page, so a node that has gone away surfaces as a
// stale-reference error rather than a protocol failure. This backend
// declares the full capability set: pointer actions accept modifiers and
// offsets, and value mutation accepts fill options.
package cdp

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-dom/internal/config"
)

// Browser owns one Chromium process and the chromedp contexts speaking to
// it. It is the root scope for element resolution.
type Browser struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// New launches a browser according to cfg. The returned Browser must be
// closed to reap the process.
func New(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Browser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("cdp")

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.IgnoreTLSErrors {
		opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// Force the browser process up now so a broken environment fails fast
	// instead of on the first element operation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("cdp: starting browser: %w", err)
	}

	logger.Debug("browser started",
		zap.Bool("headless", cfg.Headless),
		zap.Int("window_width", cfg.WindowWidth),
		zap.Int("window_height", cfg.WindowHeight))

	return &Browser{
		cfg:         cfg,
		logger:      logger,
		ctx:         browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}, nil
}

// Navigate loads a URL and waits for the load event, bounded by the
// configured navigation timeout.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	opCtx, cancel := b.operationContext(ctx, b.cfg.NavigationTimeout)
	defer cancel()

	b.logger.Info("navigating", zap.String("url", url))
	if err := chromedp.Run(opCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("cdp: navigating to %s: %w", url, err)
	}
	return nil
}

// Root returns the document-level resolution scope.
func (b *Browser) Root() *Page {
	return &Page{browser: b}
}

// Close tears down the browser process and its contexts.
func (b *Browser) Close() {
	b.cancelCtx()
	b.cancelAlloc()
}

// run executes chromedp actions with the browser's connection context,
// linked to the caller's cancellation and bounded by timeout.
func (b *Browser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := b.operationContext(ctx, timeout)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

// operationContext derives a context carrying the CDP connection (from the
// browser context) that is also canceled when the caller's context is.
func (b *Browser) operationContext(caller context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(b.ctx, timeout)
	stop := context.AfterFunc(caller, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}
