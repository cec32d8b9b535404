package portal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

const (
	DefaultTimeout = 20 * time.Second
	pollInterval   = 200 * time.Millisecond
)

type ChromeOptions struct {
	Headless      bool
	Timeout       time.Duration
	ScreenshotDir string
}

// Chrome implements Browser on top of a chromedp-controlled Chrome.
type Chrome struct {
	ctx           context.Context
	cancel        context.CancelFunc
	timeout       time.Duration
	screenshotDir string
}

// NewChrome starts a Chrome instance. The browser lives until Close or until
// parent is cancelled.
func NewChrome(parent context.Context, opts ChromeOptions) (*Chrome, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = "."
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("start-maximized", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// First Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &Chrome{
		ctx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
		timeout:       opts.Timeout,
		screenshotDir: opts.ScreenshotDir,
	}, nil
}

func (c *Chrome) Close() { c.cancel() }

// run executes actions on the browser tab, bounded by the wait timeout and by ctx.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(tctx, actions...)
}

func by(sel Selector) chromedp.QueryOption {
	if sel.XPath {
		return chromedp.BySearch
	}
	return chromedp.ByQueryAll
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, chromedp.Navigate(url))
}

func (c *Chrome) URL(ctx context.Context) (string, error) {
	var loc string
	err := c.run(ctx, chromedp.Location(&loc))
	return loc, err
}

func (c *Chrome) WaitVisible(ctx context.Context, sel Selector) error {
	return c.run(ctx, chromedp.WaitVisible(sel.Query, by(sel)))
}

func (c *Chrome) WaitGone(ctx context.Context, sel Selector) error {
	return c.run(ctx, chromedp.WaitNotPresent(sel.Query, by(sel)))
}

func (c *Chrome) WaitCount(ctx context.Context, sel Selector, n int) error {
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		got, err := c.Count(tctx, sel)
		if err == nil && got == n {
			return nil
		}
		select {
		case <-tctx.Done():
			return fmt.Errorf("wait for %d x %q (have %d): %w", n, sel.Query, got, tctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Chrome) Count(ctx context.Context, sel Selector) (int, error) {
	var nodes []*cdp.Node
	err := c.run(ctx, chromedp.Nodes(sel.Query, &nodes, by(sel), chromedp.AtLeast(0)))
	return len(nodes), err
}

func (c *Chrome) Text(ctx context.Context, sel Selector) (string, error) {
	var text string
	err := c.run(ctx, chromedp.Text(sel.Query, &text, by(sel)))
	return strings.TrimSpace(text), err
}

// target resolves the nth match of sel, then optionally its child.
func (c *Chrome) target(ctx context.Context, sel Selector, nth int, child string) ([]cdp.NodeID, error) {
	var nodes []*cdp.Node
	if err := c.run(ctx, chromedp.Nodes(sel.Query, &nodes, by(sel))); err != nil {
		return nil, fmt.Errorf("find %q: %w", sel.Query, err)
	}
	if nth == Last {
		nth = len(nodes) - 1
	}
	if nth < 0 || nth >= len(nodes) {
		return nil, fmt.Errorf("%w: %q[%d] of %d", ErrNotFound, sel.Query, nth, len(nodes))
	}
	node := nodes[nth]
	if child == "" {
		return []cdp.NodeID{node.NodeID}, nil
	}

	var children []*cdp.Node
	if err := c.run(ctx, chromedp.Nodes(child, &children, chromedp.ByQuery, chromedp.FromNode(node))); err != nil {
		return nil, fmt.Errorf("find %q in %q: %w", child, sel.Query, err)
	}
	return []cdp.NodeID{children[0].NodeID}, nil
}

func (c *Chrome) Click(ctx context.Context, sel Selector, nth int, child string) error {
	ids, err := c.target(ctx, sel, nth, child)
	if err != nil {
		return err
	}
	return c.run(ctx,
		chromedp.ScrollIntoView(ids, chromedp.ByNodeID),
		chromedp.Click(ids, chromedp.ByNodeID),
	)
}

func (c *Chrome) Type(ctx context.Context, sel Selector, nth int, child, text string) error {
	ids, err := c.target(ctx, sel, nth, child)
	if err != nil {
		return err
	}
	return c.run(ctx, chromedp.SendKeys(ids, text, chromedp.ByNodeID))
}

func (c *Chrome) Clear(ctx context.Context, sel Selector, nth int, child string) error {
	ids, err := c.target(ctx, sel, nth, child)
	if err != nil {
		return err
	}
	return c.run(ctx, chromedp.Clear(ids, chromedp.ByNodeID))
}

func (c *Chrome) Screenshot(ctx context.Context, name string) error {
	var buf []byte
	if err := c.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	path := filepath.Join(c.screenshotDir, name+".png")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}
