package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

const defaultStepTimeout = 30 * time.Second

type ChromeOptions struct {
	// run with a visible window, for debugging flows
	Headful   bool
	UserAgent string
	// timeout applied to every step without an explicit one
	StepTimeout time.Duration
}

// Chrome is a Driver backed by a headless chrome instance via the
// devtools protocol.
type Chrome struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	stepTimeout time.Duration
}

func NewChrome(opts ChromeOptions) (*Chrome, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if opts.StepTimeout == 0 {
		opts.StepTimeout = defaultStepTimeout
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !opts.Headful),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(opts.UserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	// start the browser now so a missing chrome binary surfaces here
	// instead of in the middle of a flow
	err := chromedp.Run(ctx)
	if err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, err
	}

	return &Chrome{
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		stepTimeout: opts.StepTimeout,
	}, nil
}

// run executes actions against the session, bounded by timeout and by
// the caller's context.
func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if timeout == 0 {
		timeout = c.stepTimeout
	}
	stepCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(stepCtx, actions...)
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, 0, chromedp.Navigate(url))
}

func (c *Chrome) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return c.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.BySearch))
}

func (c *Chrome) Click(ctx context.Context, selector string) error {
	return c.run(ctx, 0, chromedp.Click(selector, chromedp.BySearch))
}

func (c *Chrome) SendKeys(ctx context.Context, selector, value string) error {
	return c.run(ctx, 0,
		chromedp.Clear(selector, chromedp.BySearch),
		chromedp.SendKeys(selector, value+kb.Tab, chromedp.BySearch),
	)
}

func (c *Chrome) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	var value string
	var ok bool
	err := c.run(ctx, 0, chromedp.AttributeValue(selector, name, &value, &ok, chromedp.BySearch))
	if err != nil {
		return "", false, err
	}
	return value, ok, nil
}

func (c *Chrome) PageSource(ctx context.Context) (string, error) {
	var html string
	err := c.run(ctx, 0, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	if err != nil {
		return "", err
	}
	return html, nil
}

func (c *Chrome) Back(ctx context.Context) error {
	return c.run(ctx, 0, chromedp.NavigateBack())
}

func (c *Chrome) Close() error {
	c.cancelCtx()
	c.cancelAlloc()
	return nil
}
