package executor

import (
	"context"
	"encoding/json"
	"fmt"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/replaykit/replaykit/logger"
)

// ChromeDriver implements Driver on a local Chrome instance via the DevTools
// protocol.
type ChromeDriver struct {
	logger logger.Logger
}

// NewChromeDriver creates a chromedp-backed driver.
func NewChromeDriver(log logger.Logger) *ChromeDriver {
	return &ChromeDriver{logger: log}
}

// NewPage launches a browser context with a desktop viewport and returns the
// page bound to it. Headed mode disables headless rendering for debugging.
func (d *ChromeDriver) NewPage(ctx context.Context, headed bool) (Page, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(1920, 1080),
		chromedp.NoSandbox,
	)
	if headed {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	pageCtx, cancelPage := chromedp.NewContext(allocCtx)

	// Start the browser now so allocation failures surface here instead of
	// on the first step.
	if err := chromedp.Run(pageCtx); err != nil {
		cancelPage()
		cancelAlloc()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	d.logger.Debug(ctx, "browser launched", logger.Fields{"headed": headed})
	return &chromePage{
		ctx:         pageCtx,
		cancelPage:  cancelPage,
		cancelAlloc: cancelAlloc,
	}, nil
}

type chromePage struct {
	ctx         context.Context
	cancelPage  context.CancelFunc
	cancelAlloc context.CancelFunc
}

// run executes chromedp actions against the page target, bounded by the
// caller's deadline.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := p.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(p.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *chromePage) WaitVisible(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (p *chromePage) WaitText(ctx context.Context, text string) error {
	expr := fmt.Sprintf(`//*[contains(text(), %q)]`, text)
	return p.run(ctx, chromedp.WaitVisible(expr, chromedp.BySearch))
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	return p.run(ctx,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

func (p *chromePage) Fill(ctx context.Context, selector, value string) error {
	return p.run(ctx,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func (p *chromePage) SelectOption(ctx context.Context, selector, value string) error {
	return p.run(ctx, chromedp.SetValue(selector, value, chromedp.ByQuery))
}

func (p *chromePage) SetChecked(ctx context.Context, selector string, checked bool) error {
	sel, err := json.Marshal(selector)
	if err != nil {
		return err
	}
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector(%s); if (!el) return false; if (el.checked !== %t) { el.click(); } return true; })()`,
		sel, checked,
	)

	var found bool
	if err := p.run(ctx, chromedp.Evaluate(script, &found)); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("element not found: %s", selector)
	}
	return nil
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = cdppage.CaptureScreenshot().
			WithFormat(cdppage.CaptureScreenshotFormatPng).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *chromePage) Close() error {
	p.cancelPage()
	p.cancelAlloc()
	return nil
}
