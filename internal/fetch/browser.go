// Package fetch - browser.go provides headless browser rendering for job pages that need JavaScript.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinDescriptionLength is the shortest description that counts as a successful static scrape.
// Shorter results suggest the page is rendered client-side.
const MinDescriptionLength = 200

// ShouldUseBrowser returns true if the extracted description is too short to be the real posting.
func ShouldUseBrowser(description string) bool {
	return len(strings.TrimSpace(description)) < MinDescriptionLength
}

// stampComputedStyles copies the computed style values the extractor reads onto each element,
// so visibility and emphasis survive serialization to HTML.
const stampComputedStyles = `(() => {
	for (const el of document.body.querySelectorAll('*')) {
		const cs = window.getComputedStyle(el);
		el.setAttribute('data-computed-style',
			'display:' + cs.display + ';visibility:' + cs.visibility + ';opacity:' + cs.opacity +
			';font-weight:' + cs.fontWeight + ';font-style:' + cs.fontStyle);
	}
	return true;
})()`

// RenderOptions configures browser rendering.
type RenderOptions struct {
	Timeout time.Duration
	Settle  time.Duration
	Logger  *zap.Logger
}

// DefaultRenderOptions returns the defaults used by the CLI.
func DefaultRenderOptions() *RenderOptions {
	return &RenderOptions{
		Timeout: 45 * time.Second,
		Settle:  3 * time.Second,
	}
}

// Render loads url in headless Chrome, stamps computed styles and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func Render(ctx context.Context, url string, opts *RenderOptions) (string, error) {
	if opts == nil {
		opts = DefaultRenderOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Debug("Starting headless browser", zap.String("url", url))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var html string
	var stamped bool

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(opts.Settle),
		chromedp.Evaluate(stampComputedStyles, &stamped),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	logger.Debug("Rendered page", zap.Int("bytes", len(html)), zap.Bool("styles_stamped", stamped))

	return html, nil
}
