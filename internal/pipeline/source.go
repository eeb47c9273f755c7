package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/careerstack/internal/fetch"
	"github.com/jonathan/careerstack/internal/scrapers"
)

// Source is one page to scrape: a live URL, or a saved HTML file together with the URL it was
// saved from.
type Source struct {
	URL  string
	Path string
}

// String names the source in logs and output.
func (s Source) String() string {
	if s.Path != "" {
		return s.Path
	}
	return s.URL
}

// ParseSource interprets a CLI argument. http(s) arguments are URLs; anything else is a file path
// whose page URL is pageURL.
func ParseSource(arg, pageURL string) Source {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return Source{URL: arg}
	}
	return Source{URL: pageURL, Path: arg}
}

// PageLoader loads a source into a parsed page.
type PageLoader interface {
	Load(ctx context.Context, src Source, render bool) (*scrapers.Page, error)
}

// WebLoader loads pages over HTTP, through headless Chrome, or from disk.
type WebLoader struct {
	Fetch  *fetch.Options
	Render *fetch.RenderOptions
	Logger *zap.Logger
}

// Load implements PageLoader. render selects headless Chrome for URL sources.
func (l *WebLoader) Load(ctx context.Context, src Source, render bool) (*scrapers.Page, error) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var html string
	switch {
	case src.Path != "":
		content, err := fetch.File(src.Path)
		if err != nil {
			return nil, err
		}
		html = content
	case src.URL == "":
		return nil, fmt.Errorf("source has neither a URL nor a file")
	case render:
		opts := fetch.DefaultRenderOptions()
		if l.Render != nil {
			*opts = *l.Render
		}
		if opts.Logger == nil {
			opts.Logger = logger
		}
		logger.Debug("rendering page", zap.String("url", src.URL))
		content, err := fetch.Render(ctx, src.URL, opts)
		if err != nil {
			return nil, err
		}
		html = content
	default:
		logger.Debug("fetching page", zap.String("url", src.URL))
		result, err := fetch.URL(ctx, src.URL, l.Fetch)
		if err != nil {
			return nil, err
		}
		html = result.HTML
	}

	return scrapers.NewPage(src.URL, html)
}

// SnapshotLoader serves a page snapshot the caller already holds, such as the DOM a browser
// extension captured. Every load returns the same HTML under the source URL.
type SnapshotLoader struct {
	HTML string
}

// Load implements PageLoader.
func (l SnapshotLoader) Load(_ context.Context, src Source, _ bool) (*scrapers.Page, error) {
	if strings.TrimSpace(l.HTML) == "" {
		return nil, fmt.Errorf("page snapshot is empty")
	}
	return scrapers.NewPage(src.URL, l.HTML)
}

// CanonicalJobURL maps a job board link to the address scrapers store in the database, so search
// and collection links match saved jobs.
func CanonicalJobURL(raw string) string {
	switch fetch.DetectPlatform(raw) {
	case fetch.PlatformLinkedIn:
		return scrapers.CanonicalLinkedInURL(raw)
	case fetch.PlatformIndeed:
		return scrapers.CanonicalIndeedURL(raw)
	default:
		return raw
	}
}
