// Package scrapers turns a loaded job page into a types.JobData.
//
// Each supported job board implements Scraper. Field lookups go through ordered selector
// lists and never fail: a field that cannot be found keeps its zero value. A panic raised
// while probing the page is recovered at the Scrape boundary and reported as a warning.
package scrapers

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/careerstack/internal/extraction"
	"github.com/jonathan/careerstack/internal/fetch"
	"github.com/jonathan/careerstack/internal/selectors"
	"github.com/jonathan/careerstack/internal/types"
	"go.uber.org/zap"
)

// ErrUnsupportedPlatform is returned by ForURL for pages no scraper handles.
var ErrUnsupportedPlatform = errors.New("unsupported job board")

// StoppedEarlyWarning is attached when a scrape was interrupted by an unexpected failure.
const StoppedEarlyWarning = "Scraping stopped early; some fields may be incomplete."

// Page is a loaded job page: the address it was loaded from and its parsed DOM.
type Page struct {
	URL string
	Doc *goquery.Document
}

// NewPage parses html as the page found at url.
func NewPage(url, html string) (*Page, error) {
	doc, err := fetch.Document(html)
	if err != nil {
		return nil, err
	}
	return &Page{URL: url, Doc: doc}, nil
}

// Title returns the document title.
func (p *Page) Title() string {
	return strings.TrimSpace(p.Doc.Find("title").First().Text())
}

// Scraper extracts job data from one job board's pages.
type Scraper interface {
	PlatformName() string
	// Scrape fills a fresh JobData from page. override is an optional remote selector
	// document whose non-empty lists replace the bundled ones.
	Scrape(page *Page, override *selectors.Document) *types.JobData
}

// Options configures a scraper.
type Options struct {
	// Base is the selector document overrides apply to. Nil means the bundled document.
	Base   *selectors.Document
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// ForURL picks the scraper for a page address.
func ForURL(url string, opts Options) (Scraper, error) {
	switch {
	case strings.Contains(url, "linkedin.com"):
		return NewLinkedIn(opts), nil
	case strings.Contains(url, "indeed.com"):
		return NewIndeed(opts), nil
	}
	return nil, ErrUnsupportedPlatform
}

// guard runs fn and converts a panic into StoppedEarlyWarning on data.
func guard(data *types.JobData, logger *zap.Logger, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Scrape aborted", zap.String("url", data.URL), zap.Any("panic", r))
			data.AddWarning(StoppedEarlyWarning)
		}
	}()
	fn()
}

// warnUnconfigured records a warning for each required field with no usable selector.
func warnUnconfigured(data *types.JobData, platform string, fields selectors.FieldSelectors) {
	for _, name := range fields.MissingFields() {
		data.AddWarning("No " + platform + " selectors configured for " + name + ".")
	}
}

// setEmail fills data.Email from the description when one is found.
func setEmail(data *types.JobData) {
	if data.Description == "" {
		return
	}
	if email, ok := extraction.ExtractEmail(data.Description); ok {
		data.Email = email
	}
}

// setDescription runs the block extractor over sel.
func setDescription(data *types.JobData, sel *goquery.Selection) {
	if sel == nil {
		return
	}
	result := extraction.ExtractDescription(sel)
	data.Description = result.Text
	data.DescriptionBlocks = result.Blocks
}

// text is the visible text of sel, trimmed.
func text(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	return strings.TrimSpace(extraction.InnerText(sel))
}
