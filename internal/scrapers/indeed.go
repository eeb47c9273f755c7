package scrapers

import (
	"net/url"

	"github.com/jonathan/careerstack/internal/extraction"
	"github.com/jonathan/careerstack/internal/selectors"
	"github.com/jonathan/careerstack/internal/types"
)

// IndeedScraper handles indeed.com job pages and search results with a selected job.
type IndeedScraper struct {
	opts Options
}

// NewIndeed creates an Indeed scraper.
func NewIndeed(opts Options) *IndeedScraper {
	return &IndeedScraper{opts: opts}
}

// PlatformName implements Scraper.
func (s *IndeedScraper) PlatformName() string {
	return types.PlatformIndeed
}

// Scrape implements Scraper.
func (s *IndeedScraper) Scrape(page *Page, override *selectors.Document) *types.JobData {
	data := types.NewJobData(page.URL)
	data.Platform = s.PlatformName()
	data.URL = CanonicalIndeedURL(page.URL)

	fields := selectors.ForIndeed(s.opts.Base, override)
	warnUnconfigured(data, "Indeed", fields)

	guard(data, s.opts.logger(), func() {
		root := page.Doc.Selection

		if title := extraction.QueryFirst(root, fields.Position); title != nil {
			data.Position = text(title)
		}
		if company := extraction.QueryFirst(root, fields.Company); company != nil {
			data.Company = text(company)
		}
		if link := extraction.QueryFirst(root, fields.CompanyURL); link != nil {
			data.CompanyURL = href(link, page.URL)
		}
		if salary := extraction.QueryFirst(root, fields.Salary); salary != nil {
			data.Salary = text(salary)
		}

		setDescription(data, extraction.QueryFirst(root, fields.Description))

		if apply := extraction.QueryFirst(root, fields.AppLink); apply != nil {
			data.AppLink = href(apply, page.URL)
		}

		setEmail(data)
	})

	return data
}

// CanonicalIndeedURL rewrites search pages with a selected job (vjk) and job pages (jk)
// to the job's view URL. Other addresses are returned unchanged.
func CanonicalIndeedURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if vjk := q.Get("vjk"); vjk != "" {
		return "https://www.indeed.com/viewjob?jk=" + url.QueryEscape(vjk)
	}
	if jk := q.Get("jk"); jk != "" && u.Path == "/viewjob" {
		return u.Scheme + "://" + u.Host + "/viewjob?jk=" + url.QueryEscape(jk)
	}
	return raw
}
