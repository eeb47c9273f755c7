package scrapers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/careerstack/internal/extraction"
	"github.com/jonathan/careerstack/internal/selectors"
	"github.com/jonathan/careerstack/internal/types"
	"go.uber.org/zap"
)

var (
	companyAriaPattern = regexp.MustCompile(`^Company,\s*(.+?)\.?$`)
	dismissAriaPattern = regexp.MustCompile(`(?i)^Dismiss\s+(.+?)\s+job$`)
	notificationPrefix = regexp.MustCompile(`^\(\d+\)`)
)

const companyLinkSelector = `a[href*="/company/"]`

// LinkedInScraper handles search, collections and single job pages on linkedin.com.
type LinkedInScraper struct {
	opts Options
}

// NewLinkedIn creates a LinkedIn scraper.
func NewLinkedIn(opts Options) *LinkedInScraper {
	return &LinkedInScraper{opts: opts}
}

// PlatformName implements Scraper.
func (s *LinkedInScraper) PlatformName() string {
	return types.PlatformLinkedIn
}

// Scrape implements Scraper.
func (s *LinkedInScraper) Scrape(page *Page, override *selectors.Document) *types.JobData {
	data := types.NewJobData(page.URL)
	data.Platform = s.PlatformName()
	data.URL = CanonicalLinkedInURL(page.URL)

	base := s.opts.Base
	if base == nil {
		base = selectors.Bundled()
	}
	warnUnconfigured(data, "LinkedIn", selectors.Merge(base, override).LinkedIn)

	layout := selectors.ForLinkedIn(base, override)
	logger := s.opts.logger()

	guard(data, logger, func() {
		root := page.Doc.Selection

		if container := extraction.QueryFirst(root, layout.Container); container != nil {
			logger.Debug("Using detail container layout", zap.String("url", data.URL))
			s.scrapeDetail(data, page, container, layout)
		} else {
			logger.Debug("Using single job page layout", zap.String("url", data.URL))
			s.scrapeSingle(data, page, layout)
		}

		s.scrapeDirectApply(data, page, layout)
		s.scrapeLDJSON(data, page, layout)

		if data.Position == "" || data.Company == "" {
			s.scrapeJobCard(data, page, layout)
		}

		if data.Position == "" {
			data.Position = positionFromTitle(page.Title())
		}

		setEmail(data)
	})

	return data
}

// CanonicalLinkedInURL reduces a LinkedIn address to its job view URL when it carries
// currentJobId, and otherwise to origin plus path.
func CanonicalLinkedInURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if id := u.Query().Get("currentJobId"); id != "" {
		return "https://www.linkedin.com/jobs/view/" + id + "/"
	}
	return u.Scheme + "://" + u.Host + u.Path
}

func (s *LinkedInScraper) scrapeDetail(data *types.JobData, page *Page, container *goquery.Selection, layout selectors.LinkedIn) {
	sel := layout.Detail
	root := page.Doc.Selection

	if title := inDetail(container, root, sel.Title); title != nil {
		data.Position = text(title)
	}

	companyEl := extraction.QueryFirst(container, sel.Company)

	if companyEl == nil && sel.CompanyAria != "" {
		if aria := container.Find(sel.CompanyAria).First(); aria.Length() > 0 {
			label, _ := aria.Attr("aria-label")
			if m := companyAriaPattern.FindStringSubmatch(label); m != nil {
				data.Company = strings.TrimSpace(m[1])
			}

			link := aria.Find(companyLinkSelector).First()
			if link.Length() == 0 {
				link = aria.Closest(companyLinkSelector)
			}
			if link.Length() > 0 {
				data.CompanyURL = stripQuery(href(link, page.URL))
			}
			companyEl = aria
		}
	}
	if companyEl == nil {
		companyEl = extraction.QueryFirst(root, sel.Company)
	}

	if companyEl != nil && data.Company == "" {
		data.Company = text(companyEl)
		link := companyEl
		if !isAnchor(link) {
			link = companyEl.Find("a").First()
		}
		if link.Length() > 0 {
			data.CompanyURL = stripQuery(href(link, page.URL))
		}
	}

	if data.CompanyURL == "" {
		if link := inDetail(container, root, sel.CompanyURL); link != nil {
			data.CompanyURL = stripQuery(href(link, page.URL))
		}
	}

	if salary := inDetail(container, root, sel.Salary); salary != nil {
		data.Salary = text(salary)
	}

	setDescription(data, inDetail(container, root, sel.Description))

	for _, scope := range []*goquery.Selection{container, root} {
		if data.AppLink = applyLink(scope, page, sel.Apply); data.AppLink != "" {
			break
		}
	}

	if data.AppLink == "" {
		topCard := extraction.QueryFirst(container, sel.TopCard)
		if topCard == nil {
			topCard = container
		}
		topCard.Find("button, a").EachWithBreak(func(_ int, btn *goquery.Selection) bool {
			label, _ := btn.Attr("aria-label")
			if !strings.Contains(extraction.InnerText(btn), "Apply") && !strings.Contains(label, "Apply") {
				return true
			}
			if isAnchor(btn) {
				data.AppLink = href(btn, page.URL)
				return false
			}
			if parent := extraction.Closest(btn, "a"); parent != nil {
				data.AppLink = href(parent, page.URL)
				return false
			}
			return true
		})
	}
}

// inDetail resolves a field inside the detail container, then anywhere on the page.
func inDetail(container, root *goquery.Selection, list []string) *goquery.Selection {
	if el := extraction.QueryFirst(container, list); el != nil {
		return el
	}
	return extraction.QueryFirst(root, list)
}

// applyLink returns the href of the first apply control under scope, taken from the control
// itself or its enclosing anchor.
func applyLink(scope *goquery.Selection, page *Page, list []string) string {
	for _, selector := range list {
		el := scope.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		if isAnchor(el) {
			return href(el, page.URL)
		}
		if parent := extraction.Closest(el, "a"); parent != nil {
			return href(parent, page.URL)
		}
	}
	return ""
}

func (s *LinkedInScraper) scrapeSingle(data *types.JobData, page *Page, layout selectors.LinkedIn) {
	sel := layout.Single
	root := page.Doc.Selection

	if title := extraction.QueryFirst(root, sel.Title); title != nil {
		data.Position = text(title)
	}

	companyEl := extraction.QueryFirst(root, sel.Company)

	if companyEl == nil && sel.CompanyAria != "" {
		if aria := root.Find(sel.CompanyAria).First(); aria.Length() > 0 {
			companyEl = aria
			if !isAnchor(aria) {
				if link := extraction.Closest(aria, "a"); link != nil {
					companyEl = link
				}
			}
		}
	}

	if companyEl == nil {
		top := extraction.QueryFirst(root, sel.CompanyTopSection)
		if top == nil {
			top = root.Find("body")
		}
		if link := top.Find(sel.CompanyLink).First(); link.Length() > 0 {
			companyEl = link
		}
	}

	if companyEl != nil {
		name := text(companyEl)
		if name == "" {
			if label, ok := companyEl.Attr("aria-label"); ok && label != "" {
				name = strings.Replace(strings.Replace(label, "Company, ", "", 1), ".", "", 1)
			}
		}
		data.Company = name

		if isAnchor(companyEl) {
			data.CompanyURL = stripQuery(href(companyEl, page.URL))
		} else if link := extraction.Closest(companyEl, "a"); link != nil {
			data.CompanyURL = stripQuery(href(link, page.URL))
		}
	}

	setDescription(data, extraction.QueryFirst(root, sel.Description))
}

// scrapeDirectApply prefers the external "Apply on company website" link on any layout.
func (s *LinkedInScraper) scrapeDirectApply(data *types.JobData, page *Page, layout selectors.LinkedIn) {
	btn := page.Doc.Find(layout.DirectApply).First()
	if btn.Length() == 0 {
		return
	}
	if link, ok := unwrapRedirect(href(btn, page.URL)); ok && link != "" {
		data.AppLink = link
	}
}

// scrapeLDJSON takes the apply link from a JobPosting JSON-LD block when none was found.
func (s *LinkedInScraper) scrapeLDJSON(data *types.JobData, page *Page, layout selectors.LinkedIn) {
	if data.AppLink != "" {
		return
	}
	page.Doc.Find(layout.LDJSON).EachWithBreak(func(_ int, script *goquery.Selection) bool {
		posting := findJobPosting(script.Text())
		if posting == nil {
			return true
		}
		if u, _ := posting["url"].(string); u != "" {
			data.AppLink = u
			return false
		}
		if u, _ := posting["applyUrl"].(string); u != "" {
			data.AppLink = u
			return false
		}
		return true
	})
}

// findJobPosting returns the JobPosting object in a JSON-LD payload, or nil.
// Unparseable payloads are ignored.
func findJobPosting(payload string) map[string]interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return nil
	}
	switch node := v.(type) {
	case []interface{}:
		for _, item := range node {
			if m, ok := item.(map[string]interface{}); ok && m["@type"] == "JobPosting" {
				return m
			}
		}
	case map[string]interface{}:
		if node["@type"] == "JobPosting" {
			return node
		}
	}
	return nil
}

// scrapeJobCard reads title and company from the feed card of the selected job.
func (s *LinkedInScraper) scrapeJobCard(data *types.JobData, page *Page, layout selectors.LinkedIn) {
	u, err := url.Parse(page.URL)
	if err != nil {
		return
	}
	id := u.Query().Get("currentJobId")
	if id == "" {
		return
	}

	cardLink := page.Doc.Find(fmt.Sprintf(layout.JobCard, id)).First()
	if cardLink.Length() == 0 {
		return
	}
	card := extraction.Closest(cardLink, layout.JobCardParent)
	if card == nil {
		card = cardLink
	}

	if data.Position == "" {
		if btn := card.Find(layout.JobCardButton).First(); btn.Length() > 0 {
			label, _ := btn.Attr("aria-label")
			if m := dismissAriaPattern.FindStringSubmatch(label); m != nil {
				data.Position = strings.TrimSpace(m[1])
			}
		}
	}

	if data.Company == "" {
		card.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
			if text(p) != extraction.BulletGlyph {
				return true
			}
			first := p.Parent().Find("p").First()
			if first.Length() > 0 {
				if name := text(first); name != extraction.BulletGlyph {
					data.Company = name
				}
			}
			return false
		})
	}
}

// positionFromTitle derives a job title from "Title - Company | LinkedIn" page titles.
// Notification counts and feed titles are rejected.
func positionFromTitle(title string) string {
	head := strings.TrimSpace(strings.Split(title, "|")[0])
	if head == "" || notificationPrefix.MatchString(head) || strings.Contains(head, "job picks") {
		return ""
	}
	return strings.TrimSpace(strings.Split(head, " - ")[0])
}
