package scrapers

import (
	"testing"

	"github.com/jonathan/careerstack/internal/selectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalLinkedInURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://www.linkedin.com/jobs/view/?currentJobId=12345&other=x", "https://www.linkedin.com/jobs/view/12345/"},
		{"https://www.linkedin.com/jobs/collections/recommended/?currentJobId=99&trk=feed", "https://www.linkedin.com/jobs/view/99/"},
		{"https://www.linkedin.com/jobs/view/42/?trk=public_jobs&refId=abc", "https://www.linkedin.com/jobs/view/42/"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := CanonicalLinkedInURL(tt.in)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "other")
		})
	}
}

func TestLinkedIn_DetailContainer(t *testing.T) {
	p := page(t, "https://www.linkedin.com/jobs/search/?currentJobId=5&keywords=go", `
		<div class="jobs-search__right-rail">
			<div class="job-details-jobs-unified-top-card__content--two-pane">
				<h2 class="t-24">Backend Engineer</h2>
				<div class="job-details-jobs-unified-top-card__company-name">
					<a href="https://www.linkedin.com/company/acme/life/?trk=x">Acme</a>
				</div>
				<span class="job-details-jobs-unified-top-card__salary-info">$120K/yr</span>
				<div class="jobs-apply-button--top-card"><button>Easy Apply</button></div>
			</div>
			<div id="job-details"><h2>About</h2><p>Build <strong>APIs</strong>. Contact hiring@acme.io</p></div>
		</div>
		<a aria-label="Apply on company website" href="https://www.linkedin.com/redir/redirect?url=https%3A%2F%2Fcareers.acme.com%2Fjobs%2F1&urlhash=Zz">Apply</a>`)

	data := NewLinkedIn(Options{}).Scrape(p, nil)

	assert.Equal(t, "LinkedIn", data.Platform)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/5/", data.URL)
	assert.Equal(t, "Backend Engineer", data.Position)
	assert.Equal(t, "Acme", data.Company)
	assert.Equal(t, "https://www.linkedin.com/company/acme/life/", data.CompanyURL)
	assert.Equal(t, "$120K/yr", data.Salary)
	assert.Equal(t, "**About**\n\n\nBuild APIs. Contact hiring@acme.io", data.Description)
	require.Len(t, data.DescriptionBlocks, 2)
	assert.Equal(t, "https://careers.acme.com/jobs/1", data.AppLink)
	assert.Equal(t, "hiring@acme.io", data.Email)
	assert.Empty(t, data.Warnings)
}

func TestLinkedIn_DetailCompanyAriaAndApplyAnchor(t *testing.T) {
	p := page(t, "https://www.linkedin.com/jobs/collections/recommended/?currentJobId=5", `
		<main data-view-name="job-detail-page">
			<a href="https://www.linkedin.com/company/globex/?trk=top"><div aria-label="Company, Globex."><img src="logo.png"></div></a>
			<div class="jobs-apply-button--top-card"><a href="/jobs/view/5/apply">Apply</a></div>
		</main>`)

	data := NewLinkedIn(Options{}).Scrape(p, nil)

	assert.Equal(t, "Globex", data.Company)
	assert.Equal(t, "https://www.linkedin.com/company/globex/", data.CompanyURL)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/5/apply", data.AppLink)
}

func TestLinkedIn_DetailFieldsOutsideContainer(t *testing.T) {
	p := page(t, "https://www.linkedin.com/jobs/search/?currentJobId=8", `
		<header class="job-details-jobs-unified-top-card__content--two-pane">
			<h2 class="t-24">Platform Engineer</h2>
			<div class="job-details-jobs-unified-top-card__company-name">
				<a href="https://www.linkedin.com/company/hooli/?trk=x">Hooli</a>
			</div>
			<span class="jobs-unified-top-card__salary-info">$150K/yr</span>
			<div class="jobs-apply-button--top-card"><a href="/jobs/view/8/apply">Apply</a></div>
		</header>
		<div class="jobs-search__right-rail">
			<div id="job-details"><p>Run the <em>platform</em>.</p></div>
		</div>`)

	data := NewLinkedIn(Options{}).Scrape(p, nil)

	assert.Equal(t, "Platform Engineer", data.Position)
	assert.Equal(t, "Hooli", data.Company)
	assert.Equal(t, "https://www.linkedin.com/company/hooli/", data.CompanyURL)
	assert.Equal(t, "$150K/yr", data.Salary)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/8/apply", data.AppLink)
	assert.Equal(t, "Run the platform.", data.Description)
	assert.Empty(t, data.Warnings)
}

func TestLinkedIn_DetailContainerWins(t *testing.T) {
	p := page(t, "https://www.linkedin.com/jobs/search/?currentJobId=9", `
		<h2 class="t-24">Other Listing</h2>
		<div class="jobs-search__right-rail">
			<h2 class="t-24">Selected Listing</h2>
			<div class="job-details-jobs-unified-top-card__company-name">Initech</div>
			<div id="job-details"><p>Selected job description.</p></div>
		</div>`)

	data := NewLinkedIn(Options{}).Scrape(p, nil)

	assert.Equal(t, "Selected Listing", data.Position)
	assert.Equal(t, "Initech", data.Company)
}

func TestLinkedIn_DetailApplyHeuristic(t *testing.T) {
	p := page(t, "https://www.linkedin.com/jobs/search/", `
		<div class="jobs-details__main-content">
			<div class="jobs-unified-top-card">
				<a href="https://www.linkedin.com/company/acme/">Acme</a>
				<a href="https://ext.example.org/apply" aria-label="Apply to Backend Engineer">Go</a>
			</div>
		</div>`)

	data := NewLinkedIn(Options{}).Scrape(p, nil)

	assert.Equal(t, "https://ext.example.org/apply", data.AppLink)
}

func TestLinkedIn_SinglePage(t *testing.T) {
	p := page(t, "https://www.linkedin.com/jobs/view/42/?trk=public_jobs", `<html>
		<head><title>Data Scientist - Initech | LinkedIn</title></head>
		<body>
			<section class="top-card-layout">
				<h1 class="top-card-layout__title">Data Scientist</h1>
				<div class="top-card-layout__first-subline">
					<a class="topcard__org-name-link" href="https://www.linkedin.com/company/initech?trk=public">Initech</a>
				</div>
			</section>
			<div class="show-more-less-html__markup"><ul><li>Python</li><li>SQL</li></ul></div>
			<script type="application/ld+json">{"@context": "https://schema.org", "@type": "JobPosting", "url": "https://www.linkedin.com/jobs/view/42/"}</script>
		</body></html>`)

	data := NewLinkedIn(Options{}).Scrape(p, nil)

	assert.Equal(t, "https://www.linkedin.com/jobs/view/42/", data.URL)
	assert.Equal(t, "Data Scientist", data.Position)
	assert.Equal(t, "Initech", data.Company)
	assert.Equal(t, "https://www.linkedin.com/company/initech", data.CompanyURL)
	assert.Equal(t, "• Python\n• SQL", data.Description)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/42/", data.AppLink)
}

func TestLinkedIn_SinglePageCompanyFromAriaLabel(t *testing.T) {
	p := page(t, "https://www.linkedin.com/jobs/view/8/", `
		<a href="https://www.linkedin.com/company/vandelay/" aria-label="Company, Vandelay."></a>`)

	data := NewLinkedIn(Options{}).Scrape(p, nil)

	assert.Equal(t, "Vandelay", data.Company)
	assert.Equal(t, "https://www.linkedin.com/company/vandelay/", data.CompanyURL)
}

func TestLinkedIn_JobCardFallback(t *testing.T) {
	p := page(t, "https://www.linkedin.com/jobs/collections/recommended/?currentJobId=777", `<html>
		<head><title>(3) Top job picks for you | LinkedIn</title></head>
		<body>
			<div data-view-name="job-card">
				<a href="/jobs/collections/recommended/?currentJobId=777&amp;trk=x">open</a>
				<button data-view-name="dismiss-job" aria-label="Dismiss Staff Engineer job"></button>
				<div><p>Hooli</p><p>•</p><p>Remote</p></div>
			</div>
		</body></html>`)

	data := NewLinkedIn(Options{}).Scrape(p, nil)

	assert.Equal(t, "Staff Engineer", data.Position)
	assert.Equal(t, "Hooli", data.Company)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/777/", data.URL)
}

func TestLinkedIn_TitleFallback(t *testing.T) {
	p := page(t, "https://www.linkedin.com/jobs/view/3/", `<html>
		<head><title>Platform Engineer - Umbrella Corp | LinkedIn</title></head><body></body></html>`)

	data := NewLinkedIn(Options{}).Scrape(p, nil)

	assert.Equal(t, "Platform Engineer", data.Position)
	assert.Empty(t, data.Company)
	assert.Empty(t, data.AppLink)
}

func TestLinkedIn_RemoteOverride(t *testing.T) {
	p := page(t, "https://www.linkedin.com/jobs/view/3/", `
		<h1 class="top-card-layout__title">Bundled Title</h1>
		<h1 class="custom-title">Remote Title</h1>`)

	override := &selectors.Document{
		Version:  "1.0.1",
		LinkedIn: selectors.FieldSelectors{Position: []string{".custom-title"}},
	}

	assert.Equal(t, "Remote Title", NewLinkedIn(Options{}).Scrape(p, override).Position)
	assert.Equal(t, "Bundled Title", NewLinkedIn(Options{}).Scrape(p, nil).Position)
}

func TestPositionFromTitle(t *testing.T) {
	tests := []struct {
		title, want string
	}{
		{"Platform Engineer - Umbrella Corp | LinkedIn", "Platform Engineer"},
		{"Go Developer | LinkedIn", "Go Developer"},
		{"(12) Go Developer | LinkedIn", ""},
		{"Top job picks for you | LinkedIn", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, positionFromTitle(tt.title))
		})
	}
}

func TestFindJobPosting(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantNil bool
	}{
		{"object", `{"@type": "JobPosting", "url": "u"}`, false},
		{"array", `[{"@type": "Organization"}, {"@type": "JobPosting", "applyUrl": "a"}]`, false},
		{"other type", `{"@type": "Organization"}`, true},
		{"invalid json", `{not json`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantNil, findJobPosting(tt.payload) == nil)
		})
	}
}
