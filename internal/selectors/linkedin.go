package selectors

// LinkedIn holds the selector tables for LinkedIn's page layouts.
// Detail applies inside the search/collections right rail, Single to /jobs/view/ pages.
type LinkedIn struct {
	Container   []string
	Detail      LinkedInDetail
	Single      LinkedInSingle
	DirectApply string
	LDJSON      string
	// JobCard finds the feed card that links to the selected job; %s is the job id.
	JobCard       string
	JobCardParent string
	JobCardButton string
}

// LinkedInDetail is the detail-pane layout.
type LinkedInDetail struct {
	Title       []string
	Company     []string
	CompanyURL  []string
	CompanyAria string
	Salary      []string
	Description []string
	Apply       []string
	TopCard     []string
}

// LinkedInSingle is the dedicated job page layout.
type LinkedInSingle struct {
	Title             []string
	Company           []string
	CompanyAria       string
	CompanyTopSection []string
	CompanyLink       string
	Description       []string
}

// ForLinkedIn builds the LinkedIn tables from base and an optional override document.
// Field lists from base drive the detail pane; an override list replaces the matching
// list on both layouts.
func ForLinkedIn(base, override *Document) LinkedIn {
	if base == nil {
		base = Bundled()
	}
	fields := base.LinkedIn
	l := LinkedIn{
		Container: []string{
			".jobs-search__right-rail",
			".jobs-details__main-content",
			`[data-view-name="job-detail-page"]`,
		},
		Detail: LinkedInDetail{
			Title:       pick(nil, fields.Position),
			Company:     pick(nil, fields.Company),
			CompanyURL:  pick(nil, fields.CompanyURL),
			CompanyAria: `[aria-label^="Company, "]`,
			Salary:      pick(nil, fields.Salary),
			Description: pick(nil, fields.Description),
			Apply:       pick(nil, fields.AppLink),
			TopCard: []string{
				".job-details-jobs-unified-top-card__content--two-pane",
				".jobs-unified-top-card",
			},
		},
		Single: LinkedInSingle{
			Title: []string{
				"h1.top-card-layout__title",
				".jobs-unified-top-card__job-title",
				".job-details-jobs-unified-top-card__job-title",
			},
			Company: []string{
				".top-card-layout__first-subline .topcard__org-name-link",
				".job-details-jobs-unified-top-card__company-name",
				".jobs-unified-top-card__company-name",
				`[aria-label^="Company, "] a`,
			},
			CompanyAria: `[aria-label^="Company, "]`,
			CompanyTopSection: []string{
				".top-card-layout",
				".job-details-jobs-unified-top-card__container",
				`[data-view-name="job-detail-page"]`,
			},
			CompanyLink: `a[href*="/company/"]`,
			Description: []string{
				`[data-sdui-component*="aboutTheJob"] [data-testid="expandable-text-box"]`,
				`[componentkey*="AboutTheJob"] [data-testid="expandable-text-box"]`,
				"#job-details",
				".jobs-description-content__text",
				".jobs-description__content .jobs-box__html-content",
				".jobs-description__container",
				".show-more-less-html__markup",
				`[class*="jobs-description"]`,
				"article .jobs-description",
			},
		},
		DirectApply:   `a[aria-label^="Apply on company website"]`,
		LDJSON:        `script[type="application/ld+json"]`,
		JobCard:       `a[href*="currentJobId=%s"]`,
		JobCardParent: `[data-view-name="job-card"]`,
		JobCardButton: `button[data-view-name="dismiss-job"]`,
	}

	if override == nil {
		return l
	}
	o := override.LinkedIn
	if hasSelector(o.Position) {
		l.Detail.Title = pick(o.Position, nil)
		l.Single.Title = pick(o.Position, nil)
	}
	if hasSelector(o.Company) {
		l.Detail.Company = pick(o.Company, nil)
		l.Single.Company = pick(o.Company, nil)
	}
	if hasSelector(o.CompanyURL) {
		l.Detail.CompanyURL = pick(o.CompanyURL, nil)
	}
	if hasSelector(o.Salary) {
		l.Detail.Salary = pick(o.Salary, nil)
	}
	if hasSelector(o.Description) {
		l.Detail.Description = pick(o.Description, nil)
		l.Single.Description = pick(o.Description, nil)
	}
	if hasSelector(o.AppLink) {
		l.Detail.Apply = pick(o.AppLink, nil)
	}
	return l
}

// ForIndeed returns the Indeed field table: base merged with the optional override.
func ForIndeed(base, override *Document) FieldSelectors {
	if base == nil {
		base = Bundled()
	}
	return Merge(base, override).Indeed
}
