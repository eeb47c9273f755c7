package notion

import (
	"strings"
	"time"

	"github.com/jonathan/careerstack/internal/types"
)

// Property names of the job tracker database.
const (
	PropCompany         = "Company"
	PropPosition        = "Position"
	PropStatus          = "Status"
	PropPlatform        = "Platform"
	PropSalary          = "Salary"
	PropSourceURL       = "Source URL"
	PropApplyLink       = "Apply Link"
	PropEmail           = "Email"
	PropMatchScore      = "Match Score"
	PropApplicationDate = "Application Date"
)

// Defaults written when a field is empty.
const (
	DefaultStatus   = "Not Applied"
	DefaultPlatform = types.PlatformOther
	UnknownCompany  = "Unknown Company"
	UnknownPosition = "Unknown Position"
)

// Section headings on every saved page.
const (
	DescriptionHeading = "Job Description"
	SummaryHeading     = "AI Summary"
)

type titleProperty struct {
	Title []RichText `json:"title"`
}

type richTextProperty struct {
	RichText []RichText `json:"rich_text"`
}

type namedOption struct {
	Name string `json:"name"`
}

type statusProperty struct {
	Status namedOption `json:"status"`
}

type selectProperty struct {
	Select namedOption `json:"select"`
}

type urlProperty struct {
	URL *string `json:"url"`
}

type emailProperty struct {
	Email *string `json:"email"`
}

type numberProperty struct {
	Number int `json:"number"`
}

type dateValue struct {
	Start string `json:"start"`
}

type dateProperty struct {
	Date dateValue `json:"date"`
}

// Properties is the property set of a job page.
type Properties struct {
	Company         titleProperty    `json:"Company"`
	Position        richTextProperty `json:"Position"`
	Status          statusProperty   `json:"Status"`
	Platform        selectProperty   `json:"Platform"`
	Salary          richTextProperty `json:"Salary"`
	SourceURL       urlProperty      `json:"Source URL"`
	ApplyLink       urlProperty      `json:"Apply Link"`
	Email           emailProperty    `json:"Email"`
	MatchScore      numberProperty   `json:"Match Score"`
	ApplicationDate dateProperty     `json:"Application Date"`
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

// PageRequest is the body of POST /pages.
type PageRequest struct {
	Parent     parent     `json:"parent"`
	Properties Properties `json:"properties"`
	Children   []Block    `json:"children"`
}

// BuildPage assembles the page for req in databaseID, dated today.
func BuildPage(databaseID string, req *types.SaveRequest, today time.Time) *PageRequest {
	company := Text{Content: orDefault(req.Company, UnknownCompany)}
	if req.CompanyURL != "" {
		company.Link = &Link{URL: req.CompanyURL}
	}

	score := 0
	if req.Score != nil {
		score = *req.Score
	}

	children := []Block{plainBlock(BlockHeading2, DescriptionHeading)}
	children = append(children, Encode(req.DescriptionBlocks, req.Description)...)
	if req.Summary != "" {
		children = append(children,
			plainBlock(BlockHeading2, SummaryHeading),
			plainBlock(BlockParagraph, req.Summary),
		)
	}

	return &PageRequest{
		Parent: parent{DatabaseID: databaseID},
		Properties: Properties{
			Company:         titleProperty{Title: []RichText{{Text: company}}},
			Position:        richTextProperty{RichText: []RichText{{Text: Text{Content: orDefault(req.Position, UnknownPosition)}}}},
			Status:          statusProperty{Status: namedOption{Name: orDefault(req.Status, DefaultStatus)}},
			Platform:        selectProperty{Select: namedOption{Name: orDefault(req.Platform, DefaultPlatform)}},
			Salary:          richTextProperty{RichText: []RichText{{Text: Text{Content: req.Salary}}}},
			SourceURL:       urlProperty{URL: nullable(req.Link)},
			ApplyLink:       urlProperty{URL: nullable(req.AppLink)},
			Email:           emailProperty{Email: nullable(req.Email)},
			MatchScore:      numberProperty{Number: score},
			ApplicationDate: dateProperty{Date: dateValue{Start: today.Format("2006-01-02")}},
		},
		Children: children,
	}
}

// PageURL returns url, or the notion.so address derived from the page id.
func PageURL(url, id string) string {
	if url != "" {
		return url
	}
	return "https://notion.so/" + strings.ReplaceAll(id, "-", "")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
