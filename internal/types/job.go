// Package types provides type definitions for structured data used throughout the careerstack system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Platform names reported in JobData.Platform
const (
	PlatformLinkedIn = "LinkedIn"
	PlatformIndeed   = "Indeed"
	PlatformOther    = "Other"
)

// JobData is the record a scraper fills in for the page it is looking at.
// Fields a scraper could not find keep their zero value.
type JobData struct {
	URL               string             `json:"url"`
	Platform          string             `json:"platform"`
	Company           string             `json:"company"`
	CompanyURL        string             `json:"company_url,omitempty"`
	Position          string             `json:"position"`
	Salary            string             `json:"salary"`
	Description       string             `json:"description"`
	DescriptionBlocks []DescriptionBlock `json:"description_blocks,omitempty"`
	AppLink           string             `json:"app_link"`
	Email             string             `json:"email,omitempty"`
	Warnings          []string           `json:"warnings,omitempty"`
}

// NewJobData returns a JobData with the defaults the orchestrator starts from.
func NewJobData(url string) *JobData {
	return &JobData{
		URL:      url,
		Platform: PlatformOther,
	}
}

// AddWarning appends a human-readable note about a field that could not be populated.
func (j *JobData) AddWarning(msg string) {
	j.Warnings = append(j.Warnings, msg)
}

// MissingCriticalFields returns the names of the critical fields that are still empty.
func (j *JobData) MissingCriticalFields() []string {
	var missing []string
	if j.Company == "" {
		missing = append(missing, "company")
	}
	if j.Position == "" {
		missing = append(missing, "position")
	}
	if j.Description == "" {
		missing = append(missing, "description")
	}
	return missing
}

// Clone returns a deep copy so callers can hand out an immutable snapshot.
func (j *JobData) Clone() *JobData {
	if j == nil {
		return nil
	}
	c := *j
	if j.DescriptionBlocks != nil {
		c.DescriptionBlocks = make([]DescriptionBlock, len(j.DescriptionBlocks))
		for i, b := range j.DescriptionBlocks {
			c.DescriptionBlocks[i] = DescriptionBlock{
				Type:     b.Type,
				RichText: append([]RichTextSegment(nil), b.RichText...),
			}
		}
	}
	if j.Warnings != nil {
		c.Warnings = append([]string(nil), j.Warnings...)
	}
	return &c
}
