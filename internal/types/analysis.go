package types

import (
	"github.com/go-playground/validator/v10"
)

// AnalysisResult is the structured verdict returned by the LLM for a job/resume pair.
type AnalysisResult struct {
	Email   *string `json:"email"`
	Score   int     `json:"score" validate:"gte=0,lte=100"`
	Summary string  `json:"summary" validate:"required"`
}

// Validate validates the AnalysisResult using the validator.
func (r *AnalysisResult) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// EmailOrEmpty returns the analysed email or an empty string.
func (r *AnalysisResult) EmailOrEmpty() string {
	if r == nil || r.Email == nil {
		return ""
	}
	return *r.Email
}

// SaveRequest is everything needed to persist one job as a workspace page.
type SaveRequest struct {
	Company           string             `json:"company"`
	CompanyURL        string             `json:"company_url,omitempty"`
	Position          string             `json:"position"`
	Status            string             `json:"status,omitempty"`
	Platform          string             `json:"platform"`
	Salary            string             `json:"salary"`
	Link              string             `json:"link" validate:"omitempty,url"`
	AppLink           string             `json:"app_link" validate:"omitempty,url"`
	Email             string             `json:"email,omitempty" validate:"omitempty,email"`
	Score             *int               `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	Description       string             `json:"description"`
	DescriptionBlocks []DescriptionBlock `json:"description_blocks,omitempty"`
	Summary           string             `json:"summary,omitempty"`
}

// Validate validates the SaveRequest using the validator.
func (r *SaveRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// NewSaveRequest builds a SaveRequest from scraped data and an optional analysis.
func NewSaveRequest(job *JobData, analysis *AnalysisResult) *SaveRequest {
	req := &SaveRequest{
		Company:           job.Company,
		CompanyURL:        job.CompanyURL,
		Position:          job.Position,
		Platform:          job.Platform,
		Salary:            job.Salary,
		Link:              job.URL,
		AppLink:           job.AppLink,
		Email:             job.Email,
		Description:       job.Description,
		DescriptionBlocks: job.DescriptionBlocks,
	}
	if analysis != nil {
		score := analysis.Score
		req.Score = &score
		req.Summary = analysis.Summary
		if req.Email == "" {
			req.Email = analysis.EmailOrEmpty()
		}
	}
	return req
}
