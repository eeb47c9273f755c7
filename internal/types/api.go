package types

import (
	"github.com/go-playground/validator/v10"
)

// MaxBatchURLs bounds how many pages one batch request may scrape.
const MaxBatchURLs = 20

// ScrapeRequest asks the companion API to scrape one page. HTML, when set, is a snapshot of the
// page the client already rendered and is scraped instead of fetching URL.
type ScrapeRequest struct {
	URL     string `json:"url" validate:"required,url"`
	HTML    string `json:"html,omitempty"`
	Analyze bool   `json:"analyze,omitempty"`
	Save    bool   `json:"save,omitempty"`
	Force   bool   `json:"force,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`
}

// BatchScrapeRequest asks the companion API to scrape several pages, streaming progress.
type BatchScrapeRequest struct {
	URLs    []string `json:"urls" validate:"required,min=1,max=20,dive,required,url"`
	Analyze bool     `json:"analyze,omitempty"`
	Save    bool     `json:"save,omitempty"`
	Force   bool     `json:"force,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`
}

// AnalyzeRequest scores a description. An empty Resume uses the configured master resume.
type AnalyzeRequest struct {
	Description string `json:"description" validate:"required"`
	Resume      string `json:"resume,omitempty"`
}

// TokenRequest names the client an API token is issued to.
type TokenRequest struct {
	Client string `json:"client" validate:"required,min=1,max=64"`
}

// Validate validates the ScrapeRequest using the validator.
func (r *ScrapeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the BatchScrapeRequest using the validator.
func (r *BatchScrapeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the TokenRequest using the validator.
func (r *TokenRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
