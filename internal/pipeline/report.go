package pipeline

import (
	"github.com/jonathan/careerstack/internal/notion"
	"github.com/jonathan/careerstack/internal/types"
)

// Report is the JSON shape of one Result.
type Report struct {
	Source        string                 `json:"source"`
	Job           *types.JobData         `json:"job,omitempty"`
	Analysis      *types.AnalysisResult  `json:"analysis,omitempty"`
	AnalysisError string                 `json:"analysis_error,omitempty"`
	Duplicate     notion.DuplicateResult `json:"duplicate"`
	PageURL       string                 `json:"page_url,omitempty"`
	FromCache     bool                   `json:"from_cache"`
	Error         string                 `json:"error,omitempty"`
}

// NewReport flattens res, rendering its errors as messages.
func NewReport(res *Result) Report {
	report := Report{
		Source:    res.Source.String(),
		Job:       res.Job,
		Analysis:  res.Analysis,
		Duplicate: res.Duplicate,
		PageURL:   res.PageURL,
		FromCache: res.FromCache,
	}
	if res.AnalysisErr != nil {
		report.AnalysisError = res.AnalysisErr.Error()
	}
	if res.Err != nil {
		report.Error = res.Err.Error()
	}
	return report
}

// NewReports flattens results in order.
func NewReports(results []Result) []Report {
	reports := make([]Report, len(results))
	for i := range results {
		reports[i] = NewReport(&results[i])
	}
	return reports
}
