package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/careerstack/internal/notion"
	"github.com/jonathan/careerstack/internal/types"
)

func TestNewReports(t *testing.T) {
	job := types.NewJobData("https://www.indeed.com/viewjob?jk=1")
	results := []Result{
		{
			Source:      Source{URL: job.URL},
			Job:         job,
			AnalysisErr: errors.New("model unavailable"),
			Duplicate:   notion.DuplicateResult{IsDuplicate: true, ExistingURL: "https://notion.so/p"},
			FromCache:   true,
		},
		{
			Source: Source{URL: "https://www.linkedin.com/jobs/view/9/", Path: "saved.html"},
			Err:    errors.New("failed to load saved.html"),
		},
	}

	reports := NewReports(results)

	assert.Len(t, reports, 2)
	assert.Equal(t, job.URL, reports[0].Source)
	assert.Same(t, job, reports[0].Job)
	assert.Equal(t, "model unavailable", reports[0].AnalysisError)
	assert.True(t, reports[0].Duplicate.IsDuplicate)
	assert.True(t, reports[0].FromCache)
	assert.Empty(t, reports[0].Error)

	assert.Equal(t, "saved.html", reports[1].Source)
	assert.Nil(t, reports[1].Job)
	assert.Equal(t, "failed to load saved.html", reports[1].Error)
}
