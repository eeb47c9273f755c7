package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrapeRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request ScrapeRequest
		wantErr bool
	}{
		{name: "url only", request: ScrapeRequest{URL: "https://www.linkedin.com/jobs/view/1/"}},
		{name: "with snapshot", request: ScrapeRequest{URL: "https://www.indeed.com/viewjob?jk=1", HTML: "<html></html>", Save: true}},
		{name: "missing url", request: ScrapeRequest{HTML: "<html></html>"}, wantErr: true},
		{name: "not a url", request: ScrapeRequest{URL: "linkedin job"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBatchScrapeRequest_Validation(t *testing.T) {
	tooMany := make([]string, MaxBatchURLs+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("https://www.indeed.com/viewjob?jk=%d", i)
	}

	tests := []struct {
		name    string
		request BatchScrapeRequest
		wantErr bool
	}{
		{name: "valid", request: BatchScrapeRequest{URLs: []string{"https://www.indeed.com/viewjob?jk=1", "https://www.linkedin.com/jobs/view/2/"}}},
		{name: "empty", request: BatchScrapeRequest{}, wantErr: true},
		{name: "blank entry", request: BatchScrapeRequest{URLs: []string{"https://www.indeed.com/viewjob?jk=1", ""}}, wantErr: true},
		{name: "invalid entry", request: BatchScrapeRequest{URLs: []string{"not a url"}}, wantErr: true},
		{name: "too many", request: BatchScrapeRequest{URLs: tooMany}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnalyzeRequest_Validation(t *testing.T) {
	assert.NoError(t, (&AnalyzeRequest{Description: "Build APIs in Go."}).Validate())
	assert.Error(t, (&AnalyzeRequest{Resume: "Go developer"}).Validate())
}

func TestTokenRequest_Validation(t *testing.T) {
	assert.NoError(t, (&TokenRequest{Client: "extension"}).Validate())
	assert.Error(t, (&TokenRequest{}).Validate())
}
