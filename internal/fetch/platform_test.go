package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://www.linkedin.com/jobs/view/12345/", PlatformLinkedIn},
		{"https://linkedin.com/jobs/collections/recommended/?currentJobId=1", PlatformLinkedIn},
		{"https://www.indeed.com/viewjob?jk=abc", PlatformIndeed},
		{"https://uk.indeed.com/jobs?q=go&vjk=abc", PlatformIndeed},
		{"https://www.indeed.co.uk/viewjob?jk=abc", PlatformIndeed},
		{"https://boards.greenhouse.io/company/jobs/123", PlatformUnknown},
		{"https://notlinkedin.com/jobs", PlatformUnknown},
		{"https://example.com/?next=linkedin.com", PlatformUnknown},
		{"://bad", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}
