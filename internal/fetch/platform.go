// Package fetch - platform.go provides job board detection from URLs.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a supported job board.
type Platform string

const (
	// PlatformLinkedIn is linkedin.com
	PlatformLinkedIn Platform = "linkedin"
	// PlatformIndeed is indeed.com and its country domains
	PlatformIndeed Platform = "indeed"
	// PlatformUnknown is an unsupported site
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the job board from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())

	if host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com") {
		return PlatformLinkedIn
	}

	if isIndeedHost(host) {
		return PlatformIndeed
	}

	return PlatformUnknown
}

// isIndeedHost matches indeed.com, www.indeed.com, uk.indeed.com and indeed.co.uk style hosts.
func isIndeedHost(host string) bool {
	for _, label := range strings.Split(host, ".") {
		if label == "indeed" {
			return true
		}
	}
	return false
}
