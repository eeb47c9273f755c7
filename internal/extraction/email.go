package extraction

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// emailBlacklist holds substrings of role addresses and non-real domains.
var emailBlacklist = []string{
	"noreply", "no-reply", "donotreply", "do-not-reply",
	"mailer-daemon", "postmaster", "example.com", "test.com",
	"sentry.io", "github.com",
}

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}

// minLocalPartLength rejects one-letter local parts, which are almost always noise.
const minLocalPartLength = 2

// ExtractEmail returns the first plausible contact email in text, in document order.
func ExtractEmail(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, candidate := range emailPattern.FindAllString(text, -1) {
		if isPlausibleEmail(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isPlausibleEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, b := range emailBlacklist {
		if strings.Contains(lower, b) {
			return false
		}
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	local, _, _ := strings.Cut(lower, "@")
	return len(local) >= minLocalPartLength
}
