package retry

import "fmt"

// Source names the service an error came from, as shown to the user.
type Source string

const (
	SourceAI     Source = "AI"
	SourceNotion Source = "Notion"
)

// ReadableError maps an API failure status to a message that tells the user what to fix.
// message is the service's own error text, used where the status alone is not enough.
func ReadableError(source Source, status int, message string) string {
	if status == 429 {
		return fmt.Sprintf("%s rate limit reached. Please wait a moment and try again.", source)
	}
	if status >= 500 {
		return fmt.Sprintf("%s server is temporarily unavailable. Please try again later.", source)
	}

	switch source {
	case SourceNotion:
		switch status {
		case 401:
			return "Notion integration secret is invalid. Check your settings in your config."
		case 403:
			return `Notion database is not shared with your integration. Open the database → "..." → "Connect to" → select your integration.`
		case 404:
			return "Notion database not found. Check the database ID in your config."
		case 400:
			return "Notion rejected the data: " + orDefault(message, "Check that your database properties match the required schema.")
		}
	case SourceAI:
		switch status {
		case 401:
			return "AI API key is invalid. Check your key in your config."
		case 403:
			return "AI API key does not have access. Check your billing or quota."
		case 400:
			return "AI request was invalid: " + orDefault(message, "Unknown error")
		}
	}

	return fmt.Sprintf("%s error (%d): %s", source, status, orDefault(message, "Unknown error"))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
