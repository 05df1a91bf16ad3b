// Package validate holds the pure input checks applied before a message is posted.
package validate

import (
	"regexp"
	"unicode/utf8"
)

// MaxMessageLength is Slack's limit on a single text payload, in characters.
const MaxMessageLength = 3000

var webhookPattern = regexp.MustCompile(`^https://hooks\.slack\.com/services/[A-Z0-9]+/[A-Z0-9]+/[a-zA-Z0-9]+$`)

// MessageLength reports whether msg is non-empty and at most MaxMessageLength characters.
func MessageLength(msg string) bool {
	n := utf8.RuneCountInString(msg)
	return n > 0 && n <= MaxMessageLength
}

// WebhookURL reports whether url is a Slack incoming-webhook URL.
func WebhookURL(url string) bool {
	return url != "" && webhookPattern.MatchString(url)
}
