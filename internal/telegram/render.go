package telegram

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	spacePattern      = regexp.MustCompile(`[ \t]+`)
	blankLinesPattern = regexp.MustCompile(`\n\s*\n`)
)

// StripHTML removes markup and collapses whitespace so a reply rejected by
// Telegram's HTML parser can still be delivered as plain text.
func StripHTML(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = spacePattern.ReplaceAllString(text, " ")
	text = blankLinesPattern.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
