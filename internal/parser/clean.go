package parser

import (
	"regexp"
	"strings"
)

var (
	hyphenBreakRe  = regexp.MustCompile(`-\s*\n\s*`)
	spaceNewlineRe = regexp.MustCompile(`\s+\n`)
	spaceRunRe     = regexp.MustCompile(`[ \t]+`)
)

// CleanText normalizes raw page text extracted from a PDF layout into a
// single line. The steps are order-sensitive: hyphen joining must see
// the original whitespace runs, so it runs before they are collapsed.
func CleanText(t string) string {
	t = strings.ReplaceAll(t, "\r", " ")
	// join "nutri-\n tion" => "nutrition"
	t = hyphenBreakRe.ReplaceAllString(t, "")
	t = spaceNewlineRe.ReplaceAllString(t, "\n")
	t = spaceRunRe.ReplaceAllString(t, " ")
	t = strings.ReplaceAll(t, "\n", " ")
	return strings.TrimSpace(t)
}
