package format

import "regexp"

var (
	lineBreakTag = regexp.MustCompile(`(?i)<br\s*/?>`)
	anyTag       = regexp.MustCompile(`<.*?>`)
)

// StripMarkup turns line-break tags into newlines and drops every other
// tag. Only the delimiters are matched; unbalanced brackets are left as is.
func StripMarkup(s string) string {
	s = lineBreakTag.ReplaceAllString(s, "\n")
	return anyTag.ReplaceAllString(s, "")
}
