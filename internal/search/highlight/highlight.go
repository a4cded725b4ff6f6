// Package highlight marks query matches in text.
package highlight

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	OpenTag  = "<mark>"
	CloseTag = "</mark>"
)

// Highlight wraps every case-insensitive occurrence of query in text with
// <mark> tags, keeping the casing found in text. A blank query returns text
// unchanged. The query is matched literally.
func Highlight(text, query string) string {
	return mark(text, query, func(s string) string { return s })
}

// HighlightHTML is Highlight for plain text that is rendered as HTML: the
// text around and inside each match is escaped, so only the <mark> tags are
// markup.
func HighlightHTML(text, query string) string {
	return mark(text, query, html.EscapeString)
}

func mark(text, query string, esc func(string) string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return esc(text)
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(q))
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		b.WriteString(esc(text[last:loc[0]]))
		b.WriteString(OpenTag)
		b.WriteString(esc(text[loc[0]:loc[1]]))
		b.WriteString(CloseTag)
		last = loc[1]
	}
	b.WriteString(esc(text[last:]))
	return b.String()
}

// Sanitizer strips every element except <mark> from highlighted text so
// markup stored in memories cannot reach clients.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("mark")
	return &Sanitizer{policy: p}
}

func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}

// Safe highlights plain text for HTML output. The sanitizer runs last as a
// guard; after escaping it only ever sees <mark> elements.
func (s *Sanitizer) Safe(text, query string) string {
	return s.Sanitize(HighlightHTML(text, query))
}
