// Package sanitizer cleans user-supplied text and rendered HTML.
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy  *bluemonday.Policy
	contentPolicy *bluemonday.Policy
	initOnce      sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		// Markdown output from the content editor: headings, lists, tables, links and images.
		contentPolicy = bluemonday.NewPolicy()
		contentPolicy.AllowStandardURLs()
		contentPolicy.AllowElements(
			"h1", "h2", "h3", "h4", "h5", "h6",
			"p", "br", "hr",
			"strong", "b", "em", "i", "del",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
			"table", "thead", "tbody", "tr", "th", "td",
		)
		contentPolicy.AllowAttrs("href", "title").OnElements("a")
		contentPolicy.AllowAttrs("src", "alt", "title").OnElements("img")
		contentPolicy.RequireNoFollowOnLinks(true)
		contentPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
}

// StripTags removes all markup and returns trimmed plain text.
func StripTags(s string) string {
	initPolicies()
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// Text strips markup and collapses runs of whitespace into single spaces.
// Use for single-line form fields like names and subjects.
func Text(s string) string {
	return strings.Join(strings.Fields(StripTags(s)), " ")
}

// Content keeps the formatting that rendered Markdown produces and drops
// scripts, event handlers and unsafe URLs.
func Content(s string) string {
	initPolicies()
	return contentPolicy.Sanitize(s)
}
