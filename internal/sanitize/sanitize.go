// Package sanitize strips markup and script content from user-supplied text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// maxPasses bounds how many layers of entity encoding Text unwraps.
const maxPasses = 8

var angleStripper = strings.NewReplacer("<", "", ">", "")

// Text removes every HTML element (dropping script and style bodies
// entirely) and returns the trimmed plain text. Entity-encoded markup is
// decoded and sanitized again until the text stops changing, so the result
// never carries an element that the policy would strip.
func Text(s string) string {
	if s == "" {
		return s
	}
	cur := s
	for i := 0; i < maxPasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(policy.Sanitize(cur)))
		if next == cur {
			return next
		}
		cur = next
	}
	return angleStripper.Replace(cur)
}

// List applies Text to every element.
func List(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = Text(s)
	}
	return out
}
