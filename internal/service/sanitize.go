package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxSanitizePasses bounds how many layers of entity encoding are unwrapped.
const maxSanitizePasses = 8

// textSanitizer strips markup from free text while keeping plain characters
// such as apostrophes readable.
type textSanitizer struct {
	policy *bluemonday.Policy
}

func newTextSanitizer() textSanitizer {
	return textSanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean sanitizes and unescapes until the text is stable, so entity-encoded
// markup is stripped as well. Input that never settles is returned in its
// escaped form.
func (t textSanitizer) Clean(value string) string {
	current := value
	for i := 0; i < maxSanitizePasses; i++ {
		sanitized := t.policy.Sanitize(current)
		next := html.UnescapeString(sanitized)
		if next == current {
			return strings.TrimSpace(next)
		}
		current = next
	}
	return strings.TrimSpace(t.policy.Sanitize(current))
}
