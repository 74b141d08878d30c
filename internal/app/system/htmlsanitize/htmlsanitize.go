// Package htmlsanitize cleans viewer-supplied text before it is stored.
// Saved view names and display names are plain text; anything that looks
// like markup is stripped with a bluemonday strict policy.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// MaxNameLength bounds sanitized names, counted in runes.
const MaxNameLength = 80

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// StripTags removes all markup from s. Entities produced by the policy are
// decoded so the result is plain text again.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(getPolicy().Sanitize(s))
}

// SanitizeName strips markup and control characters, collapses runs of
// whitespace and truncates to MaxNameLength runes.
func SanitizeName(s string) string {
	s = StripTags(s)

	var b strings.Builder
	space := false
	n := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = b.Len() > 0
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if n >= MaxNameLength {
			break
		}
		if space {
			if n+1 >= MaxNameLength {
				break
			}
			b.WriteByte(' ')
			n++
			space = false
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// IsPlainText reports whether s contains nothing that looks like a tag.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}
