// Package collation provides locale-aware string ordering for folder and
// video titles.
package collation

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale is used when no locale is configured or the configured one
// cannot be parsed.
const DefaultLocale = "en"

// Collator compares strings using the rules of a single locale.
// It is safe for concurrent use.
type Collator struct {
	mu     sync.Mutex
	c      *collate.Collator
	locale string
}

// New returns a Collator for locale (a BCP 47 tag such as "en" or "de-CH").
func New(locale string) *Collator {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.MustParse(DefaultLocale)
		locale = DefaultLocale
	}
	return &Collator{c: collate.New(tag), locale: locale}
}

// Locale returns the tag the collator was built for.
func (c *Collator) Locale() string {
	return c.locale
}

// Compare returns -1, 0, or 1 as a sorts before, with, or after b.
func (c *Collator) Compare(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.c.CompareString(a, b)
}

// Less reports whether a sorts strictly before b.
func (c *Collator) Less(a, b string) bool {
	return c.Compare(a, b) < 0
}
