// Package moderation provides the offensive-content matcher used by the admin
// summary. The matcher is an interface so the keyword list stays configuration
// and can be swapped without touching the counting code.
package moderation

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher reports whether a review text should be flagged.
type Matcher interface {
	Match(text string) bool
}

// DefaultKeywords mirrors the list the moderation team started with.
var DefaultKeywords = []string{"bad", "stupid", "poor", "shit", "disgusting"}

// KeywordMatcher flags text containing any configured keyword as a
// case-insensitive substring, so keywords match inside longer words too.
type KeywordMatcher struct {
	re *regexp.Regexp
}

func NewKeywordMatcher(keywords []string) (*KeywordMatcher, error) {
	cleaned := make([]string, 0, len(keywords))
	for _, w := range keywords {
		w = strings.TrimSpace(w)
		if w != "" {
			cleaned = append(cleaned, regexp.QuoteMeta(w))
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("keyword matcher needs at least one keyword")
	}
	re, err := regexp.Compile(`(?i)(` + strings.Join(cleaned, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile keyword pattern: %w", err)
	}
	return &KeywordMatcher{re: re}, nil
}

func (m *KeywordMatcher) Match(text string) bool {
	return m.re.MatchString(text)
}
