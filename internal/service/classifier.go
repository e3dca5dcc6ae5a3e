// internal/service/classifier.go
package service

import (
	"strings"

	"github.com/unclebandit/mailmirror-backend/internal/model"
)

// Classify finds the category for a campaign by keyword matching. Categories
// are walked in the order given (rank order from the repository) and each
// category's keywords likewise; the first keyword that matches wins, so the
// configured ranks are the whole tie-break — keyword length, match position
// and insertion order never matter. Categories with SmartMatch=false are
// manual-only and skipped. Returns nil when nothing matches.
func Classify(c *model.Campaign, categories []*model.Category) *model.Category {
	for _, cat := range categories {
		if !cat.SmartMatch {
			continue
		}
		for i := range cat.Keywords {
			if keywordMatches(&cat.Keywords[i], c) {
				return cat
			}
		}
	}
	return nil
}

// keywordMatches checks the keyword's value against every campaign field its
// scope flags enable. Matching is case-insensitive substring search; an empty
// field simply never matches.
func keywordMatches(k *model.Keyword, c *model.Campaign) bool {
	needle := strings.ToLower(k.Value)
	if needle == "" {
		return false
	}
	if k.ScopeName && containsFold(c.Title, needle) {
		return true
	}
	if k.ScopeSubject && containsFold(c.Subject, needle) {
		return true
	}
	if k.ScopeContent {
		content := c.ContentText
		if content == "" {
			content = c.ContentHTML
		}
		if containsFold(content, needle) {
			return true
		}
	}
	if k.ScopeListName && containsFold(c.ListName, needle) {
		return true
	}
	return false
}

// needle must already be lowercased
func containsFold(haystack, needle string) bool {
	return haystack != "" && strings.Contains(strings.ToLower(haystack), needle)
}
