// Package triage implements the review triage pipeline: spam detection,
// category inference and per-batch frequency aggregation.
package triage

import (
	"strings"
	"sync"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonesrussell/review-triage/internal/domain"
	"github.com/jonesrussell/review-triage/internal/logger"
)

// CategoryClassifier infers a review category from an ordered keyword
// cascade, with an optional external-label override. Classification is
// deterministic: same text, same category.
type CategoryClassifier struct {
	mu       sync.Mutex // the automaton keeps per-call state
	matcher  *ahocorasick.Matcher
	keywords []string       // unique normalized keywords, in dictionary order
	kwToRule map[string]int // normalized keyword -> earliest cascade rule index
	logger   logger.Logger
}

// NewCategoryClassifier builds the keyword automaton from the cascade table.
func NewCategoryClassifier(log logger.Logger) *CategoryClassifier {
	c := &CategoryClassifier{
		kwToRule: make(map[string]int),
		logger:   log,
	}

	// Keywords recur across rules ("easy" belongs to both app_interface and
	// feedback), and the automaton collapses duplicate patterns into a single
	// dictionary entry. Keep one entry per unique keyword, mapped to its
	// earliest rule, and resolve hits through the keyword string.
	for ruleIdx, rule := range cascade {
		for _, kw := range rule.Keywords {
			normalized := normalizeText(kw)
			if _, seen := c.kwToRule[normalized]; seen {
				continue
			}
			c.kwToRule[normalized] = ruleIdx
			c.keywords = append(c.keywords, normalized)
		}
	}
	c.matcher = ahocorasick.NewStringMatcher(c.keywords)

	if log != nil {
		log.Info("category classifier initialized",
			logger.Int("rules", len(cascade)),
			logger.Int("keywords", len(c.keywords)))
	}

	return c
}

// Classify returns the category for reviewText. When ext carries a category
// that is a member of allowed, the external label replaces the cascade
// result entirely; its reason is passed through unmodified. An
// out-of-vocabulary external category is a no-op override, not an error.
func (c *CategoryClassifier) Classify(reviewText string, ext *domain.ExternalLabel, allowed map[string]struct{}) (category, reason string) {
	category = c.classifyByCascade(reviewText)

	if ext != nil {
		reason = ext.Reason
		if _, ok := allowed[ext.Category]; ok && ext.Category != "" {
			if c.logger != nil && ext.Category != category {
				c.logger.Debug("external label overrides cascade",
					logger.String("cascade_category", category),
					logger.String("external_category", ext.Category))
			}
			category = ext.Category
		}
	}

	return category, reason
}

// classifyByCascade runs a single automaton pass over the text and picks
// the earliest cascade rule among the hits.
func (c *CategoryClassifier) classifyByCascade(text string) string {
	normalized := normalizeText(text)

	c.mu.Lock()
	hits := c.matcher.Match([]byte(normalized))
	c.mu.Unlock()

	best := len(cascade)
	for _, hit := range hits {
		if hit >= len(c.keywords) {
			continue
		}
		if rule := c.kwToRule[c.keywords[hit]]; rule < best {
			best = rule
		}
	}

	if best == len(cascade) {
		return domain.CategoryUnknown
	}
	return cascade[best].Category
}

// normalizeText lowercases and folds diacritics so keyword matching is
// case- and accent-insensitive. Punctuation is preserved: keywords like
// "user-friendly" and "ease_of_return" match as written.
func normalizeText(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}
