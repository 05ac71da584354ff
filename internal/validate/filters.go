// Package validate rejects noise candidates before they reach the entity
// maps. The filters are stateless predicates over configured word lists; they
// never consult frequency or extraction order.
package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nfreytag/storyweaver/internal/model"
)

// Filters holds the word sets used to reject candidate names.
type Filters struct {
	minLength        int
	stopWords        map[string]struct{}
	bodyTerms        map[string]struct{}
	genericItems     map[string]struct{}
	genericLocations map[string]struct{}
}

// NewFilters builds the filter set from configuration. List entries are
// case-folded once at construction.
func NewFilters(cfg model.FilterConfig, minNameLength int) *Filters {
	if minNameLength <= 0 {
		minNameLength = 3
	}
	return &Filters{
		minLength:        minNameLength,
		stopWords:        toSet(cfg.StopWords),
		bodyTerms:        toSet(cfg.BodyTerms),
		genericItems:     toSet(cfg.GenericItems),
		genericLocations: toSet(cfg.GenericLocations),
	}
}

// ValidName reports whether a candidate can name any entity: long enough, not
// purely numeric, not a stop word.
func (f *Filters) ValidName(name string) bool {
	if utf8.RuneCountInString(name) < f.minLength {
		return false
	}
	if isDigits(name) {
		return false
	}
	if _, ok := f.stopWords[strings.ToLower(name)]; ok {
		return false
	}
	return true
}

// ValidItem reports whether a candidate can name an item. Body parts and
// generic placeholders are rejected on top of the base name checks.
func (f *Filters) ValidItem(name string) bool {
	if !f.ValidName(name) {
		return false
	}
	lower := strings.ToLower(name)
	if _, ok := f.bodyTerms[lower]; ok {
		return false
	}
	if _, ok := f.genericItems[lower]; ok {
		return false
	}
	return true
}

// ValidLocation reports whether a candidate can name a location. Deictic and
// generic place words are rejected, and body parts are never locations.
func (f *Filters) ValidLocation(name string) bool {
	if !f.ValidName(name) {
		return false
	}
	lower := strings.ToLower(name)
	if _, ok := f.genericLocations[lower]; ok {
		return false
	}
	if _, ok := f.bodyTerms[lower]; ok {
		return false
	}
	return true
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
