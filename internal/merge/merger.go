// Package merge clusters near-duplicate entities into canonical records.
//
// Clustering is a single pass in first-encounter order: each unprocessed
// entity seeds a cluster and absorbs every later entity similar to the seed.
// Similarity is judged against the seed only, so two entities that are
// similar to each other can still land in different clusters when neither is
// similar to the earlier seed. One pass never produces two entries whose
// names are similar to each other under the seed's test; callers wanting
// tighter clustering can run the pass again on its own output.
package merge

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/nfreytag/storyweaver/internal/model"
)

// RatioFunc scores the similarity of two strings from 0 to 100.
type RatioFunc func(a, b string) int

// DefaultRatio is Levenshtein-based similarity scoring.
func DefaultRatio(a, b string) int {
	return fuzzy.Ratio(a, b)
}

// Merger folds similar entities together.
type Merger struct {
	threshold int
	ratio     RatioFunc
}

// NewMerger builds a merger with the given similarity threshold, clamped to
// [50, 100]. Below 50 everything merges with everything; 100 means exact
// match only.
func NewMerger(threshold int) *Merger {
	return NewMergerWithRatio(threshold, DefaultRatio)
}

// NewMergerWithRatio is NewMerger with an injectable scoring function.
func NewMergerWithRatio(threshold int, ratio RatioFunc) *Merger {
	if threshold < 50 {
		threshold = 50
	}
	if threshold > 100 {
		threshold = 100
	}
	return &Merger{threshold: threshold, ratio: ratio}
}

// MergeCharacters clusters the characters and returns the merged map with
// its keys in cluster-seed order. Absorbed characters become aliases of the
// survivor; the canonical name is the longest punctuation-free name among
// the seed and its aliases.
func (m *Merger) MergeCharacters(characters map[string]*model.Character, order []string) (map[string]*model.Character, []string) {
	merged := make(map[string]*model.Character, len(characters))
	var mergedOrder []string
	processed := make(map[string]struct{})

	for _, name := range order {
		if _, done := processed[name]; done {
			continue
		}
		ch := characters[name]

		for _, other := range m.similarCharacters(name, order, processed) {
			ch.MergeFrom(characters[other])
			ch.AddAlias(other)
			processed[other] = struct{}{}
		}

		best := selectBestName(append([]string{name}, ch.AliasList()...))
		if best != name {
			ch.Rename(best)
			ch.AddAlias(name)
		}

		if existing, ok := merged[ch.Name]; ok {
			existing.MergeFrom(ch)
		} else {
			merged[ch.Name] = ch
			mergedOrder = append(mergedOrder, ch.Name)
		}
		processed[name] = struct{}{}
	}

	return merged, mergedOrder
}

// MergeItems clusters the items. The surviving name is the seed's, cleaned
// of leading articles and capitalized.
func (m *Merger) MergeItems(items map[string]*model.Item, order []string) (map[string]*model.Item, []string) {
	merged := make(map[string]*model.Item, len(items))
	var mergedOrder []string
	processed := make(map[string]struct{})

	for _, name := range order {
		if _, done := processed[name]; done {
			continue
		}
		item := items[name]

		for _, other := range m.similarItems(name, order, processed) {
			item.MergeFrom(items[other])
			processed[other] = struct{}{}
		}

		if clean := cleanItemName(name); clean != name {
			item.Name = clean
		}

		if existing, ok := merged[item.Name]; ok {
			existing.MergeFrom(item)
		} else {
			merged[item.Name] = item
			mergedOrder = append(mergedOrder, item.Name)
		}
		processed[name] = struct{}{}
	}

	return merged, mergedOrder
}

// MergeLocations clusters the locations. When a cluster absorbed anything,
// the most descriptive name among seed and absorbed wins.
func (m *Merger) MergeLocations(locations map[string]*model.Location, order []string) (map[string]*model.Location, []string) {
	merged := make(map[string]*model.Location, len(locations))
	var mergedOrder []string
	processed := make(map[string]struct{})

	for _, name := range order {
		if _, done := processed[name]; done {
			continue
		}
		loc := locations[name]

		similar := m.similarLocations(name, order, processed)
		for _, other := range similar {
			loc.MergeFrom(locations[other])
			processed[other] = struct{}{}
		}

		if len(similar) > 0 {
			if best := selectBestLocationName(append([]string{name}, similar...)); best != name {
				loc.Name = best
			}
		}

		if existing, ok := merged[loc.Name]; ok {
			existing.MergeFrom(loc)
		} else {
			merged[loc.Name] = loc
			mergedOrder = append(mergedOrder, loc.Name)
		}
		processed[name] = struct{}{}
	}

	return merged, mergedOrder
}

// similarCharacters returns the unprocessed names similar to name, in order.
// Two characters match on fuzzy ratio, on containment of one normalized name
// in the other, or on a shared first name.
func (m *Merger) similarCharacters(name string, all []string, processed map[string]struct{}) []string {
	var similar []string
	normalized := normalizeCharacterName(name)

	for _, other := range all {
		if other == name {
			continue
		}
		if _, done := processed[other]; done {
			continue
		}
		otherNormalized := normalizeCharacterName(other)

		if m.ratio(normalized, otherNormalized) >= m.threshold {
			similar = append(similar, other)
			continue
		}
		if strings.Contains(otherNormalized, normalized) || strings.Contains(normalized, otherNormalized) {
			similar = append(similar, other)
			continue
		}
		parts, otherParts := strings.Fields(normalized), strings.Fields(otherNormalized)
		if len(parts) > 0 && len(otherParts) > 0 && parts[0] == otherParts[0] {
			similar = append(similar, other)
		}
	}
	return similar
}

// similarItems returns the unprocessed names similar to name. Items match on
// fuzzy ratio or on sharing the same base keyword, so "schwert" and
// "magisches schwert" fold together.
func (m *Merger) similarItems(name string, all []string, processed map[string]struct{}) []string {
	var similar []string
	normalized := normalizeItemName(name)
	base := baseItemWord(normalized)

	for _, other := range all {
		if other == name {
			continue
		}
		if _, done := processed[other]; done {
			continue
		}
		otherNormalized := normalizeItemName(other)

		if m.ratio(normalized, otherNormalized) >= m.threshold {
			similar = append(similar, other)
			continue
		}
		if base != "" && base == baseItemWord(otherNormalized) {
			similar = append(similar, other)
		}
	}
	return similar
}

// similarLocations returns the unprocessed names similar to name. Locations
// match on fuzzy ratio, on word-set containment ignoring filler words, or on
// sharing the same base location word.
func (m *Merger) similarLocations(name string, all []string, processed map[string]struct{}) []string {
	var similar []string
	normalized := normalizeLocationName(name)
	base := baseLocationWord(normalized)

	for _, other := range all {
		if other == name {
			continue
		}
		if _, done := processed[other]; done {
			continue
		}
		otherNormalized := normalizeLocationName(other)

		if m.ratio(normalized, otherNormalized) >= m.threshold {
			similar = append(similar, other)
			continue
		}
		if locationWordSubset(normalized, otherNormalized) {
			similar = append(similar, other)
			continue
		}
		if base != "" && base == baseLocationWord(otherNormalized) {
			similar = append(similar, other)
		}
	}
	return similar
}

var (
	honorificPrefix = regexp.MustCompile(`^(herr|frau|fräulein|lord|lady|sir|prinz|prinzessin|könig|königin|herzog|herzogin|dr|doktor|professor|prof|mr|mrs|miss|ms|king|queen|prince|princess|duke|duchess|master|mistress)\s+`)
	itemPrefix      = regexp.MustCompile(`^(der|die|das|den|dem|des|ein|eine|einem|einer|eines|durch|mit|von|im|in|am|an|the|a|an|with|by)\s+`)
	locationPrefix  = regexp.MustCompile(`^(der|die|das|den|dem|des|im|in|am|an|auf|bei|zum|zur|the|at|on|by)\s+`)
	cleanArticle    = regexp.MustCompile(`^(der|die|das|ein|eine|the|a|an)\s+`)
	nonNameRunes    = regexp.MustCompile(`[^\pL\pN\s]`)
	multiSpace      = regexp.MustCompile(`\s+`)
)

// normalizeCharacterName lower-cases, strips one leading honorific and all
// punctuation, and collapses whitespace.
func normalizeCharacterName(name string) string {
	return normalizeWith(honorificPrefix, name)
}

func normalizeItemName(name string) string {
	return normalizeWith(itemPrefix, name)
}

func normalizeLocationName(name string) string {
	return normalizeWith(locationPrefix, name)
}

func normalizeWith(prefix *regexp.Regexp, name string) string {
	name = strings.ToLower(name)
	name = prefix.ReplaceAllString(name, "")
	name = nonNameRunes.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// baseItemWords are recognized item nouns; names sharing one are treated as
// the same item carrying different attributes.
var baseItemWords = []string{
	"schwert", "dolch", "stab", "bogen", "amulett", "ring", "kette", "mantel",
	"kristall", "stein", "schlüssel", "seil", "schild", "robe", "buch", "karte",
	"tasche", "flasche", "handschellen", "krone", "helm", "rüstung", "umhang",
	"trank", "werkzeug", "waffe", "schriftrolle",
	"sword", "dagger", "staff", "bow", "amulet", "chain", "cloak", "crystal",
	"stone", "key", "rope", "shield", "book", "map", "bag", "bottle", "crown",
	"helmet", "armor", "potion", "scroll", "blade",
}

// itemPlurals maps plural forms to their base word, checked when no base
// word matched directly.
var itemPlurals = map[string]string{
	"schwerter": "schwert", "dolche": "dolch", "stäbe": "stab", "bögen": "bogen",
	"amulette": "amulett", "ringe": "ring", "ketten": "kette", "mäntel": "mantel",
	"kristalle": "kristall", "steine": "stein", "seile": "seil", "schilde": "schild",
	"roben": "robe",
	"swords": "sword", "daggers": "dagger", "staffs": "staff", "bows": "bow",
	"amulets": "amulet", "rings": "ring", "chains": "chain", "cloaks": "cloak",
	"crystals": "crystal", "stones": "stone", "keys": "key", "ropes": "rope",
	"shields": "shield", "robes": "robe",
}

// baseLocationWords are recognized location nouns.
var baseLocationWords = []string{
	"wald", "schloss", "burg", "turm", "dorf", "stadt", "tempel", "höhle",
	"taverne", "palast", "ruine", "kirche", "platz", "tal", "berg", "see",
	"fluss", "meer", "insel", "brücke", "straße", "haus", "hof", "halle",
	"festung", "hafen", "bucht", "schenke", "markt", "garten",
	"forest", "castle", "tower", "village", "city", "temple", "cave",
	"tavern", "palace", "ruin", "church", "valley", "mountain", "lake",
	"river", "sea", "island", "bridge", "street", "house", "hall",
	"fortress", "harbor", "market", "garden",
}

// locationFillerWords are ignored in the word-set containment test.
var locationFillerWords = map[string]struct{}{
	"von": {}, "der": {}, "die": {}, "das": {}, "am": {}, "im": {},
	"zur": {}, "zum": {}, "in": {}, "an": {}, "auf": {}, "bei": {},
	"of": {}, "the": {}, "at": {}, "on": {}, "by": {},
}

// descriptiveConnectors mark a location name as the fuller variant, like
// "Tempel von Morrakel" over "Tempel".
var descriptiveConnectors = map[string]struct{}{
	"von": {}, "des": {}, "der": {}, "am": {},
	"of": {}, "the": {}, "at": {},
}

// baseItemWord returns the item noun a normalized name is built on, or "".
func baseItemWord(name string) string {
	words := strings.Fields(name)
	for _, base := range baseItemWords {
		for _, w := range words {
			if w == base {
				return base
			}
		}
	}
	for _, w := range words {
		if singular, ok := itemPlurals[w]; ok {
			return singular
		}
	}
	return ""
}

// baseLocationWord returns the location noun a normalized name is built on,
// or "".
func baseLocationWord(name string) string {
	words := strings.Fields(name)
	for _, base := range baseLocationWords {
		for _, w := range words {
			if w == base {
				return base
			}
		}
	}
	return ""
}

// locationWordSubset reports whether one normalized name's word set,
// ignoring filler words, contains the other's.
func locationWordSubset(a, b string) bool {
	setA := significantWords(a)
	setB := significantWords(b)
	if len(setA) == 0 || len(setB) == 0 {
		return false
	}
	return isSubset(setA, setB) || isSubset(setB, setA)
}

func significantWords(name string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(name) {
		if _, filler := locationFillerWords[w]; !filler {
			set[w] = struct{}{}
		}
	}
	return set
}

func isSubset(a, b map[string]struct{}) bool {
	for w := range a {
		if _, ok := b[w]; !ok {
			return false
		}
	}
	return true
}

// cleanItemName strips a leading article and capitalizes the first word.
func cleanItemName(name string) string {
	name = cleanArticle.ReplaceAllString(name, "")
	words := strings.Fields(name)
	if len(words) > 0 {
		r, size := utf8.DecodeRuneInString(words[0])
		words[0] = string(unicode.ToUpper(r)) + words[0][size:]
	}
	return strings.Join(words, " ")
}

// selectBestName picks the fullest character name: punctuation-free names
// beat punctuated ones, longer beats shorter.
func selectBestName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	clean := make([]string, 0, len(names))
	for _, n := range names {
		if !nonNameRunes.MatchString(n) {
			clean = append(clean, n)
		}
	}
	if len(clean) > 0 {
		names = clean
	}
	return longest(names)
}

// selectBestLocationName prefers names with a descriptive connector word,
// then the longest.
func selectBestLocationName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	var descriptive []string
	for _, n := range names {
		for _, w := range strings.Fields(strings.ToLower(n)) {
			if _, ok := descriptiveConnectors[w]; ok {
				descriptive = append(descriptive, n)
				break
			}
		}
	}
	if len(descriptive) > 0 {
		return longest(descriptive)
	}
	return longest(names)
}

func longest(names []string) string {
	best := names[0]
	for _, n := range names[1:] {
		if len(n) > len(best) {
			best = n
		}
	}
	return best
}
