package extract

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nfreytag/storyweaver/internal/model"
	"github.com/nfreytag/storyweaver/internal/nlp"
	"github.com/nfreytag/storyweaver/internal/validate"
)

// Extractor recognizes entities in a document's records and folds them into
// a Context. Characters come from the engine's person spans and from
// speakers; items and locations come from keyword scans plus the engine's
// location spans; ownership comes from possessive and object dependencies.
type Extractor struct {
	engine  nlp.Engine
	filters *validate.Filters

	itemKeywords     map[string][]string
	locationKeywords map[string][]string

	// Category tags in sorted order. Scans must visit categories the same
	// way every run: admission order feeds the order-dependent merge phase,
	// and the first matching category wins a keyword shared between two.
	itemCategories     []string
	locationCategories []string

	minNameLength  int
	batchThreshold int
	batchSize      int
}

// NewExtractor builds an extractor from configuration.
func NewExtractor(engine nlp.Engine, filters *validate.Filters, cfg model.Config) *Extractor {
	ex := &Extractor{
		engine:             engine,
		filters:            filters,
		itemKeywords:       cfg.Keywords.Items,
		locationKeywords:   cfg.Keywords.Locations,
		itemCategories:     sortedCategories(cfg.Keywords.Items),
		locationCategories: sortedCategories(cfg.Keywords.Locations),
		minNameLength:      cfg.Extract.MinNameLength,
		batchThreshold:     cfg.Extract.BatchThreshold,
		batchSize:          cfg.Extract.BatchSize,
	}
	if ex.minNameLength <= 0 {
		ex.minNameLength = 3
	}
	if ex.batchThreshold <= 0 {
		ex.batchThreshold = 1000
	}
	if ex.batchSize <= 0 {
		ex.batchSize = 500
	}
	return ex
}

// ExtractDocument processes one document's records into the context. Large
// documents are analyzed in batches; output is identical either way. An
// engine error aborts the document, keeping whatever was already admitted.
func (e *Extractor) ExtractDocument(ctx *Context, sourceID string, records []model.Record) error {
	// Every distinct speaker is a character candidate before any content
	// analysis runs. Narration lines never seed characters.
	for _, speaker := range speakers(records) {
		e.addCharacter(ctx, speaker, "Speaks in "+sourceID, sourceID, 0)
	}

	for _, rec := range records {
		if rec.Speaker != "" && (rec.IsDialog() || rec.IsAction()) {
			ctx.BufferDialog(DialogLine{
				Speaker:  rec.Speaker,
				Content:  rec.Content,
				Category: rec.Category,
				Position: rec.Position,
				SourceID: sourceID,
			})
		}
	}

	withContent := make([]model.Record, 0, len(records))
	for _, rec := range records {
		if rec.Content != "" {
			withContent = append(withContent, rec)
		}
	}

	if len(records) > e.batchThreshold {
		return e.analyzeBatched(ctx, sourceID, withContent)
	}
	for _, rec := range withContent {
		analysis, err := e.engine.Analyze(rec.Content)
		if err != nil {
			return fmt.Errorf("analyzing %s position %d: %w", sourceID, rec.Position, err)
		}
		e.analyzeRecord(ctx, sourceID, rec, analysis)
	}
	return nil
}

// analyzeBatched analyzes records in fixed-size chunks. Chunking only
// amortizes engine overhead; results match record-by-record analysis.
func (e *Extractor) analyzeBatched(ctx *Context, sourceID string, records []model.Record) error {
	for start := 0; start < len(records); start += e.batchSize {
		end := start + e.batchSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		texts := make([]string, len(chunk))
		for i, rec := range chunk {
			texts[i] = rec.Content
		}
		analyses, err := e.engine.AnalyzeBatch(texts)
		if err != nil {
			return fmt.Errorf("analyzing %s batch at %d: %w", sourceID, start, err)
		}
		for i, rec := range chunk {
			e.analyzeRecord(ctx, sourceID, rec, analyses[i])
		}
	}
	return nil
}

// analyzeRecord folds one analyzed record into the context.
func (e *Extractor) analyzeRecord(ctx *Context, sourceID string, rec model.Record, analysis *nlp.Analysis) {
	for _, span := range analysis.Spans {
		switch span.Label {
		case "PERSON", "PER":
			e.addCharacter(ctx, span.Text, rec.RawText, sourceID, rec.Position)
		case "LOC", "GPE":
			e.addLocation(ctx, span.Text, "", rec.RawText, sourceID, rec.Position)
		}
	}

	e.scanItemKeywords(ctx, sourceID, rec)
	e.scanLocationKeywords(ctx, sourceID, rec)
	e.extractOwnership(ctx, rec, analysis)

	if rec.IsAction() {
		e.analyzeAction(ctx, sourceID, rec, analysis)
	}
}

// addCharacter admits a character candidate. Names are title-cased so "lyra"
// and "Lyra" land on the same key.
func (e *Extractor) addCharacter(ctx *Context, name, context, sourceID string, position int) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < e.minNameLength {
		return
	}
	if !e.filters.ValidName(name) {
		return
	}
	ch := ctx.Character(titleCase(name))
	ch.AddMention(context, sourceID, position)
}

// addItem admits an item candidate under its lower-cased key. The category
// tag is set on first creation only.
func (e *Extractor) addItem(ctx *Context, name, itemType, context, sourceID string, position int) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return
	}
	_, existed := ctx.Items[key]
	it := ctx.Item(key)
	if !existed {
		it.SetType(itemType)
	}
	it.AddMention(context, sourceID, position)
}

// addLocation admits a location candidate after full validation.
func (e *Extractor) addLocation(ctx *Context, name, locationType, context, sourceID string, position int) {
	name = strings.TrimSpace(name)
	if !e.filters.ValidLocation(name) {
		return
	}
	loc := ctx.Location(titleCase(name))
	loc.AddMention(context, sourceID, position)
	loc.SetType(locationType)
}

// scanItemKeywords finds items by trigger keywords. For each keyword present
// in the content, three candidate shapes are tried: the keyword with its
// preceding word, the keyword with its following word, and the bare keyword.
// Each shape admits at most one candidate per keyword.
func (e *Extractor) scanItemKeywords(ctx *Context, sourceID string, rec model.Record) {
	words := lowerWords(rec.Content)
	for _, category := range e.itemCategories {
		for _, keyword := range e.itemKeywords[category] {
			for _, candidate := range keywordCandidates(words, keyword) {
				if e.filters.ValidItem(candidate) {
					e.addItem(ctx, candidate, category, rec.RawText, sourceID, rec.Position)
				}
			}
		}
	}
}

// scanLocationKeywords finds locations by trigger keywords. Unlike items, the
// category tag is refreshed on every hit.
func (e *Extractor) scanLocationKeywords(ctx *Context, sourceID string, rec model.Record) {
	words := lowerWords(rec.Content)
	for _, category := range e.locationCategories {
		for _, keyword := range e.locationKeywords[category] {
			for _, candidate := range keywordCandidates(words, keyword) {
				if e.filters.ValidLocation(candidate) {
					e.addLocation(ctx, titleCase(candidate), category, rec.RawText, sourceID, rec.Position)
				}
			}
		}
	}
}

// keywordCandidates returns up to three candidate names for one keyword, in
// shape order: word-before, word-after, bare keyword. Empty when the keyword
// does not occur as a word of its own.
func keywordCandidates(words []string, keyword string) []string {
	idx := -1
	for i, w := range words {
		if w == keyword {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	var candidates []string
	if idx > 0 {
		candidates = append(candidates, words[idx-1]+" "+keyword)
	}
	if idx < len(words)-1 {
		candidates = append(candidates, keyword+" "+words[idx+1])
	}
	return append(candidates, keyword)
}

// extractOwnership links possessively referenced items to the record's
// speaker. A possessive token's head noun is matched against known item keys
// by substring in either direction.
func (e *Extractor) extractOwnership(ctx *Context, rec model.Record, analysis *nlp.Analysis) {
	if rec.Speaker == "" || rec.Speaker == model.NarratorName {
		return
	}
	ch, known := ctx.Characters[titleCase(rec.Speaker)]
	if !known {
		return
	}

	for _, tok := range analysis.Tokens {
		if tok.Dep != "poss" || tok.Head < 0 || tok.Head >= len(analysis.Tokens) {
			continue
		}
		noun := analysis.Tokens[tok.Head].Lemma
		if noun == "" {
			continue
		}
		for key, item := range ctx.Items {
			if strings.Contains(key, noun) || strings.Contains(noun, key) {
				item.AddOwner(ch.Name)
				ch.AddItem(key)
			}
		}
	}
}

// analyzeAction inspects action records for objects of verbs. A direct-object
// noun containing an item keyword is admitted as an item without filter
// checks, since the keyword itself vouches for it.
func (e *Extractor) analyzeAction(ctx *Context, sourceID string, rec model.Record, analysis *nlp.Analysis) {
	for _, tok := range analysis.Tokens {
		if tok.Dep != "dobj" {
			continue
		}
		text := strings.ToLower(tok.Text)
		category, hit := e.matchItemKeyword(text)
		if !hit {
			continue
		}
		e.addItem(ctx, text, category, rec.RawText, sourceID, rec.Position)
		if rec.Speaker != "" && rec.Speaker != model.NarratorName {
			if it, ok := ctx.Items[text]; ok {
				it.AddOwner(titleCase(rec.Speaker))
			}
		}
	}
}

// matchItemKeyword reports the category of the first item keyword contained
// in text, visiting categories in sorted order.
func (e *Extractor) matchItemKeyword(text string) (string, bool) {
	for _, category := range e.itemCategories {
		for _, kw := range e.itemKeywords[category] {
			if strings.Contains(text, kw) {
				return category, true
			}
		}
	}
	return "", false
}

// sortedCategories returns the category tags of a keyword table in sorted
// order.
func sortedCategories(keywords map[string][]string) []string {
	categories := make([]string, 0, len(keywords))
	for category := range keywords {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// speakers returns the distinct non-narrator speakers in encounter order.
func speakers(records []model.Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range records {
		if rec.Speaker == "" || rec.Speaker == model.NarratorName {
			continue
		}
		if _, ok := seen[rec.Speaker]; ok {
			continue
		}
		seen[rec.Speaker] = struct{}{}
		out = append(out, rec.Speaker)
	}
	return out
}

// lowerWords splits content into lower-cased words, treating every
// non-letter, non-digit rune as a separator.
func lowerWords(content string) []string {
	return strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// titleCase upper-cases the first letter of every word and lower-cases the
// rest.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
