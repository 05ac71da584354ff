package extract

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nfreytag/storyweaver/internal/model"
	"github.com/nfreytag/storyweaver/internal/nlp"
	"github.com/nfreytag/storyweaver/internal/validate"
)

// fakeEngine returns canned analyses by exact content and an empty analysis
// for everything else.
type fakeEngine struct {
	analyses   map[string]*nlp.Analysis
	batchCalls int
	failBatch  bool
}

func (f *fakeEngine) Analyze(text string) (*nlp.Analysis, error) {
	if a, ok := f.analyses[text]; ok {
		return a, nil
	}
	return &nlp.Analysis{}, nil
}

func (f *fakeEngine) AnalyzeBatch(texts []string) ([]*nlp.Analysis, error) {
	f.batchCalls++
	if f.failBatch {
		return nil, errors.New("engine down")
	}
	out := make([]*nlp.Analysis, len(texts))
	for i, t := range texts {
		out[i], _ = f.Analyze(t)
	}
	return out, nil
}

func newTestExtractor(engine nlp.Engine, cfg model.Config) *Extractor {
	filters := validate.NewFilters(cfg.Filters, cfg.Extract.MinNameLength)
	return NewExtractor(engine, filters, cfg)
}

func TestExtractSpeakersSeedCharacters(t *testing.T) {
	e := newTestExtractor(&fakeEngine{}, model.DefaultConfig())
	ctx := NewContext()

	records := []model.Record{
		{Position: 1, Speaker: "Lyra", Content: "Hallo!", Category: model.CategoryDialog},
		{Position: 2, Speaker: "Lyra", Content: "Noch einmal.", Category: model.CategoryDialog},
		{Position: 3, Speaker: model.NarratorName, Content: "Die Nacht kam.", Category: model.CategoryNarration},
	}
	if err := e.ExtractDocument(ctx, "doc1.txt", records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ch, ok := ctx.Characters["Lyra"]
	if !ok {
		t.Fatal("speaker Lyra was not seeded")
	}
	if len(ch.Mentions) != 1 {
		t.Fatalf("expected one seed mention, got %d", len(ch.Mentions))
	}
	if ch.Mentions[0].Text != "Speaks in doc1.txt" || ch.Mentions[0].Position != 0 {
		t.Errorf("unexpected seed mention: %+v", ch.Mentions[0])
	}
	if _, ok := ctx.Characters[model.NarratorName]; ok {
		t.Error("narrator must never be seeded as a character")
	}
}

func TestExtractPersonAndLocationSpans(t *testing.T) {
	engine := &fakeEngine{analyses: map[string]*nlp.Analysis{
		"Mara wartet im Tempel von Akkad.": {
			Spans: []nlp.Span{
				{Text: "Mara", Label: "PERSON"},
				{Text: "Akkad", Label: "GPE"},
			},
		},
	}}
	e := newTestExtractor(engine, model.DefaultConfig())
	ctx := NewContext()

	records := []model.Record{{
		Position: 1,
		RawText:  "Mara wartet im Tempel von Akkad.",
		Content:  "Mara wartet im Tempel von Akkad.",
		Category: model.CategoryNarration,
	}}
	if err := e.ExtractDocument(ctx, "doc1.txt", records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := ctx.Characters["Mara"]; !ok {
		t.Error("PERSON span should create a character")
	}
	if _, ok := ctx.Locations["Akkad"]; !ok {
		t.Error("GPE span should create a location")
	}
}

func TestExtractItemKeywords(t *testing.T) {
	e := newTestExtractor(&fakeEngine{}, model.DefaultConfig())
	ctx := NewContext()

	records := []model.Record{{
		Position: 4,
		RawText:  "Sie hebt das magische Schwert auf.",
		Content:  "Sie hebt das magische Schwert auf.",
		Category: model.CategoryNarration,
	}}
	if err := e.ExtractDocument(ctx, "doc1.txt", records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Word-before, word-after and bare shapes are each admitted when valid.
	for _, key := range []string{"magische schwert", "schwert auf", "schwert"} {
		it, ok := ctx.Items[key]
		if !ok {
			t.Errorf("expected item %q", key)
			continue
		}
		if it.ItemType != "weapons" {
			t.Errorf("item %q: expected type weapons, got %q", key, it.ItemType)
		}
		if it.Frequency != len(it.Mentions) {
			t.Errorf("item %q: frequency %d does not match %d mentions", key, it.Frequency, len(it.Mentions))
		}
	}
}

func TestExtractItemOrderIsStable(t *testing.T) {
	records := []model.Record{{
		Position: 1,
		RawText:  "Halskette, Schlüssel, Amulett und Schwert liegen bereit.",
		Content:  "Halskette, Schlüssel, Amulett und Schwert liegen bereit.",
		Category: model.CategoryNarration,
	}}

	// Identical input must admit items in an identical order every run; the
	// merge phase folds clusters in encounter order.
	var first []string
	for i := 0; i < 50; i++ {
		e := newTestExtractor(&fakeEngine{}, model.DefaultConfig())
		ctx := NewContext()
		if err := e.ExtractDocument(ctx, "doc1.txt", records); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		keys := ctx.ItemKeys()
		if first == nil {
			first = keys
			continue
		}
		if !reflect.DeepEqual(keys, first) {
			t.Fatalf("run %d changed item order: %v vs %v", i, keys, first)
		}
	}
}

func TestMatchItemKeywordIsDeterministic(t *testing.T) {
	e := newTestExtractor(&fakeEngine{}, model.DefaultConfig())

	// "halskette" contains both the jewelry keyword "halskette" and the
	// restraints keyword "kette"; sorted category order fixes the tag.
	for i := 0; i < 50; i++ {
		category, ok := e.matchItemKeyword("halskette")
		if !ok {
			t.Fatal("expected a keyword match")
		}
		if category != "jewelry" {
			t.Fatalf("iteration %d: expected jewelry, got %q", i, category)
		}
	}
}

func TestExtractLocationKeywords(t *testing.T) {
	e := newTestExtractor(&fakeEngine{}, model.DefaultConfig())
	ctx := NewContext()

	records := []model.Record{{
		Position: 1,
		RawText:  "Der alte Turm ragt über die Stadt.",
		Content:  "Der alte Turm ragt über die Stadt.",
		Category: model.CategoryNarration,
	}}
	if err := e.ExtractDocument(ctx, "doc1.txt", records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loc, ok := ctx.Locations["Alte Turm"]
	if !ok {
		t.Fatalf("expected location 'Alte Turm', have %v", ctx.LocationNames())
	}
	if loc.LocationType != "buildings" {
		t.Errorf("expected type buildings, got %q", loc.LocationType)
	}
}

func TestExtractOwnership(t *testing.T) {
	content := "Lyra greift nach ihrem Schwert."
	engine := &fakeEngine{analyses: map[string]*nlp.Analysis{
		content: {
			Tokens: []nlp.Token{
				{Text: "ihrem", Tag: "PRP$", Dep: "poss", Head: 1},
				{Text: "Schwert", Tag: "NN", Lemma: "schwert", Head: -1},
			},
		},
	}}
	e := newTestExtractor(engine, model.DefaultConfig())
	ctx := NewContext()

	records := []model.Record{{
		Position: 1,
		RawText:  content,
		Speaker:  "Lyra",
		Content:  content,
		Category: model.CategoryDialog,
	}}
	if err := e.ExtractDocument(ctx, "doc1.txt", records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	it, ok := ctx.Items["schwert"]
	if !ok {
		t.Fatal("keyword scan should have admitted 'schwert'")
	}
	owners := it.OwnerList()
	if len(owners) != 1 || owners[0] != "Lyra" {
		t.Errorf("expected owner Lyra, got %v", owners)
	}

	ch := ctx.Characters["Lyra"]
	holdsSword := false
	for _, key := range ch.ItemList() {
		if key == "schwert" {
			holdsSword = true
		}
	}
	if !holdsSword {
		t.Errorf("expected Lyra to hold schwert, got %v", ch.ItemList())
	}
}

func TestExtractActionObjects(t *testing.T) {
	content := "Elias zieht den Dolch"
	engine := &fakeEngine{analyses: map[string]*nlp.Analysis{
		content: {
			Tokens: []nlp.Token{
				{Text: "zieht", Tag: "VBZ", Head: -1},
				{Text: "Dolch", Tag: "NN", Lemma: "dolch", Dep: "dobj", Head: 0},
			},
		},
	}}
	e := newTestExtractor(engine, model.DefaultConfig())
	ctx := NewContext()

	records := []model.Record{{
		Position: 2,
		RawText:  "[Elias zieht den Dolch]",
		Speaker:  "Elias",
		Content:  content,
		Category: model.CategoryAction,
	}}
	if err := e.ExtractDocument(ctx, "doc1.txt", records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	it, ok := ctx.Items["dolch"]
	if !ok {
		t.Fatal("direct object item was not admitted")
	}
	owners := it.OwnerList()
	if len(owners) != 1 || owners[0] != "Elias" {
		t.Errorf("expected owner Elias, got %v", owners)
	}
}

func TestExtractBuffersDialog(t *testing.T) {
	e := newTestExtractor(&fakeEngine{}, model.DefaultConfig())
	ctx := NewContext()

	records := []model.Record{
		{Position: 1, Speaker: "Lyra", Content: "Hallo!", Category: model.CategoryDialog},
		{Position: 2, Speaker: "Lyra", Content: "öffnet die Tür", Category: model.CategoryAction},
		{Position: 3, Content: "Die Nacht kam.", Category: model.CategoryNarration},
	}
	if err := e.ExtractDocument(ctx, "doc1.txt", records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := ctx.Dialog["Lyra"]
	if len(lines) != 2 {
		t.Fatalf("expected 2 buffered lines, got %d", len(lines))
	}
	if lines[0].SourceID != "doc1.txt" || lines[0].Position != 1 {
		t.Errorf("unexpected buffered line: %+v", lines[0])
	}
}

func TestExtractBatchMatchesSingle(t *testing.T) {
	analyses := map[string]*nlp.Analysis{
		"Mara kommt.": {Spans: []nlp.Span{{Text: "Mara", Label: "PERSON"}}},
	}
	records := []model.Record{
		{Position: 1, RawText: "Mara kommt.", Content: "Mara kommt.", Category: model.CategoryNarration},
		{Position: 2, RawText: "Das Schwert liegt da.", Content: "Das Schwert liegt da.", Category: model.CategoryNarration},
	}

	cfg := model.DefaultConfig()
	single := NewContext()
	if err := newTestExtractor(&fakeEngine{analyses: analyses}, cfg).ExtractDocument(single, "d", records); err != nil {
		t.Fatalf("single: %v", err)
	}

	cfg.Extract.BatchThreshold = 1
	cfg.Extract.BatchSize = 1
	batchEngine := &fakeEngine{analyses: analyses}
	batched := NewContext()
	if err := newTestExtractor(batchEngine, cfg).ExtractDocument(batched, "d", records); err != nil {
		t.Fatalf("batched: %v", err)
	}

	if batchEngine.batchCalls == 0 {
		t.Fatal("batch path was not taken")
	}
	if len(single.Characters) != len(batched.Characters) {
		t.Errorf("character counts differ: %d vs %d", len(single.Characters), len(batched.Characters))
	}
	if len(single.Items) != len(batched.Items) {
		t.Errorf("item counts differ: %d vs %d", len(single.Items), len(batched.Items))
	}
}

func TestExtractBatchErrorKeepsPartialResults(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Extract.BatchThreshold = 1
	e := newTestExtractor(&fakeEngine{failBatch: true}, cfg)
	ctx := NewContext()

	records := []model.Record{
		{Position: 1, Speaker: "Lyra", Content: "Hallo!", Category: model.CategoryDialog},
		{Position: 2, Content: "Mehr Text.", Category: model.CategoryNarration},
	}
	if err := e.ExtractDocument(ctx, "doc1.txt", records); err == nil {
		t.Fatal("expected engine error")
	}

	// Speakers were seeded before analysis failed.
	if _, ok := ctx.Characters["Lyra"]; !ok {
		t.Error("partial results should survive an engine failure")
	}
}

func TestContextOrderIsFirstEncounter(t *testing.T) {
	ctx := NewContext()
	ctx.Character("Beta")
	ctx.Character("Alpha")
	ctx.Character("Beta")

	names := ctx.CharacterNames()
	if len(names) != 2 || names[0] != "Beta" || names[1] != "Alpha" {
		t.Errorf("expected encounter order [Beta Alpha], got %v", names)
	}
}
