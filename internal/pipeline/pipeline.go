// Package pipeline orchestrates a weave run: parse every document in a
// directory, extract entities, merge duplicates, optionally enrich
// descriptions, and render the registry to disk.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/nfreytag/storyweaver/internal/cache"
	"github.com/nfreytag/storyweaver/internal/extract"
	"github.com/nfreytag/storyweaver/internal/llm"
	"github.com/nfreytag/storyweaver/internal/merge"
	"github.com/nfreytag/storyweaver/internal/model"
	"github.com/nfreytag/storyweaver/internal/nlp"
	"github.com/nfreytag/storyweaver/internal/parse"
	"github.com/nfreytag/storyweaver/internal/validate"
	"github.com/nfreytag/storyweaver/internal/worker"
)

// transcriptPatterns are the file globs considered transcript documents.
var transcriptPatterns = []string{"*.txt", "*.md", "*.json", "*.html"}

// Pipeline runs the full weave process. Extraction and merging are
// single-threaded per run; only description enrichment fans out to workers,
// and its results are folded back in by the run's own goroutine.
type Pipeline struct {
	parser    *parse.Parser
	extractor *extract.Extractor
	merger    *merge.Merger
	renderer  *Renderer
	describer *llm.Describer
	config    *model.Config
}

// NewPipeline builds a pipeline from configuration, constructing the
// language engine. An engine failure is returned since no document can be
// processed without it.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	engine, err := nlp.NewProseEngine()
	if err != nil {
		return nil, err
	}
	return NewPipelineWithEngine(cfg, engine), nil
}

// NewPipelineWithEngine is NewPipeline with an injectable engine.
func NewPipelineWithEngine(cfg *model.Config, engine nlp.Engine) *Pipeline {
	filters := validate.NewFilters(cfg.Filters, cfg.Extract.MinNameLength)

	var describer *llm.Describer
	if cfg.LLM.Provider != "" {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else if provider != nil {
			var store cache.Cache
			if cfg.Cache.Enabled {
				store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
			}
			limiter := worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst)
			describer = llm.NewDescriber(provider, store, limiter)
		}
	}

	return &Pipeline{
		parser:    parse.NewParser(),
		extractor: extract.NewExtractor(engine, filters, *cfg),
		merger:    merge.NewMerger(cfg.Similarity.Threshold),
		renderer:  NewRenderer(cfg.Output.Dir),
		describer: describer,
		config:    cfg,
	}
}

// WeaveResult is the merged registry of one run plus its report.
type WeaveResult struct {
	Report *model.RunReport

	Characters     map[string]*model.Character
	CharacterOrder []string
	Items          map[string]*model.Item
	ItemOrder      []string
	Locations      map[string]*model.Location
	LocationOrder  []string

	Dialog map[string][]extract.DialogLine
}

// WeaveDir processes every transcript in dir into a merged registry.
// Documents that fail to parse or extract are skipped with their partial
// contributions kept; there is no rollback.
func (p *Pipeline) WeaveDir(ctx context.Context, dir string) (*WeaveResult, error) {
	files, err := transcriptFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no transcript files found in %s", dir)
	}

	report := model.NewRunReport()
	ec := extract.NewContext()

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sourceID := filepath.Base(path)

		records, err := p.parser.ParseFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", sourceID, err)
			report.Skip(sourceID, err.Error())
			continue
		}
		if err := p.extractor.ExtractDocument(ec, sourceID, records); err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", sourceID, err)
			report.Skip(sourceID, err.Error())
			continue
		}
		report.Documents = append(report.Documents, sourceID)
		if p.config.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Processed %s: %d records\n", sourceID, len(records))
		}
	}

	report.Raw = model.KindCounts{
		Characters: len(ec.Characters),
		Items:      len(ec.Items),
		Locations:  len(ec.Locations),
	}

	characters, characterOrder := p.merger.MergeCharacters(ec.Characters, ec.CharacterNames())
	items, itemOrder := p.merger.MergeItems(ec.Items, ec.ItemKeys())
	locations, locationOrder := p.merger.MergeLocations(ec.Locations, ec.LocationNames())

	result := &WeaveResult{
		Report:         report,
		Characters:     characters,
		CharacterOrder: characterOrder,
		Items:          items,
		ItemOrder:      itemOrder,
		Locations:      locations,
		LocationOrder:  locationOrder,
		Dialog:         ec.Dialog,
	}

	if p.describer != nil {
		p.enrichDescriptions(result)
	}

	report.Merged = model.KindCounts{
		Characters: len(characters),
		Items:      len(items),
		Locations:  len(locations),
	}
	report.Stats = computeStats(result)
	report.Finish()

	return result, nil
}

// Render writes the merged registry to the output directory and prints the
// run summary.
func (p *Pipeline) Render(result *WeaveResult) error {
	if err := p.renderer.RenderAll(result); err != nil {
		return err
	}
	if p.config.Output.Cards {
		if err := p.renderer.RenderCards(result); err != nil {
			return err
		}
	}
	p.renderer.RenderSummary(result)
	return nil
}

// enrichDescriptions generates descriptions for entities that have none.
// Jobs fan out to a pool; the results are folded into the frozen merged maps
// here, on the run's goroutine.
func (p *Pipeline) enrichDescriptions(result *WeaveResult) {
	pool := worker.NewPool(p.config.Concurrency.DescribeWorkers)
	pool.Start()

	submitted := 0
	submit := func(kind, name string, mentions []model.Mention, description string) {
		if description != "" {
			return
		}
		texts := make([]string, 0, len(mentions))
		for _, m := range mentions {
			texts = append(texts, m.Text)
		}
		pool.Submit(&worker.DescribeJob{
			Kind:      kind,
			Name:      name,
			Mentions:  texts,
			Describer: p.describer,
		})
		submitted++
	}

	for _, name := range result.CharacterOrder {
		ch := result.Characters[name]
		submit("character", ch.Name, ch.Mentions, ch.Description)
	}
	for _, key := range result.ItemOrder {
		it := result.Items[key]
		submit("item", it.Name, it.Mentions, it.Description)
	}
	for _, name := range result.LocationOrder {
		loc := result.Locations[name]
		submit("location", loc.Name, loc.Mentions, loc.Description)
	}

	for _, res := range pool.Wait() {
		dr, ok := res.(*worker.DescribeResult)
		if !ok {
			continue
		}
		if dr.Error != nil {
			fmt.Fprintf(os.Stderr, "Warning: describing %s %q failed: %v\n", dr.Kind, dr.Name, dr.Error)
			continue
		}
		switch dr.Kind {
		case "character":
			if ch, found := result.Characters[dr.Name]; found && ch.Description == "" {
				ch.Description = dr.Description
			}
		case "item":
			for _, it := range result.Items {
				if it.Name == dr.Name && it.Description == "" {
					it.Description = dr.Description
				}
			}
		case "location":
			if loc, found := result.Locations[dr.Name]; found && loc.Description == "" {
				loc.Description = dr.Description
			}
		}
	}

	if p.config.Output.Verbose && submitted > 0 {
		fmt.Fprintf(os.Stderr, "Enriched descriptions for %d entities\n", submitted)
	}
}

// computeStats aggregates mention totals and the most-mentioned entities.
func computeStats(result *WeaveResult) model.RunStats {
	stats := model.RunStats{}

	for _, ch := range result.Characters {
		stats.MentionTotals.Characters += ch.Frequency
	}
	for _, it := range result.Items {
		stats.MentionTotals.Items += it.Frequency
	}
	for _, loc := range result.Locations {
		stats.MentionTotals.Locations += loc.Frequency
	}

	stats.TopCharacters = topCounts(result.CharacterOrder, func(name string) int {
		return result.Characters[name].Frequency
	})
	stats.TopItems = topCounts(result.ItemOrder, func(key string) int {
		return result.Items[key].Frequency
	})
	stats.TopLocations = topCounts(result.LocationOrder, func(name string) int {
		return result.Locations[name].Frequency
	})

	return stats
}

// topCounts ranks names by frequency, keeping the ten most mentioned. Ties
// resolve by encounter order.
func topCounts(names []string, frequency func(string) int) []model.NameCount {
	counts := make([]model.NameCount, 0, len(names))
	for _, name := range names {
		counts = append(counts, model.NameCount{Name: name, Frequency: frequency(name)})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Frequency > counts[j].Frequency
	})
	if len(counts) > 10 {
		counts = counts[:10]
	}
	return counts
}

// transcriptFiles lists the transcript documents in dir, sorted by name.
func transcriptFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	for _, pattern := range transcriptPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("globbing %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}
