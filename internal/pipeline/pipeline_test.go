package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nfreytag/storyweaver/internal/model"
	"github.com/nfreytag/storyweaver/internal/nlp"
)

// stubEngine recognizes nothing; extraction then relies on speakers and
// keyword scans alone, which keeps the fixtures deterministic.
type stubEngine struct{}

func (stubEngine) Analyze(text string) (*nlp.Analysis, error) {
	return &nlp.Analysis{Spans: []nlp.Span{}, Tokens: []nlp.Token{}}, nil
}

func (stubEngine) AnalyzeBatch(texts []string) ([]*nlp.Analysis, error) {
	out := make([]*nlp.Analysis, len(texts))
	for i := range texts {
		out[i] = &nlp.Analysis{Spans: []nlp.Span{}, Tokens: []nlp.Token{}}
	}
	return out, nil
}

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(outputDir string) *model.Config {
	cfg := model.DefaultConfig()
	cfg.Output.Dir = outputDir
	return &cfg
}

func TestWeaveDir(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "chapter1.txt",
		"Lyra: Hallo, Elias!\nElias: Hallo, Lyra.\n[Lyra hebt das Schwert auf]\n")
	writeFixture(t, dir, "chapter2.txt",
		"Lyra Nightshade: Wir treffen uns im Tempel.\n")

	cfg := testConfig(t.TempDir())
	p := NewPipelineWithEngine(cfg, stubEngine{})

	result, err := p.WeaveDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("weave failed: %v", err)
	}

	if len(result.Report.Documents) != 2 {
		t.Errorf("expected 2 documents, got %d", len(result.Report.Documents))
	}
	if len(result.Report.Skipped) != 0 {
		t.Errorf("expected no skips, got %v", result.Report.Skipped)
	}

	// "Lyra" and "Lyra Nightshade" fold into one character.
	ch, ok := result.Characters["Lyra Nightshade"]
	if !ok {
		t.Fatalf("expected merged character Lyra Nightshade, have %v", result.CharacterOrder)
	}
	if len(ch.AliasList()) != 1 {
		t.Errorf("expected one alias, got %v", ch.AliasList())
	}
	if _, ok := result.Characters["Elias"]; !ok {
		t.Error("expected character Elias")
	}

	if result.Report.Merged.Characters != len(result.Characters) {
		t.Errorf("merged count %d does not match map size %d",
			result.Report.Merged.Characters, len(result.Characters))
	}
	if result.Report.Raw.Characters < result.Report.Merged.Characters {
		t.Error("raw count must not be below merged count")
	}

	// The sword keyword scan produced at least one item.
	if len(result.Items) == 0 {
		t.Error("expected at least one item from the keyword scan")
	}

	if result.Report.Stats.MentionTotals.Characters == 0 {
		t.Error("expected character mention totals")
	}
	if result.Report.FinishedAt.IsZero() {
		t.Error("report must be finished")
	}
}

func TestWeaveDirSkipsBrokenDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "good.txt", "Lyra: Hallo!\n")
	writeFixture(t, dir, "broken.json", `{"name": "Lyra",`)

	cfg := testConfig(t.TempDir())
	p := NewPipelineWithEngine(cfg, stubEngine{})

	result, err := p.WeaveDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("weave failed: %v", err)
	}

	if len(result.Report.Documents) != 1 {
		t.Errorf("expected 1 processed document, got %d", len(result.Report.Documents))
	}
	if len(result.Report.Skipped) != 1 || result.Report.Skipped[0].SourceID != "broken.json" {
		t.Errorf("expected broken.json skipped, got %v", result.Report.Skipped)
	}
}

func TestWeaveDirEmpty(t *testing.T) {
	cfg := testConfig(t.TempDir())
	p := NewPipelineWithEngine(cfg, stubEngine{})

	if _, err := p.WeaveDir(context.Background(), t.TempDir()); err == nil {
		t.Error("expected error for directory without transcripts")
	}
}

func TestWeaveDirMissing(t *testing.T) {
	cfg := testConfig(t.TempDir())
	p := NewPipelineWithEngine(cfg, stubEngine{})

	if _, err := p.WeaveDir(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWeaveDirCanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "Lyra: Hallo!\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(t.TempDir())
	p := NewPipelineWithEngine(cfg, stubEngine{})
	if _, err := p.WeaveDir(ctx, dir); err == nil {
		t.Error("expected context error")
	}
}

func TestRenderWritesRegistry(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "chapter1.txt",
		"Lyra: Hallo, Elias!\n[Lyra hebt das Schwert auf]\nErzähler: Der Tempel von Morrakel lag im Nebel.\n")

	out := t.TempDir()
	cfg := testConfig(out)
	cfg.Output.Cards = true
	p := NewPipelineWithEngine(cfg, stubEngine{})

	result, err := p.WeaveDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("weave failed: %v", err)
	}
	if err := p.Render(result); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, name := range []string{
		"characters_overview.json",
		"items_overview.json",
		"locations_overview.json",
		"complete_overview.json",
		"relationship_graph.json",
		"statistics.json",
	} {
		path := filepath.Join(out, name)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("missing %s: %v", name, err)
			continue
		}
		if !json.Valid(data) {
			t.Errorf("%s is not valid JSON", name)
		}
	}

	if _, err := os.Stat(filepath.Join(out, "characters", "lyra.json")); err != nil {
		t.Errorf("missing character file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "characters_cards", "lyra.json")); err != nil {
		t.Errorf("missing character card: %v", err)
	}
}

func TestEntityFileName(t *testing.T) {
	cases := []struct{ name, want string }{
		{"Lyra Nightshade", "lyra_nightshade.json"},
		{"Tempel von Morrakel", "tempel_von_morrakel.json"},
		{"a/b", "a_b.json"},
	}
	for _, tc := range cases {
		if got := entityFileName(tc.name); got != tc.want {
			t.Errorf("entityFileName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
