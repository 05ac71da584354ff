package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nfreytag/storyweaver/internal/export"
	"github.com/nfreytag/storyweaver/internal/extract"
	"github.com/nfreytag/storyweaver/internal/model"
)

// Renderer writes the merged registry as a JSON file tree: one file per
// entity, overview documents, a relationship graph and run statistics.
type Renderer struct {
	outputDir string
}

// NewRenderer creates a renderer rooted at outputDir.
func NewRenderer(outputDir string) *Renderer {
	return &Renderer{outputDir: outputDir}
}

// RenderAll writes the complete output tree.
func (r *Renderer) RenderAll(result *WeaveResult) error {
	for _, sub := range []string{"characters", "items", "locations"} {
		if err := os.MkdirAll(filepath.Join(r.outputDir, sub), 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	for _, name := range result.CharacterOrder {
		ch := result.Characters[name]
		path := filepath.Join(r.outputDir, "characters", entityFileName(ch.Name))
		if err := writeJSON(path, export.FromCharacter(ch)); err != nil {
			return err
		}
	}
	for _, key := range result.ItemOrder {
		it := result.Items[key]
		path := filepath.Join(r.outputDir, "items", entityFileName(it.Name))
		if err := writeJSON(path, export.FromItem(it)); err != nil {
			return err
		}
	}
	for _, name := range result.LocationOrder {
		loc := result.Locations[name]
		path := filepath.Join(r.outputDir, "locations", entityFileName(loc.Name))
		if err := writeJSON(path, export.FromLocation(loc)); err != nil {
			return err
		}
	}

	if err := r.renderOverviews(result); err != nil {
		return err
	}
	if err := r.renderRelationshipGraph(result); err != nil {
		return err
	}
	return writeJSON(filepath.Join(r.outputDir, "statistics.json"), result.Report)
}

// characterSummary is one row of the character overview.
type characterSummary struct {
	Name          string            `json:"name"`
	Aliases       []string          `json:"aliases"`
	Frequency     int               `json:"frequency"`
	Items         []string          `json:"items"`
	Relationships map[string]string `json:"relationships"`
}

type itemSummary struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Frequency int      `json:"frequency"`
	Owners    []string `json:"owners"`
	Location  string   `json:"location"`
}

type locationSummary struct {
	Name               string   `json:"name"`
	Type               string   `json:"type"`
	Frequency          int      `json:"frequency"`
	Inhabitants        []string `json:"inhabitants"`
	ConnectedLocations []string `json:"connected_locations"`
}

type overview[T any] struct {
	Total   int `json:"total"`
	Entries []T `json:"entries"`
}

func (r *Renderer) renderOverviews(result *WeaveResult) error {
	characters := overview[characterSummary]{Total: len(result.Characters), Entries: []characterSummary{}}
	for _, name := range result.CharacterOrder {
		ch := result.Characters[name]
		characters.Entries = append(characters.Entries, characterSummary{
			Name:          ch.Name,
			Aliases:       ch.AliasList(),
			Frequency:     ch.Frequency,
			Items:         ch.ItemList(),
			Relationships: ch.Relationships,
		})
	}

	items := overview[itemSummary]{Total: len(result.Items), Entries: []itemSummary{}}
	for _, key := range result.ItemOrder {
		it := result.Items[key]
		items.Entries = append(items.Entries, itemSummary{
			Name:      it.Name,
			Type:      it.ItemType,
			Frequency: it.Frequency,
			Owners:    it.OwnerList(),
			Location:  it.Location,
		})
	}

	locations := overview[locationSummary]{Total: len(result.Locations), Entries: []locationSummary{}}
	for _, name := range result.LocationOrder {
		loc := result.Locations[name]
		locations.Entries = append(locations.Entries, locationSummary{
			Name:               loc.Name,
			Type:               loc.LocationType,
			Frequency:          loc.Frequency,
			Inhabitants:        loc.InhabitantList(),
			ConnectedLocations: loc.ConnectedList(),
		})
	}

	if err := writeJSON(filepath.Join(r.outputDir, "characters_overview.json"), characters); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(r.outputDir, "items_overview.json"), items); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(r.outputDir, "locations_overview.json"), locations); err != nil {
		return err
	}

	complete := map[string]any{
		"metadata": map[string]any{
			"export_date":    time.Now().UTC().Format(time.RFC3339),
			"version":        "1.0",
			"total_entities": len(result.Characters) + len(result.Items) + len(result.Locations),
		},
		"characters": characters,
		"items":      items,
		"locations":  locations,
	}
	return writeJSON(filepath.Join(r.outputDir, "complete_overview.json"), complete)
}

type graphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type graphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// renderRelationshipGraph writes every entity as a node and ownership,
// relationship, habitation and connectivity as edges.
func (r *Renderer) renderRelationshipGraph(result *WeaveResult) error {
	graph := struct {
		Nodes []graphNode `json:"nodes"`
		Edges []graphEdge `json:"edges"`
	}{Nodes: []graphNode{}, Edges: []graphEdge{}}

	for _, name := range result.CharacterOrder {
		graph.Nodes = append(graph.Nodes, graphNode{ID: "char_" + name, Label: name, Type: "character"})
	}
	for _, key := range result.ItemOrder {
		it := result.Items[key]
		graph.Nodes = append(graph.Nodes, graphNode{ID: "item_" + it.Name, Label: it.Name, Type: "item"})
	}
	for _, name := range result.LocationOrder {
		graph.Nodes = append(graph.Nodes, graphNode{ID: "loc_" + name, Label: name, Type: "location"})
	}

	// Characters hold pre-merge item keys; map them onto merged names.
	itemNames := make(map[string]string, len(result.Items))
	for _, it := range result.Items {
		itemNames[strings.ToLower(it.Name)] = it.Name
	}

	for _, name := range result.CharacterOrder {
		ch := result.Characters[name]
		for _, itemKey := range ch.ItemList() {
			target := itemKey
			if merged, ok := itemNames[strings.ToLower(itemKey)]; ok {
				target = merged
			}
			graph.Edges = append(graph.Edges, graphEdge{
				Source: "char_" + name,
				Target: "item_" + target,
				Type:   "owns",
			})
		}
		for other, relation := range ch.Relationships {
			graph.Edges = append(graph.Edges, graphEdge{
				Source: "char_" + name,
				Target: "char_" + other,
				Type:   relation,
			})
		}
	}
	for _, name := range result.LocationOrder {
		loc := result.Locations[name]
		for _, inhabitant := range loc.InhabitantList() {
			graph.Edges = append(graph.Edges, graphEdge{
				Source: "char_" + inhabitant,
				Target: "loc_" + name,
				Type:   "inhabits",
			})
		}
		for _, connected := range loc.ConnectedList() {
			graph.Edges = append(graph.Edges, graphEdge{
				Source: "loc_" + name,
				Target: "loc_" + connected,
				Type:   "connected",
			})
		}
	}

	return writeJSON(filepath.Join(r.outputDir, "relationship_graph.json"), graph)
}

// RenderCards writes one TavernAI card per character.
func (r *Renderer) RenderCards(result *WeaveResult) error {
	cardsDir := filepath.Join(r.outputDir, "characters_cards")
	if err := os.MkdirAll(cardsDir, 0o755); err != nil {
		return fmt.Errorf("creating cards dir: %w", err)
	}

	dialog := dialogForCards(result.Dialog)
	for _, name := range result.CharacterOrder {
		ch := result.Characters[name]
		card := export.BuildCard(ch, dialog)
		if err := writeJSON(filepath.Join(cardsDir, entityFileName(ch.Name)), card); err != nil {
			return err
		}
	}
	return nil
}

// dialogForCards flattens the per-speaker dialog buffers back into document
// order so example exchanges pair a character's line with the one spoken
// before it.
func dialogForCards(dialog map[string][]extract.DialogLine) []export.DialogLine {
	var all []extract.DialogLine
	for _, speakerLines := range dialog {
		all = append(all, speakerLines...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].SourceID != all[j].SourceID {
			return all[i].SourceID < all[j].SourceID
		}
		return all[i].Position < all[j].Position
	})

	out := make([]export.DialogLine, 0, len(all))
	for _, line := range all {
		out = append(out, export.DialogLine{
			Speaker:  line.Speaker,
			Content:  line.Content,
			IsDialog: line.Category == model.CategoryDialog,
		})
	}
	return out
}

// RenderSummary prints a human-readable run summary to stdout.
func (r *Renderer) RenderSummary(result *WeaveResult) {
	report := result.Report

	fmt.Printf("\nWeave complete in %s\n", report.Duration().Round(time.Millisecond))
	fmt.Printf("Documents: %d processed, %d skipped\n", len(report.Documents), len(report.Skipped))
	fmt.Printf("Characters: %d (from %d raw)\n", report.Merged.Characters, report.Raw.Characters)
	fmt.Printf("Items:      %d (from %d raw)\n", report.Merged.Items, report.Raw.Items)
	fmt.Printf("Locations:  %d (from %d raw)\n", report.Merged.Locations, report.Raw.Locations)

	if len(report.Stats.TopCharacters) > 0 {
		fmt.Println("\nMost mentioned characters:")
		for _, nc := range report.Stats.TopCharacters {
			fmt.Printf("  %-30s %d\n", nc.Name, nc.Frequency)
		}
	}
	for _, skipped := range report.Skipped {
		fmt.Printf("Skipped %s: %s\n", skipped.SourceID, skipped.Reason)
	}
	fmt.Printf("\nOutput written to %s\n", r.outputDir)
}

// entityFileName derives a filesystem-safe file name from an entity name.
func entityFileName(name string) string {
	clean := strings.ToLower(name)
	clean = strings.ReplaceAll(clean, " ", "_")
	clean = strings.ReplaceAll(clean, "/", "_")
	return clean + ".json"
}

func writeJSON(path string, data any) error {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
