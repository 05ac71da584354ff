package parse

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/nfreytag/storyweaver/internal/model"
)

// Parser converts whole documents into record sequences. The content itself
// selects the mode: JSON documents are decoded as structured transcripts,
// HTML documents have their visible text extracted first, and everything
// else, including transcripts that open with a bracketed action line, is
// treated as a plain line transcript.
type Parser struct {
	classifier *Classifier
}

// NewParser returns a document parser.
func NewParser() *Parser {
	return &Parser{classifier: NewClassifier()}
}

// ParseFile reads and parses a single document from disk.
func (p *Parser) ParseFile(path string) ([]model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return p.Parse(path, string(data))
}

// Parse converts document content into records. sourceID identifies the
// document in error messages only; records carry no source reference
// themselves.
func (p *Parser) Parse(sourceID, content string) ([]model.Record, error) {
	switch firstMeaningfulByte(content) {
	case '{':
		return p.parseStructured(sourceID, content)
	case '[':
		// A leading bracket opens an action line just as well as a JSON
		// array. Only well-formed JSON takes the structured path.
		if json.Valid([]byte(content)) {
			return p.parseStructured(sourceID, content)
		}
		return p.parseLines(content), nil
	case '<':
		return p.parseHTML(content)
	default:
		return p.parseLines(content), nil
	}
}

// firstMeaningfulByte returns the first non-whitespace byte, or 0 for blank
// content.
func firstMeaningfulByte(content string) byte {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	return trimmed[0]
}

// parseLines splits the content on line breaks and classifies each non-blank
// line. Positions are physical line numbers starting at 1, so blank lines
// advance the position counter without producing records.
func (p *Parser) parseLines(content string) []model.Record {
	records := []model.Record{}
	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		records = append(records, p.classifier.ClassifyLine(i+1, line))
	}
	return records
}

// structuredEntry is one element of a structured transcript array or of a
// dialog array.
type structuredEntry struct {
	Speaker string `json:"speaker"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// structuredDocument covers the two recognized object shapes: a dialog
// container and a character descriptor.
type structuredDocument struct {
	Name          string            `json:"name"`
	Dialog        []structuredEntry `json:"dialog"`
	Description   string            `json:"description"`
	Personality   string            `json:"personality"`
	Background    string            `json:"background"`
	Traits        string            `json:"traits"`
	Relationships []struct {
		Name         string `json:"name"`
		Relationship string `json:"relationship"`
	} `json:"relationships"`
}

// parseStructured decodes one of the three recognized JSON shapes. An
// unrecognized but well-formed shape yields zero records without error; a
// decode failure is returned to the caller so the document can be skipped.
func (p *Parser) parseStructured(sourceID, content string) ([]model.Record, error) {
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "[") {
		var entries []structuredEntry
		if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", sourceID, err)
		}
		records := []model.Record{}
		for _, e := range entries {
			if e.Speaker == "" || e.Content == "" {
				continue
			}
			records = append(records, structuredRecord(len(records)+1, e.Speaker, e.Content, e.Type))
		}
		return records, nil
	}

	var doc structuredDocument
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", sourceID, err)
	}

	if len(doc.Dialog) > 0 {
		records := []model.Record{}
		for _, e := range doc.Dialog {
			if e.Content == "" {
				continue
			}
			speaker := e.Speaker
			if speaker == "" {
				speaker = doc.Name
			}
			records = append(records, structuredRecord(len(records)+1, speaker, e.Content, e.Type))
		}
		return records, nil
	}

	if doc.Name != "" {
		return descriptorRecords(doc), nil
	}

	// Well-formed JSON of no recognized shape.
	return []model.Record{}, nil
}

// structuredRecord builds a record from a structured entry. The type field is
// honored when it names a known category and defaults to dialog otherwise.
func structuredRecord(position int, speaker, content, typ string) model.Record {
	category := model.CategoryDialog
	if model.ValidCategory(typ) {
		category = model.Category(typ)
	}
	return model.Record{
		Position: position,
		RawText:  content,
		Speaker:  speaker,
		Content:  content,
		Category: category,
	}
}

// descriptorRecords synthesizes records from a character descriptor: one
// description record joining the present free-text fields, plus one
// relationship record per listed relation.
func descriptorRecords(doc structuredDocument) []model.Record {
	records := []model.Record{}

	fields := []struct{ label, value string }{
		{"Description", doc.Description},
		{"Personality", doc.Personality},
		{"Background", doc.Background},
		{"Traits", doc.Traits},
	}
	lines := []string{}
	for _, f := range fields {
		if f.value != "" {
			lines = append(lines, f.label+": "+f.value)
		}
	}
	if len(lines) > 0 {
		content := strings.Join(lines, "\n")
		records = append(records, model.Record{
			Position: 1,
			RawText:  content,
			Speaker:  doc.Name,
			Content:  content,
			Category: model.CategoryDescription,
		})
	}

	for _, rel := range doc.Relationships {
		if rel.Name == "" || rel.Relationship == "" {
			continue
		}
		content := fmt.Sprintf("Relationship to %s: %s", rel.Name, rel.Relationship)
		records = append(records, model.Record{
			Position: len(records) + 1,
			RawText:  content,
			Speaker:  doc.Name,
			Content:  content,
			Category: model.CategoryRelationship,
		})
	}

	return records
}

// parseHTML extracts the visible text of an HTML document and runs it through
// line classification. Script, style and similar invisible subtrees are
// dropped.
func (p *Parser) parseHTML(content string) ([]model.Record, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				lines = append(lines, text)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return p.parseLines(strings.Join(lines, "\n")), nil
}
