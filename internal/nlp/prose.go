package nlp

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// ProseEngine analyzes text with the prose library. Prose provides named
// entities and part-of-speech tags; the possessive and object dependencies
// are derived from the tag sequence since prose has no dependency parser.
type ProseEngine struct{}

// NewProseEngine builds the engine and verifies the underlying models load.
// A failure here is fatal for the whole run, matching the rule that an
// unavailable engine aborts before any document is touched.
func NewProseEngine() (*ProseEngine, error) {
	if _, err := prose.NewDocument("init"); err != nil {
		return nil, fmt.Errorf("initializing nlp engine: %w", err)
	}
	return &ProseEngine{}, nil
}

// Analyze runs entity recognition and tagging over one piece of text.
func (e *ProseEngine) Analyze(text string) (*Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return &Analysis{Spans: []Span{}, Tokens: []Token{}}, nil
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, fmt.Errorf("analyzing text: %w", err)
	}

	analysis := &Analysis{Spans: []Span{}, Tokens: []Token{}}
	for _, ent := range doc.Entities() {
		analysis.Spans = append(analysis.Spans, Span{Text: ent.Text, Label: ent.Label})
	}
	for _, tok := range doc.Tokens() {
		analysis.Tokens = append(analysis.Tokens, Token{
			Text:  tok.Text,
			Tag:   tok.Tag,
			Lemma: lemma(tok.Text, tok.Tag),
			Head:  -1,
		})
	}
	deriveDependencies(analysis.Tokens)
	return analysis, nil
}

// AnalyzeBatch analyzes each text independently. Output is positionally
// aligned with the input and identical to per-text Analyze calls.
func (e *ProseEngine) AnalyzeBatch(texts []string) ([]*Analysis, error) {
	analyses := make([]*Analysis, 0, len(texts))
	for _, text := range texts {
		a, err := e.Analyze(text)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	return analyses, nil
}

// lemma lower-cases the token and strips a simple plural ending from plural
// nouns. Good enough for keyword matching; no full morphology.
func lemma(text, tag string) string {
	l := strings.ToLower(text)
	if tag == "NNS" || tag == "NNPS" {
		switch {
		case strings.HasSuffix(l, "ies") && len(l) > 3:
			l = l[:len(l)-3] + "y"
		case strings.HasSuffix(l, "es") && len(l) > 2:
			l = l[:len(l)-2]
		case strings.HasSuffix(l, "s") && len(l) > 1:
			l = l[:len(l)-1]
		}
	}
	return l
}

// deriveDependencies fills Dep and Head from the tag sequence. A possessive
// token (PRP$ or POS) points at the next noun within three tokens; a noun
// shortly after a verb is marked as its direct object.
func deriveDependencies(tokens []Token) {
	for i := range tokens {
		switch {
		case tokens[i].Tag == "PRP$" || tokens[i].Tag == "POS":
			if head := nextNoun(tokens, i+1, 3); head >= 0 {
				tokens[i].Dep = "poss"
				tokens[i].Head = head
			}
		case isNoun(tokens[i].Tag):
			if head := previousVerb(tokens, i-1, 3); head >= 0 && tokens[i].Dep == "" {
				tokens[i].Dep = "dobj"
				tokens[i].Head = head
			}
		}
	}
}

func nextNoun(tokens []Token, from, window int) int {
	for i := from; i < len(tokens) && i < from+window; i++ {
		if isNoun(tokens[i].Tag) {
			return i
		}
	}
	return -1
}

func previousVerb(tokens []Token, from, window int) int {
	for i := from; i >= 0 && i > from-window; i-- {
		if strings.HasPrefix(tokens[i].Tag, "VB") {
			return i
		}
	}
	return -1
}

func isNoun(tag string) bool {
	return strings.HasPrefix(tag, "NN")
}
