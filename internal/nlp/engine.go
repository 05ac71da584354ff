// Package nlp wraps the natural-language engine behind a small analysis
// contract so extraction code never depends on a concrete library.
package nlp

// Span is a recognized named entity within analyzed text.
type Span struct {
	Text  string
	Label string // PERSON, GPE, LOC, ...
}

// Token is one analyzed token. Head indexes the token this one depends on
// within the same Analysis, or -1 when no dependency was derived.
type Token struct {
	Text  string
	Tag   string // Penn Treebank part-of-speech tag
	Lemma string
	Dep   string // dependency relation: poss, dobj or ""
	Head  int
}

// Analysis is the engine's output for one piece of text.
type Analysis struct {
	Spans  []Span
	Tokens []Token
}

// Engine analyzes text into entity spans and annotated tokens. AnalyzeBatch
// must be equivalent to calling Analyze per text; it exists so engines can
// amortize per-call overhead on large documents.
type Engine interface {
	Analyze(text string) (*Analysis, error)
	AnalyzeBatch(texts []string) ([]*Analysis, error)
}
