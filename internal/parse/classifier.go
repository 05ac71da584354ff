// Package parse turns transcript documents into normalized records. It
// understands plain line-based transcripts, structured JSON exports and HTML
// pages with embedded transcript text.
package parse

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nfreytag/storyweaver/internal/model"
)

// Classification rules are tried in order; the first match wins. The narrator
// rule must run before the generic colon rule or narrator lines would be
// classified as dialog by a speaker named "Erzähler".
var (
	narratorPattern       = regexp.MustCompile(`(?i)^(erzähler|erzählerin|narrator):\s*(.+)$`)
	dialogColonPattern    = regexp.MustCompile(`^([A-Za-zÄÖÜäöüß\s]+):\s*(.+)$`)
	dialogDashPattern     = regexp.MustCompile(`^([A-Za-zÄÖÜäöüß\s]+)\s*-\s*(.+)$`)
	actionBracketsPattern = regexp.MustCompile(`^\[(.+)\]$`)
	actionAsteriskPattern = regexp.MustCompile(`^\*(.+)\*$`)
)

// sentenceTerminators close a narration line in the fallback heuristic.
const sentenceTerminators = ".!?…"

// Classifier assigns a category, speaker and content to raw transcript lines.
// ClassifyLine is total: every input yields a record, unknown at worst.
type Classifier struct{}

// NewClassifier returns a line classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// ClassifyLine classifies a single trimmed non-empty line.
func (c *Classifier) ClassifyLine(position int, text string) model.Record {
	rec := model.Record{Position: position, RawText: text}

	if m := narratorPattern.FindStringSubmatch(text); m != nil {
		rec.Speaker = model.NarratorName
		rec.Content = strings.TrimSpace(m[2])
		rec.Category = model.CategoryNarration
		return rec
	}

	if m := dialogColonPattern.FindStringSubmatch(text); m != nil {
		rec.Speaker = strings.TrimSpace(m[1])
		rec.Content = strings.TrimSpace(m[2])
		rec.Category = model.CategoryDialog
		return rec
	}

	if m := dialogDashPattern.FindStringSubmatch(text); m != nil {
		rec.Speaker = strings.TrimSpace(m[1])
		rec.Content = strings.TrimSpace(m[2])
		rec.Category = model.CategoryDialog
		return rec
	}

	if m := actionBracketsPattern.FindStringSubmatch(text); m != nil {
		rec.Content = strings.TrimSpace(m[1])
		rec.Category = model.CategoryAction
		rec.Speaker = extractActor(rec.Content)
		return rec
	}

	if m := actionAsteriskPattern.FindStringSubmatch(text); m != nil {
		rec.Content = strings.TrimSpace(m[1])
		rec.Category = model.CategoryAction
		rec.Speaker = extractActor(rec.Content)
		return rec
	}

	rec.Content = text
	if startsUpper(text) && endsWithTerminator(text) {
		rec.Category = model.CategoryNarration
	} else {
		rec.Category = model.CategoryUnknown
	}
	return rec
}

// extractActor guesses the acting character from an action's text. Only the
// first word is considered: it must start with an upper-case letter and be at
// least three runes long. Returns "" when no actor can be inferred.
func extractActor(actionText string) string {
	words := strings.Fields(actionText)
	if len(words) == 0 {
		return ""
	}
	first := words[0]
	if startsUpper(first) && utf8.RuneCountInString(first) > 2 {
		return first
	}
	return ""
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func endsWithTerminator(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return strings.ContainsRune(sentenceTerminators, r)
}
