package parse

import (
	"testing"

	"github.com/nfreytag/storyweaver/internal/model"
)

func TestClassifyLineDialog(t *testing.T) {
	c := NewClassifier()

	rec := c.ClassifyLine(1, "Lyra: Hallo!")
	if rec.Category != model.CategoryDialog {
		t.Errorf("expected dialog, got %s", rec.Category)
	}
	if rec.Speaker != "Lyra" {
		t.Errorf("expected speaker Lyra, got %q", rec.Speaker)
	}
	if rec.Content != "Hallo!" {
		t.Errorf("expected content Hallo!, got %q", rec.Content)
	}
	if rec.Position != 1 {
		t.Errorf("expected position 1, got %d", rec.Position)
	}
}

func TestClassifyLineDialogDash(t *testing.T) {
	c := NewClassifier()

	rec := c.ClassifyLine(3, "Elias - Wir müssen gehen")
	if rec.Category != model.CategoryDialog {
		t.Errorf("expected dialog, got %s", rec.Category)
	}
	if rec.Speaker != "Elias" {
		t.Errorf("expected speaker Elias, got %q", rec.Speaker)
	}
	if rec.Content != "Wir müssen gehen" {
		t.Errorf("expected dash content, got %q", rec.Content)
	}
}

func TestClassifyLineNarrator(t *testing.T) {
	c := NewClassifier()

	for _, text := range []string{
		"Erzähler: Die Nacht brach herein.",
		"ERZÄHLERIN: Die Nacht brach herein.",
		"Narrator: Night fell over the city.",
	} {
		rec := c.ClassifyLine(1, text)
		if rec.Category != model.CategoryNarration {
			t.Errorf("%q: expected narration, got %s", text, rec.Category)
		}
		if rec.Speaker != model.NarratorName {
			t.Errorf("%q: expected narrator speaker, got %q", text, rec.Speaker)
		}
	}
}

func TestClassifyLineActionBrackets(t *testing.T) {
	c := NewClassifier()

	rec := c.ClassifyLine(2, "[Lyra öffnet die Tür]")
	if rec.Category != model.CategoryAction {
		t.Errorf("expected action, got %s", rec.Category)
	}
	if rec.Speaker != "Lyra" {
		t.Errorf("expected actor Lyra, got %q", rec.Speaker)
	}
	if rec.Content != "Lyra öffnet die Tür" {
		t.Errorf("unexpected content %q", rec.Content)
	}
}

func TestClassifyLineActionAsterisks(t *testing.T) {
	c := NewClassifier()

	rec := c.ClassifyLine(5, "*Elias zieht sein Schwert*")
	if rec.Category != model.CategoryAction {
		t.Errorf("expected action, got %s", rec.Category)
	}
	if rec.Speaker != "Elias" {
		t.Errorf("expected actor Elias, got %q", rec.Speaker)
	}
}

func TestClassifyLineActionWithoutActor(t *testing.T) {
	c := NewClassifier()

	// lower-case first word, no actor
	rec := c.ClassifyLine(1, "[die Tür knarrt]")
	if rec.Category != model.CategoryAction {
		t.Errorf("expected action, got %s", rec.Category)
	}
	if rec.Speaker != "" {
		t.Errorf("expected no actor, got %q", rec.Speaker)
	}

	// short first word, no actor
	rec = c.ClassifyLine(2, "[Er geht]")
	if rec.Speaker != "" {
		t.Errorf("expected no actor for short word, got %q", rec.Speaker)
	}
}

func TestClassifyLineNarrationFallback(t *testing.T) {
	c := NewClassifier()

	rec := c.ClassifyLine(1, "Der Wind heulte durch die Gassen.")
	if rec.Category != model.CategoryNarration {
		t.Errorf("expected narration, got %s", rec.Category)
	}
	if rec.Speaker != "" {
		t.Errorf("expected no speaker, got %q", rec.Speaker)
	}
	if rec.Content != rec.RawText {
		t.Errorf("narration content should equal raw text")
	}
}

func TestClassifyLineUnknown(t *testing.T) {
	c := NewClassifier()

	for _, text := range []string{
		"und dann passierte etwas", // no upper start
		"Ein Satz ohne Ende",       // no terminator
		"123 456",                  // digits
	} {
		rec := c.ClassifyLine(1, text)
		if rec.Category != model.CategoryUnknown {
			t.Errorf("%q: expected unknown, got %s", text, rec.Category)
		}
	}
}

func TestClassifyLineIsTotal(t *testing.T) {
	c := NewClassifier()

	// Every input yields a record with a category.
	for _, text := range []string{"x", "*", "[", "::", "- -", "…"} {
		rec := c.ClassifyLine(1, text)
		if !model.ValidCategory(string(rec.Category)) {
			t.Errorf("%q: invalid category %q", text, rec.Category)
		}
	}
}

func TestNarratorBeatsDialogRule(t *testing.T) {
	c := NewClassifier()

	// "Erzähler:" matches the colon dialog pattern too, the narrator rule
	// must win.
	rec := c.ClassifyLine(1, "Erzähler: Es war einmal.")
	if rec.Category != model.CategoryNarration {
		t.Errorf("expected narration, got %s", rec.Category)
	}
}
