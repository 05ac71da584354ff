package nlp

import (
	"testing"
)

func TestLemma(t *testing.T) {
	cases := []struct {
		text, tag, want string
	}{
		{"Sword", "NN", "sword"},
		{"Swords", "NNS", "sword"},
		{"Cities", "NNS", "city"},
		{"Boxes", "NNS", "box"},
		{"runs", "VBZ", "runs"}, // only plural nouns are stripped
		{"s", "NNS", "s"},
	}
	for _, tc := range cases {
		if got := lemma(tc.text, tc.tag); got != tc.want {
			t.Errorf("lemma(%q, %q) = %q, want %q", tc.text, tc.tag, got, tc.want)
		}
	}
}

func TestDerivePossessive(t *testing.T) {
	// "her sharp sword"
	tokens := []Token{
		{Text: "her", Tag: "PRP$", Head: -1},
		{Text: "sharp", Tag: "JJ", Head: -1},
		{Text: "sword", Tag: "NN", Lemma: "sword", Head: -1},
	}
	deriveDependencies(tokens)

	if tokens[0].Dep != "poss" || tokens[0].Head != 2 {
		t.Errorf("possessive should point at the noun: dep=%q head=%d", tokens[0].Dep, tokens[0].Head)
	}
}

func TestDerivePossessiveOutOfWindow(t *testing.T) {
	tokens := []Token{
		{Text: "her", Tag: "PRP$", Head: -1},
		{Text: "very", Tag: "RB", Head: -1},
		{Text: "old", Tag: "JJ", Head: -1},
		{Text: "and", Tag: "CC", Head: -1},
		{Text: "sword", Tag: "NN", Head: -1},
	}
	deriveDependencies(tokens)

	if tokens[0].Dep == "poss" {
		t.Error("a noun four tokens away must not bind the possessive")
	}
}

func TestDeriveDirectObject(t *testing.T) {
	// "draws the sword"
	tokens := []Token{
		{Text: "draws", Tag: "VBZ", Head: -1},
		{Text: "the", Tag: "DT", Head: -1},
		{Text: "sword", Tag: "NN", Head: -1},
	}
	deriveDependencies(tokens)

	if tokens[2].Dep != "dobj" || tokens[2].Head != 0 {
		t.Errorf("noun after verb should be its object: dep=%q head=%d", tokens[2].Dep, tokens[2].Head)
	}
}

func TestDeriveNoVerbNoObject(t *testing.T) {
	tokens := []Token{
		{Text: "the", Tag: "DT", Head: -1},
		{Text: "sword", Tag: "NN", Head: -1},
	}
	deriveDependencies(tokens)

	if tokens[1].Dep != "" {
		t.Errorf("noun without a nearby verb must stay unattached, got %q", tokens[1].Dep)
	}
}
