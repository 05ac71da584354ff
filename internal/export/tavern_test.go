package export

import (
	"strings"
	"testing"

	"github.com/nfreytag/storyweaver/internal/model"
)

func TestBuildCardFromRichCharacter(t *testing.T) {
	ch := model.NewCharacter("Lyra Nightshade")
	ch.Description = "A thief from the undercity."
	ch.AddBehavior("mutig")
	ch.AddBehavior("verschlagen")
	ch.AddItem("schwert")
	ch.AddRelationship("Elias", "Verbündeter")
	ch.AddMention("Lyra betritt den Tempel von Morrakel.", "doc1.txt", 3)

	dialog := []DialogLine{
		{Speaker: "Elias", Content: "Wer bist du eigentlich wirklich?", IsDialog: true},
		{Speaker: "Lyra Nightshade", Content: "Das geht dich gar nichts an, mein Freund.", IsDialog: true},
	}

	card := BuildCard(ch, dialog)

	if card.Name != "Lyra Nightshade" {
		t.Errorf("unexpected name %q", card.Name)
	}
	if card.Description != "A thief from the undercity." {
		t.Errorf("existing description must win, got %q", card.Description)
	}
	if card.Personality != "mutig, verschlagen" {
		t.Errorf("unexpected personality %q", card.Personality)
	}
	if card.Scenario != "Lyra betritt den Tempel von Morrakel." {
		t.Errorf("scene-setting mention should become the scenario, got %q", card.Scenario)
	}
	if card.FirstMes != "Das geht dich gar nichts an, mein Freund." {
		t.Errorf("unexpected first message %q", card.FirstMes)
	}
	if !strings.Contains(card.MesExample, "{{user}}: Wer bist du eigentlich wirklich?") {
		t.Errorf("example should quote the preceding speaker, got %q", card.MesExample)
	}
	if !strings.Contains(card.MesExample, "{{char}}: Das geht dich gar nichts an") {
		t.Errorf("example should quote the character, got %q", card.MesExample)
	}
	if card.Metadata == nil || card.Metadata.Creator != "StoryWeaver" {
		t.Error("metadata missing or wrong creator")
	}
}

func TestBuildCardFallbacks(t *testing.T) {
	ch := model.NewCharacter("Gorthak")

	card := BuildCard(ch, nil)

	if card.Description != "Gorthak is a character from the story." {
		t.Errorf("unexpected fallback description %q", card.Description)
	}
	if card.Personality != "mysterious, reserved" {
		t.Errorf("unexpected fallback personality %q", card.Personality)
	}
	if !strings.Contains(card.FirstMes, "I am Gorthak") {
		t.Errorf("unexpected fallback first message %q", card.FirstMes)
	}
	if !strings.Contains(card.MesExample, "<START>") {
		t.Errorf("fallback example missing frame: %q", card.MesExample)
	}
}

func TestBuildCardSyntheticDescription(t *testing.T) {
	ch := model.NewCharacter("Lyra")
	ch.AddAlias("Schattendiebin")
	ch.AddItem("dolch")
	ch.AddRelationship("Elias", "Rivale")

	card := BuildCard(ch, nil)

	if !strings.Contains(card.Description, "Also known as: Schattendiebin") {
		t.Errorf("description missing aliases: %q", card.Description)
	}
	if !strings.Contains(card.Description, "Possesses: dolch") {
		t.Errorf("description missing items: %q", card.Description)
	}
	if !strings.Contains(card.Description, "Elias (Rivale)") {
		t.Errorf("description missing relationships: %q", card.Description)
	}
}

func TestBuildCardExamplesLimit(t *testing.T) {
	ch := model.NewCharacter("Lyra")

	var dialog []DialogLine
	for i := 0; i < 5; i++ {
		dialog = append(dialog,
			DialogLine{Speaker: "Elias", Content: "Frage", IsDialog: true},
			DialogLine{Speaker: "Lyra", Content: "Antwort", IsDialog: true},
		)
	}

	card := BuildCard(ch, dialog)
	if got := strings.Count(card.MesExample, "<START>"); got != 2 {
		t.Errorf("expected at most 2 examples, got %d", got)
	}
}

func TestCardTags(t *testing.T) {
	ch := model.NewCharacter("Lyra")
	ch.AddItem("schwert")
	ch.AddItem("amulett")
	ch.AddBehavior("mutig")

	tags := cardTags(ch)

	want := map[string]bool{"fantasy": true, "fighter": true, "mage": true, "hero": true}
	if len(tags) != len(want) {
		t.Fatalf("expected %d tags, got %v", len(want), tags)
	}
	for _, tag := range tags {
		if !want[tag] {
			t.Errorf("unexpected tag %q", tag)
		}
	}
}
