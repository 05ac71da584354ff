package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nfreytag/storyweaver/internal/model"
)

// Card is a character card in the TavernAI JSON layout. All fields are
// filled deterministically; fallbacks kick in where the transcripts gave us
// nothing.
type Card struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Personality string        `json:"personality"`
	Scenario    string        `json:"scenario"`
	FirstMes    string        `json:"first_mes"`
	MesExample  string        `json:"mes_example"`
	Metadata    *CardMetadata `json:"metadata,omitempty"`
}

// CardMetadata carries card provenance.
type CardMetadata struct {
	Tags      []string  `json:"tags"`
	Creator   string    `json:"creator"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// DialogLine is one attributed transcript line, used to seed first messages
// and example exchanges.
type DialogLine struct {
	Speaker  string
	Content  string
	IsDialog bool
}

// scenarioKeywords mark a mention as scene-setting enough to serve as the
// card's scenario.
var scenarioKeywords = []string{
	"tempel", "wald", "stadt", "ruine", "berg",
	"temple", "forest", "city", "ruin", "mountain", "castle",
}

// BuildCard assembles a card for one character from its merged record and
// buffered dialog.
func BuildCard(c *model.Character, dialog []DialogLine) Card {
	return Card{
		Name:        c.Name,
		Description: cardDescription(c),
		Personality: cardPersonality(c),
		Scenario:    cardScenario(c),
		FirstMes:    firstMessage(c, dialog),
		MesExample:  messageExamples(c, dialog),
		Metadata: &CardMetadata{
			Tags:      cardTags(c),
			Creator:   "StoryWeaver",
			Version:   "1.0",
			CreatedAt: time.Now().UTC(),
		},
	}
}

func cardDescription(c *model.Character) string {
	if c.Description != "" {
		return c.Description
	}

	var parts []string
	if aliases := c.AliasList(); len(aliases) > 0 {
		parts = append(parts, "Also known as: "+strings.Join(aliases, ", "))
	}
	if items := c.ItemList(); len(items) > 0 {
		if len(items) > 3 {
			items = items[:3]
		}
		parts = append(parts, "Possesses: "+strings.Join(items, ", "))
	}
	if len(c.Relationships) > 0 {
		names := make([]string, 0, len(c.Relationships))
		for name := range c.Relationships {
			names = append(names, name)
		}
		sort.Strings(names)
		if len(names) > 2 {
			names = names[:2]
		}
		rels := make([]string, len(names))
		for i, name := range names {
			rels[i] = fmt.Sprintf("%s (%s)", name, c.Relationships[name])
		}
		parts = append(parts, "Relationships: "+strings.Join(rels, ", "))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%s is a character from the story.", c.Name)
	}
	return strings.Join(parts, ". ")
}

func cardPersonality(c *model.Character) string {
	if len(c.Behaviors) > 0 {
		return strings.Join(c.Behaviors, ", ")
	}
	return "mysterious, reserved"
}

func cardScenario(c *model.Character) string {
	limit := len(c.Mentions)
	if limit > 5 {
		limit = 5
	}
	for _, mention := range c.Mentions[:limit] {
		lower := strings.ToLower(mention.Text)
		for _, kw := range scenarioKeywords {
			if strings.Contains(lower, kw) {
				return mention.Text
			}
		}
	}
	return "In a fantastic world full of secrets and adventure."
}

// firstMessage picks the character's first sufficiently long spoken line.
func firstMessage(c *model.Character, dialog []DialogLine) string {
	for _, line := range dialog {
		if line.Speaker == c.Name && line.IsDialog && len(line.Content) > 20 {
			return line.Content
		}
	}
	return fmt.Sprintf("Ah, it's you. I am %s. What brings you here?", c.Name)
}

// messageExamples builds up to two <START>-framed exchanges where another
// speaker's line precedes one of the character's.
func messageExamples(c *model.Character, dialog []DialogLine) string {
	var examples []string
	for i := 1; i < len(dialog) && len(examples) < 2; i++ {
		line := dialog[i]
		if line.Speaker != c.Name || !line.IsDialog {
			continue
		}
		prev := dialog[i-1]
		if prev.Speaker == c.Name {
			continue
		}
		user := strings.TrimSpace(prev.Content)
		char := strings.TrimSpace(line.Content)
		if user == "" || char == "" {
			continue
		}
		examples = append(examples, fmt.Sprintf("<START>\n{{user}}: %s\n{{char}}: %s", user, char))
	}

	if len(examples) == 0 {
		return fmt.Sprintf("<START>\n{{user}}: Who are you?\n{{char}}: I am %s. And you are...?", c.Name)
	}
	return strings.Join(examples, "\n")
}

var (
	fighterItemWords = []string{"schwert", "klinge", "dolch", "sword", "blade", "dagger"}
	mageItemWords    = []string{"stab", "amulett", "kristall", "staff", "amulet", "crystal", "wand"}
	heroBehaviors    = []string{"mutig", "tapfer", "brave", "courageous"}
	mysteryBehaviors = []string{"geheimnisvoll", "mysteriös", "mysterious", "secretive"}
)

func cardTags(c *model.Character) []string {
	tags := []string{"fantasy"}

	items := strings.ToLower(strings.Join(c.ItemList(), " "))
	if containsAny(items, fighterItemWords) {
		tags = append(tags, "fighter")
	}
	if containsAny(items, mageItemWords) {
		tags = append(tags, "mage")
	}

	behaviors := strings.ToLower(strings.Join(c.Behaviors, " "))
	if containsAny(behaviors, heroBehaviors) {
		tags = append(tags, "hero")
	}
	if containsAny(behaviors, mysteryBehaviors) {
		tags = append(tags, "mysterious")
	}

	return tags
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
