// Package export converts merged entities into the canonical JSON shapes
// consumed by external tools: per-entity files, overview documents and
// character cards.
package export

import (
	"time"

	"github.com/nfreytag/storyweaver/internal/model"
)

// ElementExport is the shared part of every exported entity.
type ElementExport struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Frequency   int             `json:"frequency"`
	SourceIDs   []string        `json:"source_ids"`
	Mentions    []model.Mention `json:"mentions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CharacterExport is the canonical character shape.
type CharacterExport struct {
	ElementExport
	Type          string            `json:"type"`
	Behaviors     []string          `json:"behaviors"`
	Items         []string          `json:"items"`
	Relationships map[string]string `json:"relationships"`
	Aliases       []string          `json:"aliases"`
}

// ItemExport is the canonical item shape.
type ItemExport struct {
	ElementExport
	Type       string            `json:"type"`
	ItemType   string            `json:"item_type"`
	Owners     []string          `json:"owners"`
	Properties map[string]string `json:"properties"`
	Location   string            `json:"location"`
}

// LocationExport is the canonical location shape.
type LocationExport struct {
	ElementExport
	Type               string   `json:"type"`
	LocationType       string   `json:"location_type"`
	Atmosphere         []string `json:"atmosphere"`
	Significance       string   `json:"significance"`
	ConnectedLocations []string `json:"connected_locations"`
	Inhabitants        []string `json:"inhabitants"`
	Features           []string `json:"features"`
}

func elementExport(e *model.StoryElement) ElementExport {
	return ElementExport{
		Name:        e.Name,
		Description: e.Description,
		Frequency:   e.Frequency,
		SourceIDs:   e.SourceIDs(),
		Mentions:    e.Mentions,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// FromCharacter converts a character to its export shape.
func FromCharacter(c *model.Character) CharacterExport {
	return CharacterExport{
		ElementExport: elementExport(&c.StoryElement),
		Type:          "character",
		Behaviors:     c.Behaviors,
		Items:         c.ItemList(),
		Relationships: c.Relationships,
		Aliases:       c.AliasList(),
	}
}

// FromItem converts an item to its export shape.
func FromItem(i *model.Item) ItemExport {
	return ItemExport{
		ElementExport: elementExport(&i.StoryElement),
		Type:          "item",
		ItemType:      i.ItemType,
		Owners:        i.OwnerList(),
		Properties:    i.Properties,
		Location:      i.Location,
	}
}

// FromLocation converts a location to its export shape.
func FromLocation(l *model.Location) LocationExport {
	return LocationExport{
		ElementExport:      elementExport(&l.StoryElement),
		Type:               "location",
		LocationType:       l.LocationType,
		Atmosphere:         l.Atmosphere,
		Significance:       l.Significance,
		ConnectedLocations: l.ConnectedList(),
		Inhabitants:        l.InhabitantList(),
		Features:           l.Features,
	}
}
