// Package extract recognizes characters, items and locations in parsed
// records and accumulates them into a run-scoped context.
package extract

import (
	"github.com/nfreytag/storyweaver/internal/model"
)

// DialogLine is one buffered dialog or action record attributed to a speaker,
// kept for downstream consumers such as example-dialogue generation.
type DialogLine struct {
	Speaker  string         `json:"speaker"`
	Content  string         `json:"content"`
	Category model.Category `json:"category"`
	Position int            `json:"position"`
	SourceID string         `json:"source_id"`
}

// Context accumulates entities across all documents of one run. Maps carry
// the entities; the order slices preserve first-encounter order, which the
// merge phase depends on. A context is confined to a single goroutine.
type Context struct {
	Characters map[string]*model.Character
	Items      map[string]*model.Item
	Locations  map[string]*model.Location

	// Dialog buffers dialog and action lines per speaker.
	Dialog map[string][]DialogLine

	characterOrder []string
	itemOrder      []string
	locationOrder  []string
}

// NewContext returns an empty extraction context.
func NewContext() *Context {
	return &Context{
		Characters: make(map[string]*model.Character),
		Items:      make(map[string]*model.Item),
		Locations:  make(map[string]*model.Location),
		Dialog:     make(map[string][]DialogLine),
	}
}

// Character returns the character under name, creating it on first use.
func (c *Context) Character(name string) *model.Character {
	if ch, ok := c.Characters[name]; ok {
		return ch
	}
	ch := model.NewCharacter(name)
	c.Characters[name] = ch
	c.characterOrder = append(c.characterOrder, name)
	return ch
}

// Item returns the item under key, creating it on first use.
func (c *Context) Item(key string) *model.Item {
	if it, ok := c.Items[key]; ok {
		return it
	}
	it := model.NewItem(key)
	c.Items[key] = it
	c.itemOrder = append(c.itemOrder, key)
	return it
}

// Location returns the location under name, creating it on first use.
func (c *Context) Location(name string) *model.Location {
	if loc, ok := c.Locations[name]; ok {
		return loc
	}
	loc := model.NewLocation(name)
	c.Locations[name] = loc
	c.locationOrder = append(c.locationOrder, name)
	return loc
}

// CharacterNames returns character keys in first-encounter order.
func (c *Context) CharacterNames() []string { return append([]string(nil), c.characterOrder...) }

// ItemKeys returns item keys in first-encounter order.
func (c *Context) ItemKeys() []string { return append([]string(nil), c.itemOrder...) }

// LocationNames returns location keys in first-encounter order.
func (c *Context) LocationNames() []string { return append([]string(nil), c.locationOrder...) }

// BufferDialog records a spoken or acted line for its speaker.
func (c *Context) BufferDialog(line DialogLine) {
	c.Dialog[line.Speaker] = append(c.Dialog[line.Speaker], line)
}
