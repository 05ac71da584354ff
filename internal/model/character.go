package model

// Character is a person appearing in the story.
type Character struct {
	StoryElement

	Behaviors     []string            // observed traits, ordered, de-duplicated
	Items         map[string]struct{} // keys of items owned or used
	Relationships map[string]string   // other character name -> relation label
	Aliases       map[string]struct{} // alternate names, never containing Name
}

// NewCharacter creates a character with empty attribute containers. Optional
// collections are always present so callers only ever test for emptiness.
func NewCharacter(name string) *Character {
	return &Character{
		StoryElement:  NewStoryElement(name),
		Behaviors:     []string{},
		Items:         make(map[string]struct{}),
		Relationships: make(map[string]string),
		Aliases:       make(map[string]struct{}),
	}
}

// AddBehavior records a trait once.
func (c *Character) AddBehavior(behavior string) {
	c.Behaviors = appendUnique(c.Behaviors, behavior)
}

// AddItem links an item key to the character.
func (c *Character) AddItem(itemKey string) {
	if itemKey != "" {
		c.Items[itemKey] = struct{}{}
	}
}

// AddRelationship records a relation to another character. A later write for
// the same character wins.
func (c *Character) AddRelationship(other, relation string) {
	if other != "" && relation != "" {
		c.Relationships[other] = relation
	}
}

// AddAlias records an alternate name. The canonical name is never an alias of
// itself.
func (c *Character) AddAlias(alias string) {
	if alias != "" && alias != c.Name {
		c.Aliases[alias] = struct{}{}
	}
}

// Rename changes the canonical name. The new name is removed from the alias
// set to keep name and aliases disjoint; the caller re-keys the owning map.
func (c *Character) Rename(name string) {
	if name == "" || name == c.Name {
		return
	}
	c.Name = name
	delete(c.Aliases, name)
}

// AliasList returns the aliases in sorted order.
func (c *Character) AliasList() []string { return sortedKeys(c.Aliases) }

// ItemList returns the owned item keys in sorted order.
func (c *Character) ItemList() []string { return sortedKeys(c.Items) }

// MergeFrom folds another character into this one. The other character is
// discarded by the caller afterwards.
func (c *Character) MergeFrom(other *Character) {
	c.mergeBase(&other.StoryElement)

	for _, b := range other.Behaviors {
		c.AddBehavior(b)
	}
	for item := range other.Items {
		c.Items[item] = struct{}{}
	}
	for alias := range other.Aliases {
		c.AddAlias(alias)
	}
	// Newer relationships overwrite older ones.
	for name, rel := range other.Relationships {
		c.Relationships[name] = rel
	}
}
