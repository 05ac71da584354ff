package model

// Item is an object appearing in the story.
type Item struct {
	StoryElement

	ItemType   string              // category tag, " / "-joined when merges disagree
	Owners     map[string]struct{} // characters owning or using the item
	Properties map[string]string
	Location   string // where the item was last placed, if known
}

// NewItem creates an item with empty attribute containers.
func NewItem(name string) *Item {
	return &Item{
		StoryElement: NewStoryElement(name),
		Owners:       make(map[string]struct{}),
		Properties:   make(map[string]string),
	}
}

// SetType sets the item's category tag.
func (i *Item) SetType(itemType string) {
	if itemType != "" {
		i.ItemType = itemType
	}
}

// AddOwner records a character as owner or user.
func (i *Item) AddOwner(characterName string) {
	if characterName != "" {
		i.Owners[characterName] = struct{}{}
	}
}

// AddProperty records a named property.
func (i *Item) AddProperty(name, value string) {
	if name != "" && value != "" {
		i.Properties[name] = value
	}
}

// SetLocation records where the item is.
func (i *Item) SetLocation(location string) {
	if location != "" {
		i.Location = location
	}
}

// OwnerList returns the owners in sorted order.
func (i *Item) OwnerList() []string { return sortedKeys(i.Owners) }

// MergeFrom folds another item into this one. Differing category tags are
// kept side by side; the other item's location wins when set.
func (i *Item) MergeFrom(other *Item) {
	i.mergeBase(&other.StoryElement)

	if other.ItemType != "" && i.ItemType == "" {
		i.ItemType = other.ItemType
	} else if other.ItemType != "" && i.ItemType != other.ItemType {
		i.ItemType = i.ItemType + " / " + other.ItemType
	}

	for owner := range other.Owners {
		i.Owners[owner] = struct{}{}
	}
	for name, value := range other.Properties {
		i.Properties[name] = value
	}
	if other.Location != "" {
		i.Location = other.Location
	}
}
