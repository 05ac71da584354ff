package model

import "strings"

// Location is a place appearing in the story.
type Location struct {
	StoryElement

	LocationType       string              // category tag, " / "-joined when merges disagree
	Atmosphere         []string            // moods, ordered, de-duplicated
	Significance       string              // role in the story, " | "-joined on merge
	ConnectedLocations map[string]struct{}
	Inhabitants        map[string]struct{}
	Features           []string // notable features, ordered, de-duplicated
}

// NewLocation creates a location with empty attribute containers.
func NewLocation(name string) *Location {
	return &Location{
		StoryElement:       NewStoryElement(name),
		Atmosphere:         []string{},
		ConnectedLocations: make(map[string]struct{}),
		Inhabitants:        make(map[string]struct{}),
		Features:           []string{},
	}
}

// SetType sets the location's category tag.
func (l *Location) SetType(locationType string) {
	if locationType != "" {
		l.LocationType = locationType
	}
}

// AddAtmosphere records a mood once.
func (l *Location) AddAtmosphere(mood string) {
	l.Atmosphere = appendUnique(l.Atmosphere, mood)
}

// SetSignificance records the location's role in the story.
func (l *Location) SetSignificance(significance string) {
	if significance != "" {
		l.Significance = significance
	}
}

// AddConnectedLocation links another location.
func (l *Location) AddConnectedLocation(name string) {
	if name != "" {
		l.ConnectedLocations[name] = struct{}{}
	}
}

// AddInhabitant records a character living in or frequenting the location.
func (l *Location) AddInhabitant(characterName string) {
	if characterName != "" {
		l.Inhabitants[characterName] = struct{}{}
	}
}

// AddFeature records a notable feature once.
func (l *Location) AddFeature(feature string) {
	l.Features = appendUnique(l.Features, feature)
}

// ConnectedList returns the connected location names in sorted order.
func (l *Location) ConnectedList() []string { return sortedKeys(l.ConnectedLocations) }

// InhabitantList returns the inhabitants in sorted order.
func (l *Location) InhabitantList() []string { return sortedKeys(l.Inhabitants) }

// MergeFrom folds another location into this one.
func (l *Location) MergeFrom(other *Location) {
	l.mergeBase(&other.StoryElement)

	if other.LocationType != "" && l.LocationType == "" {
		l.LocationType = other.LocationType
	} else if other.LocationType != "" && l.LocationType != other.LocationType {
		l.LocationType = l.LocationType + " / " + other.LocationType
	}

	for _, mood := range other.Atmosphere {
		l.AddAtmosphere(mood)
	}
	for _, feature := range other.Features {
		l.AddFeature(feature)
	}
	for name := range other.ConnectedLocations {
		l.ConnectedLocations[name] = struct{}{}
	}
	for name := range other.Inhabitants {
		l.Inhabitants[name] = struct{}{}
	}

	if other.Significance != "" {
		if l.Significance == "" {
			l.Significance = other.Significance
		} else if !strings.Contains(l.Significance, other.Significance) {
			l.Significance += " | " + other.Significance
		}
	}
}
