package model

import (
	"sort"
	"strings"
	"time"
)

// Mention is a provenance entry recording where an entity was observed.
type Mention struct {
	Text     string `json:"text"`               // the surrounding raw text
	SourceID string `json:"source_id"`          // document the mention came from
	Position int    `json:"position,omitempty"` // record position within the document
}

// StoryElement is the base of every extracted entity. Frequency is always
// derived from the mention list and the source-ID set from the mentions'
// source IDs; neither is ever set independently.
type StoryElement struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Mentions    []Mention `json:"mentions"`
	Frequency   int       `json:"frequency"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewStoryElement creates an element with no mentions yet.
func NewStoryElement(name string) StoryElement {
	now := time.Now().UTC()
	return StoryElement{
		Name:      name,
		Mentions:  []Mention{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddMention records an observation of the element.
func (e *StoryElement) AddMention(text, sourceID string, position int) {
	e.Mentions = append(e.Mentions, Mention{Text: text, SourceID: sourceID, Position: position})
	e.Frequency = len(e.Mentions)
	e.UpdatedAt = time.Now().UTC()
}

// SourceIDs returns the sorted set of source identifiers derived from the
// mention list.
func (e *StoryElement) SourceIDs() []string {
	seen := make(map[string]struct{})
	for _, m := range e.Mentions {
		if m.SourceID != "" {
			seen[m.SourceID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// mergeBase folds another element's provenance and description into this one.
// The other element is discarded by the caller afterwards.
func (e *StoryElement) mergeBase(other *StoryElement) {
	if other.Description != "" && !strings.Contains(e.Description, other.Description) {
		if e.Description != "" {
			e.Description += " | " + other.Description
		} else {
			e.Description = other.Description
		}
	}
	e.Mentions = append(e.Mentions, other.Mentions...)
	e.Frequency = len(e.Mentions)
	e.UpdatedAt = time.Now().UTC()
}

// appendUnique appends value to list unless it is already present, preserving
// order. Used for the ordered de-duplicated trait lists.
func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

// sortedKeys returns the sorted member list of a string set.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
