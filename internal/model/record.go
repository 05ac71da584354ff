package model

// Category classifies a transcript record.
type Category string

const (
	CategoryDialog       Category = "dialog"
	CategoryAction       Category = "action"
	CategoryNarration    Category = "narration"
	CategoryDescription  Category = "description"
	CategoryRelationship Category = "relationship"
	CategoryUnknown      Category = "unknown"
)

// NarratorName is the sentinel speaker assigned to narration records. Narrator
// lines never seed characters.
const NarratorName = "Narrator"

// Record is the normalized unit of input: one transcript line or one
// structured entry. Records are immutable once produced by the parser.
type Record struct {
	Position int      `json:"position"`            // ordinal within the source document
	RawText  string   `json:"raw_text"`            // the line as it appeared
	Speaker  string   `json:"speaker,omitempty"`   // empty when no speaker could be determined
	Content  string   `json:"content,omitempty"`   // speaker-free payload
	Category Category `json:"category"`
}

// IsDialog reports whether the record is a spoken line.
func (r Record) IsDialog() bool { return r.Category == CategoryDialog }

// IsAction reports whether the record describes an action.
func (r Record) IsAction() bool { return r.Category == CategoryAction }

// IsNarration reports whether the record is narrator text.
func (r Record) IsNarration() bool { return r.Category == CategoryNarration }

// ValidCategory reports whether s names a known record category.
func ValidCategory(s string) bool {
	switch Category(s) {
	case CategoryDialog, CategoryAction, CategoryNarration, CategoryDescription, CategoryRelationship, CategoryUnknown:
		return true
	}
	return false
}
