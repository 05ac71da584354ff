package model

import (
	"time"

	"github.com/google/uuid"
)

// SkippedDocument records a document the pipeline could not process and why.
type SkippedDocument struct {
	SourceID string `json:"source_id"`
	Reason   string `json:"reason"`
}

// KindCounts holds one count per entity kind.
type KindCounts struct {
	Characters int `json:"characters"`
	Items      int `json:"items"`
	Locations  int `json:"locations"`
}

// NameCount pairs an entity name with its mention frequency, for the
// most-mentioned rankings.
type NameCount struct {
	Name      string `json:"name"`
	Frequency int    `json:"frequency"`
}

// RunStats are aggregate figures over the merged registry.
type RunStats struct {
	MentionTotals KindCounts  `json:"mention_totals"`
	TopCharacters []NameCount `json:"top_characters"`
	TopItems      []NameCount `json:"top_items"`
	TopLocations  []NameCount `json:"top_locations"`
}

// RunReport summarizes a single weave run.
type RunReport struct {
	RunID      uuid.UUID         `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Documents  []string          `json:"documents"`
	Skipped    []SkippedDocument `json:"skipped"`
	Raw        KindCounts        `json:"raw"`    // counts before merging
	Merged     KindCounts        `json:"merged"` // counts after merging
	Stats      RunStats          `json:"stats"`
}

// NewRunReport starts a report for a fresh run.
func NewRunReport() *RunReport {
	return &RunReport{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
		Documents: []string{},
		Skipped:   []SkippedDocument{},
	}
}

// Skip records a document that could not be processed.
func (r *RunReport) Skip(sourceID, reason string) {
	r.Skipped = append(r.Skipped, SkippedDocument{SourceID: sourceID, Reason: reason})
}

// Finish stamps the end time.
func (r *RunReport) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Duration returns the elapsed run time.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
