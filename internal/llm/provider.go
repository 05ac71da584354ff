// Package llm generates entity descriptions from collected mentions through
// an external language model. Enrichment is optional; runs work fully
// without a configured provider.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nfreytag/storyweaver/internal/model"
)

// Provider is a language-model backend that can describe an entity.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Describe generates a short description of one entity from its
	// mentions.
	Describe(ctx context.Context, req DescribeRequest) (*DescribeResponse, error)

	// IsAvailable checks if the provider is properly configured and
	// reachable.
	IsAvailable(ctx context.Context) bool
}

// DescribeRequest is the input for one description.
type DescribeRequest struct {
	// Kind is "character", "item" or "location".
	Kind string

	// Name is the canonical entity name.
	Name string

	// Mentions are the raw text snippets the entity was observed in. The
	// model must ground its output in these and nothing else.
	Mentions []string

	// Prompt overrides the default prompt when non-empty.
	Prompt string

	// Model picks a provider-specific model.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int
}

// DescribeResponse is one generated description.
type DescribeResponse struct {
	Description string
	Model       string
	TokensUsed  int
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama" or "" for disabled.
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	Timeout   time.Duration
	MaxTokens int

	// Proxy settings for providers reached over plain HTTP transports.
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns the defaults with enrichment disabled.
func DefaultConfig() Config {
	return Config{
		Timeout:   60 * time.Second,
		MaxTokens: 300,
	}
}

// ConfigFromModel converts the application-level LLM settings.
func ConfigFromModel(cfg model.LLMConfig) Config {
	return Config{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		MaxTokens:  cfg.MaxTokens,
		HTTPProxy:  cfg.HTTPProxy,
		HTTPSProxy: cfg.HTTPSProxy,
		NoProxy:    cfg.NoProxy,
	}
}

const describeSystemPrompt = "You are a story archivist. You describe characters, items and locations strictly from the quoted story excerpts you are given."

// BuildPrompt constructs the default description prompt. The rules pin the
// model to the supplied mentions so descriptions never invent facts absent
// from the transcripts.
func BuildPrompt(req DescribeRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Describe the %s %q in 2-3 sentences.\n\n", req.Kind, req.Name)
	b.WriteString("RULES:\n")
	b.WriteString("1. Use ONLY the excerpts below. Do not invent facts.\n")
	b.WriteString("2. If the excerpts reveal little, say so briefly instead of speculating.\n")
	b.WriteString("3. Write in the language the excerpts are written in.\n\n")
	b.WriteString("Excerpts:\n")

	limit := len(req.Mentions)
	if limit > 20 {
		limit = 20
	}
	for _, m := range req.Mentions[:limit] {
		fmt.Fprintf(&b, "- %s\n", m)
	}
	if len(req.Mentions) > limit {
		fmt.Fprintf(&b, "... and %d more excerpts\n", len(req.Mentions)-limit)
	}
	return b.String()
}
