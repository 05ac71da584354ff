package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nfreytag/storyweaver/internal/model"
	"github.com/nfreytag/storyweaver/internal/pipeline"
)

var (
	outputDir    string
	threshold    int
	cards        bool
	weaveTimeout time.Duration
	noCache      bool
	llmEnabled   bool
	llmProvider  string
	llmModel     string
)

// weaveCmd represents the weave command
var weaveCmd = &cobra.Command{
	Use:   "weave <dir>",
	Short: "Extract and merge story entities from a transcript directory",
	Long: `Weave processes every transcript in a directory:
- Classify lines into dialog, actions and narration
- Recognize characters, items and locations
- Merge near-duplicate names into canonical records
- Write the registry as a JSON file tree with provenance

Example:
  storyweaver weave ./chats
  storyweaver weave ./chats --out ./bible --threshold 85
  storyweaver weave ./chats --cards
  storyweaver weave ./chats --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runWeave,
}

func init() {
	rootCmd.AddCommand(weaveCmd)

	weaveCmd.Flags().StringVar(&outputDir, "out", "output", "output directory for the registry")
	weaveCmd.Flags().IntVar(&threshold, "threshold", 80, "similarity threshold for merging (50-100)")
	weaveCmd.Flags().BoolVar(&cards, "cards", false, "additionally write TavernAI character cards")
	weaveCmd.Flags().DurationVar(&weaveTimeout, "timeout", 10*time.Minute, "overall weave timeout")
	weaveCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the description cache")

	// LLM flags
	weaveCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	weaveCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	weaveCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enrich empty descriptions with an LLM")
}

func runWeave(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), weaveTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyWeaveOverrides(cmd.Flags(), cfg)

	if llmEnabled {
		if err := configureLLM(cfg); err != nil {
			return err
		}
	} else {
		cfg.LLM.Provider = ""
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Weaving: %s\n", dir)
		fmt.Fprintf(os.Stderr, "Threshold: %d\n", cfg.Similarity.Threshold)
		fmt.Fprintf(os.Stderr, "Output: %s\n\n", cfg.Output.Dir)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initializing pipeline: %w", err)
	}

	result, err := p.WeaveDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("weave failed: %w", err)
	}

	if err := p.Render(result); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

// applyWeaveOverrides layers the command line over the loaded config. Flags
// left at their defaults keep the config file values.
func applyWeaveOverrides(flags *pflag.FlagSet, cfg *model.Config) {
	if flags.Changed("out") || cfg.Output.Dir == "" {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("threshold") {
		cfg.Similarity.Threshold = threshold
	}
	cfg.Output.Verbose = verbose
	cfg.Output.Cards = cards || cfg.Output.Cards
	cfg.Cache.Enabled = cfg.Cache.Enabled && !noCache
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = defaultCacheDir()
	}
}
