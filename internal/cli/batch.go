package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/nfreytag/storyweaver/internal/model"
	"github.com/nfreytag/storyweaver/internal/pipeline"
	"github.com/nfreytag/storyweaver/internal/worker"
)

var (
	batchConcurrency int
	batchOutputDir   string
	batchTimeout     time.Duration
	batchCards       bool
	batchThreshold   int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>...",
	Short: "Weave multiple transcript directories in parallel",
	Long: `Batch weaves several directories concurrently. Each directory is an
independent run with its own entity registry, written to a subdirectory
of the output directory named after the input.

Example:
  storyweaver batch ./campaign-1 ./campaign-2
  storyweaver batch ./stories/* --concurrency 4 --output-dir ./bibles`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", runtime.NumCPU(), "number of concurrent weaves")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "./storyweaver-output", "root output directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().IntVar(&batchThreshold, "threshold", 80, "similarity threshold for merging (50-100)")
	batchCmd.Flags().BoolVar(&batchCards, "cards", false, "additionally write TavernAI character cards")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Output.Verbose = verbose
	cfg.Output.Cards = batchCards || cfg.Output.Cards
	if cmd.Flags().Changed("threshold") {
		cfg.Similarity.Threshold = batchThreshold
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = defaultCacheDir()
	}

	if err := os.MkdirAll(batchOutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Batch weaving %d directories with %d workers\n\n", len(args), batchConcurrency)

	run := func(ctx context.Context, dir string) error {
		// Each run gets its own pipeline writing to its own subdirectory.
		runCfg := *cfg
		runCfg.Output.Dir = filepath.Join(batchOutputDir, filepath.Base(dir))
		p, err := pipeline.NewPipeline(&runCfg)
		if err != nil {
			return err
		}
		result, err := p.WeaveDir(ctx, dir)
		if err != nil {
			return err
		}
		return p.Render(result)
	}

	processor := worker.NewBatchProcessor(run, batchConcurrency)
	results := processor.ProcessDirs(ctx, args)

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.Dir, result.Error)
			continue
		}
		successCount++
		fmt.Fprintf(os.Stderr, "OK   %s\n", result.Dir)
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d ok, %d failed, output in %s\n",
		successCount, failureCount, batchOutputDir)

	if failureCount > 0 {
		return fmt.Errorf("%d of %d directories failed", failureCount, len(results))
	}
	return nil
}

// configureLLM fills provider credentials from the environment.
func configureLLM(cfg *model.Config) error {
	cfg.LLM.Provider = llmProvider
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}

	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama needs no API key.
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

// defaultCacheDir places the description cache under the home directory.
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storyweaver-cache"
	}
	return filepath.Join(home, ".storyweaver", "cache")
}
