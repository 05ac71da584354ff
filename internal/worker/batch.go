package worker

import (
	"context"
)

// ElementDescriber generates a description for one entity from its mentions.
type ElementDescriber interface {
	DescribeElement(ctx context.Context, kind, name string, mentions []string) (string, error)
}

// DescribeJob requests a description for one entity.
type DescribeJob struct {
	Kind      string
	Name      string
	Mentions  []string
	Describer ElementDescriber
}

// Execute runs the description call.
func (j *DescribeJob) Execute(ctx context.Context) Result {
	description, err := j.Describer.DescribeElement(ctx, j.Kind, j.Name, j.Mentions)
	return &DescribeResult{
		Kind:        j.Kind,
		Name:        j.Name,
		Description: description,
		Error:       err,
	}
}

// DescribeResult carries one generated description back to the pipeline,
// which folds it into the entity maps on its own goroutine.
type DescribeResult struct {
	Kind        string
	Name        string
	Description string
	Error       error
}

// GetError returns the job's error.
func (r *DescribeResult) GetError() error {
	return r.Error
}

// DirJob weaves one transcript directory.
type DirJob struct {
	Dir string
	Run func(ctx context.Context, dir string) error
}

// Execute runs the weave.
func (j *DirJob) Execute(ctx context.Context) Result {
	return &DirResult{Dir: j.Dir, Error: j.Run(ctx, j.Dir)}
}

// DirResult is the outcome of weaving one directory.
type DirResult struct {
	Dir   string
	Error error
}

// GetError returns the job's error.
func (r *DirResult) GetError() error {
	return r.Error
}

// BatchProcessor weaves multiple directories concurrently. Each directory
// gets its own run; directories never share extraction state.
type BatchProcessor struct {
	run         func(ctx context.Context, dir string) error
	concurrency int
}

// NewBatchProcessor creates a batch processor over the given run function.
func NewBatchProcessor(run func(ctx context.Context, dir string) error, concurrency int) *BatchProcessor {
	return &BatchProcessor{run: run, concurrency: concurrency}
}

// ProcessDirs runs all directories through the pool and returns one result
// per directory, in completion order.
func (b *BatchProcessor) ProcessDirs(ctx context.Context, dirs []string) []*DirResult {
	if len(dirs) == 0 {
		return []*DirResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Runs observe the caller's context, not the pool's internal one, so a
	// batch timeout cancels in-flight weaves.
	for _, dir := range dirs {
		pool.Submit(&DirJob{Dir: dir, Run: func(_ context.Context, dir string) error {
			return b.run(ctx, dir)
		}})
	}

	results := pool.Wait()

	dirResults := make([]*DirResult, len(results))
	for i, result := range results {
		dirResults[i] = result.(*DirResult)
	}
	return dirResults
}
