package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ApexForge13/policyscan/internal/model"
)

// Analyzer runs the analysis pipeline over one document
type Analyzer interface {
	Analyze(ctx context.Context, doc []byte, claimHint string) *model.StructuredRecord
}

// AnalyzeJob analyzes a single policy file
type AnalyzeJob struct {
	Path      string
	ClaimHint string
	Analyzer  Analyzer
	Limiter   *Limiter
	Provider  string
}

// Execute reads the file and runs the pipeline. The rate limiter gates
// entry so concurrent workers do not stampede the inference service.
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Provider); err != nil {
			return &AnalyzeResult{Path: j.Path, Error: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	doc, err := os.ReadFile(j.Path)
	if err != nil {
		return &AnalyzeResult{Path: j.Path, Error: fmt.Errorf("read document: %w", err)}
	}

	// The pipeline itself is total; per-file errors here are I/O only
	record := j.Analyzer.Analyze(ctx, doc, j.ClaimHint)
	return &AnalyzeResult{Path: j.Path, Record: record}
}

// AnalyzeResult is the outcome for one document
type AnalyzeResult struct {
	Path   string
	Record *model.StructuredRecord
	Error  error
}

// GetError returns the error from the analyze result
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple policy documents concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	limiter     *Limiter
	provider    string
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int, provider string, requestsPerSecond float64, burst int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		limiter:     NewLimiter(requestsPerSecond, burst),
		provider:    provider,
	}
}

// ProcessFiles analyzes the given files concurrently
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string, claimHint string) []*AnalyzeResult {
	if len(paths) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&AnalyzeJob{
			Path:      path,
			ClaimHint: claimHint,
			Analyzer:  b.analyzer,
			Limiter:   b.limiter,
			Provider:  b.provider,
		})
	}

	results := pool.Wait()

	out := make([]*AnalyzeResult, len(results))
	for i, result := range results {
		out[i] = result.(*AnalyzeResult)
	}
	return out
}

// ProcessDir analyzes every policy document in a directory
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir, claimHint string) ([]*AnalyzeResult, error) {
	paths, err := ListDocuments(dir)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return b.ProcessFiles(ctx, paths, claimHint), nil
}

// documentExtensions are the file types accepted by batch processing
var documentExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
}

// ListDocuments returns the analyzable files in a directory, sorted by
// name (os.ReadDir guarantees ordering)
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if documentExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}
