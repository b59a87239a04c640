package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ApexForge13/policyscan/internal/model"
	"github.com/ApexForge13/policyscan/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON     string
	outMD       string
	claimType   string
	timeout     time.Duration
	noCache     bool
	cacheDir    string
	noFooter    bool
	llmProvider string
	llmModel    string
	llmBaseURL  string
	maxRetries  int
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a single policy document",
	Long: `Analyze runs the full pipeline over one policy document:
- Classify the document (type, carrier, form family, visible endorsements)
- Extract the structured record under a strict output contract
- Cross-reference form numbers against the carrier knowledge base
- Run a targeted verification pass and merge its corrections
- Resolve percentage deductibles and compute confidence and risk

Example:
  policyscan analyze policy.pdf
  policyscan analyze policy.pdf --claim-type "hail roof" --json out.json --md report.md
  policyscan analyze policy.pdf --provider openai --model gpt-4o`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "analysis.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// Pipeline flags
	analyzeCmd.Flags().StringVar(&claimType, "claim-type", "", "claim-type hint (e.g. \"hail roof\", \"water\")")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the analysis cache (force fresh analysis)")
	analyzeCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "persist cached analyses to this directory")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	analyzeCmd.Flags().IntVar(&maxRetries, "max-retries", 3, "retries per inference call on transient errors")

	// Provider flags
	analyzeCmd.Flags().StringVar(&llmProvider, "provider", "anthropic", "inference provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "model", "", "model name (provider default when empty)")
	analyzeCmd.Flags().StringVar(&llmBaseURL, "base-url", "", "custom API base URL")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	doc, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s (%d bytes)\n", file, len(doc))
		fmt.Fprintf(os.Stderr, "Provider: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	rec := p.Analyze(ctx, doc, claimType)

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d coverages, %d deductibles\n", len(rec.Coverages), len(rec.Deductibles))
		fmt.Fprintf(os.Stderr, "✓ Found %d landmines, %d favorable provisions\n", len(rec.Landmines), len(rec.FavorableProvisions))
		fmt.Fprintln(os.Stderr)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(rec, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(rec, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	renderer.RenderSummary(rec)
	return nil
}

// buildConfig assembles pipeline configuration from flags and environment
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	cfg.LLM.BaseURL = llmBaseURL
	cfg.Retry.MaxRetries = maxRetries
	cfg.Cache.Enabled = !noCache
	cfg.Cache.Dir = cacheDir
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}
