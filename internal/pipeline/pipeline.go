// Package pipeline orchestrates the policy analysis passes and owns the
// caller-facing contract: given any input, including corrupt bytes, Analyze
// returns a StructuredRecord and never panics.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ApexForge13/policyscan/internal/cache"
	"github.com/ApexForge13/policyscan/internal/extract"
	"github.com/ApexForge13/policyscan/internal/kb"
	"github.com/ApexForge13/policyscan/internal/llm"
	"github.com/ApexForge13/policyscan/internal/model"
	"github.com/ApexForge13/policyscan/internal/retry"
	"github.com/ApexForge13/policyscan/internal/score"
	"github.com/google/uuid"
)

// Pipeline sequences classification, extraction, enrichment, verification,
// and scoring over one document at a time. Safe for concurrent use: the
// knowledge base is read-only and invocations share no mutable state.
type Pipeline struct {
	classifier *extract.Classifier
	extractor  *extract.Extractor
	verifier   *extract.Verifier
	knowledge  *kb.KnowledgeBase
	results    cache.Cache // nil when caching is disabled
	config     *model.Config
}

// NewPipeline creates a pipeline from configuration. The knowledge base is
// loaded once here and shared by every invocation.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize provider: %w", err)
	}

	knowledge, err := kb.Load()
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}

	retrier := retry.New(cfg.Retry.MaxRetries, cfg.Retry.BaseDelay)

	var results cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			results = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			results = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
		}
	}

	return &Pipeline{
		classifier: extract.NewClassifier(provider, retrier),
		extractor:  extract.NewExtractor(provider, retrier, knowledge),
		verifier:   extract.NewVerifier(provider, retrier),
		knowledge:  knowledge,
		results:    results,
		config:     cfg,
	}, nil
}

// Knowledge exposes the loaded rule tables (read-only)
func (p *Pipeline) Knowledge() *kb.KnowledgeBase {
	return p.knowledge
}

// Analyze runs the full pipeline over one document. It always returns a
// well-formed record: stage failures degrade in place, and an extraction
// failure short-circuits to an explicitly-flagged degraded result.
func (p *Pipeline) Analyze(ctx context.Context, doc []byte, claimHint string) (rec *model.StructuredRecord) {
	var meta *model.DocumentMeta

	// The public contract is a total function. Anything that still
	// escapes a stage becomes a degraded result, not a panic.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Warning: analysis panic recovered: %v\n", r)
			rec = BuildDegraded(meta, fmt.Sprintf("Analysis failed unexpectedly: %v.", r))
		}
	}()

	if len(doc) == 0 {
		return BuildDegraded(nil, "The document could not be read: it is empty.")
	}

	key := cache.Key(doc, claimHint)
	if p.results != nil {
		if data, found := p.results.Get(key); found {
			var cached model.StructuredRecord
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached
			}
		}
	}

	// 1. Classify (advisory; falls back to defaults internally)
	meta = p.classifier.Classify(ctx, doc)

	// 2. Extract. The only stage whose failure is fatal to producing a
	// meaningful record: everything after needs some extraction to work on.
	rec, err := p.extractor.Extract(ctx, doc, meta, claimHint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: extraction failed: %v\n", err)
		return BuildDegraded(meta, describeFailure(err))
	}
	rec.ApplyMeta(meta)

	// 3. Enrich from the carrier form table, then pin landmine taxonomy
	// to the knowledge base
	extract.Enrich(rec, meta, p.knowledge)
	rec.Landmines = p.knowledge.NormalizeSeverity(rec.Landmines)

	// 4. Verify. Strictly additive: on failure keep the enriched result.
	if corrections, err := p.verifier.Verify(ctx, doc, rec); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: verification skipped: %v\n", err)
	} else {
		extract.MergeCorrections(rec, corrections, p.knowledge)
	}

	// 5. Deterministic post-processing
	score.ResolveDeductibles(rec)
	score.Finalize(rec)

	rec.AnalysisID = uuid.NewString()
	rec.AnalyzedAt = time.Now().UTC()

	if p.results != nil {
		if data, err := json.Marshal(rec); err == nil {
			_ = p.results.Set(key, data, p.config.Cache.TTL)
		}
	}

	return rec
}

// describeFailure maps an extraction failure to the user-facing
// explanation carried in the degraded record
func describeFailure(err error) string {
	if retry.IsRetryable(err) {
		return "The analysis service was temporarily unavailable. The document was not analyzed; please retry."
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unusable") || strings.Contains(msg, "decode") || strings.Contains(msg, "json") {
		return "The document produced unusable extraction output. It may be an unsupported format or an illegible scan."
	}
	return "The document could not be analyzed. It may be unreadable or in an unsupported format."
}
