// Package extract implements the inference passes of the policy analysis
// pipeline: document classification, structured extraction, knowledge-base
// enrichment, and targeted verification.
package extract

import (
	"context"
	"fmt"

	"github.com/ApexForge13/policyscan/internal/llm"
	"github.com/ApexForge13/policyscan/internal/model"
	"github.com/ApexForge13/policyscan/internal/retry"
	"github.com/ApexForge13/policyscan/internal/schema"
)

const classifierSystem = `You are an insurance document triage assistant. You examine policy documents and return ONLY a single JSON object, no prose and no markdown fences.`

// Classifier runs the first, advisory inference pass: lightweight document
// metadata used as context by every later stage.
type Classifier struct {
	provider llm.Provider
	retrier  *retry.Executor
}

// NewClassifier creates a classifier over the given provider
func NewClassifier(provider llm.Provider, retrier *retry.Executor) *Classifier {
	return &Classifier{provider: provider, retrier: retrier}
}

// Classify inspects the document and returns its metadata. This stage is
// advisory, not load-bearing: on inference failure or malformed output it
// returns all-defaults metadata rather than an error.
func (c *Classifier) Classify(ctx context.Context, doc []byte) *model.DocumentMeta {
	prompt := buildClassifyPrompt()

	var resp *llm.CompleteResponse
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.provider.Complete(ctx, llm.CompleteRequest{
			System:   classifierSystem,
			Prompt:   prompt,
			Document: doc,
		})
		return callErr
	})
	if err != nil {
		return model.DefaultDocumentMeta()
	}

	raw, err := schema.DecodeObject(resp.Text)
	if err != nil {
		return model.DefaultDocumentMeta()
	}

	meta := schema.NormalizeMeta(raw)

	// A declarations-only upload means clause text is unavailable; make
	// sure the caller sees a human-readable warning even when the model
	// did not supply one.
	if meta.DocumentType == model.DocumentSummaryOnly && meta.MissingDocumentWarning == "" {
		meta.MissingDocumentWarning = "Only the declarations/summary pages were provided. " +
			"Endorsement and exclusion details are inferred from form numbers and need " +
			"verification against the full policy."
	}

	return meta
}

func buildClassifyPrompt() string {
	return fmt.Sprintf(`Examine the attached insurance policy document and classify it.

Return a JSON object with exactly these fields:
{
  "document_type": "full" | "summary_only" | "endorsement_only" | "unknown",
  "page_count": <integer or null>,
  "carrier": "<insurance carrier name, or empty string>",
  "form_type": "<policy form family such as HO-3, HO-5, DP-3, or empty string>",
  "endorsement_identifiers": ["<every endorsement form number visible, e.g. %q, %q>"],
  "scan_quality": "good" | "fair" | "poor",
  "missing_document_warning": "<warning text if the full policy is missing, else empty string>"
}

Rules:
- "full" means the complete policy jacket with clause text is present.
- "summary_only" means only declarations/summary pages are present.
- "endorsement_only" means the document is one or more endorsement forms without the base policy.
- List every form number shown in the endorsement schedule, even if its text is absent.
- Rate scan_quality "poor" only if text is substantially illegible.`, "FE-3650", "HO-170TX")
}
