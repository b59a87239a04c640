package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ApexForge13/policyscan/internal/kb"
	"github.com/ApexForge13/policyscan/internal/llm"
	"github.com/ApexForge13/policyscan/internal/model"
	"github.com/ApexForge13/policyscan/internal/retry"
	"github.com/ApexForge13/policyscan/internal/schema"
)

const extractorSystem = `You are an expert insurance policy analyst working for a claims supplement team. You extract structured data from policy documents and return ONLY a single JSON object matching the requested schema, no prose and no markdown fences. Quote policy language verbatim in source_language fields. Never invent provisions that are not in the document.`

// Extractor runs the second inference pass: the full structured extraction,
// guided by classifier output and the knowledge base.
type Extractor struct {
	provider  llm.Provider
	retrier   *retry.Executor
	knowledge *kb.KnowledgeBase
}

// NewExtractor creates an extractor over the given provider and rule tables
func NewExtractor(provider llm.Provider, retrier *retry.Executor, knowledge *kb.KnowledgeBase) *Extractor {
	return &Extractor{provider: provider, retrier: retrier, knowledge: knowledge}
}

// Extract produces the structured record for a document. On malformed
// output it issues exactly one repair request replaying the same input plus
// the invalid output; a second decode failure propagates as a stage failure.
func (e *Extractor) Extract(ctx context.Context, doc []byte, meta *model.DocumentMeta, claimHint string) (*model.StructuredRecord, error) {
	prompt := e.buildPrompt(meta, claimHint)

	resp, err := e.complete(ctx, doc, prompt)
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}

	raw, decodeErr := schema.DecodeObject(resp.Text)
	if decodeErr != nil {
		repairPrompt := buildRepairPrompt(prompt, resp.Text, decodeErr)
		resp, err = e.complete(ctx, doc, repairPrompt)
		if err != nil {
			return nil, fmt.Errorf("extraction repair call: %w", err)
		}
		raw, decodeErr = schema.DecodeObject(resp.Text)
		if decodeErr != nil {
			return nil, fmt.Errorf("extraction output unusable after repair: %w", decodeErr)
		}
	}

	rec := schema.NormalizeRecord(raw)
	rec.Provider = e.provider.Name()
	rec.Model = resp.Model
	return rec, nil
}

func (e *Extractor) complete(ctx context.Context, doc []byte, prompt string) (*llm.CompleteResponse, error) {
	var resp *llm.CompleteResponse
	err := e.retrier.Do(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = e.provider.Complete(ctx, llm.CompleteRequest{
			System:   extractorSystem,
			Prompt:   prompt,
			Document: doc,
		})
		return callErr
	})
	return resp, err
}

// buildPrompt assembles extraction guidance from the classifier metadata
// and the knowledge base: baseline exclusions for the form family, search
// hints for every landmine and favorable-provision rule, and summary-only
// handling instructions.
func (e *Extractor) buildPrompt(meta *model.DocumentMeta, claimHint string) string {
	var b strings.Builder

	b.WriteString("Extract a complete structured analysis of the attached insurance policy document.\n\n")

	if claimHint != "" {
		fmt.Fprintf(&b, "The downstream claim concerns: %s. Weight your analysis toward provisions affecting that claim type.\n\n", claimHint)
	}

	if meta.Carrier != "" {
		fmt.Fprintf(&b, "Detected carrier: %s\n", meta.Carrier)
	}
	if meta.FormType != "" {
		fmt.Fprintf(&b, "Detected policy form family: %s\n", meta.FormType)
	}
	if len(meta.EndorsementIdentifiers) > 0 {
		fmt.Fprintf(&b, "Endorsement form numbers visible on the document: %s\n", strings.Join(meta.EndorsementIdentifiers, ", "))
	}
	b.WriteString("\n")

	if baseline := e.knowledge.BaselineExclusionsFor(meta.FormType); len(baseline) > 0 {
		fmt.Fprintf(&b, "Standard %s policies carry these exclusions. Assume each is present unless the document contradicts it:\n", meta.FormType)
		for _, be := range baseline {
			fmt.Fprintf(&b, "- %s: %s\n", be.Name, be.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("Search the document specifically for these claim-reducing provisions (landmines). Report each match in \"landmines\" with its rule_id:\n")
	for _, rule := range e.knowledge.Landmines {
		fmt.Fprintf(&b, "- rule_id %q (%s): look for language like %q\n", rule.ID, rule.Name, strings.Join(rule.SearchHints, "\", \""))
	}
	b.WriteString("\n")

	b.WriteString("Also search for these favorable provisions. Report each match in \"favorable_provisions\" with its provision_id:\n")
	for _, rule := range e.knowledge.FavorableProvisions {
		fmt.Fprintf(&b, "- provision_id %q (%s): look for language like %q\n", rule.ID, rule.Name, strings.Join(rule.SearchHints, "\", \""))
	}
	b.WriteString("\n")

	if meta.DocumentType == model.DocumentSummaryOnly {
		b.WriteString("IMPORTANT: only the declarations/summary pages are available, so full clause text is missing. " +
			"Mark every endorsement and exclusion you report with \"needs_verification\": true and a reason, " +
			"and keep the exclusions and endorsements section confidences low (at most 0.4).\n\n")
	}

	b.WriteString(recordSchemaBlock)

	return b.String()
}

// buildRepairPrompt replays the original instruction with the invalid
// output and a strict-conformance demand.
func buildRepairPrompt(original, invalidOutput string, decodeErr error) string {
	const keep = 2000
	if len(invalidOutput) > keep {
		invalidOutput = invalidOutput[:keep] + "..."
	}
	return fmt.Sprintf(`Your previous output could not be parsed as JSON (%v).

Previous output:
%s

%s

Return ONLY the JSON object. No explanation, no markdown fences, strictly valid JSON.`, decodeErr, invalidOutput, original)
}

const recordSchemaBlock = `Return a JSON object with exactly this shape:
{
  "policy_type": "<e.g. homeowners, dwelling fire, commercial property>",
  "carrier": "<carrier name>",
  "policy_number": "<policy number>",
  "effective_date": "<YYYY-MM-DD or as shown>",
  "expiration_date": "<YYYY-MM-DD or as shown>",
  "named_insured": "<name(s)>",
  "property_address": "<insured property address>",
  "coverages": [{"section": "A", "label": "Dwelling", "limit": "$300,000", "description": ""}],
  "deductibles": [{"type": "all_peril" | "wind_hail" | "hurricane" | "<other>", "amount": "<as displayed, e.g. $1,000 or 2%>", "dollar_amount": <number or null>, "applies_to": ["<peril>"], "needs_verification": false, "verification_reason": ""}],
  "depreciation_method": "RCV" | "ACV" | "MODIFIED_ACV" | "UNKNOWN",
  "depreciation_notes": "<how depreciation is applied and recovered>",
  "exclusions": [{"name": "", "description": "", "source_language": "<verbatim quote>", "severity": "critical" | "warning" | "info", "impact": "", "needs_verification": false, "verification_reason": ""}],
  "endorsements": [{"name": "", "form_number": "", "effective_date": "", "description": "", "source_language": "", "severity": "critical" | "warning" | "info", "impact": "", "needs_verification": false, "verification_reason": ""}],
  "landmines": [{"rule_id": "<id from the landmine list>", "name": "", "severity": "", "category": "", "source_language": "<verbatim quote>", "impact": "", "recommended_action": ""}],
  "favorable_provisions": [{"provision_id": "<id from the favorable list>", "name": "", "source_language": "", "impact": "", "relevance": ""}],
  "summary": "<3-5 sentence plain-language summary for a claims adjuster>",
  "section_confidence": {"policy_meta": 0.0, "coverages": 0.0, "deductibles": 0.0, "depreciation": 0.0, "exclusions": 0.0, "endorsements": 0.0},
  "parse_notes": "<anything ambiguous or illegible>"
}

Confidences are your own certainty per section, in [0,1]. Use empty lists when a section has no entries.`
