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

const verifierSystem = `You are a senior insurance policy reviewer double-checking a junior analyst's extraction. You return ONLY a single JSON object of corrections and additions, no prose and no markdown fences. Report only what the extraction got wrong or missed; do not restate correct findings.`

// Verifier runs the third inference pass: a targeted second look at the
// sections that most often carry mistakes, returning a small correction
// set rather than a full re-extraction.
type Verifier struct {
	provider llm.Provider
	retrier  *retry.Executor
}

// NewVerifier creates a verifier over the given provider
func NewVerifier(provider llm.Provider, retrier *retry.Executor) *Verifier {
	return &Verifier{provider: provider, retrier: retrier}
}

// Verify reviews the current record against the document. Verification is
// strictly additive: any failure here is reported to the caller, which
// skips the merge and keeps the prior result.
func (v *Verifier) Verify(ctx context.Context, doc []byte, rec *model.StructuredRecord) (*model.CorrectionSet, error) {
	prompt := buildVerifyPrompt(rec)

	var resp *llm.CompleteResponse
	err := v.retrier.Do(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = v.provider.Complete(ctx, llm.CompleteRequest{
			System:   verifierSystem,
			Prompt:   prompt,
			Document: doc,
		})
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("verification call: %w", err)
	}

	raw, err := schema.DecodeObject(resp.Text)
	if err != nil {
		return nil, fmt.Errorf("verification output: %w", err)
	}

	return schema.NormalizeCorrections(raw), nil
}

// buildVerifyPrompt condenses the record's deductibles, endorsements,
// exclusions, and depreciation into a short review summary. The full
// record stays out of the prompt to keep the pass small and focused.
func buildVerifyPrompt(rec *model.StructuredRecord) string {
	var b strings.Builder

	b.WriteString("Re-examine the attached policy document and review this extraction summary for errors and omissions.\n\n")

	b.WriteString("EXTRACTED DEDUCTIBLES:\n")
	if len(rec.Deductibles) == 0 {
		b.WriteString("(none)\n")
	}
	for _, d := range rec.Deductibles {
		fmt.Fprintf(&b, "- type=%s amount=%s applies_to=%s\n", d.Type, d.Amount, strings.Join(d.AppliesTo, ","))
	}

	b.WriteString("\nEXTRACTED ENDORSEMENTS:\n")
	if len(rec.Endorsements) == 0 {
		b.WriteString("(none)\n")
	}
	for _, e := range rec.Endorsements {
		fmt.Fprintf(&b, "- %s (form %s, severity %s)\n", e.Name, e.FormNumber, e.Severity)
	}

	b.WriteString("\nEXTRACTED EXCLUSIONS:\n")
	if len(rec.Exclusions) == 0 {
		b.WriteString("(none)\n")
	}
	for _, ex := range rec.Exclusions {
		fmt.Fprintf(&b, "- %s (severity %s)\n", ex.Name, ex.Severity)
	}

	fmt.Fprintf(&b, "\nEXTRACTED DEPRECIATION: method=%s notes=%s\n\n", rec.DepreciationMethod, rec.DepreciationNotes)

	b.WriteString(`Check the document for: deductibles the summary missed (especially wind/hail or hurricane percentage deductibles), endorsements listed on the schedule but absent above, exclusions in the policy jacket absent above, claim-reducing provisions (report as landmines with rule_id where known), favorable provisions, and whether the depreciation method is right.

Return a JSON object with exactly this shape (empty lists / null where you found nothing):
{
  "depreciation_method": "RCV" | "ACV" | "MODIFIED_ACV" | null,
  "depreciation_notes": "<corrected notes or null>",
  "additional_deductibles": [{"type": "", "amount": "", "dollar_amount": null, "applies_to": [], "needs_verification": false, "verification_reason": ""}],
  "additional_endorsements": [{"name": "", "form_number": "", "description": "", "source_language": "", "severity": "info", "impact": "", "needs_verification": false, "verification_reason": ""}],
  "additional_exclusions": [{"name": "", "description": "", "source_language": "", "severity": "info", "impact": "", "needs_verification": false, "verification_reason": ""}],
  "additional_landmines": [{"rule_id": "", "name": "", "severity": "", "category": "", "source_language": "", "impact": "", "recommended_action": ""}],
  "additional_favorable_provisions": [{"provision_id": "", "name": "", "source_language": "", "impact": "", "relevance": ""}],
  "confidence_overrides": {"deductibles": 0.9},
  "notes": "<free-text review notes, or empty string>"
}`)

	return b.String()
}

// MergeCorrections folds a correction set into the record without
// duplicating existing entries. Deterministic and idempotent; run only
// when verification succeeded.
//
// Dedup keys: deductible type (case-sensitive exact), endorsement and
// exclusion name (case-insensitive), landmine rule id, provision id.
func MergeCorrections(rec *model.StructuredRecord, cs *model.CorrectionSet, knowledge *kb.KnowledgeBase) {
	if rec == nil || cs == nil {
		return
	}

	if cs.DepreciationMethod != nil {
		rec.DepreciationMethod = *cs.DepreciationMethod
	}
	if cs.DepreciationNotes != nil {
		rec.DepreciationNotes = *cs.DepreciationNotes
	}

	existingTypes := make(map[string]bool, len(rec.Deductibles))
	for _, d := range rec.Deductibles {
		existingTypes[d.Type] = true
	}
	for _, d := range cs.Deductibles {
		if d.Type == "" || existingTypes[d.Type] {
			continue
		}
		existingTypes[d.Type] = true
		rec.Deductibles = append(rec.Deductibles, d)
	}

	for _, e := range cs.Endorsements {
		if e.Name == "" || hasEndorsementNamed(rec.Endorsements, e.Name) {
			continue
		}
		rec.Endorsements = append(rec.Endorsements, e)
	}

	existingExclusions := make(map[string]bool, len(rec.Exclusions))
	for _, ex := range rec.Exclusions {
		existingExclusions[strings.ToLower(strings.TrimSpace(ex.Name))] = true
	}
	for _, ex := range cs.Exclusions {
		key := strings.ToLower(strings.TrimSpace(ex.Name))
		if key == "" || existingExclusions[key] {
			continue
		}
		existingExclusions[key] = true
		rec.Exclusions = append(rec.Exclusions, ex)
	}

	existingRules := make(map[string]bool, len(rec.Landmines))
	for _, lm := range rec.Landmines {
		existingRules[lm.RuleID] = true
	}
	for _, lm := range cs.Landmines {
		if lm.RuleID == "" || existingRules[lm.RuleID] {
			continue
		}
		existingRules[lm.RuleID] = true
		rec.Landmines = append(rec.Landmines, lm)
	}
	// Late additions get the same knowledge-base taxonomy as pass-2 output
	if knowledge != nil {
		rec.Landmines = knowledge.NormalizeSeverity(rec.Landmines)
	}

	existingProvisions := make(map[string]bool, len(rec.FavorableProvisions))
	for _, fp := range rec.FavorableProvisions {
		existingProvisions[fp.ProvisionID] = true
	}
	for _, fp := range cs.FavorableProvisions {
		if fp.ProvisionID == "" || existingProvisions[fp.ProvisionID] {
			continue
		}
		existingProvisions[fp.ProvisionID] = true
		rec.FavorableProvisions = append(rec.FavorableProvisions, fp)
	}

	for section, value := range cs.ConfidenceOverrides {
		switch strings.ToLower(section) {
		case "policy_meta":
			rec.SectionConfidence.PolicyMeta = value
		case "coverages":
			rec.SectionConfidence.Coverages = value
		case "deductibles":
			rec.SectionConfidence.Deductibles = value
		case "depreciation":
			rec.SectionConfidence.Depreciation = value
		case "exclusions":
			rec.SectionConfidence.Exclusions = value
		case "endorsements":
			rec.SectionConfidence.Endorsements = value
		}
	}

	if cs.Notes != "" {
		if rec.ParseNotes != "" {
			rec.ParseNotes += " "
		}
		rec.ParseNotes += "Verification: " + cs.Notes
	}
}
