package extract

import (
	"fmt"
	"strings"

	"github.com/ApexForge13/policyscan/internal/kb"
	"github.com/ApexForge13/policyscan/internal/model"
)

// Enrich cross-references the classifier-detected endorsement identifiers
// against the carrier form table and injects anything the extractor missed.
// Known-dangerous endorsements are never silently dropped just because the
// extractor didn't surface them from a declarations-page-only document.
//
// Pure and idempotent: running it twice never duplicates an entry.
func Enrich(rec *model.StructuredRecord, meta *model.DocumentMeta, knowledge *kb.KnowledgeBase) {
	if rec == nil || meta == nil || knowledge == nil {
		return
	}

	for _, ident := range meta.EndorsementIdentifiers {
		form := knowledge.LookupForm(meta.Carrier, ident)
		if form == nil {
			continue
		}

		if !hasEndorsementNamed(rec.Endorsements, form.Name) {
			rec.Endorsements = append(rec.Endorsements, model.Endorsement{
				Name:               form.Name,
				FormNumber:         form.FormNumber,
				Description:        form.Effect,
				Severity:           form.Severity,
				Impact:             form.Effect,
				NeedsVerification:  true,
				VerificationReason: enrichReason(meta, form.FormNumber),
			})
		}

		if affectsExclusions(form) && !exclusionOverlaps(rec.Exclusions, form.Name) {
			rec.Exclusions = append(rec.Exclusions, model.Exclusion{
				Name:               form.Name,
				Description:        form.Effect,
				Severity:           form.Severity,
				Impact:             form.Effect,
				NeedsVerification:  true,
				VerificationReason: enrichReason(meta, form.FormNumber),
			})
		}
	}
}

func enrichReason(meta *model.DocumentMeta, formNumber string) string {
	if meta.DocumentType == model.DocumentSummaryOnly {
		return fmt.Sprintf("Identified from form number %s on the declarations page; full clause text was not available.", formNumber)
	}
	return fmt.Sprintf("Added from the carrier form table for %s; not surfaced by extraction.", formNumber)
}

func affectsExclusions(form *kb.CarrierEndorsementForm) bool {
	for _, section := range form.AffectedSections {
		if strings.EqualFold(section, "exclusions") {
			return true
		}
	}
	return false
}

func hasEndorsementNamed(endorsements []model.Endorsement, name string) bool {
	for _, e := range endorsements {
		if strings.EqualFold(strings.TrimSpace(e.Name), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// exclusionOverlaps reports whether any existing exclusion name overlaps
// the rule name (case-insensitive containment in either direction)
func exclusionOverlaps(exclusions []model.Exclusion, name string) bool {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return false
	}
	for _, ex := range exclusions {
		have := strings.ToLower(strings.TrimSpace(ex.Name))
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return true
		}
	}
	return false
}
