package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ApexForge13/policyscan/internal/model"
)

// Renderer writes analysis records as JSON and Markdown reports
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the record as indented JSON
func (r *Renderer) RenderJSON(rec *model.StructuredRecord, path string) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report for the claims team
func (r *Renderer) RenderMarkdown(rec *model.StructuredRecord, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Policy Analysis: %s\n\n", orDash(rec.PolicyNumber))

	if rec.MissingDocumentWarning != "" {
		fmt.Fprintf(&b, "> ⚠️ %s\n\n", rec.MissingDocumentWarning)
	}

	fmt.Fprintf(&b, "**Risk level:** %s · **Overall confidence:** %.0f%%\n\n", strings.ToUpper(string(rec.RiskLevel)), rec.OverallConfidence*100)

	b.WriteString("## Policy\n\n")
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Carrier | %s |\n", orDash(rec.Carrier))
	fmt.Fprintf(&b, "| Policy type | %s |\n", orDash(rec.PolicyType))
	fmt.Fprintf(&b, "| Form | %s |\n", orDash(rec.FormType))
	fmt.Fprintf(&b, "| Named insured | %s |\n", orDash(rec.NamedInsured))
	fmt.Fprintf(&b, "| Property | %s |\n", orDash(rec.PropertyAddr))
	fmt.Fprintf(&b, "| Period | %s to %s |\n", orDash(rec.EffectiveDate), orDash(rec.ExpirationDate))
	fmt.Fprintf(&b, "| Depreciation | %s |\n\n", rec.DepreciationMethod)

	if rec.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", rec.Summary)
	}

	if len(rec.Coverages) > 0 {
		b.WriteString("## Coverages\n\n| Section | Coverage | Limit |\n|---|---|---|\n")
		for _, c := range rec.Coverages {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", c.Section, c.Label, orDash(c.Limit))
		}
		b.WriteString("\n")
	}

	if len(rec.Deductibles) > 0 {
		b.WriteString("## Deductibles\n\n| Type | Displayed | Resolved | Needs verification |\n|---|---|---|---|\n")
		for _, d := range rec.Deductibles {
			resolved := "—"
			if d.DollarAmount != nil {
				resolved = fmt.Sprintf("$%.0f", *d.DollarAmount)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", d.Type, d.Amount, resolved, yesNo(d.NeedsVerification))
		}
		b.WriteString("\n")
	}

	renderLandmines(&b, rec.Landmines)

	if len(rec.FavorableProvisions) > 0 {
		b.WriteString("## Favorable provisions\n\n")
		for _, fp := range rec.FavorableProvisions {
			fmt.Fprintf(&b, "- **%s**: %s\n", fp.Name, fp.Impact)
		}
		b.WriteString("\n")
	}

	if len(rec.Endorsements) > 0 {
		b.WriteString("## Endorsements\n\n| Form | Name | Severity | Needs verification |\n|---|---|---|---|\n")
		for _, e := range rec.Endorsements {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", orDash(e.FormNumber), e.Name, e.Severity, yesNo(e.NeedsVerification))
		}
		b.WriteString("\n")
	}

	if len(rec.Exclusions) > 0 {
		b.WriteString("## Exclusions\n\n| Name | Severity | Needs verification |\n|---|---|---|\n")
		for _, ex := range rec.Exclusions {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", ex.Name, ex.Severity, yesNo(ex.NeedsVerification))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Confidence by section\n\n| Section | Confidence |\n|---|---|\n")
	sc := rec.SectionConfidence
	for _, row := range []struct {
		name  string
		value float64
	}{
		{"Policy metadata", sc.PolicyMeta},
		{"Coverages", sc.Coverages},
		{"Deductibles", sc.Deductibles},
		{"Depreciation", sc.Depreciation},
		{"Exclusions", sc.Exclusions},
		{"Endorsements", sc.Endorsements},
	} {
		fmt.Fprintf(&b, "| %s | %.0f%% |\n", row.name, row.value*100)
	}
	b.WriteString("\n")

	if rec.ParseNotes != "" {
		fmt.Fprintf(&b, "## Notes\n\n%s\n\n", rec.ParseNotes)
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "---\n\n*Generated by policyscan (analysis %s, %s). Automated extraction; verify critical provisions against the policy before relying on them.*\n",
			rec.AnalysisID, rec.AnalyzedAt.Format("2006-01-02 15:04 UTC"))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

func renderLandmines(b *strings.Builder, landmines []model.Landmine) {
	if len(landmines) == 0 {
		return
	}

	b.WriteString("## Landmines\n\n")
	for _, sev := range []model.Severity{model.SeverityCritical, model.SeverityWarning, model.SeverityInfo} {
		for _, lm := range landmines {
			if lm.Severity != sev {
				continue
			}
			fmt.Fprintf(b, "### %s %s\n\n", severityMarker(sev), lm.Name)
			if lm.SourceLanguage != "" {
				fmt.Fprintf(b, "> %s\n\n", lm.SourceLanguage)
			}
			if lm.Impact != "" {
				fmt.Fprintf(b, "%s\n\n", lm.Impact)
			}
			if lm.RecommendedAction != "" {
				fmt.Fprintf(b, "**Action:** %s\n\n", lm.RecommendedAction)
			}
		}
	}
}

// RenderSummary prints a one-screen result summary to stderr
func (r *Renderer) RenderSummary(rec *model.StructuredRecord) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Policy:      %s (%s)\n", orDash(rec.PolicyNumber), orDash(rec.Carrier))
	fmt.Fprintf(os.Stderr, "  Risk level:  %s\n", strings.ToUpper(string(rec.RiskLevel)))
	fmt.Fprintf(os.Stderr, "  Confidence:  %.0f%%\n", rec.OverallConfidence*100)
	fmt.Fprintf(os.Stderr, "  Landmines:   %d (%d critical)\n", len(rec.Landmines), countCritical(rec.Landmines))
	fmt.Fprintf(os.Stderr, "  Favorable:   %d\n", len(rec.FavorableProvisions))
	if rec.MissingDocumentWarning != "" {
		fmt.Fprintf(os.Stderr, "  ⚠️  %s\n", rec.MissingDocumentWarning)
	}
	fmt.Fprintf(os.Stderr, "\n")
}

func countCritical(landmines []model.Landmine) int {
	count := 0
	for _, lm := range landmines {
		if lm.Severity == model.SeverityCritical {
			count++
		}
	}
	return count
}

func severityMarker(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityWarning:
		return "🟡"
	default:
		return "🔵"
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
