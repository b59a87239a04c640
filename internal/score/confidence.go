// Package score holds the deterministic post-extraction math: confidence
// aggregation, risk classification, and percentage-deductible resolution.
package score

import (
	"github.com/ApexForge13/policyscan/internal/model"
)

// Section weights for the overall confidence. Deductibles and exclusions
// weigh more because they move supplement value the most.
const (
	weightPolicyMeta   = 0.15
	weightCoverages    = 0.15
	weightDeductibles  = 0.20
	weightDepreciation = 0.15
	weightExclusions   = 0.20
	weightEndorsements = 0.15
)

// Overall computes the weighted overall confidence from the per-section
// confidences
func Overall(sc model.SectionConfidence) float64 {
	return weightPolicyMeta*sc.PolicyMeta +
		weightCoverages*sc.Coverages +
		weightDeductibles*sc.Deductibles +
		weightDepreciation*sc.Depreciation +
		weightExclusions*sc.Exclusions +
		weightEndorsements*sc.Endorsements
}

// Risk derives the risk tier from landmine severities: any critical
// landmine means high, else any warning means medium, else low.
func Risk(landmines []model.Landmine) model.RiskLevel {
	level := model.RiskLow
	for _, lm := range landmines {
		switch lm.Severity {
		case model.SeverityCritical:
			return model.RiskHigh
		case model.SeverityWarning:
			level = model.RiskMedium
		}
	}
	return level
}

// Finalize recomputes the record's overall confidence and risk level.
// Called once, after the verifier merge, so late-added landmines affect
// the final tier.
func Finalize(rec *model.StructuredRecord) {
	rec.OverallConfidence = Overall(rec.SectionConfidence)
	rec.RiskLevel = Risk(rec.Landmines)
}
