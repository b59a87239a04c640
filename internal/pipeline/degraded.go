package pipeline

import (
	"time"

	"github.com/ApexForge13/policyscan/internal/model"
	"github.com/google/uuid"
)

// BuildDegraded produces the explicitly-flagged fallback record returned
// when extraction cannot complete: fully typed, near-empty, risk level
// medium (unknown is not safe), zero confidence, with whatever classifier
// metadata was obtained before the failure carried through.
func BuildDegraded(meta *model.DocumentMeta, warning string) *model.StructuredRecord {
	rec := &model.StructuredRecord{
		AnalysisID: uuid.NewString(),
		AnalyzedAt: time.Now().UTC(),

		Coverages:              []model.Coverage{},
		Deductibles:            []model.Deductible{},
		Exclusions:             []model.Exclusion{},
		Endorsements:           []model.Endorsement{},
		Landmines:              []model.Landmine{},
		FavorableProvisions:    []model.FavorableProvision{},
		EndorsementIdentifiers: []string{},

		DepreciationMethod: model.DepreciationUnknown,
		RiskLevel:          model.RiskMedium,
		SectionConfidence:  model.SectionConfidence{},
		OverallConfidence:  0,

		DocumentType: model.DocumentUnknown,
		ScanQuality:  model.QualityGood,

		ParseNotes: "Automated analysis could not complete; this record is a placeholder for manual review.",
	}

	rec.ApplyMeta(meta)
	if warning != "" {
		rec.MissingDocumentWarning = warning
	}

	return rec
}
