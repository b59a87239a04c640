package score

import (
	"math"
	"testing"

	"github.com/ApexForge13/policyscan/internal/model"
)

func TestOverall_WeightedSum(t *testing.T) {
	sc := model.SectionConfidence{
		PolicyMeta:   1.0,
		Coverages:    1.0,
		Deductibles:  1.0,
		Depreciation: 1.0,
		Exclusions:   1.0,
		Endorsements: 1.0,
	}

	// Weights sum to 1.0, so uniform confidence passes through
	if got := Overall(sc); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Expected 1.0 for all-ones, got %f", got)
	}

	sc = model.DefaultSectionConfidence()
	if got := Overall(sc); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected 0.5 for defaults, got %f", got)
	}
}

func TestOverall_HeavySectionsDominate(t *testing.T) {
	// Deductibles and exclusions carry 0.20 each
	sc := model.SectionConfidence{
		PolicyMeta:   0,
		Coverages:    0,
		Deductibles:  1.0,
		Depreciation: 0,
		Exclusions:   1.0,
		Endorsements: 0,
	}

	if got := Overall(sc); math.Abs(got-0.40) > 1e-9 {
		t.Errorf("Expected 0.40, got %f", got)
	}
}

func TestRisk(t *testing.T) {
	tests := []struct {
		landmines []model.Landmine
		want      model.RiskLevel
		desc      string
	}{
		{nil, model.RiskLow, "no landmines"},
		{
			[]model.Landmine{{Severity: model.SeverityInfo}},
			model.RiskLow,
			"info only",
		},
		{
			[]model.Landmine{{Severity: model.SeverityWarning}},
			model.RiskMedium,
			"warning",
		},
		{
			[]model.Landmine{
				{Severity: model.SeverityInfo},
				{Severity: model.SeverityWarning},
				{Severity: model.SeverityCritical},
			},
			model.RiskHigh,
			"critical anywhere wins",
		},
		{
			[]model.Landmine{
				{Severity: model.SeverityCritical},
				{Severity: model.SeverityInfo},
			},
			model.RiskHigh,
			"critical first",
		},
	}

	for _, tt := range tests {
		if got := Risk(tt.landmines); got != tt.want {
			t.Errorf("%s: Risk() = %s, want %s", tt.desc, got, tt.want)
		}
	}
}

func TestFinalize(t *testing.T) {
	rec := &model.StructuredRecord{
		SectionConfidence: model.SectionConfidence{
			PolicyMeta:   0.9,
			Coverages:    0.9,
			Deductibles:  0.9,
			Depreciation: 0.9,
			Exclusions:   0.9,
			Endorsements: 0.9,
		},
		Landmines: []model.Landmine{
			{RuleID: "acv_roof_schedule", Severity: model.SeverityCritical},
		},
		RiskLevel:         model.RiskLow,
		OverallConfidence: 0,
	}

	Finalize(rec)

	if math.Abs(rec.OverallConfidence-0.9) > 1e-9 {
		t.Errorf("Expected overall 0.9, got %f", rec.OverallConfidence)
	}
	if rec.RiskLevel != model.RiskHigh {
		t.Errorf("Expected high risk from critical landmine, got %s", rec.RiskLevel)
	}
}
