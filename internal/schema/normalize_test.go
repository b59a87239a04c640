package schema

import (
	"testing"

	"github.com/ApexForge13/policyscan/internal/model"
)

func TestDecodeObject_PlainJSON(t *testing.T) {
	obj, err := DecodeObject(`{"carrier": "State Farm"}`)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if obj["carrier"] != "State Farm" {
		t.Errorf("Expected carrier to be parsed, got %v", obj["carrier"])
	}
}

func TestDecodeObject_MarkdownFences(t *testing.T) {
	tests := []struct {
		input string
		desc  string
	}{
		{"```json\n{\"carrier\": \"Allstate\"}\n```", "json fence"},
		{"```\n{\"carrier\": \"Allstate\"}\n```", "bare fence"},
		{"Here is the result:\n\n{\"carrier\": \"Allstate\"}\n\nLet me know if you need more.", "surrounding prose"},
	}

	for _, tt := range tests {
		obj, err := DecodeObject(tt.input)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.desc, err)
			continue
		}
		if obj["carrier"] != "Allstate" {
			t.Errorf("%s: expected carrier Allstate, got %v", tt.desc, obj["carrier"])
		}
	}
}

func TestDecodeObject_Invalid(t *testing.T) {
	tests := []struct {
		input string
		desc  string
	}{
		{"", "empty input"},
		{"I could not analyze this document.", "prose without JSON"},
		{`{"carrier": `, "truncated object"},
		{`[1, 2, 3]`, "array instead of object"},
	}

	for _, tt := range tests {
		if _, err := DecodeObject(tt.input); err == nil {
			t.Errorf("%s: expected error, got none", tt.desc)
		}
	}
}

func TestNormalizeMeta_Defaults(t *testing.T) {
	meta := NormalizeMeta(nil)

	if meta.DocumentType != model.DocumentUnknown {
		t.Errorf("Expected unknown document type, got %s", meta.DocumentType)
	}
	if meta.ScanQuality != model.QualityGood {
		t.Errorf("Expected good scan quality default, got %s", meta.ScanQuality)
	}
	if meta.EndorsementIdentifiers == nil {
		t.Error("Expected non-nil endorsement identifiers")
	}
}

func TestNormalizeMeta_Populated(t *testing.T) {
	meta := NormalizeMeta(map[string]any{
		"document_type":           "summary_only",
		"scan_quality":            "poor",
		"carrier":                 "State Farm",
		"form_type":               "HO-3",
		"page_count":              float64(4),
		"endorsement_identifiers": []any{"FE-3650", "fe-3650", "FE-5703"},
	})

	if meta.DocumentType != model.DocumentSummaryOnly {
		t.Errorf("Expected summary_only, got %s", meta.DocumentType)
	}
	if meta.ScanQuality != model.QualityPoor {
		t.Errorf("Expected poor quality, got %s", meta.ScanQuality)
	}
	if meta.PageCount == nil || *meta.PageCount != 4 {
		t.Errorf("Expected page count 4, got %v", meta.PageCount)
	}
	// Duplicate identifiers deduplicate case-insensitively
	if len(meta.EndorsementIdentifiers) != 2 {
		t.Errorf("Expected 2 unique identifiers, got %v", meta.EndorsementIdentifiers)
	}
}

func TestNormalizeMeta_BadEnumFallsBack(t *testing.T) {
	meta := NormalizeMeta(map[string]any{
		"document_type": "declarations page",
		"scan_quality":  "excellent",
	})

	if meta.DocumentType != model.DocumentUnknown {
		t.Errorf("Expected unknown fallback, got %s", meta.DocumentType)
	}
	if meta.ScanQuality != model.QualityGood {
		t.Errorf("Expected good fallback, got %s", meta.ScanQuality)
	}
}

func TestNormalizeRecord_Empty(t *testing.T) {
	rec := NormalizeRecord(nil)

	if rec.Coverages == nil || rec.Deductibles == nil || rec.Exclusions == nil ||
		rec.Endorsements == nil || rec.Landmines == nil || rec.FavorableProvisions == nil {
		t.Error("Expected all lists non-nil")
	}
	if rec.DepreciationMethod != model.DepreciationUnknown {
		t.Errorf("Expected UNKNOWN depreciation, got %s", rec.DepreciationMethod)
	}
	if rec.RiskLevel != model.RiskMedium {
		t.Errorf("Expected medium risk default, got %s", rec.RiskLevel)
	}
	if rec.OverallConfidence != 0.5 {
		t.Errorf("Expected 0.5 default confidence, got %f", rec.OverallConfidence)
	}
	if rec.SectionConfidence.Deductibles != 0.5 {
		t.Errorf("Expected 0.5 default section confidence, got %f", rec.SectionConfidence.Deductibles)
	}
}

func TestNormalizeRecord_CoercesTypes(t *testing.T) {
	rec := NormalizeRecord(map[string]any{
		"carrier":             "Farmers",
		"policy_number":       float64(123456),
		"depreciation_method": "acv",
		"risk_level":          "catastrophic",
		"overall_confidence":  float64(1.7),
		"deductibles": []any{
			map[string]any{
				"type":          "wind/hail",
				"amount":        "2%",
				"dollar_amount": float64(6000),
				"applies_to":    []any{"wind", "hail"},
			},
			"not an object",
		},
		"section_confidence": map[string]any{
			"deductibles": float64(-0.3),
			"coverages":   float64(0.9),
		},
	})

	if rec.Carrier != "Farmers" {
		t.Errorf("Expected carrier Farmers, got %s", rec.Carrier)
	}
	if rec.PolicyNumber != "123456" {
		t.Errorf("Expected numeric policy number coerced to string, got %q", rec.PolicyNumber)
	}
	if rec.DepreciationMethod != model.DepreciationACV {
		t.Errorf("Expected ACV (case-insensitive), got %s", rec.DepreciationMethod)
	}
	if rec.RiskLevel != model.RiskMedium {
		t.Errorf("Expected undefined risk to fall back to medium, got %s", rec.RiskLevel)
	}
	if rec.OverallConfidence != 1.0 {
		t.Errorf("Expected confidence clamped to 1.0, got %f", rec.OverallConfidence)
	}

	if len(rec.Deductibles) != 1 {
		t.Fatalf("Expected 1 deductible (non-object dropped), got %d", len(rec.Deductibles))
	}
	d := rec.Deductibles[0]
	if d.Type != "wind/hail" || d.Amount != "2%" {
		t.Errorf("Unexpected deductible %+v", d)
	}
	if d.DollarAmount == nil || *d.DollarAmount != 6000 {
		t.Errorf("Expected dollar amount 6000, got %v", d.DollarAmount)
	}
	if len(d.AppliesTo) != 2 {
		t.Errorf("Expected 2 applies_to entries, got %v", d.AppliesTo)
	}

	if rec.SectionConfidence.Deductibles != 0 {
		t.Errorf("Expected negative section confidence clamped to 0, got %f", rec.SectionConfidence.Deductibles)
	}
	if rec.SectionConfidence.Coverages != 0.9 {
		t.Errorf("Expected section confidence 0.9, got %f", rec.SectionConfidence.Coverages)
	}
	// Sections absent from the output keep the default
	if rec.SectionConfidence.Exclusions != 0.5 {
		t.Errorf("Expected absent section to default to 0.5, got %f", rec.SectionConfidence.Exclusions)
	}
}

func TestNormalizeCorrections_Empty(t *testing.T) {
	cs := NormalizeCorrections(nil)
	if !cs.IsEmpty() {
		t.Error("Expected empty correction set from nil input")
	}
	if cs.DepreciationMethod != nil {
		t.Error("Expected nil depreciation method")
	}
}

func TestNormalizeCorrections_Populated(t *testing.T) {
	cs := NormalizeCorrections(map[string]any{
		"depreciation_method": "modified_acv",
		"additional_landmines": []any{
			map[string]any{
				"rule_id":  "cosmetic_damage_exclusion",
				"name":     "Cosmetic Damage Exclusion",
				"severity": "unclear",
			},
		},
		"confidence_overrides": map[string]any{
			"deductibles": float64(0.95),
			"exclusions":  float64(2.5),
		},
		"notes": "Verified wind/hail deductible against declarations.",
	})

	if cs.IsEmpty() {
		t.Fatal("Expected non-empty correction set")
	}
	if cs.DepreciationMethod == nil || *cs.DepreciationMethod != model.DepreciationModifiedACV {
		t.Errorf("Expected MODIFIED_ACV, got %v", cs.DepreciationMethod)
	}
	if len(cs.Landmines) != 1 {
		t.Fatalf("Expected 1 landmine, got %d", len(cs.Landmines))
	}
	if cs.Landmines[0].Severity != model.SeverityInfo {
		t.Errorf("Expected undefined severity to fall back to info, got %s", cs.Landmines[0].Severity)
	}
	if cs.ConfidenceOverrides["deductibles"] != 0.95 {
		t.Errorf("Expected override 0.95, got %f", cs.ConfidenceOverrides["deductibles"])
	}
	if cs.ConfidenceOverrides["exclusions"] != 1.0 {
		t.Errorf("Expected override clamped to 1.0, got %f", cs.ConfidenceOverrides["exclusions"])
	}
}

func TestSeverityFallback(t *testing.T) {
	tests := []struct {
		input string
		want  model.Severity
	}{
		{"critical", model.SeverityCritical},
		{"CRITICAL", model.SeverityCritical},
		{"warning", model.SeverityWarning},
		{"info", model.SeverityInfo},
		{"severe", model.SeverityInfo},
		{"", model.SeverityInfo},
	}

	for _, tt := range tests {
		if got := severity(tt.input); got != tt.want {
			t.Errorf("severity(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}
