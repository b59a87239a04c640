// Package schema coerces arbitrary decoded inference output into total,
// fully-populated records. Every field is optional on input and present on
// output: anything absent, wrong-typed, or out-of-range is replaced by a
// safe default, so no downstream component ever branches on "field missing".
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ApexForge13/policyscan/internal/model"
)

// DecodeObject parses inference output as a single JSON object. Models
// routinely wrap JSON in markdown fences or prose; the decoder recovers the
// outermost object before unmarshalling.
func DecodeObject(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)

	// Strip markdown code fences
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	// Recover the outermost object from surrounding prose
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in output")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &obj); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	return obj, nil
}

// NormalizeMeta coerces classifier output into a total DocumentMeta
func NormalizeMeta(raw map[string]any) *model.DocumentMeta {
	meta := model.DefaultDocumentMeta()
	if raw == nil {
		return meta
	}

	meta.DocumentType = documentType(str(raw, "document_type"))
	meta.ScanQuality = scanQuality(str(raw, "scan_quality"))
	meta.Carrier = str(raw, "carrier")
	meta.FormType = str(raw, "form_type")
	meta.MissingDocumentWarning = str(raw, "missing_document_warning")
	meta.EndorsementIdentifiers = uniqueStrings(stringList(raw, "endorsement_identifiers"))

	if n, ok := intVal(raw, "page_count"); ok && n > 0 {
		meta.PageCount = &n
	}

	return meta
}

// NormalizeRecord coerces extractor output into a total StructuredRecord:
// every list non-nil, every enum a defined variant, every confidence
// clamped to [0,1].
func NormalizeRecord(raw map[string]any) *model.StructuredRecord {
	rec := &model.StructuredRecord{
		Coverages:              []model.Coverage{},
		Deductibles:            []model.Deductible{},
		Exclusions:             []model.Exclusion{},
		Endorsements:           []model.Endorsement{},
		Landmines:              []model.Landmine{},
		FavorableProvisions:    []model.FavorableProvision{},
		EndorsementIdentifiers: []string{},
		DepreciationMethod:     model.DepreciationUnknown,
		RiskLevel:              model.RiskMedium,
		DocumentType:           model.DocumentUnknown,
		ScanQuality:            model.QualityGood,
		SectionConfidence:      model.DefaultSectionConfidence(),
		OverallConfidence:      0.5,
	}
	if raw == nil {
		return rec
	}

	rec.PolicyType = str(raw, "policy_type")
	rec.Carrier = str(raw, "carrier")
	rec.PolicyNumber = str(raw, "policy_number")
	rec.EffectiveDate = str(raw, "effective_date")
	rec.ExpirationDate = str(raw, "expiration_date")
	rec.NamedInsured = str(raw, "named_insured")
	rec.PropertyAddr = str(raw, "property_address")
	rec.Summary = str(raw, "summary")
	rec.ParseNotes = str(raw, "parse_notes")
	rec.FormType = str(raw, "form_type")

	rec.DepreciationMethod = depreciationMethod(str(raw, "depreciation_method"))
	rec.DepreciationNotes = str(raw, "depreciation_notes")
	rec.RiskLevel = riskLevel(str(raw, "risk_level"))

	for _, m := range objectList(raw, "coverages") {
		rec.Coverages = append(rec.Coverages, normalizeCoverage(m))
	}
	for _, m := range objectList(raw, "deductibles") {
		rec.Deductibles = append(rec.Deductibles, NormalizeDeductible(m))
	}
	for _, m := range objectList(raw, "exclusions") {
		rec.Exclusions = append(rec.Exclusions, NormalizeExclusion(m))
	}
	for _, m := range objectList(raw, "endorsements") {
		rec.Endorsements = append(rec.Endorsements, NormalizeEndorsement(m))
	}
	for _, m := range objectList(raw, "landmines") {
		rec.Landmines = append(rec.Landmines, NormalizeLandmine(m))
	}
	for _, m := range objectList(raw, "favorable_provisions") {
		rec.FavorableProvisions = append(rec.FavorableProvisions, NormalizeFavorable(m))
	}

	if sc, ok := raw["section_confidence"].(map[string]any); ok {
		rec.SectionConfidence = normalizeSectionConfidence(sc)
	}
	if f, ok := floatVal(raw, "overall_confidence"); ok {
		rec.OverallConfidence = clamp01(f)
	}

	return rec
}

// NormalizeCorrections coerces verifier output into a CorrectionSet.
// Absent fields stay nil/empty so the merge step treats them as "no change".
func NormalizeCorrections(raw map[string]any) *model.CorrectionSet {
	cs := &model.CorrectionSet{}
	if raw == nil {
		return cs
	}

	if s := str(raw, "depreciation_method"); s != "" {
		method := depreciationMethod(s)
		cs.DepreciationMethod = &method
	}
	if s := str(raw, "depreciation_notes"); s != "" {
		cs.DepreciationNotes = &s
	}
	cs.Notes = str(raw, "notes")

	for _, m := range objectList(raw, "additional_deductibles") {
		cs.Deductibles = append(cs.Deductibles, NormalizeDeductible(m))
	}
	for _, m := range objectList(raw, "additional_endorsements") {
		cs.Endorsements = append(cs.Endorsements, NormalizeEndorsement(m))
	}
	for _, m := range objectList(raw, "additional_exclusions") {
		cs.Exclusions = append(cs.Exclusions, NormalizeExclusion(m))
	}
	for _, m := range objectList(raw, "additional_landmines") {
		cs.Landmines = append(cs.Landmines, NormalizeLandmine(m))
	}
	for _, m := range objectList(raw, "additional_favorable_provisions") {
		cs.FavorableProvisions = append(cs.FavorableProvisions, NormalizeFavorable(m))
	}

	if overrides, ok := raw["confidence_overrides"].(map[string]any); ok {
		cs.ConfidenceOverrides = make(map[string]float64, len(overrides))
		for section, v := range overrides {
			if f, ok := toFloat(v); ok {
				cs.ConfidenceOverrides[section] = clamp01(f)
			}
		}
	}

	return cs
}

func normalizeCoverage(m map[string]any) model.Coverage {
	return model.Coverage{
		Section:     str(m, "section"),
		Label:       str(m, "label"),
		Limit:       str(m, "limit"),
		Description: str(m, "description"),
	}
}

// NormalizeDeductible coerces one deductible entry
func NormalizeDeductible(m map[string]any) model.Deductible {
	d := model.Deductible{
		Type:               str(m, "type"),
		Amount:             str(m, "amount"),
		AppliesTo:          stringList(m, "applies_to"),
		NeedsVerification:  boolVal(m, "needs_verification"),
		VerificationReason: str(m, "verification_reason"),
	}
	if f, ok := floatVal(m, "dollar_amount"); ok && f > 0 {
		d.DollarAmount = &f
	}
	return d
}

// NormalizeExclusion coerces one exclusion entry
func NormalizeExclusion(m map[string]any) model.Exclusion {
	return model.Exclusion{
		Name:               str(m, "name"),
		Description:        str(m, "description"),
		SourceLanguage:     str(m, "source_language"),
		Severity:           severity(str(m, "severity")),
		Impact:             str(m, "impact"),
		NeedsVerification:  boolVal(m, "needs_verification"),
		VerificationReason: str(m, "verification_reason"),
	}
}

// NormalizeEndorsement coerces one endorsement entry
func NormalizeEndorsement(m map[string]any) model.Endorsement {
	return model.Endorsement{
		Name:               str(m, "name"),
		FormNumber:         str(m, "form_number"),
		EffectiveDate:      str(m, "effective_date"),
		Description:        str(m, "description"),
		SourceLanguage:     str(m, "source_language"),
		Severity:           severity(str(m, "severity")),
		Impact:             str(m, "impact"),
		NeedsVerification:  boolVal(m, "needs_verification"),
		VerificationReason: str(m, "verification_reason"),
	}
}

// NormalizeLandmine coerces one landmine entry
func NormalizeLandmine(m map[string]any) model.Landmine {
	return model.Landmine{
		RuleID:            str(m, "rule_id"),
		Name:              str(m, "name"),
		Severity:          severity(str(m, "severity")),
		Category:          str(m, "category"),
		SourceLanguage:    str(m, "source_language"),
		Impact:            str(m, "impact"),
		RecommendedAction: str(m, "recommended_action"),
	}
}

// NormalizeFavorable coerces one favorable-provision entry
func NormalizeFavorable(m map[string]any) model.FavorableProvision {
	return model.FavorableProvision{
		ProvisionID:    str(m, "provision_id"),
		Name:           str(m, "name"),
		SourceLanguage: str(m, "source_language"),
		Impact:         str(m, "impact"),
		Relevance:      str(m, "relevance"),
	}
}

func normalizeSectionConfidence(m map[string]any) model.SectionConfidence {
	sc := model.DefaultSectionConfidence()
	if f, ok := floatVal(m, "policy_meta"); ok {
		sc.PolicyMeta = clamp01(f)
	}
	if f, ok := floatVal(m, "coverages"); ok {
		sc.Coverages = clamp01(f)
	}
	if f, ok := floatVal(m, "deductibles"); ok {
		sc.Deductibles = clamp01(f)
	}
	if f, ok := floatVal(m, "depreciation"); ok {
		sc.Depreciation = clamp01(f)
	}
	if f, ok := floatVal(m, "exclusions"); ok {
		sc.Exclusions = clamp01(f)
	}
	if f, ok := floatVal(m, "endorsements"); ok {
		sc.Endorsements = clamp01(f)
	}
	return sc
}

// Enum coercion: unknown text falls back to the defined default variant

func documentType(s string) model.DocumentType {
	switch model.DocumentType(strings.ToLower(strings.TrimSpace(s))) {
	case model.DocumentFull:
		return model.DocumentFull
	case model.DocumentSummaryOnly:
		return model.DocumentSummaryOnly
	case model.DocumentEndorsementOnly:
		return model.DocumentEndorsementOnly
	default:
		return model.DocumentUnknown
	}
}

func scanQuality(s string) model.ScanQuality {
	switch model.ScanQuality(strings.ToLower(strings.TrimSpace(s))) {
	case model.QualityGood:
		return model.QualityGood
	case model.QualityFair:
		return model.QualityFair
	case model.QualityPoor:
		return model.QualityPoor
	default:
		return model.QualityGood
	}
}

func depreciationMethod(s string) model.DepreciationMethod {
	switch model.DepreciationMethod(strings.ToUpper(strings.TrimSpace(s))) {
	case model.DepreciationRCV:
		return model.DepreciationRCV
	case model.DepreciationACV:
		return model.DepreciationACV
	case model.DepreciationModifiedACV:
		return model.DepreciationModifiedACV
	default:
		return model.DepreciationUnknown
	}
}

func severity(s string) model.Severity {
	switch model.Severity(strings.ToLower(strings.TrimSpace(s))) {
	case model.SeverityCritical:
		return model.SeverityCritical
	case model.SeverityWarning:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

func riskLevel(s string) model.RiskLevel {
	switch model.RiskLevel(strings.ToLower(strings.TrimSpace(s))) {
	case model.RiskLow:
		return model.RiskLow
	case model.RiskHigh:
		return model.RiskHigh
	default:
		return model.RiskMedium
	}
}

// Loose accessors over decoded JSON

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	default:
		return ""
	}
}

func boolVal(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	b, _ := m[key].(bool)
	return b
}

func floatVal(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	return toFloat(m[key])
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

func intVal(m map[string]any, key string) (int, bool) {
	f, ok := floatVal(m, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func stringList(m map[string]any, key string) []string {
	var out []string
	if m == nil {
		return out
	}
	items, ok := m[key].([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func objectList(m map[string]any, key string) []map[string]any {
	var out []map[string]any
	if m == nil {
		return out
	}
	items, ok := m[key].([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// uniqueStrings preserves first-seen order
func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(s)
		if !seen[key] {
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
