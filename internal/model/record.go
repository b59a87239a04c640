package model

import "time"

// DocumentType classifies what kind of policy document was uploaded
type DocumentType string

const (
	DocumentFull            DocumentType = "full"
	DocumentSummaryOnly     DocumentType = "summary_only"
	DocumentEndorsementOnly DocumentType = "endorsement_only"
	DocumentUnknown         DocumentType = "unknown"
)

// ScanQuality rates the legibility of the scanned document
type ScanQuality string

const (
	QualityGood ScanQuality = "good"
	QualityFair ScanQuality = "fair"
	QualityPoor ScanQuality = "poor"
)

// DepreciationMethod describes how the policy settles depreciation
type DepreciationMethod string

const (
	DepreciationRCV         DepreciationMethod = "RCV"
	DepreciationACV         DepreciationMethod = "ACV"
	DepreciationModifiedACV DepreciationMethod = "MODIFIED_ACV"
	DepreciationUnknown     DepreciationMethod = "UNKNOWN"
)

// RiskLevel is the overall supplement-risk tier for the policy
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Severity indicates how badly a provision can hurt the claim
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// DocumentMeta is the classifier's lightweight first-pass output.
// It is produced once and treated as immutable by every later stage.
type DocumentMeta struct {
	DocumentType           DocumentType `json:"document_type"`
	PageCount              *int         `json:"page_count,omitempty"`
	Carrier                string       `json:"carrier,omitempty"`
	FormType               string       `json:"form_type,omitempty"` // policy family, e.g. "HO-3"
	EndorsementIdentifiers []string     `json:"endorsement_identifiers"`
	ScanQuality            ScanQuality  `json:"scan_quality"`
	MissingDocumentWarning string       `json:"missing_document_warning,omitempty"`
}

// DefaultDocumentMeta returns the advisory fallback used when
// classification fails or produces unusable output.
func DefaultDocumentMeta() *DocumentMeta {
	return &DocumentMeta{
		DocumentType:           DocumentUnknown,
		EndorsementIdentifiers: []string{},
		ScanQuality:            QualityGood,
	}
}

// Coverage is a single coverage section (A, B, C...) from the declarations
type Coverage struct {
	Section     string `json:"section"`
	Label       string `json:"label"`
	Limit       string `json:"limit,omitempty"` // free-text money string
	Description string `json:"description,omitempty"`
}

// Deductible describes one deductible, possibly percentage-based
type Deductible struct {
	Type               string   `json:"type"`
	Amount             string   `json:"amount"` // as displayed in the policy
	DollarAmount       *float64 `json:"dollar_amount,omitempty"`
	AppliesTo          []string `json:"applies_to,omitempty"`
	NeedsVerification  bool     `json:"needs_verification"`
	VerificationReason string   `json:"verification_reason,omitempty"`
}

// Exclusion is a provision that removes or limits coverage
type Exclusion struct {
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	SourceLanguage     string   `json:"source_language,omitempty"`
	Severity           Severity `json:"severity"`
	Impact             string   `json:"impact,omitempty"`
	NeedsVerification  bool     `json:"needs_verification"`
	VerificationReason string   `json:"verification_reason,omitempty"`
}

// Endorsement is a form attached to the base policy that modifies it
type Endorsement struct {
	Name               string   `json:"name"`
	FormNumber         string   `json:"form_number,omitempty"`
	EffectiveDate      string   `json:"effective_date,omitempty"`
	Description        string   `json:"description,omitempty"`
	SourceLanguage     string   `json:"source_language,omitempty"`
	Severity           Severity `json:"severity"`
	Impact             string   `json:"impact,omitempty"`
	NeedsVerification  bool     `json:"needs_verification"`
	VerificationReason string   `json:"verification_reason,omitempty"`
}

// Landmine is a provision known to materially reduce supplement value.
// Severity and Category always come from the knowledge-base rule, never
// from inference output, so the taxonomy stays consistent.
type Landmine struct {
	RuleID            string   `json:"rule_id"`
	Name              string   `json:"name"`
	Severity          Severity `json:"severity"`
	Category          string   `json:"category"`
	SourceLanguage    string   `json:"source_language,omitempty"`
	Impact            string   `json:"impact,omitempty"`
	RecommendedAction string   `json:"recommended_action,omitempty"`
}

// FavorableProvision supports a larger claim recovery
type FavorableProvision struct {
	ProvisionID    string `json:"provision_id"`
	Name           string `json:"name"`
	SourceLanguage string `json:"source_language,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Relevance      string `json:"relevance,omitempty"`
}

// SectionConfidence carries per-field-group extraction confidence in [0,1]
type SectionConfidence struct {
	PolicyMeta   float64 `json:"policy_meta"`
	Coverages    float64 `json:"coverages"`
	Deductibles  float64 `json:"deductibles"`
	Depreciation float64 `json:"depreciation"`
	Exclusions   float64 `json:"exclusions"`
	Endorsements float64 `json:"endorsements"`
}

// DefaultSectionConfidence is the neutral prior used when the extractor
// does not report a section confidence.
func DefaultSectionConfidence() SectionConfidence {
	return SectionConfidence{
		PolicyMeta:   0.5,
		Coverages:    0.5,
		Deductibles:  0.5,
		Depreciation: 0.5,
		Exclusions:   0.5,
		Endorsements: 0.5,
	}
}

// StructuredRecord is the pipeline's output: a total, validated,
// risk-scored description of one insurance policy. Every list field is
// non-nil, every enum holds a defined variant, every confidence is in
// [0,1]. No partial state ever reaches a caller.
type StructuredRecord struct {
	AnalysisID string    `json:"analysis_id,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at"`
	Provider   string    `json:"provider,omitempty"`
	Model      string    `json:"model,omitempty"`

	// Policy identity
	PolicyType     string `json:"policy_type,omitempty"`
	Carrier        string `json:"carrier,omitempty"`
	PolicyNumber   string `json:"policy_number,omitempty"`
	EffectiveDate  string `json:"effective_date,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
	NamedInsured   string `json:"named_insured,omitempty"`
	PropertyAddr   string `json:"property_address,omitempty"`

	Coverages   []Coverage   `json:"coverages"`
	Deductibles []Deductible `json:"deductibles"`

	DepreciationMethod DepreciationMethod `json:"depreciation_method"`
	DepreciationNotes  string             `json:"depreciation_notes,omitempty"`

	Exclusions          []Exclusion          `json:"exclusions"`
	Endorsements        []Endorsement        `json:"endorsements"`
	Landmines           []Landmine           `json:"landmines"`
	FavorableProvisions []FavorableProvision `json:"favorable_provisions"`

	Summary   string    `json:"summary,omitempty"`
	RiskLevel RiskLevel `json:"risk_level"`

	SectionConfidence SectionConfidence `json:"section_confidence"`
	OverallConfidence float64           `json:"overall_confidence"`

	ParseNotes string `json:"parse_notes,omitempty"`

	// Classifier metadata carried through for the caller
	DocumentType           DocumentType `json:"document_type"`
	PageCount              *int         `json:"page_count,omitempty"`
	FormType               string       `json:"form_type,omitempty"`
	EndorsementIdentifiers []string     `json:"endorsement_identifiers"`
	ScanQuality            ScanQuality  `json:"scan_quality"`
	MissingDocumentWarning string       `json:"missing_document_warning,omitempty"`
}

// ApplyMeta copies classifier metadata onto the record. Fields the
// extractor already filled (carrier, form type) are only overwritten
// when empty.
func (r *StructuredRecord) ApplyMeta(meta *DocumentMeta) {
	if meta == nil {
		return
	}
	r.DocumentType = meta.DocumentType
	r.PageCount = meta.PageCount
	r.ScanQuality = meta.ScanQuality
	r.EndorsementIdentifiers = append([]string{}, meta.EndorsementIdentifiers...)
	if r.Carrier == "" {
		r.Carrier = meta.Carrier
	}
	if r.FormType == "" {
		r.FormType = meta.FormType
	}
	if r.MissingDocumentWarning == "" {
		r.MissingDocumentWarning = meta.MissingDocumentWarning
	}
}
