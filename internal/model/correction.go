package model

// CorrectionSet is the verifier's transient output: a small set of
// corrections and additions proposed by the targeted third pass, never a
// full re-extraction. It is consumed once by the merge step and discarded.
type CorrectionSet struct {
	// Depreciation overrides apply only when non-nil
	DepreciationMethod *DepreciationMethod `json:"depreciation_method,omitempty"`
	DepreciationNotes  *string             `json:"depreciation_notes,omitempty"`

	// Candidate additions, deduplicated against the existing record
	Deductibles         []Deductible         `json:"deductibles,omitempty"`
	Endorsements        []Endorsement        `json:"endorsements,omitempty"`
	Exclusions          []Exclusion          `json:"exclusions,omitempty"`
	Landmines           []Landmine           `json:"landmines,omitempty"`
	FavorableProvisions []FavorableProvision `json:"favorable_provisions,omitempty"`

	// Per-section confidence overrides; only named sections change
	ConfidenceOverrides map[string]float64 `json:"confidence_overrides,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// IsEmpty reports whether the correction set proposes no change at all
func (c *CorrectionSet) IsEmpty() bool {
	if c == nil {
		return true
	}
	return c.DepreciationMethod == nil &&
		c.DepreciationNotes == nil &&
		len(c.Deductibles) == 0 &&
		len(c.Endorsements) == 0 &&
		len(c.Exclusions) == 0 &&
		len(c.Landmines) == 0 &&
		len(c.FavorableProvisions) == 0 &&
		len(c.ConfidenceOverrides) == 0 &&
		c.Notes == ""
}
