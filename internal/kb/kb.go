package kb

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/ApexForge13/policyscan/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// LandmineRule describes a provision known to reduce supplement value
type LandmineRule struct {
	ID          string         `yaml:"id" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Severity    model.Severity `yaml:"severity" json:"severity"`
	Category    string         `yaml:"category" json:"category"`
	SearchHints []string       `yaml:"search_hints" json:"search_hints"`
	ActionItem  string         `yaml:"action_item" json:"action_item"`
}

// FavorableProvisionRule describes a provision that supports recovery
type FavorableProvisionRule struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	SearchHints []string `yaml:"search_hints" json:"search_hints"`
	Impact      string   `yaml:"impact" json:"impact"`
	Relevance   string   `yaml:"relevance" json:"relevance"`
}

// BaselineExclusion is an exclusion assumed present for a policy form
// family unless the document contradicts it
type BaselineExclusion struct {
	FormType    string `yaml:"form_type" json:"form_type"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Relevance   string `yaml:"relevance" json:"relevance"`
}

// CarrierEndorsementForm maps a carrier's form number to its known effect
type CarrierEndorsementForm struct {
	Carrier          string         `yaml:"carrier" json:"carrier"`
	FormNumber       string         `yaml:"form_number" json:"form_number"`
	Name             string         `yaml:"name" json:"name"`
	Effect           string         `yaml:"effect" json:"effect"`
	Severity         model.Severity `yaml:"severity" json:"severity"`
	AffectedSections []string       `yaml:"affected_sections" json:"affected_sections"`
}

// KnowledgeBase holds the immutable reference tables. Loaded once at
// process start and safe for unbounded concurrent reads.
type KnowledgeBase struct {
	Landmines           []LandmineRule           `yaml:"landmines"`
	FavorableProvisions []FavorableProvisionRule `yaml:"favorable_provisions"`
	BaselineExclusions  []BaselineExclusion      `yaml:"baseline_exclusions"`
	CarrierForms        []CarrierEndorsementForm `yaml:"carrier_forms"`

	landminesByID map[string]*LandmineRule
}

// Load parses the embedded rule tables
func Load() (*KnowledgeBase, error) {
	return Parse(rulesYAML)
}

// Parse builds a knowledge base from YAML rule tables
func Parse(data []byte) (*KnowledgeBase, error) {
	var k KnowledgeBase
	if err := yaml.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	k.landminesByID = make(map[string]*LandmineRule, len(k.Landmines))
	for i := range k.Landmines {
		rule := &k.Landmines[i]
		if rule.ID == "" {
			return nil, fmt.Errorf("landmine rule %d has no id", i)
		}
		k.landminesByID[rule.ID] = rule
	}

	return &k, nil
}

// LandmineRule returns the rule for an id, or nil if unknown
func (k *KnowledgeBase) LandmineRule(id string) *LandmineRule {
	return k.landminesByID[id]
}

// BaselineExclusionsFor returns the assumed exclusions for a form family
// (e.g. "HO-3"). Matching ignores case and surrounding whitespace.
func (k *KnowledgeBase) BaselineExclusionsFor(formType string) []BaselineExclusion {
	want := NormalizeFormNumber(formType)
	if want == "" {
		return nil
	}
	var out []BaselineExclusion
	for _, be := range k.BaselineExclusions {
		if NormalizeFormNumber(be.FormType) == want {
			out = append(out, be)
		}
	}
	return out
}

// FormsForCarrier returns the known endorsement forms for a carrier.
// An empty carrier matches nothing; carrier comparison is a
// case-insensitive substring match in either direction, since carriers
// appear under varying trade names on declarations pages.
func (k *KnowledgeBase) FormsForCarrier(carrier string) []CarrierEndorsementForm {
	c := strings.ToLower(strings.TrimSpace(carrier))
	if c == "" {
		return nil
	}
	var out []CarrierEndorsementForm
	for _, f := range k.CarrierForms {
		fc := strings.ToLower(f.Carrier)
		if strings.Contains(c, fc) || strings.Contains(fc, c) {
			out = append(out, f)
		}
	}
	return out
}

// LookupForm finds a carrier form by identifier as detected on the
// document, or nil when the identifier matches nothing.
func (k *KnowledgeBase) LookupForm(carrier, identifier string) *CarrierEndorsementForm {
	want := NormalizeFormNumber(identifier)
	if want == "" {
		return nil
	}
	for _, f := range k.FormsForCarrier(carrier) {
		if NormalizeFormNumber(f.FormNumber) == want {
			form := f
			return &form
		}
	}
	return nil
}

// NormalizeSeverity resolves landmine severity/category from the rule
// table so the taxonomy stays consistent regardless of what inference
// reported. Landmines referencing unknown rules keep their reported
// values, downgraded to info severity when the severity is undefined.
func (k *KnowledgeBase) NormalizeSeverity(landmines []model.Landmine) []model.Landmine {
	out := make([]model.Landmine, len(landmines))
	for i, lm := range landmines {
		if rule := k.LandmineRule(lm.RuleID); rule != nil {
			lm.Severity = rule.Severity
			lm.Category = rule.Category
			if lm.Name == "" {
				lm.Name = rule.Name
			}
			if lm.RecommendedAction == "" {
				lm.RecommendedAction = rule.ActionItem
			}
		} else {
			switch lm.Severity {
			case model.SeverityCritical, model.SeverityWarning, model.SeverityInfo:
			default:
				lm.Severity = model.SeverityInfo
			}
		}
		out[i] = lm
	}
	return out
}

// NormalizeFormNumber canonicalizes a form identifier for comparison:
// uppercase, inner whitespace collapsed, surrounding whitespace removed.
func NormalizeFormNumber(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
