package score

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ApexForge13/policyscan/internal/model"
)

var (
	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	dollarPattern  = regexp.MustCompile(`\$?\s*([\d,]+(?:\.\d+)?)`)
)

// ResolveDeductibles fills in the dollar amount for each deductible that
// lacks one: a percentage deductible resolves against the dwelling
// (Coverage A) limit, otherwise a literal dollar figure is parsed from
// the display text. Unresolvable entries keep a nil dollar amount; this
// never fails.
func ResolveDeductibles(rec *model.StructuredRecord) {
	limit, haveLimit := dwellingLimit(rec.Coverages)

	for i := range rec.Deductibles {
		d := &rec.Deductibles[i]
		if d.DollarAmount != nil {
			continue
		}

		if m := percentPattern.FindStringSubmatch(d.Amount); m != nil {
			if !haveLimit {
				continue
			}
			percent, err := strconv.ParseFloat(m[1], 64)
			if err != nil || percent <= 0 {
				continue
			}
			amount := math.Round(limit * percent / 100)
			d.DollarAmount = &amount
			continue
		}

		if amount, ok := ParseMoney(d.Amount); ok {
			d.DollarAmount = &amount
		}
	}
}

// dwellingLimit finds the Coverage-A-equivalent limit: section "A" or a
// label mentioning the dwelling, whichever parses to a positive number
// first.
func dwellingLimit(coverages []model.Coverage) (float64, bool) {
	for _, c := range coverages {
		section := strings.ToUpper(strings.TrimSpace(c.Section))
		label := strings.ToLower(c.Label)
		if section != "A" && !strings.Contains(label, "dwelling") {
			continue
		}
		if limit, ok := ParseMoney(c.Limit); ok {
			return limit, true
		}
	}
	return 0, false
}

// ParseMoney extracts the first positive dollar figure from a free-text
// money string ("$300,000", "250000", "$1,500.50")
func ParseMoney(s string) (float64, bool) {
	m := dollarPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return f, true
}
