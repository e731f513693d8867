package commission

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultLeadSource is the wildcard rule bucket. Lookup prefers an exact
// lead-source match over it at equal threshold precedence.
const DefaultLeadSource = "default"

// SplitRule is one threshold band of the commission schedule. Bands for a
// given (leadSource, effectiveYear) are expected to be contiguous and
// non-overlapping; the band is half-open: [ThresholdMin, ThresholdMax).
type SplitRule struct {
	ID              int64
	LeadSource      string
	EffectiveYear   int
	ThresholdMin    decimal.Decimal
	ThresholdMax    *decimal.Decimal // nil = unbounded
	SplitPercentage decimal.Decimal
	Notes           string
}

func (r SplitRule) Contains(cumulative decimal.Decimal) bool {
	if cumulative.LessThan(r.ThresholdMin) {
		return false
	}
	if r.ThresholdMax != nil && cumulative.GreaterThanOrEqual(*r.ThresholdMax) {
		return false
	}
	return true
}

// Ref identifies the rule in frozen records and audit output.
func (r SplitRule) Ref() string {
	if r.Notes != "" {
		return r.Notes
	}
	return fmt.Sprintf("%s%% split", r.SplitPercentage.String())
}
