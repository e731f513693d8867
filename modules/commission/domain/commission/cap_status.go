package commission

import "github.com/shopspring/decimal"

// CapStatus is the coarse three-way bucketing of a team's cumulative GCI. It
// is derived from fixed dollar thresholds, independent of the fine-grained
// split-rule bands, and stored alongside them for reporting.
type CapStatus string

const (
	CapStatusPre  CapStatus = "pre_cap"
	CapStatusMid  CapStatus = "mid_tier"
	CapStatusPost CapStatus = "post_cap"
)

// CapThresholds carries the fixed cumulative-GCI boundaries.
type CapThresholds struct {
	MidTier decimal.Decimal
	PostCap decimal.Decimal
}

func CapStatusFor(cumulative decimal.Decimal, t CapThresholds) CapStatus {
	switch {
	case cumulative.GreaterThanOrEqual(t.PostCap):
		return CapStatusPost
	case cumulative.GreaterThanOrEqual(t.MidTier):
		return CapStatusMid
	default:
		return CapStatusPre
	}
}
