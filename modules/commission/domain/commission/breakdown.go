package commission

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FeeSchedule holds the per-transaction deductions applied to the agent's
// side of the split. Injected from configuration, never inlined.
type FeeSchedule struct {
	TransactionFee  decimal.Decimal
	CoordinationFee decimal.Decimal
	FranchiseRate   decimal.Decimal
}

// SplitDecision is the outcome of a tier lookup at a point in time.
type SplitDecision struct {
	SplitPercentage decimal.Decimal
	CapStatus       CapStatus
	RuleRef         string
	Fallback        bool
}

// Breakdown is the full derived commission picture for one transaction.
// Every field is frozen once persisted.
type Breakdown struct {
	GrossCommission      decimal.Decimal
	CumulativeGCIBefore  decimal.Decimal
	CumulativeGCIAfter   decimal.Decimal
	SplitPercentage      decimal.Decimal
	CapStatus            CapStatus
	RuleRef              string
	GrossAgentCommission decimal.Decimal
	TransactionFee       decimal.Decimal
	CoordinationFee      decimal.Decimal
	FranchiseFee         decimal.Decimal
	TotalDeductions      decimal.Decimal
	NetAgentIncome       decimal.Decimal
	CompanyCommission    decimal.Decimal
}

// ComputeBreakdown derives the monetary figures from a split decision. Pure
// decimal arithmetic; identical inputs always produce identical outputs.
// Monetary results are rounded to cents once, at the edge of each figure.
func ComputeBreakdown(gross decimal.Decimal, cumulativeBefore decimal.Decimal, decision SplitDecision, fees FeeSchedule) Breakdown {
	grossAgent := gross.Mul(decision.SplitPercentage).Div(hundred).Round(2)
	franchiseFee := gross.Mul(fees.FranchiseRate).Round(2)
	totalDeductions := fees.TransactionFee.Add(fees.CoordinationFee).Add(franchiseFee)

	return Breakdown{
		GrossCommission:      gross,
		CumulativeGCIBefore:  cumulativeBefore,
		CumulativeGCIAfter:   cumulativeBefore.Add(gross),
		SplitPercentage:      decision.SplitPercentage,
		CapStatus:            decision.CapStatus,
		RuleRef:              decision.RuleRef,
		GrossAgentCommission: grossAgent,
		TransactionFee:       fees.TransactionFee,
		CoordinationFee:      fees.CoordinationFee,
		FranchiseFee:         franchiseFee,
		TotalDeductions:      totalDeductions,
		NetAgentIncome:       grossAgent.Sub(totalDeductions),
		CompanyCommission:    gross.Sub(grossAgent).Round(2),
	}
}
