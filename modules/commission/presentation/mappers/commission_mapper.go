package mappers

import (
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/jaydenmetz/realty-core/modules/commission/domain/commission"
	"github.com/jaydenmetz/realty-core/modules/commission/presentation/viewmodels"
)

// FormatUSD renders a decimal dollar amount as a localized currency string,
// e.g. "$6,208.38". Amounts are already rounded to cents by the engine.
func FormatUSD(d decimal.Decimal) string {
	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

func RecordToViewModel(r commission.Record) *viewmodels.CommissionRecord {
	vm := &viewmodels.CommissionRecord{
		ID:                  r.ID.String(),
		TeamID:              r.TeamID.String(),
		LeadSource:          r.LeadSource,
		Kind:                string(r.Kind),
		CapStatus:           string(r.Breakdown.CapStatus),
		RuleRef:             r.Breakdown.RuleRef,
		SplitPercentage:     r.Breakdown.SplitPercentage.String(),
		RecognitionDate:     r.RecognitionDate.Format("2006-01-02"),
		GrossCommission:     FormatUSD(r.GrossCommission),
		CumulativeGCIBefore: FormatUSD(r.Breakdown.CumulativeGCIBefore),
		CumulativeGCIAfter:  FormatUSD(r.Breakdown.CumulativeGCIAfter),
		GrossAgent:          FormatUSD(r.Breakdown.GrossAgentCommission),
		TransactionFee:      FormatUSD(r.Breakdown.TransactionFee),
		CoordinationFee:     FormatUSD(r.Breakdown.CoordinationFee),
		FranchiseFee:        FormatUSD(r.Breakdown.FranchiseFee),
		TotalDeductions:     FormatUSD(r.Breakdown.TotalDeductions),
		NetAgentIncome:      FormatUSD(r.Breakdown.NetAgentIncome),
		CompanyCommission:   FormatUSD(r.Breakdown.CompanyCommission),
		CorrectionReason:    r.CorrectionReason,
		CreatedAt:           r.CreatedAt.Format(time.RFC3339),
	}
	if r.EntityRecordID != nil {
		vm.EntityRecordID = r.EntityRecordID.String()
	}
	if r.OriginalID != nil {
		vm.OriginalID = r.OriginalID.String()
	}
	if r.CorrectedBy != nil {
		vm.CorrectedBy = r.CorrectedBy.String()
	}
	return vm
}

func RuleToViewModel(r commission.SplitRule) *viewmodels.SplitRule {
	vm := &viewmodels.SplitRule{
		ID:              r.ID,
		LeadSource:      r.LeadSource,
		EffectiveYear:   r.EffectiveYear,
		ThresholdMin:    r.ThresholdMin.String(),
		SplitPercentage: r.SplitPercentage.String(),
		Notes:           r.Notes,
	}
	if r.ThresholdMax != nil {
		vm.ThresholdMax = r.ThresholdMax.String()
	}
	return vm
}
