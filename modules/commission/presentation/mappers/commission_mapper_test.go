package mappers_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jaydenmetz/realty-core/modules/commission/domain/commission"
	"github.com/jaydenmetz/realty-core/modules/commission/presentation/mappers"
)

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"6208.38", "$6,208.38"},
		{"0", "$0.00"},
		{"1000000", "$1,000,000.00"},
		{"0.5", "$0.50"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			require.Equal(t, c.want, mappers.FormatUSD(decimal.RequireFromString(c.in)))
		})
	}
}

func TestRecordToViewModel(t *testing.T) {
	entityID := uuid.New()
	rec := commission.Record{
		ID:              uuid.New(),
		TeamID:          uuid.New(),
		EntityRecordID:  &entityID,
		LeadSource:      "default",
		GrossCommission: decimal.RequireFromString("10000.555"),
		RecognitionDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Kind:            commission.KindOriginal,
		Breakdown: commission.Breakdown{
			SplitPercentage: decimal.NewFromInt(70),
			CapStatus:       commission.CapStatusPre,
			NetAgentIncome:  decimal.RequireFromString("6208.38"),
		},
		CreatedAt: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC),
	}

	vm := mappers.RecordToViewModel(rec)
	require.Equal(t, rec.ID.String(), vm.ID)
	require.Equal(t, entityID.String(), vm.EntityRecordID)
	require.Equal(t, "original", vm.Kind)
	require.Equal(t, "pre_cap", vm.CapStatus)
	require.Equal(t, "70", vm.SplitPercentage)
	require.Equal(t, "2025-01-10", vm.RecognitionDate)
	require.Equal(t, "$6,208.38", vm.NetAgentIncome)
	require.Empty(t, vm.CorrectedBy)
}

func TestRuleToViewModel(t *testing.T) {
	max := decimal.RequireFromString("100000")
	vm := mappers.RuleToViewModel(commission.SplitRule{
		ID:              7,
		LeadSource:      "default",
		EffectiveYear:   2025,
		ThresholdMin:    decimal.RequireFromString("50000"),
		ThresholdMax:    &max,
		SplitPercentage: decimal.NewFromInt(70),
	})
	require.Equal(t, int64(7), vm.ID)
	require.Equal(t, "50000", vm.ThresholdMin)
	require.Equal(t, "100000", vm.ThresholdMax)
	require.Equal(t, "70", vm.SplitPercentage)
}
