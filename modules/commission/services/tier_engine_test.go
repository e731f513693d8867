package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/jaydenmetz/realty-core/modules/commission/domain/commission"
	"github.com/jaydenmetz/realty-core/modules/commission/services"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type memRuleRepo struct {
	rules []commission.SplitRule
}

func (r *memRuleRepo) Find(_ context.Context, leadSource string, year int, cumulative decimal.Decimal) (commission.SplitRule, error) {
	if leadSource == "" {
		leadSource = commission.DefaultLeadSource
	}
	var best *commission.SplitRule
	for i := range r.rules {
		rule := r.rules[i]
		if rule.EffectiveYear != year || !rule.Contains(cumulative) {
			continue
		}
		if rule.LeadSource != leadSource && rule.LeadSource != commission.DefaultLeadSource {
			continue
		}
		if best == nil {
			best = &r.rules[i]
			continue
		}
		exact := rule.LeadSource == leadSource && best.LeadSource != leadSource
		higher := rule.LeadSource == best.LeadSource && rule.ThresholdMin.GreaterThan(best.ThresholdMin)
		if exact || higher {
			best = &r.rules[i]
		}
	}
	if best == nil {
		return commission.SplitRule{}, commission.ErrNoMatchingRule
	}
	return *best, nil
}

func (r *memRuleRepo) Add(_ context.Context, rule commission.SplitRule) (commission.SplitRule, error) {
	rule.ID = int64(len(r.rules) + 1)
	r.rules = append(r.rules, rule)
	return rule, nil
}

func (r *memRuleRepo) ListForYear(_ context.Context, year int) ([]commission.SplitRule, error) {
	var out []commission.SplitRule
	for _, rule := range r.rules {
		if rule.EffectiveYear == year {
			out = append(out, rule)
		}
	}
	return out, nil
}

type memRecordRepo struct {
	records map[uuid.UUID]*commission.Record
	sumErr  error
}

func newMemRecordRepo() *memRecordRepo {
	return &memRecordRepo{records: map[uuid.UUID]*commission.Record{}}
}

func (r *memRecordRepo) CumulativeGCIBefore(_ context.Context, teamID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	if r.sumErr != nil {
		return decimal.Zero, r.sumErr
	}
	yearStart := time.Date(asOf.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	sum := decimal.Zero
	for _, rec := range r.records {
		if rec.TeamID != teamID || rec.CorrectedBy != nil {
			continue
		}
		if rec.RecognitionDate.Before(yearStart) || !rec.RecognitionDate.Before(asOf) {
			continue
		}
		sum = sum.Add(rec.GrossCommission)
	}
	return sum, nil
}

func (r *memRecordRepo) Insert(_ context.Context, rec commission.Record) (commission.Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	stored := rec
	r.records[rec.ID] = &stored
	return rec, nil
}

func (r *memRecordRepo) GetByID(_ context.Context, id uuid.UUID) (commission.Record, error) {
	rec, ok := r.records[id]
	if !ok {
		return commission.Record{}, commission.ErrRecordNotFound
	}
	return *rec, nil
}

func (r *memRecordRepo) GetActiveForEntity(_ context.Context, entityRecordID uuid.UUID) (commission.Record, error) {
	for _, rec := range r.records {
		if rec.EntityRecordID != nil && *rec.EntityRecordID == entityRecordID && rec.CorrectedBy == nil {
			return *rec, nil
		}
	}
	return commission.Record{}, commission.ErrRecordNotFound
}

func (r *memRecordRepo) ListForTeam(_ context.Context, teamID uuid.UUID, _, _ int) ([]commission.Record, error) {
	var out []commission.Record
	for _, rec := range r.records {
		if rec.TeamID == teamID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *memRecordRepo) MarkCorrected(_ context.Context, originalID, correctedID uuid.UUID) error {
	rec, ok := r.records[originalID]
	if !ok {
		return commission.ErrRecordNotFound
	}
	if rec.CorrectedBy != nil {
		return commission.ErrFrozenBreakdown
	}
	rec.CorrectedBy = &correctedID
	return nil
}

func testConfig() services.Config {
	return services.Config{
		Fees: commission.FeeSchedule{
			TransactionFee:  decimal.NewFromInt(285),
			CoordinationFee: decimal.NewFromInt(250),
			FranchiseRate:   d("0.0257"),
		},
		Caps: commission.CapThresholds{
			MidTier: decimal.NewFromInt(50000),
			PostCap: decimal.NewFromInt(100000),
		},
		FallbackSplit: decimal.NewFromInt(70),
	}
}

func seedDefaultRules(rules *memRuleRepo, year int) {
	mid := d("50000")
	post := d("100000")
	rules.rules = append(rules.rules,
		commission.SplitRule{LeadSource: commission.DefaultLeadSource, EffectiveYear: year, ThresholdMin: decimal.Zero, ThresholdMax: &mid, SplitPercentage: decimal.NewFromInt(50)},
		commission.SplitRule{LeadSource: commission.DefaultLeadSource, EffectiveYear: year, ThresholdMin: mid, ThresholdMax: &post, SplitPercentage: decimal.NewFromInt(70)},
		commission.SplitRule{LeadSource: commission.DefaultLeadSource, EffectiveYear: year, ThresholdMin: post, SplitPercentage: decimal.NewFromInt(90)},
	)
}

func newEngine(rules *memRuleRepo, records *memRecordRepo) (*services.TierEngine, *logrustest.Hook) {
	log, hook := logrustest.NewNullLogger()
	return services.NewTierEngine(rules, records, testConfig(), log), hook
}

func mustClose(t *testing.T, engine *services.TierEngine, teamID uuid.UUID, gross string, day time.Time) commission.Record {
	t.Helper()
	rec, err := engine.Close(context.Background(), services.CloseDTO{
		TeamID:          teamID,
		GrossCommission: d(gross),
		RecognitionDate: day,
	})
	require.NoError(t, err)
	return rec
}

func TestCumulativeGCIIsStrictlyBefore(t *testing.T) {
	rules := &memRuleRepo{}
	seedDefaultRules(rules, 2025)
	records := newMemRecordRepo()
	engine, _ := newEngine(rules, records)
	teamID := uuid.New()

	jan5 := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	jan10 := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	mustClose(t, engine, teamID, "10000", jan5)
	mustClose(t, engine, teamID, "8000", jan5)

	rec := mustClose(t, engine, teamID, "50000", jan10)
	require.True(t, rec.Breakdown.CumulativeGCIBefore.Equal(d("18000")),
		"earlier records count toward the base, the closing record itself does not; got %s", rec.Breakdown.CumulativeGCIBefore)
	require.True(t, rec.Breakdown.SplitPercentage.Equal(d("50")))
}

func TestSameDayRecordsDoNotAffectEachOther(t *testing.T) {
	rules := &memRuleRepo{}
	seedDefaultRules(rules, 2025)
	records := newMemRecordRepo()
	engine, _ := newEngine(rules, records)
	teamID := uuid.New()

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	first := mustClose(t, engine, teamID, "30000", day)
	second := mustClose(t, engine, teamID, "30000", day)

	require.True(t, first.Breakdown.CumulativeGCIBefore.Equal(decimal.Zero))
	require.True(t, second.Breakdown.CumulativeGCIBefore.Equal(decimal.Zero),
		"records recognized the same day must not see each other")
	require.True(t, second.Breakdown.SplitPercentage.Equal(first.Breakdown.SplitPercentage))
}

func TestSplitBandTransitions(t *testing.T) {
	cases := []struct {
		cumulative string
		wantSplit  string
		wantCap    commission.CapStatus
	}{
		{"18000", "50", commission.CapStatusPre},
		{"62000", "70", commission.CapStatusMid},
		{"150000", "90", commission.CapStatusPost},
	}
	for _, c := range cases {
		t.Run(c.cumulative, func(t *testing.T) {
			rules := &memRuleRepo{}
			seedDefaultRules(rules, 2025)
			records := newMemRecordRepo()
			engine, _ := newEngine(rules, records)
			teamID := uuid.New()

			jan2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
			mustClose(t, engine, teamID, c.cumulative, jan2)

			decision, err := engine.ComputeSplit(context.Background(), teamID, "", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			require.True(t, decision.SplitPercentage.Equal(d(c.wantSplit)), "got %s", decision.SplitPercentage)
			require.Equal(t, c.wantCap, decision.CapStatus)
			require.False(t, decision.Fallback)
		})
	}
}

func TestCumulativeResetsEachCalendarYear(t *testing.T) {
	rules := &memRuleRepo{}
	seedDefaultRules(rules, 2024)
	seedDefaultRules(rules, 2025)
	records := newMemRecordRepo()
	engine, _ := newEngine(rules, records)
	teamID := uuid.New()

	mustClose(t, engine, teamID, "150000", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))

	decision, err := engine.ComputeSplit(context.Background(), teamID, "", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, decision.SplitPercentage.Equal(d("50")), "prior-year GCI must not carry over; got %s", decision.SplitPercentage)
	require.Equal(t, commission.CapStatusPre, decision.CapStatus)
}

func TestLeadSourceRulePreferredOverDefault(t *testing.T) {
	rules := &memRuleRepo{}
	seedDefaultRules(rules, 2025)
	rules.rules = append(rules.rules, commission.SplitRule{
		LeadSource:      "referral",
		EffectiveYear:   2025,
		ThresholdMin:    decimal.Zero,
		SplitPercentage: decimal.NewFromInt(85),
		Notes:           "referral partner schedule",
	})
	engine, _ := newEngine(rules, newMemRecordRepo())

	decision, err := engine.ComputeSplit(context.Background(), uuid.New(), "referral", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, decision.SplitPercentage.Equal(d("85")))
	require.Equal(t, "referral partner schedule", decision.RuleRef)
}

func TestFallbackSplitWhenNoRuleMatches(t *testing.T) {
	engine, hook := newEngine(&memRuleRepo{}, newMemRecordRepo())

	decision, err := engine.ComputeSplit(context.Background(), uuid.New(), "", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, decision.Fallback)
	require.True(t, decision.SplitPercentage.Equal(d("70")))
	require.Equal(t, commission.CapStatusPre, decision.CapStatus)

	require.NotEmpty(t, hook.Entries)
	last := hook.LastEntry()
	require.Equal(t, logrus.WarnLevel, last.Level)
	require.Contains(t, last.Message, "fallback")
}

func TestQueryFailureIsNeverDefaulted(t *testing.T) {
	records := newMemRecordRepo()
	records.sumErr = fmt.Errorf("connection reset")
	engine, _ := newEngine(&memRuleRepo{}, records)

	_, err := engine.ComputeSplit(context.Background(), uuid.New(), "", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, commission.ErrCumulativeQuery)
}

func TestCloseRefusesSecondBreakdownForEntity(t *testing.T) {
	rules := &memRuleRepo{}
	seedDefaultRules(rules, 2025)
	engine, _ := newEngine(rules, newMemRecordRepo())

	entityID := uuid.New()
	dto := services.CloseDTO{
		TeamID:          uuid.New(),
		EntityRecordID:  &entityID,
		GrossCommission: d("10000"),
		RecognitionDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := engine.Close(context.Background(), dto)
	require.NoError(t, err)

	_, err = engine.Close(context.Background(), dto)
	require.ErrorIs(t, err, commission.ErrFrozenBreakdown)
}

func TestCorrectSupersedesWithoutMutatingOriginal(t *testing.T) {
	rules := &memRuleRepo{}
	seedDefaultRules(rules, 2025)
	records := newMemRecordRepo()
	engine, _ := newEngine(rules, records)
	teamID := uuid.New()

	original := mustClose(t, engine, teamID, "10000", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	corrected, err := engine.Correct(context.Background(), original.ID, services.CorrectionDTO{
		GrossCommission: d("12000"),
		RecognitionDate: original.RecognitionDate,
		Reason:          "gross entered from the wrong settlement sheet",
	})
	require.NoError(t, err)
	require.Equal(t, commission.KindCorrected, corrected.Kind)
	require.Equal(t, original.ID, *corrected.OriginalID)
	require.True(t, corrected.GrossCommission.Equal(d("12000")))

	reloaded, err := engine.GetRecord(context.Background(), original.ID)
	require.NoError(t, err)
	require.True(t, reloaded.GrossCommission.Equal(d("10000")), "original financials must stay frozen")
	require.NotNil(t, reloaded.CorrectedBy)
	require.Equal(t, corrected.ID, *reloaded.CorrectedBy)
	require.False(t, reloaded.Active())
}

func TestCorrectedRecordsLeaveCumulative(t *testing.T) {
	rules := &memRuleRepo{}
	seedDefaultRules(rules, 2025)
	records := newMemRecordRepo()
	engine, _ := newEngine(rules, records)
	teamID := uuid.New()

	original := mustClose(t, engine, teamID, "60000", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	_, err := engine.Correct(context.Background(), original.ID, services.CorrectionDTO{
		GrossCommission: d("6000"),
		RecognitionDate: original.RecognitionDate,
		Reason:          "decimal slip, 60000 should have been 6000",
	})
	require.NoError(t, err)

	sum, err := engine.CumulativeGCIBefore(context.Background(), teamID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, sum.Equal(d("6000")), "superseded record must not count; got %s", sum)
}

func TestCorrectExcludesOriginalFromOwnCumulativeBase(t *testing.T) {
	rules := &memRuleRepo{}
	seedDefaultRules(rules, 2025)
	records := newMemRecordRepo()
	engine, _ := newEngine(rules, records)
	teamID := uuid.New()

	original := mustClose(t, engine, teamID, "60000", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	// Moving the recognition date past the original would double-count the
	// superseded gross if it were still active when the base is computed.
	corrected, err := engine.Correct(context.Background(), original.ID, services.CorrectionDTO{
		GrossCommission: d("6000"),
		RecognitionDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Reason:          "settlement recognized a month late at a tenth of the entered gross",
	})
	require.NoError(t, err)
	require.True(t, corrected.Breakdown.CumulativeGCIBefore.IsZero(),
		"superseded gross leaked into the correction's own base: got %s", corrected.Breakdown.CumulativeGCIBefore)
	require.True(t, corrected.Breakdown.SplitPercentage.Equal(d("50")))
	require.Equal(t, commission.CapStatusPre, corrected.Breakdown.CapStatus)
}

func TestCorrectRequiresReason(t *testing.T) {
	rules := &memRuleRepo{}
	seedDefaultRules(rules, 2025)
	engine, _ := newEngine(rules, newMemRecordRepo())
	teamID := uuid.New()

	original := mustClose(t, engine, teamID, "10000", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	_, err := engine.Correct(context.Background(), original.ID, services.CorrectionDTO{
		GrossCommission: d("11000"),
		RecognitionDate: original.RecognitionDate,
	})
	require.Error(t, err)
}

func TestCorrectRefusesAlreadySupersededRecord(t *testing.T) {
	rules := &memRuleRepo{}
	seedDefaultRules(rules, 2025)
	engine, _ := newEngine(rules, newMemRecordRepo())
	teamID := uuid.New()

	original := mustClose(t, engine, teamID, "10000", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	_, err := engine.Correct(context.Background(), original.ID, services.CorrectionDTO{
		GrossCommission: d("11000"),
		RecognitionDate: original.RecognitionDate,
		Reason:          "first correction",
	})
	require.NoError(t, err)

	_, err = engine.Correct(context.Background(), original.ID, services.CorrectionDTO{
		GrossCommission: d("12000"),
		RecognitionDate: original.RecognitionDate,
		Reason:          "second correction against the stale record",
	})
	require.ErrorIs(t, err, commission.ErrFrozenBreakdown)
}

func TestAddRuleValidatesBand(t *testing.T) {
	rules := &memRuleRepo{}
	engine, _ := newEngine(rules, newMemRecordRepo())

	_, err := engine.AddRule(context.Background(), commission.SplitRule{
		EffectiveYear:   2026,
		ThresholdMin:    decimal.Zero,
		SplitPercentage: decimal.NewFromInt(110),
	})
	require.ErrorContains(t, err, "out of range")

	max := d("100")
	_, err = engine.AddRule(context.Background(), commission.SplitRule{
		EffectiveYear:   2026,
		ThresholdMin:    d("100"),
		ThresholdMax:    &max,
		SplitPercentage: decimal.NewFromInt(70),
	})
	require.ErrorContains(t, err, "empty")

	added, err := engine.AddRule(context.Background(), commission.SplitRule{
		EffectiveYear:   2026,
		ThresholdMin:    decimal.Zero,
		SplitPercentage: decimal.NewFromInt(60),
	})
	require.NoError(t, err)
	require.Equal(t, commission.DefaultLeadSource, added.LeadSource)
	require.Len(t, rules.rules, 1)
}
