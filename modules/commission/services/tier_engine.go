package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jaydenmetz/realty-core/modules/commission/domain/commission"
)

var hundredPercent = decimal.NewFromInt(100)

// Config carries the injected policy constants for the engine.
type Config struct {
	Fees          commission.FeeSchedule
	Caps          commission.CapThresholds
	FallbackSplit decimal.Decimal
}

// TierEngine computes split decisions and frozen breakdowns. The split tier
// is always a function of the team's cumulative recognized GCI strictly
// before the recognition date, never of same-day siblings or insertion order.
type TierEngine struct {
	rules   commission.RuleRepository
	records commission.RecordRepository
	cfg     Config
	log     *logrus.Logger
}

func NewTierEngine(rules commission.RuleRepository, records commission.RecordRepository, cfg Config, log *logrus.Logger) *TierEngine {
	return &TierEngine{
		rules:   rules,
		records: records,
		cfg:     cfg,
		log:     log,
	}
}

// CumulativeGCIBefore returns the team's recognized GCI strictly before asOf.
// A data-access failure is surfaced as ErrCumulativeQuery; the caller must
// retry or abort, never proceed with a guess.
func (e *TierEngine) CumulativeGCIBefore(ctx context.Context, teamID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	sum, err := e.records.CumulativeGCIBefore(ctx, teamID, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", commission.ErrCumulativeQuery, err)
	}
	return sum, nil
}

// ComputeSplit resolves the split decision for a team at asOf. The fallback
// split applies only when no rule matches; it never masks a query failure.
func (e *TierEngine) ComputeSplit(ctx context.Context, teamID uuid.UUID, leadSource string, asOf time.Time) (commission.SplitDecision, error) {
	cumulative, err := e.CumulativeGCIBefore(ctx, teamID, asOf)
	if err != nil {
		computationsTotal.WithLabelValues("error").Inc()
		return commission.SplitDecision{}, err
	}
	decision, err := e.decide(ctx, teamID, leadSource, asOf.Year(), cumulative)
	if err != nil {
		computationsTotal.WithLabelValues("error").Inc()
		return commission.SplitDecision{}, err
	}
	computationsTotal.WithLabelValues("ok").Inc()
	return decision, nil
}

// ComputeBreakdown derives the monetary figures for one transaction given its
// already-resolved decision and cumulative base. Pure; safe to replay.
func (e *TierEngine) ComputeBreakdown(gross decimal.Decimal, cumulativeBefore decimal.Decimal, decision commission.SplitDecision) commission.Breakdown {
	return commission.ComputeBreakdown(gross, cumulativeBefore, decision, e.cfg.Fees)
}

// CloseDTO describes a transaction being recognized as closed.
type CloseDTO struct {
	TeamID          uuid.UUID
	EntityRecordID  *uuid.UUID
	LeadSource      string
	GrossCommission decimal.Decimal
	RecognitionDate time.Time
}

// Close runs the full pipeline and persists the frozen record. Must be called
// inside the caller's transaction; any failure rolls the whole close back.
func (e *TierEngine) Close(ctx context.Context, dto CloseDTO) (commission.Record, error) {
	if dto.EntityRecordID != nil {
		_, err := e.records.GetActiveForEntity(ctx, *dto.EntityRecordID)
		switch {
		case err == nil:
			return commission.Record{}, commission.ErrFrozenBreakdown
		case !errors.Is(err, commission.ErrRecordNotFound):
			return commission.Record{}, err
		}
	}

	cumulative, err := e.CumulativeGCIBefore(ctx, dto.TeamID, dto.RecognitionDate)
	if err != nil {
		return commission.Record{}, err
	}

	decision, err := e.decide(ctx, dto.TeamID, dto.LeadSource, dto.RecognitionDate.Year(), cumulative)
	if err != nil {
		return commission.Record{}, err
	}

	rec := commission.Record{
		TeamID:          dto.TeamID,
		EntityRecordID:  dto.EntityRecordID,
		LeadSource:      leadSourceOrDefault(dto.LeadSource),
		GrossCommission: dto.GrossCommission,
		RecognitionDate: dto.RecognitionDate,
		Breakdown:       e.ComputeBreakdown(dto.GrossCommission, cumulative, decision),
		Kind:            commission.KindOriginal,
	}
	return e.records.Insert(ctx, rec)
}

// CorrectionDTO describes an administrative override of a frozen record.
type CorrectionDTO struct {
	GrossCommission decimal.Decimal
	RecognitionDate time.Time
	LeadSource      string
	Reason          string
}

// Correct supersedes a frozen record with a recomputed one. The original is
// never mutated financially; it is marked as corrected and kept as the audit
// trail, and the prior figures are logged before the new record is written.
func (e *TierEngine) Correct(ctx context.Context, originalID uuid.UUID, dto CorrectionDTO) (commission.Record, error) {
	if dto.Reason == "" {
		return commission.Record{}, fmt.Errorf("correction of %s requires a reason", originalID)
	}

	original, err := e.records.GetByID(ctx, originalID)
	if err != nil {
		return commission.Record{}, err
	}
	if !original.Active() {
		return commission.Record{}, commission.ErrFrozenBreakdown
	}

	e.log.WithFields(logrus.Fields{
		"record_id":        originalID,
		"team_id":          original.TeamID,
		"prior_split":      original.Breakdown.SplitPercentage.String(),
		"prior_cap_status": original.Breakdown.CapStatus,
		"prior_net":        original.Breakdown.NetAgentIncome.String(),
		"reason":           dto.Reason,
	}).Info("correcting frozen commission record")

	correctedID := uuid.New()

	// Mark first so the superseded gross leaves the cumulative base before
	// the replacement computes, and so the one-active-per-entity constraint
	// holds when the corrected row lands; a concurrent correction loses here
	// instead.
	if err := e.records.MarkCorrected(ctx, originalID, correctedID); err != nil {
		return commission.Record{}, err
	}

	cumulative, err := e.CumulativeGCIBefore(ctx, original.TeamID, dto.RecognitionDate)
	if err != nil {
		return commission.Record{}, err
	}

	leadSource := dto.LeadSource
	if leadSource == "" {
		leadSource = original.LeadSource
	}
	decision, err := e.decide(ctx, original.TeamID, leadSource, dto.RecognitionDate.Year(), cumulative)
	if err != nil {
		return commission.Record{}, err
	}

	corrected := commission.Record{
		ID:               correctedID,
		TeamID:           original.TeamID,
		EntityRecordID:   original.EntityRecordID,
		LeadSource:       leadSourceOrDefault(leadSource),
		GrossCommission:  dto.GrossCommission,
		RecognitionDate:  dto.RecognitionDate,
		Breakdown:        e.ComputeBreakdown(dto.GrossCommission, cumulative, decision),
		Kind:             commission.KindCorrected,
		OriginalID:       &original.ID,
		CorrectionReason: dto.Reason,
	}

	return e.records.Insert(ctx, corrected)
}

// Read surface for reporting and audit tooling.

func (e *TierEngine) GetRecord(ctx context.Context, id uuid.UUID) (commission.Record, error) {
	return e.records.GetByID(ctx, id)
}

func (e *TierEngine) ListRecords(ctx context.Context, teamID uuid.UUID, limit, offset int) ([]commission.Record, error) {
	return e.records.ListForTeam(ctx, teamID, limit, offset)
}

func (e *TierEngine) ListRules(ctx context.Context, year int) ([]commission.SplitRule, error) {
	return e.rules.ListForYear(ctx, year)
}

// AddRule registers a new split band. Administrative; existing frozen records
// are untouched, the rule only affects closes after it lands.
func (e *TierEngine) AddRule(ctx context.Context, rule commission.SplitRule) (commission.SplitRule, error) {
	if rule.LeadSource == "" {
		rule.LeadSource = commission.DefaultLeadSource
	}
	if rule.SplitPercentage.LessThanOrEqual(decimal.Zero) || rule.SplitPercentage.GreaterThan(hundredPercent) {
		return commission.SplitRule{}, fmt.Errorf("split percentage %s is out of range", rule.SplitPercentage)
	}
	if rule.ThresholdMax != nil && !rule.ThresholdMax.GreaterThan(rule.ThresholdMin) {
		return commission.SplitRule{}, fmt.Errorf("threshold band [%s, %s) is empty", rule.ThresholdMin, rule.ThresholdMax)
	}
	added, err := e.rules.Add(ctx, rule)
	if err != nil {
		return commission.SplitRule{}, err
	}
	e.log.WithFields(logrus.Fields{
		"lead_source":    added.LeadSource,
		"effective_year": added.EffectiveYear,
		"threshold_min":  added.ThresholdMin.String(),
		"split":          added.SplitPercentage.String(),
	}).Info("split rule added")
	return added, nil
}

func (e *TierEngine) decide(ctx context.Context, teamID uuid.UUID, leadSource string, year int, cumulative decimal.Decimal) (commission.SplitDecision, error) {
	capStatus := commission.CapStatusFor(cumulative, e.cfg.Caps)

	rule, err := e.rules.Find(ctx, leadSource, year, cumulative)
	if err != nil {
		if errors.Is(err, commission.ErrNoMatchingRule) {
			fallbackSplitsTotal.Inc()
			e.log.WithFields(logrus.Fields{
				"team_id":     teamID,
				"lead_source": leadSourceOrDefault(leadSource),
				"year":        year,
				"cumulative":  cumulative.String(),
			}).Warn("no split rule matched; using fallback split")
			return commission.SplitDecision{
				SplitPercentage: e.cfg.FallbackSplit,
				CapStatus:       commission.CapStatusPre,
				RuleRef:         commission.DefaultLeadSource,
				Fallback:        true,
			}, nil
		}
		return commission.SplitDecision{}, err
	}

	return commission.SplitDecision{
		SplitPercentage: rule.SplitPercentage,
		CapStatus:       capStatus,
		RuleRef:         rule.Ref(),
	}, nil
}

func leadSourceOrDefault(s string) string {
	if s == "" {
		return commission.DefaultLeadSource
	}
	return s
}
