package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	gerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/jaydenmetz/realty-core/modules/commission/domain/commission"
	"github.com/jaydenmetz/realty-core/pkg/composables"
)

const (
	// Strictly-before sum over active records within asOf's calendar year.
	// Same-day transactions never see each other, which keeps recomputation
	// order-independent for same-day batch entry.
	cumulativeGCIQuery = `
SELECT COALESCE(SUM(gross_commission), 0)::text
FROM commission_records
WHERE team_id = $1
  AND corrected_by IS NULL
  AND recognition_date >= $2
  AND recognition_date < $3
`

	recordColumns = `
id, team_id, entity_record_id, lead_source, gross_commission::text, recognition_date,
cumulative_gci_before::text, split_percentage::text, cap_status, split_rule_ref,
gross_agent_commission::text, transaction_fee::text, coordination_fee::text,
franchise_fee::text, net_agent_income::text, company_commission::text,
kind, original_id, correction_reason, corrected_by, created_at
`

	insertRecordQuery = `
INSERT INTO commission_records (
	id, team_id, entity_record_id, lead_source, gross_commission, recognition_date,
	cumulative_gci_before, split_percentage, cap_status, split_rule_ref,
	gross_agent_commission, transaction_fee, coordination_fee, franchise_fee,
	net_agent_income, company_commission, kind, original_id, correction_reason
) VALUES (
	$1, $2, $3, $4, $5::numeric, $6,
	$7::numeric, $8::numeric, $9, $10,
	$11::numeric, $12::numeric, $13::numeric, $14::numeric,
	$15::numeric, $16::numeric, $17, $18, $19
)
RETURNING created_at
`

	markCorrectedQuery = `
UPDATE commission_records
SET corrected_by = $2
WHERE id = $1 AND corrected_by IS NULL
`
)

type RecordRepository struct{}

func NewRecordRepository() commission.RecordRepository {
	return &RecordRepository{}
}

func (r *RecordRepository) CumulativeGCIBefore(ctx context.Context, teamID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	yearStart := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	var sumText string
	if err := tx.QueryRow(ctx, cumulativeGCIQuery, teamID, yearStart, asOf).Scan(&sumText); err != nil {
		return decimal.Zero, gerrors.Wrapf(err, "cumulative gci for team %s before %s", teamID, asOf.Format("2006-01-02"))
	}
	return decimalFromText(sumText)
}

func (r *RecordRepository) Insert(ctx context.Context, rec commission.Record) (commission.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return commission.Record{}, err
	}

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	b := rec.Breakdown
	if err := tx.QueryRow(
		ctx,
		insertRecordQuery,
		rec.ID,
		rec.TeamID,
		rec.EntityRecordID,
		rec.LeadSource,
		rec.GrossCommission.String(),
		rec.RecognitionDate,
		b.CumulativeGCIBefore.String(),
		b.SplitPercentage.String(),
		string(b.CapStatus),
		b.RuleRef,
		b.GrossAgentCommission.String(),
		b.TransactionFee.String(),
		b.CoordinationFee.String(),
		b.FranchiseFee.String(),
		b.NetAgentIncome.String(),
		b.CompanyCommission.String(),
		string(rec.Kind),
		rec.OriginalID,
		rec.CorrectionReason,
	).Scan(&rec.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return commission.Record{}, commission.ErrFrozenBreakdown
		}
		return commission.Record{}, gerrors.Wrap(err, "insert commission record")
	}
	return rec, nil
}

func (r *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (commission.Record, error) {
	return r.getOne(ctx, "SELECT "+recordColumns+" FROM commission_records WHERE id = $1", id)
}

func (r *RecordRepository) GetActiveForEntity(ctx context.Context, entityRecordID uuid.UUID) (commission.Record, error) {
	return r.getOne(ctx, "SELECT "+recordColumns+" FROM commission_records WHERE entity_record_id = $1 AND corrected_by IS NULL", entityRecordID)
}

func (r *RecordRepository) ListForTeam(ctx context.Context, teamID uuid.UUID, limit, offset int) ([]commission.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := tx.Query(
		ctx,
		"SELECT "+recordColumns+" FROM commission_records WHERE team_id = $1 ORDER BY recognition_date, created_at LIMIT $2 OFFSET $3",
		teamID, limit, offset,
	)
	if err != nil {
		return nil, gerrors.Wrapf(err, "list commission records for team %s", teamID)
	}
	defer rows.Close()

	var out []commission.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *RecordRepository) MarkCorrected(ctx context.Context, originalID, correctedID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, markCorrectedQuery, originalID, correctedID)
	if err != nil {
		return gerrors.Wrapf(err, "mark record %s corrected", originalID)
	}
	if tag.RowsAffected() == 0 {
		return commission.ErrFrozenBreakdown
	}
	return nil
}

func (r *RecordRepository) getOne(ctx context.Context, query string, arg any) (commission.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return commission.Record{}, err
	}

	rec, err := scanRecord(tx.QueryRow(ctx, query, arg))
	if err != nil {
		if gerrors.Is(err, pgx.ErrNoRows) {
			return commission.Record{}, commission.ErrRecordNotFound
		}
		return commission.Record{}, err
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (commission.Record, error) {
	var (
		rec commission.Record

		grossText      string
		cumBeforeText  string
		splitText      string
		capStatus      string
		grossAgentText string
		txFeeText      string
		tcFeeText      string
		franchiseText  string
		netText        string
		companyText    string
		kind           string
	)

	if err := row.Scan(
		&rec.ID, &rec.TeamID, &rec.EntityRecordID, &rec.LeadSource, &grossText, &rec.RecognitionDate,
		&cumBeforeText, &splitText, &capStatus, &rec.Breakdown.RuleRef,
		&grossAgentText, &txFeeText, &tcFeeText,
		&franchiseText, &netText, &companyText,
		&kind, &rec.OriginalID, &rec.CorrectionReason, &rec.CorrectedBy, &rec.CreatedAt,
	); err != nil {
		return commission.Record{}, err
	}

	rec.Kind = commission.Kind(kind)
	rec.Breakdown.CapStatus = commission.CapStatus(capStatus)

	for _, f := range []struct {
		text string
		dst  *decimal.Decimal
	}{
		{grossText, &rec.GrossCommission},
		{cumBeforeText, &rec.Breakdown.CumulativeGCIBefore},
		{splitText, &rec.Breakdown.SplitPercentage},
		{grossAgentText, &rec.Breakdown.GrossAgentCommission},
		{txFeeText, &rec.Breakdown.TransactionFee},
		{tcFeeText, &rec.Breakdown.CoordinationFee},
		{franchiseText, &rec.Breakdown.FranchiseFee},
		{netText, &rec.Breakdown.NetAgentIncome},
		{companyText, &rec.Breakdown.CompanyCommission},
	} {
		d, err := decimalFromText(f.text)
		if err != nil {
			return commission.Record{}, err
		}
		*f.dst = d
	}

	rec.Breakdown.GrossCommission = rec.GrossCommission
	rec.Breakdown.CumulativeGCIAfter = rec.Breakdown.CumulativeGCIBefore.Add(rec.GrossCommission)
	rec.Breakdown.TotalDeductions = rec.Breakdown.TransactionFee.
		Add(rec.Breakdown.CoordinationFee).
		Add(rec.Breakdown.FranchiseFee)
	return rec, nil
}
