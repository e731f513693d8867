package persistence

import (
	"context"
	"database/sql"

	gerrors "github.com/pkg/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jaydenmetz/realty-core/modules/commission/domain/commission"
	"github.com/jaydenmetz/realty-core/pkg/composables"
)

const (
	// Exact lead-source match wins over the default rule; within a source the
	// highest matching lower bound wins. Bands are half-open [min, max).
	findRuleQuery = `
SELECT id, lead_source, effective_year, gci_threshold_min::text, gci_threshold_max::text, split_percentage::text, notes
FROM commission_split_rules
WHERE (lead_source = $1 OR lead_source = 'default')
  AND effective_year = $2
  AND gci_threshold_min <= $3::numeric
  AND (gci_threshold_max IS NULL OR gci_threshold_max > $3::numeric)
ORDER BY
  CASE WHEN lead_source = $1 THEN 0 ELSE 1 END,
  gci_threshold_min DESC
LIMIT 1
`

	insertRuleQuery = `
INSERT INTO commission_split_rules (lead_source, effective_year, gci_threshold_min, gci_threshold_max, split_percentage, notes)
VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6)
RETURNING id
`

	listRulesQuery = `
SELECT id, lead_source, effective_year, gci_threshold_min::text, gci_threshold_max::text, split_percentage::text, notes
FROM commission_split_rules
WHERE effective_year = $1
ORDER BY lead_source, gci_threshold_min
`
)

type SplitRuleRepository struct{}

func NewSplitRuleRepository() commission.RuleRepository {
	return &SplitRuleRepository{}
}

func (r *SplitRuleRepository) Find(ctx context.Context, leadSource string, year int, cumulative decimal.Decimal) (commission.SplitRule, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return commission.SplitRule{}, err
	}

	if leadSource == "" {
		leadSource = commission.DefaultLeadSource
	}

	row := tx.QueryRow(ctx, findRuleQuery, leadSource, year, cumulative.String())
	rule, err := scanRule(row)
	if err != nil {
		if gerrors.Is(err, pgx.ErrNoRows) {
			return commission.SplitRule{}, commission.ErrNoMatchingRule
		}
		return commission.SplitRule{}, gerrors.Wrapf(err, "find split rule for %s/%d", leadSource, year)
	}
	return rule, nil
}

func (r *SplitRuleRepository) Add(ctx context.Context, rule commission.SplitRule) (commission.SplitRule, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return commission.SplitRule{}, err
	}

	var max any
	if rule.ThresholdMax != nil {
		max = rule.ThresholdMax.String()
	}
	if rule.LeadSource == "" {
		rule.LeadSource = commission.DefaultLeadSource
	}

	if err := tx.QueryRow(
		ctx,
		insertRuleQuery,
		rule.LeadSource,
		rule.EffectiveYear,
		rule.ThresholdMin.String(),
		max,
		rule.SplitPercentage.String(),
		rule.Notes,
	).Scan(&rule.ID); err != nil {
		return commission.SplitRule{}, gerrors.Wrap(err, "insert split rule")
	}
	return rule, nil
}

func (r *SplitRuleRepository) ListForYear(ctx context.Context, year int) ([]commission.SplitRule, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, listRulesQuery, year)
	if err != nil {
		return nil, gerrors.Wrapf(err, "list split rules for %d", year)
	}
	defer rows.Close()

	var out []commission.SplitRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func scanRule(row pgx.Row) (commission.SplitRule, error) {
	var (
		rule     commission.SplitRule
		minText  string
		maxText  sql.NullString
		pctText  string
	)
	if err := row.Scan(&rule.ID, &rule.LeadSource, &rule.EffectiveYear, &minText, &maxText, &pctText, &rule.Notes); err != nil {
		return commission.SplitRule{}, err
	}

	var err error
	if rule.ThresholdMin, err = decimalFromText(minText); err != nil {
		return commission.SplitRule{}, err
	}
	if rule.ThresholdMax, err = decimalPtrFromNull(maxText); err != nil {
		return commission.SplitRule{}, err
	}
	if rule.SplitPercentage, err = decimalFromText(pctText); err != nil {
		return commission.SplitRule{}, err
	}
	return rule, nil
}
