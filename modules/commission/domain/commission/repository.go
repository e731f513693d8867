package commission

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RuleRepository reads the administrative split-rule schedule. Mutation is an
// administrative operation; this core only adds rules through tooling.
type RuleRepository interface {
	// Find returns the band containing cumulative for (leadSource, year),
	// preferring an exact lead-source match over the default rule. Returns
	// ErrNoMatchingRule when no band covers the value.
	Find(ctx context.Context, leadSource string, year int, cumulative decimal.Decimal) (SplitRule, error)
	Add(ctx context.Context, rule SplitRule) (SplitRule, error)
	ListForYear(ctx context.Context, year int) ([]SplitRule, error)
}

// RecordRepository persists frozen commission records. There is deliberately
// no update operation for financial columns.
type RecordRepository interface {
	// CumulativeGCIBefore sums gross commission over the team's active
	// records with recognition_date strictly before asOf, within asOf's
	// calendar year.
	CumulativeGCIBefore(ctx context.Context, teamID uuid.UUID, asOf time.Time) (decimal.Decimal, error)
	Insert(ctx context.Context, rec Record) (Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (Record, error)
	GetActiveForEntity(ctx context.Context, entityRecordID uuid.UUID) (Record, error)
	ListForTeam(ctx context.Context, teamID uuid.UUID, limit, offset int) ([]Record, error)
	// MarkCorrected points the original at its superseding record. Financial
	// columns are untouched.
	MarkCorrected(ctx context.Context, originalID, correctedID uuid.UUID) error
}
