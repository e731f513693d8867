package commission

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind distinguishes originally computed records from administrative
// corrections. There is no in-place recompute: a correction is a new record
// pointing at the original, and the original stays as the audit trail.
type Kind string

const (
	KindOriginal  Kind = "original"
	KindCorrected Kind = "corrected"
)

// Record is one frozen commission computation. Once persisted, the breakdown
// and its split decision never change; CorrectedBy is the only mutable
// attribute, and it only ever goes from nil to the id of the superseding
// record.
type Record struct {
	ID               uuid.UUID
	TeamID           uuid.UUID
	EntityRecordID   *uuid.UUID
	LeadSource       string
	GrossCommission  decimal.Decimal
	RecognitionDate  time.Time
	Breakdown        Breakdown
	Kind             Kind
	OriginalID       *uuid.UUID
	CorrectionReason string
	CorrectedBy      *uuid.UUID
	CreatedAt        time.Time
}

// Active reports whether this record still counts toward cumulative GCI.
func (r Record) Active() bool {
	return r.CorrectedBy == nil
}
