package identifier

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository hands out serialized counter increments and registers global
// handles. Implementations must make NextSequence and NextYearSequence
// single-writer per scope: two concurrent calls for the same key must be
// strictly ordered by the store, never computed from a stale read.
type Repository interface {
	NextSequence(ctx context.Context, teamID uuid.UUID, entityType EntityType) (int64, error)
	NextYearSequence(ctx context.Context, teamID uuid.UUID, entityType EntityType, year int) (int64, error)
	// RegisterHandle returns ErrAllocationConflict when the handle already
	// exists anywhere in the system.
	RegisterHandle(ctx context.Context, teamID uuid.UUID, entityType EntityType, handle string) error
}

// BackfillCandidate is a legacy record awaiting identifiers.
type BackfillCandidate struct {
	ID        uuid.UUID
	CreatedAt time.Time
}

// BackfillStore lists and repairs records persisted before the three-tier
// identifier system existed.
type BackfillStore interface {
	ListMissing(ctx context.Context, teamID uuid.UUID, entityType EntityType) ([]BackfillCandidate, error)
	Assign(ctx context.Context, recordID uuid.UUID, set Set) error
}
