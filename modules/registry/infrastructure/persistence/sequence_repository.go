package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jaydenmetz/realty-core/modules/registry/domain/identifier"
	"github.com/jaydenmetz/realty-core/pkg/composables"
)

const (
	// A single atomic upsert: the conflicting UPDATE takes the row lock, so
	// concurrent callers for the same scope are serialized by the store.
	// Reading MAX(local_sequence)+1 would race and is deliberately absent.
	nextSequenceQuery = `
INSERT INTO entity_counters (team_id, entity_type, value)
VALUES ($1, $2, 1)
ON CONFLICT (team_id, entity_type)
DO UPDATE SET value = entity_counters.value + 1, updated_at = now()
RETURNING value
`

	nextYearSequenceQuery = `
INSERT INTO display_counters (team_id, entity_type, year, value)
VALUES ($1, $2, $3, 1)
ON CONFLICT (team_id, entity_type, year)
DO UPDATE SET value = display_counters.value + 1, updated_at = now()
RETURNING value
`

	registerHandleQuery = `
INSERT INTO global_handles (handle, team_id, entity_type)
VALUES ($1, $2, $3)
`
)

type SequenceRepository struct{}

func NewSequenceRepository() identifier.Repository {
	return &SequenceRepository{}
}

func (r *SequenceRepository) NextSequence(ctx context.Context, teamID uuid.UUID, entityType identifier.EntityType) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var value int64
	if err := tx.QueryRow(ctx, nextSequenceQuery, teamID, string(entityType)).Scan(&value); err != nil {
		return 0, errors.Wrapf(err, "next sequence for team %s %s", teamID, entityType)
	}
	return value, nil
}

func (r *SequenceRepository) NextYearSequence(ctx context.Context, teamID uuid.UUID, entityType identifier.EntityType, year int) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var value int64
	if err := tx.QueryRow(ctx, nextYearSequenceQuery, teamID, string(entityType), year).Scan(&value); err != nil {
		return 0, errors.Wrapf(err, "next year sequence for team %s %s year %d", teamID, entityType, year)
	}
	return value, nil
}

func (r *SequenceRepository) RegisterHandle(ctx context.Context, teamID uuid.UUID, entityType identifier.EntityType, handle string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, registerHandleQuery, handle, teamID, string(entityType)); err != nil {
		if isUniqueViolation(err) {
			return identifier.ErrAllocationConflict
		}
		return errors.Wrapf(err, "register handle %s", handle)
	}
	return nil
}
