package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jaydenmetz/realty-core/modules/registry/domain/identifier"
	"github.com/jaydenmetz/realty-core/pkg/composables"
)

const (
	listMissingQuery = `
SELECT id, created_at
FROM entity_records
WHERE team_id = $1 AND entity_type = $2 AND local_sequence IS NULL
ORDER BY created_at, id
`

	assignIdentifiersQuery = `
UPDATE entity_records
SET local_sequence = $2, display_code = $3, global_handle = $4
WHERE id = $1 AND local_sequence IS NULL
`
)

type BackfillRepository struct{}

func NewBackfillRepository() identifier.BackfillStore {
	return &BackfillRepository{}
}

func (r *BackfillRepository) ListMissing(ctx context.Context, teamID uuid.UUID, entityType identifier.EntityType) ([]identifier.BackfillCandidate, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, listMissingQuery, teamID, string(entityType))
	if err != nil {
		return nil, errors.Wrapf(err, "list records missing identifiers for team %s %s", teamID, entityType)
	}
	defer rows.Close()

	var out []identifier.BackfillCandidate
	for rows.Next() {
		var c identifier.BackfillCandidate
		if err := rows.Scan(&c.ID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *BackfillRepository) Assign(ctx context.Context, recordID uuid.UUID, set identifier.Set) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, assignIdentifiersQuery, recordID, set.LocalSequence, set.DisplayCode, set.GlobalHandle)
	if err != nil {
		if isUniqueViolation(err) {
			return identifier.ErrAllocationConflict
		}
		return errors.Wrapf(err, "assign identifiers to record %s", recordID)
	}
	if tag.RowsAffected() == 0 {
		return errors.Errorf("record %s already carries identifiers", recordID)
	}
	return nil
}
