package persistence

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	gerrors "github.com/pkg/errors"

	"github.com/jaydenmetz/realty-core/modules/crm/domain/record"
	"github.com/jaydenmetz/realty-core/modules/registry/domain/identifier"
	"github.com/jaydenmetz/realty-core/pkg/composables"
)

const (
	recordFindQuery = `
SELECT id, team_id, entity_type, local_sequence, display_code, global_handle, payload, created_at
FROM entity_records
`

	recordInsertQuery = `
INSERT INTO entity_records (team_id, entity_type, local_sequence, display_code, global_handle, payload)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at
`
)

type RecordRepository struct{}

func NewRecordRepository() record.Repository {
	return &RecordRepository{}
}

func (r *RecordRepository) Insert(ctx context.Context, rec record.Record) (record.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return record.Record{}, err
	}

	payload := rec.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	if err := tx.QueryRow(
		ctx,
		recordInsertQuery,
		rec.TeamID,
		string(rec.EntityType),
		rec.LocalSequence,
		rec.DisplayCode,
		rec.GlobalHandle,
		payload,
	).Scan(&rec.ID, &rec.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return record.Record{}, identifier.ErrAllocationConflict
		}
		return record.Record{}, gerrors.Wrap(err, "insert entity record")
	}
	return rec, nil
}

func (r *RecordRepository) GetByGlobalHandle(ctx context.Context, handle string) (record.Record, error) {
	return r.getOne(ctx, recordFindQuery+" WHERE global_handle = $1", handle)
}

func (r *RecordRepository) GetByDisplayCode(ctx context.Context, teamID uuid.UUID, entityType identifier.EntityType, displayCode string) (record.Record, error) {
	return r.getOne(
		ctx,
		recordFindQuery+" WHERE team_id = $1 AND entity_type = $2 AND display_code = $3",
		teamID, string(entityType), displayCode,
	)
}

func (r *RecordRepository) getOne(ctx context.Context, query string, args ...any) (record.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return record.Record{}, err
	}

	var (
		rec        record.Record
		entityType string
	)
	if err := tx.QueryRow(ctx, query, args...).Scan(
		&rec.ID,
		&rec.TeamID,
		&entityType,
		&rec.LocalSequence,
		&rec.DisplayCode,
		&rec.GlobalHandle,
		&rec.Payload,
		&rec.CreatedAt,
	); err != nil {
		if gerrors.Is(err, pgx.ErrNoRows) {
			return record.Record{}, record.ErrNotFound
		}
		return record.Record{}, err
	}
	rec.EntityType = identifier.EntityType(entityType)
	return rec, nil
}
