package record

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jaydenmetz/realty-core/modules/registry/domain/identifier"
)

var ErrNotFound = errors.New("record not found")

// Record is one tenant-scoped entity row carrying the three-tier identifier
// set. The identifier fields are written once at creation and never mutated.
type Record struct {
	ID            uuid.UUID
	TeamID        uuid.UUID
	EntityType    identifier.EntityType
	LocalSequence int64
	DisplayCode   string
	GlobalHandle  string
	Payload       json.RawMessage
	CreatedAt     time.Time
}

type Repository interface {
	Insert(ctx context.Context, r Record) (Record, error)
	GetByGlobalHandle(ctx context.Context, handle string) (Record, error)
	GetByDisplayCode(ctx context.Context, teamID uuid.UUID, entityType identifier.EntityType, displayCode string) (Record, error)
}
