package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jaydenmetz/realty-core/modules/registry/domain/identifier"
)

// BackfillService assigns identifiers to legacy records. Ordering is by
// creation timestamp with the row id as tiebreaker, so re-running against the
// same input always yields the same sequence assignment regardless of how the
// store iterated.
type BackfillService struct {
	allocator *AllocatorService
	store     identifier.BackfillStore
	log       *logrus.Logger
}

func NewBackfillService(allocator *AllocatorService, store identifier.BackfillStore, log *logrus.Logger) *BackfillService {
	return &BackfillService{
		allocator: allocator,
		store:     store,
		log:       log,
	}
}

// Run backfills one (team, entityType) scope and returns the number of
// records repaired. The caller is expected to wrap it in a transaction; any
// failure aborts the whole batch.
func (s *BackfillService) Run(ctx context.Context, teamID uuid.UUID, entityType identifier.EntityType) (int, error) {
	if !entityType.Valid() {
		return 0, identifier.ErrUnknownEntityType
	}

	candidates, err := s.store.ListMissing(ctx, teamID, entityType)
	if err != nil {
		return 0, err
	}

	// The store already orders; sort again so correctness does not hinge on a
	// particular implementation's iteration order.
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})

	for _, c := range candidates {
		set, err := s.allocator.Allocate(ctx, teamID, entityType)
		if err != nil {
			return 0, err
		}
		if err := s.store.Assign(ctx, c.ID, set); err != nil {
			return 0, err
		}
	}

	if len(candidates) > 0 {
		s.log.WithFields(logrus.Fields{
			"team_id":     teamID,
			"entity_type": entityType,
			"count":       len(candidates),
		}).Info("backfilled identifiers")
	}
	return len(candidates), nil
}

// RunAll backfills every entity type for a team.
func (s *BackfillService) RunAll(ctx context.Context, teamID uuid.UUID) (int, error) {
	total := 0
	for _, et := range identifier.AllEntityTypes() {
		n, err := s.Run(ctx, teamID, et)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
