package services_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jaydenmetz/realty-core/modules/registry/domain/identifier"
	"github.com/jaydenmetz/realty-core/modules/registry/services"
)

type memBackfillStore struct {
	candidates []identifier.BackfillCandidate
	assigned   map[uuid.UUID]identifier.Set
}

func (s *memBackfillStore) ListMissing(_ context.Context, _ uuid.UUID, _ identifier.EntityType) ([]identifier.BackfillCandidate, error) {
	out := make([]identifier.BackfillCandidate, len(s.candidates))
	copy(out, s.candidates)
	return out, nil
}

func (s *memBackfillStore) Assign(_ context.Context, recordID uuid.UUID, set identifier.Set) error {
	if s.assigned == nil {
		s.assigned = map[uuid.UUID]identifier.Set{}
	}
	s.assigned[recordID] = set
	return nil
}

func TestBackfillAssignsInCreationOrder(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ordered := make([]identifier.BackfillCandidate, 10)
	for i := range ordered {
		ordered[i] = identifier.BackfillCandidate{
			ID:        uuid.New(),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}

	// Present the candidates shuffled; assignment order must still follow
	// creation time.
	shuffled := make([]identifier.BackfillCandidate, len(ordered))
	copy(shuffled, ordered)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	store := &memBackfillStore{candidates: shuffled}
	allocator := services.NewAllocatorService(newMemSequenceRepo(), 3, newTestLogger()).
		WithClock(func() time.Time { return time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC) })
	svc := services.NewBackfillService(allocator, store, newTestLogger())

	n, err := svc.Run(context.Background(), uuid.New(), identifier.EntityLead)
	require.NoError(t, err)
	require.Equal(t, len(ordered), n)

	for i, c := range ordered {
		set, ok := store.assigned[c.ID]
		require.True(t, ok, "candidate %d was never assigned", i)
		require.Equal(t, int64(i+1), set.LocalSequence, "oldest record must receive the lowest sequence")
		require.True(t, set.IsComplete())
	}
}

func TestBackfillTiesBrokenByID(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := identifier.BackfillCandidate{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000a"), CreatedAt: ts}
	b := identifier.BackfillCandidate{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000b"), CreatedAt: ts}

	store := &memBackfillStore{candidates: []identifier.BackfillCandidate{b, a}}
	allocator := services.NewAllocatorService(newMemSequenceRepo(), 3, newTestLogger())
	svc := services.NewBackfillService(allocator, store, newTestLogger())

	_, err := svc.Run(context.Background(), uuid.New(), identifier.EntityClient)
	require.NoError(t, err)
	require.Equal(t, int64(1), store.assigned[a.ID].LocalSequence)
	require.Equal(t, int64(2), store.assigned[b.ID].LocalSequence)
}

func TestBackfillRejectsUnknownEntityType(t *testing.T) {
	svc := services.NewBackfillService(
		services.NewAllocatorService(newMemSequenceRepo(), 3, newTestLogger()),
		&memBackfillStore{},
		newTestLogger(),
	)
	_, err := svc.Run(context.Background(), uuid.New(), identifier.EntityType("nope"))
	require.ErrorIs(t, err, identifier.ErrUnknownEntityType)
}

func TestBackfillRunAllCoversEveryEntityType(t *testing.T) {
	ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := &memBackfillStore{candidates: []identifier.BackfillCandidate{{ID: uuid.New(), CreatedAt: ts}}}
	allocator := services.NewAllocatorService(newMemSequenceRepo(), 3, newTestLogger())
	svc := services.NewBackfillService(allocator, store, newTestLogger())

	n, err := svc.RunAll(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Equal(t, len(identifier.AllEntityTypes()), n)
}
