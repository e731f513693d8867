package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jaydenmetz/realty-core/modules/registry/domain/identifier"
)

// AllocatorService mints the three-tier identifier set for a record. All
// increments happen through the repository inside the caller's transaction, so
// a failure at any step leaves no partial identifier state behind.
type AllocatorService struct {
	repo     identifier.Repository
	clock    func() time.Time
	padWidth int
	log      *logrus.Logger
}

func NewAllocatorService(repo identifier.Repository, padWidth int, log *logrus.Logger) *AllocatorService {
	return &AllocatorService{
		repo:     repo,
		clock:    time.Now,
		padWidth: padWidth,
		log:      log,
	}
}

// WithClock overrides the allocation clock. Intended for tests and backdated
// tooling; production callers keep time.Now.
func (s *AllocatorService) WithClock(clock func() time.Time) *AllocatorService {
	s.clock = clock
	return s
}

func (s *AllocatorService) Allocate(ctx context.Context, teamID uuid.UUID, entityType identifier.EntityType) (identifier.Set, error) {
	if !entityType.Valid() {
		return identifier.Set{}, identifier.ErrUnknownEntityType
	}

	seq, err := s.repo.NextSequence(ctx, teamID, entityType)
	if err != nil {
		allocationsTotal.WithLabelValues(string(entityType), "error").Inc()
		return identifier.Set{}, err
	}

	year := s.clock().Year()
	yearSeq, err := s.repo.NextYearSequence(ctx, teamID, entityType, year)
	if err != nil {
		allocationsTotal.WithLabelValues(string(entityType), "error").Inc()
		return identifier.Set{}, err
	}

	handle := identifier.NewGlobalHandle(entityType, uuid.New())
	if err := s.repo.RegisterHandle(ctx, teamID, entityType, handle); err != nil {
		allocationsTotal.WithLabelValues(string(entityType), "conflict").Inc()
		s.log.WithFields(logrus.Fields{
			"team_id":     teamID,
			"entity_type": entityType,
			"handle":      handle,
		}).WithError(err).Error("global handle registration failed")
		return identifier.Set{}, err
	}

	set := identifier.Set{
		LocalSequence: seq,
		DisplayCode:   identifier.FormatDisplayCode(entityType, year, yearSeq, s.padWidth),
		GlobalHandle:  handle,
	}
	allocationsTotal.WithLabelValues(string(entityType), "ok").Inc()
	return set, nil
}
