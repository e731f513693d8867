package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	gerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/jaydenmetz/realty-core/modules/commission/domain/commission"
	commissionservices "github.com/jaydenmetz/realty-core/modules/commission/services"
	"github.com/jaydenmetz/realty-core/modules/crm/domain/record"
	"github.com/jaydenmetz/realty-core/modules/crm/domain/team"
	"github.com/jaydenmetz/realty-core/modules/registry/domain/identifier"
	registryservices "github.com/jaydenmetz/realty-core/modules/registry/services"
	"github.com/jaydenmetz/realty-core/pkg/composables"
)

// CommissionDTO is the optional commission payload attached to an escrow at
// creation time.
type CommissionDTO struct {
	LeadSource      string
	GrossCommission decimal.Decimal
	RecognitionDate time.Time
}

type CreateDTO struct {
	TeamID     uuid.UUID
	EntityType identifier.EntityType
	Payload    json.RawMessage
	Commission *CommissionDTO
}

// CreatedRecord bundles the stored entity row with the frozen commission
// record, when one was produced.
type CreatedRecord struct {
	Record     record.Record
	Commission *commission.Record
}

// RecordService is the write-side facade: one call allocates all three
// identifier tiers, stores the entity row, and closes the commission for
// commission-bearing entities, all inside a single transaction.
type RecordService struct {
	teams     team.Repository
	records   record.Repository
	allocator *registryservices.AllocatorService
	engine    *commissionservices.TierEngine
	log       *logrus.Logger

	inTx func(context.Context, func(context.Context) error) error
}

func NewRecordService(
	teams team.Repository,
	records record.Repository,
	allocator *registryservices.AllocatorService,
	engine *commissionservices.TierEngine,
	log *logrus.Logger,
) *RecordService {
	return &RecordService{
		teams:     teams,
		records:   records,
		allocator: allocator,
		engine:    engine,
		log:       log,
		inTx:      composables.InTx,
	}
}

func (s *RecordService) Create(ctx context.Context, dto CreateDTO) (CreatedRecord, error) {
	if !dto.EntityType.Valid() {
		return CreatedRecord{}, identifier.ErrUnknownEntityType
	}

	var out CreatedRecord
	err := s.inTx(ctx, func(txCtx context.Context) error {
		t, err := s.teams.GetByID(txCtx, dto.TeamID)
		if err != nil {
			return err
		}
		if !t.IsActive() {
			return gerrors.Wrapf(team.ErrNotFound, "team %s is inactive", dto.TeamID)
		}

		set, err := s.allocator.Allocate(txCtx, dto.TeamID, dto.EntityType)
		if err != nil {
			return err
		}

		rec, err := s.records.Insert(txCtx, record.Record{
			TeamID:        dto.TeamID,
			EntityType:    dto.EntityType,
			LocalSequence: set.LocalSequence,
			DisplayCode:   set.DisplayCode,
			GlobalHandle:  set.GlobalHandle,
			Payload:       dto.Payload,
		})
		if err != nil {
			return err
		}
		out.Record = rec

		if dto.Commission != nil && dto.EntityType == identifier.EntityEscrow {
			closed, err := s.engine.Close(txCtx, commissionservices.CloseDTO{
				TeamID:          dto.TeamID,
				EntityRecordID:  &rec.ID,
				LeadSource:      dto.Commission.LeadSource,
				GrossCommission: dto.Commission.GrossCommission,
				RecognitionDate: dto.Commission.RecognitionDate,
			})
			if err != nil {
				return err
			}
			out.Commission = &closed
		}
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"team_id":     dto.TeamID,
			"entity_type": dto.EntityType,
		}).Error("record creation rolled back")
		return CreatedRecord{}, err
	}
	return out, nil
}

func (s *RecordService) GetByGlobalHandle(ctx context.Context, handle string) (record.Record, error) {
	return s.records.GetByGlobalHandle(ctx, handle)
}

func (s *RecordService) GetByDisplayCode(ctx context.Context, teamID uuid.UUID, entityType identifier.EntityType, code string) (record.Record, error) {
	return s.records.GetByDisplayCode(ctx, teamID, entityType, code)
}
