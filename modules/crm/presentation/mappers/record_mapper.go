package mappers

import (
	"time"

	commissionmappers "github.com/jaydenmetz/realty-core/modules/commission/presentation/mappers"
	"github.com/jaydenmetz/realty-core/modules/crm/domain/record"
	"github.com/jaydenmetz/realty-core/modules/crm/domain/team"
	"github.com/jaydenmetz/realty-core/modules/crm/presentation/viewmodels"
	"github.com/jaydenmetz/realty-core/modules/crm/services"
)

func RecordToViewModel(r record.Record) *viewmodels.EntityRecord {
	return &viewmodels.EntityRecord{
		ID:            r.ID.String(),
		TeamID:        r.TeamID.String(),
		EntityType:    string(r.EntityType),
		LocalSequence: r.LocalSequence,
		DisplayCode:   r.DisplayCode,
		GlobalHandle:  r.GlobalHandle,
		Payload:       r.Payload,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}

func CreatedToViewModel(cr services.CreatedRecord) *viewmodels.EntityRecord {
	vm := RecordToViewModel(cr.Record)
	if cr.Commission != nil {
		vm.Commission = commissionmappers.RecordToViewModel(*cr.Commission)
	}
	return vm
}

func TeamToViewModel(t team.Team) *viewmodels.Team {
	return &viewmodels.Team{
		ID:        t.ID().String(),
		Name:      t.Name(),
		Subdomain: t.Subdomain(),
		IsActive:  t.IsActive(),
		CreatedAt: t.CreatedAt().Format(time.RFC3339),
	}
}
