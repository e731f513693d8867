package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/jaydenmetz/realty-core/modules/crm/domain/team"
	"github.com/jaydenmetz/realty-core/pkg/composables"
)

type TeamService struct {
	repo team.Repository
}

func NewTeamService(repo team.Repository) *TeamService {
	return &TeamService{repo: repo}
}

func (s *TeamService) GetByID(ctx context.Context, id uuid.UUID) (team.Team, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TeamService) GetBySubdomain(ctx context.Context, subdomain string) (team.Team, error) {
	return s.repo.GetBySubdomain(ctx, subdomain)
}

func (s *TeamService) List(ctx context.Context) ([]team.Team, error) {
	return s.repo.List(ctx)
}

func (s *TeamService) Create(ctx context.Context, name, subdomain string) (team.Team, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (team.Team, error) {
		return s.repo.Create(txCtx, team.New(name, subdomain))
	})
}
