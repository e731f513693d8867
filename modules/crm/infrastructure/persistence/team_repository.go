package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	gerrors "github.com/pkg/errors"

	"github.com/jaydenmetz/realty-core/modules/crm/domain/team"
	"github.com/jaydenmetz/realty-core/pkg/composables"
)

const (
	teamFindQuery = `SELECT id, name, subdomain, settings, is_active, created_at, updated_at FROM teams`

	teamInsertQuery = `
INSERT INTO teams (name, subdomain, settings, is_active)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at
`
)

type TeamRepository struct{}

func NewTeamRepository() team.Repository {
	return &TeamRepository{}
}

func (r *TeamRepository) GetByID(ctx context.Context, id uuid.UUID) (team.Team, error) {
	return r.getOne(ctx, teamFindQuery+" WHERE id = $1", id)
}

func (r *TeamRepository) GetBySubdomain(ctx context.Context, subdomain string) (team.Team, error) {
	return r.getOne(ctx, teamFindQuery+" WHERE subdomain = $1", subdomain)
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, teamFindQuery+" ORDER BY name")
	if err != nil {
		return nil, gerrors.Wrap(err, "list teams")
	}
	defer rows.Close()

	var out []team.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) (team.Team, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return team.Team{}, err
	}

	settings := t.Settings()
	if len(settings) == 0 {
		settings = json.RawMessage(`{}`)
	}

	var (
		id        uuid.UUID
		createdAt time.Time
		updatedAt time.Time
	)
	if err := tx.QueryRow(ctx, teamInsertQuery, t.Name(), t.Subdomain(), settings, t.IsActive()).
		Scan(&id, &createdAt, &updatedAt); err != nil {
		if isUniqueViolation(err) {
			return team.Team{}, team.ErrSubdomainTaken
		}
		return team.Team{}, gerrors.Wrapf(err, "create team %s", t.Subdomain())
	}

	return team.Hydrate(id, t.Name(), t.Subdomain(), settings, t.IsActive(), createdAt, updatedAt), nil
}

func (r *TeamRepository) getOne(ctx context.Context, query string, arg any) (team.Team, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return team.Team{}, err
	}

	t, err := scanTeam(tx.QueryRow(ctx, query, arg))
	if err != nil {
		if gerrors.Is(err, pgx.ErrNoRows) {
			return team.Team{}, team.ErrNotFound
		}
		return team.Team{}, err
	}
	return t, nil
}

func scanTeam(row pgx.Row) (team.Team, error) {
	var (
		id        uuid.UUID
		name      string
		subdomain string
		settings  json.RawMessage
		isActive  bool
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &subdomain, &settings, &isActive, &createdAt, &updatedAt); err != nil {
		return team.Team{}, err
	}
	return team.Hydrate(id, name, subdomain, settings, isActive, createdAt, updatedAt), nil
}
