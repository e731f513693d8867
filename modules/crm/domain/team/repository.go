package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("team not found")
	ErrSubdomainTaken = errors.New("subdomain already in use")
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Team, error)
	GetBySubdomain(ctx context.Context, subdomain string) (Team, error)
	List(ctx context.Context) ([]Team, error)
	Create(ctx context.Context, t Team) (Team, error)
}
