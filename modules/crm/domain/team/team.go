package team

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Team is the tenant unit. Every sequence, display code and commission ledger
// is scoped to exactly one team.
type Team struct {
	id        uuid.UUID
	name      string
	subdomain string
	settings  json.RawMessage
	isActive  bool
	createdAt time.Time
	updatedAt time.Time
}

func New(name, subdomain string) Team {
	return Team{
		name:      strings.TrimSpace(name),
		subdomain: normalizeSubdomain(subdomain),
		settings:  json.RawMessage(`{}`),
		isActive:  true,
	}
}

func Hydrate(
	id uuid.UUID,
	name string,
	subdomain string,
	settings json.RawMessage,
	isActive bool,
	createdAt time.Time,
	updatedAt time.Time,
) Team {
	return Team{
		id:        id,
		name:      strings.TrimSpace(name),
		subdomain: normalizeSubdomain(subdomain),
		settings:  settings,
		isActive:  isActive,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (t Team) ID() uuid.UUID              { return t.id }
func (t Team) Name() string               { return t.name }
func (t Team) Subdomain() string          { return t.subdomain }
func (t Team) Settings() json.RawMessage  { return t.settings }
func (t Team) IsActive() bool             { return t.isActive }
func (t Team) CreatedAt() time.Time       { return t.createdAt }
func (t Team) UpdatedAt() time.Time       { return t.updatedAt }
func (t Team) IsZero() bool               { return t.id == uuid.Nil && t.subdomain == "" }

func normalizeSubdomain(v string) string { return strings.ToLower(strings.TrimSpace(v)) }
