package identifier

import (
	"strings"
)

// EntityType enumerates the record kinds that carry three-tier identifiers.
type EntityType string

const (
	EntityEscrow      EntityType = "escrow"
	EntityListing     EntityType = "listing"
	EntityClient      EntityType = "client"
	EntityLead        EntityType = "lead"
	EntityAppointment EntityType = "appointment"
)

// prefixes is the static per-entity-type display prefix table. It is not
// runtime-configurable.
var prefixes = map[EntityType]string{
	EntityEscrow:      "ESC",
	EntityListing:     "LST",
	EntityClient:      "CLT",
	EntityLead:        "LED",
	EntityAppointment: "APT",
}

func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityEscrow,
		EntityListing,
		EntityClient,
		EntityLead,
		EntityAppointment,
	}
}

func ParseEntityType(s string) (EntityType, error) {
	et := EntityType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := prefixes[et]; !ok {
		return "", ErrUnknownEntityType
	}
	return et, nil
}

func (e EntityType) Valid() bool {
	_, ok := prefixes[e]
	return ok
}

// Prefix returns the uppercase display-code prefix, e.g. escrow -> ESC.
func (e EntityType) Prefix() string {
	return prefixes[e]
}

// HandlePrefix returns the lowercase prefix used in global handles.
func (e EntityType) HandlePrefix() string {
	return strings.ToLower(prefixes[e])
}
