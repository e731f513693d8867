package viewmodels

import (
	"encoding/json"

	commissionviewmodels "github.com/jaydenmetz/realty-core/modules/commission/presentation/viewmodels"
)

type EntityRecord struct {
	ID            string          `json:"id"`
	TeamID        string          `json:"team_id"`
	EntityType    string          `json:"entity_type"`
	LocalSequence int64           `json:"local_sequence"`
	DisplayCode   string          `json:"display_code"`
	GlobalHandle  string          `json:"global_handle"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	CreatedAt     string          `json:"created_at"`

	Commission *commissionviewmodels.CommissionRecord `json:"commission,omitempty"`
}

type Team struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}
