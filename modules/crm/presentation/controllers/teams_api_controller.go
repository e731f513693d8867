package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jaydenmetz/realty-core/modules/crm/domain/team"
	"github.com/jaydenmetz/realty-core/modules/crm/presentation/mappers"
	"github.com/jaydenmetz/realty-core/modules/crm/presentation/viewmodels"
	"github.com/jaydenmetz/realty-core/modules/crm/services"
	"github.com/jaydenmetz/realty-core/pkg/httpapi"
)

type TeamsAPIController struct {
	teams    *services.TeamService
	basePath string
}

func NewTeamsAPIController(teams *services.TeamService) httpapi.Controller {
	return &TeamsAPIController{
		teams:    teams,
		basePath: "/api/v1/teams",
	}
}

func (c *TeamsAPIController) Key() string {
	return c.basePath
}

func (c *TeamsAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{subdomain}", c.GetBySubdomain).Methods(http.MethodGet)
}

func (c *TeamsAPIController) List(w http.ResponseWriter, r *http.Request) {
	teams, err := c.teams.List(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "TEAM_INTERNAL", "internal error", nil)
		return
	}
	out := make([]*viewmodels.Team, 0, len(teams))
	for _, t := range teams {
		out = append(out, mappers.TeamToViewModel(t))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

type createTeamRequest struct {
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
}

func (c *TeamsAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "TEAM_INVALID_JSON", "invalid json", nil)
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Subdomain) == "" {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "TEAM_VALIDATION_FAILED", "name and subdomain are required", nil)
		return
	}

	created, err := c.teams.Create(r.Context(), strings.TrimSpace(req.Name), req.Subdomain)
	if err != nil {
		if errors.Is(err, team.ErrSubdomainTaken) {
			_ = httpapi.WriteError(w, http.StatusConflict, "TEAM_SUBDOMAIN_TAKEN", "subdomain already exists", nil)
			return
		}
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "TEAM_INTERNAL", "internal error", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.TeamToViewModel(created))
}

func (c *TeamsAPIController) GetBySubdomain(w http.ResponseWriter, r *http.Request) {
	t, err := c.teams.GetBySubdomain(r.Context(), mux.Vars(r)["subdomain"])
	if err != nil {
		if errors.Is(err, team.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "TEAM_NOT_FOUND", "team not found", nil)
			return
		}
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "TEAM_INTERNAL", "internal error", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.TeamToViewModel(t))
}
