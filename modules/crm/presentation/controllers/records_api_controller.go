package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/jaydenmetz/realty-core/modules/crm/domain/record"
	"github.com/jaydenmetz/realty-core/modules/crm/domain/team"
	"github.com/jaydenmetz/realty-core/modules/crm/presentation/mappers"
	"github.com/jaydenmetz/realty-core/modules/crm/services"
	"github.com/jaydenmetz/realty-core/modules/registry/domain/identifier"
	"github.com/jaydenmetz/realty-core/pkg/httpapi"
)

type RecordsAPIController struct {
	records  *services.RecordService
	basePath string
}

func NewRecordsAPIController(records *services.RecordService) httpapi.Controller {
	return &RecordsAPIController{
		records:  records,
		basePath: "/api/v1/records",
	}
}

func (c *RecordsAPIController) Key() string {
	return c.basePath
}

func (c *RecordsAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/by-handle/{handle}", c.GetByHandle).Methods(http.MethodGet)
	router.HandleFunc("/by-code/{teamID}/{entityType}/{code}", c.GetByDisplayCode).Methods(http.MethodGet)
}

type createCommissionRequest struct {
	LeadSource      string `json:"lead_source"`
	GrossCommission string `json:"gross_commission"`
	RecognitionDate string `json:"recognition_date"`
}

type createRecordRequest struct {
	TeamID     string                   `json:"team_id"`
	EntityType string                   `json:"entity_type"`
	Payload    json.RawMessage          `json:"payload"`
	Commission *createCommissionRequest `json:"commission"`
}

func (c *RecordsAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "RECORD_INVALID_JSON", "invalid json", nil)
		return
	}

	teamID, err := uuid.Parse(strings.TrimSpace(req.TeamID))
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "RECORD_INVALID_TEAM", "team_id must be a uuid", nil)
		return
	}
	entityType, err := identifier.ParseEntityType(req.EntityType)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "RECORD_INVALID_ENTITY_TYPE", "unknown entity type", nil)
		return
	}

	dto := services.CreateDTO{
		TeamID:     teamID,
		EntityType: entityType,
		Payload:    req.Payload,
	}
	if req.Commission != nil {
		gross, err := decimal.NewFromString(strings.TrimSpace(req.Commission.GrossCommission))
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "RECORD_INVALID_GROSS", "gross_commission must be a decimal string", nil)
			return
		}
		recognized, err := time.Parse("2006-01-02", strings.TrimSpace(req.Commission.RecognitionDate))
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "RECORD_INVALID_DATE", "recognition_date must be YYYY-MM-DD", nil)
			return
		}
		dto.Commission = &services.CommissionDTO{
			LeadSource:      strings.TrimSpace(req.Commission.LeadSource),
			GrossCommission: gross,
			RecognitionDate: recognized,
		}
	}

	created, err := c.records.Create(r.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, team.ErrNotFound):
			_ = httpapi.WriteError(w, http.StatusNotFound, "RECORD_TEAM_NOT_FOUND", "team not found or inactive", nil)
		case errors.Is(err, identifier.ErrAllocationConflict):
			_ = httpapi.WriteError(w, http.StatusConflict, "RECORD_ALLOCATION_CONFLICT", "identifier allocation conflict, retry", nil)
		default:
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "RECORD_INTERNAL", "internal error", nil)
		}
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.CreatedToViewModel(created))
}

func (c *RecordsAPIController) GetByHandle(w http.ResponseWriter, r *http.Request) {
	handle := strings.TrimSpace(mux.Vars(r)["handle"])
	rec, err := c.records.GetByGlobalHandle(r.Context(), handle)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "RECORD_NOT_FOUND", "record not found", nil)
			return
		}
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "RECORD_INTERNAL", "internal error", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.RecordToViewModel(rec))
}

func (c *RecordsAPIController) GetByDisplayCode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	teamID, err := uuid.Parse(vars["teamID"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "RECORD_INVALID_TEAM", "team id must be a uuid", nil)
		return
	}
	entityType, err := identifier.ParseEntityType(vars["entityType"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "RECORD_INVALID_ENTITY_TYPE", "unknown entity type", nil)
		return
	}

	rec, err := c.records.GetByDisplayCode(r.Context(), teamID, entityType, strings.ToUpper(strings.TrimSpace(vars["code"])))
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "RECORD_NOT_FOUND", "record not found", nil)
			return
		}
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "RECORD_INTERNAL", "internal error", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.RecordToViewModel(rec))
}
