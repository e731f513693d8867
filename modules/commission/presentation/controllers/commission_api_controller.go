package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/jaydenmetz/realty-core/modules/commission/domain/commission"
	"github.com/jaydenmetz/realty-core/modules/commission/presentation/mappers"
	"github.com/jaydenmetz/realty-core/modules/commission/presentation/viewmodels"
	"github.com/jaydenmetz/realty-core/modules/commission/services"
	"github.com/jaydenmetz/realty-core/pkg/composables"
	"github.com/jaydenmetz/realty-core/pkg/configuration"
	"github.com/jaydenmetz/realty-core/pkg/httpapi"
)

type CommissionAPIController struct {
	engine   *services.TierEngine
	basePath string
}

func NewCommissionAPIController(engine *services.TierEngine) httpapi.Controller {
	return &CommissionAPIController{
		engine:   engine,
		basePath: "/api/v1/commissions",
	}
}

func (c *CommissionAPIController) Key() string {
	return c.basePath
}

func (c *CommissionAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/rules", c.ListRules).Methods(http.MethodGet)
	router.HandleFunc("/rules", c.AddRule).Methods(http.MethodPost)
	router.HandleFunc("/records", c.ListRecords).Methods(http.MethodGet)
	router.HandleFunc("/records/{id}", c.GetRecord).Methods(http.MethodGet)
	router.HandleFunc("/records/{id}/corrections", c.Correct).Methods(http.MethodPost)
}

func (c *CommissionAPIController) ListRules(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "COMMISSION_INVALID_YEAR", "year must be an integer", nil)
			return
		}
		year = parsed
	}

	rules, err := c.engine.ListRules(r.Context(), year)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "COMMISSION_INTERNAL", "internal error", nil)
		return
	}

	out := make([]*viewmodels.SplitRule, 0, len(rules))
	for _, rule := range rules {
		out = append(out, mappers.RuleToViewModel(rule))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"year": year, "items": out})
}

func (c *CommissionAPIController) ListRecords(w http.ResponseWriter, r *http.Request) {
	teamID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("team_id")))
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "COMMISSION_INVALID_TEAM", "team_id must be a uuid", nil)
		return
	}

	conf := configuration.Use()
	limit := conf.PageSize
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= conf.MaxPageSize {
			limit = parsed
		}
	}
	offset := 0
	if v := strings.TrimSpace(r.URL.Query().Get("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	records, err := c.engine.ListRecords(r.Context(), teamID, limit, offset)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "COMMISSION_INTERNAL", "internal error", nil)
		return
	}

	out := make([]*viewmodels.CommissionRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, mappers.RecordToViewModel(rec))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *CommissionAPIController) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "COMMISSION_INVALID_ID", "id must be a uuid", nil)
		return
	}

	rec, err := c.engine.GetRecord(r.Context(), id)
	if err != nil {
		if errors.Is(err, commission.ErrRecordNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "COMMISSION_NOT_FOUND", "record not found", nil)
			return
		}
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "COMMISSION_INTERNAL", "internal error", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.RecordToViewModel(rec))
}

type addRuleRequest struct {
	LeadSource      string `json:"lead_source"`
	EffectiveYear   int    `json:"effective_year"`
	ThresholdMin    string `json:"gci_threshold_min"`
	ThresholdMax    string `json:"gci_threshold_max"`
	SplitPercentage string `json:"split_percentage"`
	Notes           string `json:"notes"`
}

func (c *CommissionAPIController) AddRule(w http.ResponseWriter, r *http.Request) {
	var req addRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "COMMISSION_INVALID_JSON", "invalid json", nil)
		return
	}
	if req.EffectiveYear < 2000 {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "COMMISSION_INVALID_YEAR", "effective_year is required", nil)
		return
	}

	min, err := decimal.NewFromString(strings.TrimSpace(req.ThresholdMin))
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "COMMISSION_INVALID_THRESHOLD", "gci_threshold_min must be a decimal string", nil)
		return
	}
	var max *decimal.Decimal
	if v := strings.TrimSpace(req.ThresholdMax); v != "" {
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "COMMISSION_INVALID_THRESHOLD", "gci_threshold_max must be a decimal string", nil)
			return
		}
		max = &parsed
	}
	split, err := decimal.NewFromString(strings.TrimSpace(req.SplitPercentage))
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "COMMISSION_INVALID_SPLIT", "split_percentage must be a decimal string", nil)
		return
	}

	added, err := composables.InTxResult(r.Context(), func(txCtx context.Context) (commission.SplitRule, error) {
		return c.engine.AddRule(txCtx, commission.SplitRule{
			LeadSource:      strings.ToLower(strings.TrimSpace(req.LeadSource)),
			EffectiveYear:   req.EffectiveYear,
			ThresholdMin:    min,
			ThresholdMax:    max,
			SplitPercentage: split,
			Notes:           strings.TrimSpace(req.Notes),
		})
	})
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "COMMISSION_INVALID_RULE", err.Error(), nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.RuleToViewModel(added))
}

type correctionRequest struct {
	GrossCommission string `json:"gross_commission"`
	RecognitionDate string `json:"recognition_date"`
	LeadSource      string `json:"lead_source"`
	Reason          string `json:"reason"`
}

func (c *CommissionAPIController) Correct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "COMMISSION_INVALID_ID", "id must be a uuid", nil)
		return
	}

	var req correctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "COMMISSION_INVALID_JSON", "invalid json", nil)
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "COMMISSION_REASON_REQUIRED", "a correction reason is required", nil)
		return
	}

	gross, err := decimal.NewFromString(strings.TrimSpace(req.GrossCommission))
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "COMMISSION_INVALID_GROSS", "gross_commission must be a decimal string", nil)
		return
	}
	recognized, err := time.Parse("2006-01-02", strings.TrimSpace(req.RecognitionDate))
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "COMMISSION_INVALID_DATE", "recognition_date must be YYYY-MM-DD", nil)
		return
	}

	corrected, err := composables.InTxResult(r.Context(), func(txCtx context.Context) (commission.Record, error) {
		return c.engine.Correct(txCtx, id, services.CorrectionDTO{
			GrossCommission: gross,
			RecognitionDate: recognized,
			LeadSource:      strings.TrimSpace(req.LeadSource),
			Reason:          strings.TrimSpace(req.Reason),
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, commission.ErrRecordNotFound):
			_ = httpapi.WriteError(w, http.StatusNotFound, "COMMISSION_NOT_FOUND", "record not found", nil)
		case errors.Is(err, commission.ErrFrozenBreakdown):
			_ = httpapi.WriteError(w, http.StatusConflict, "COMMISSION_ALREADY_CORRECTED", "record already superseded", nil)
		default:
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "COMMISSION_INTERNAL", "internal error", nil)
		}
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.RecordToViewModel(corrected))
}
