package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/jaydenmetz/realty-core/modules/commission/presentation/controllers"
)

func newRouter() *mux.Router {
	r := mux.NewRouter()
	controllers.NewCommissionAPIController(nil).Register(r)
	return r
}

func TestGetRecordRejectsMalformedID(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/commissions/records/not-a-uuid", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "COMMISSION_INVALID_ID")
}

func TestListRecordsRequiresTeamID(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/commissions/records", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "COMMISSION_INVALID_TEAM")
}

func TestListRulesRejectsNonNumericYear(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/commissions/rules?year=twenty", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "COMMISSION_INVALID_YEAR")
}

func TestCorrectRejectsMissingReason(t *testing.T) {
	body := strings.NewReader(`{"gross_commission":"10000","recognition_date":"2025-01-10"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/commissions/records/11111111-1111-1111-1111-111111111111/corrections", body)
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "COMMISSION_REASON_REQUIRED")
}

func TestCorrectRejectsInvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/commissions/records/11111111-1111-1111-1111-111111111111/corrections", strings.NewReader("{"))
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "COMMISSION_INVALID_JSON")
}

func TestAddRuleRejectsMalformedThreshold(t *testing.T) {
	body := strings.NewReader(`{"effective_year":2026,"gci_threshold_min":"lots","split_percentage":"70"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/commissions/rules", body)
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "COMMISSION_INVALID_THRESHOLD")
}

func TestAddRuleRejectsMissingYear(t *testing.T) {
	body := strings.NewReader(`{"gci_threshold_min":"0","split_percentage":"70"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/commissions/rules", body)
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "COMMISSION_INVALID_YEAR")
}
