package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinsight/cdsengine/internal/catalog"
	"github.com/clinsight/cdsengine/internal/core/auth"
	"github.com/clinsight/cdsengine/internal/core/config"
	"github.com/clinsight/cdsengine/internal/types"
)

func testRules() []types.Rule {
	return []types.Rule{
		{
			ID:         "CKD_NSAID",
			Text:       "NSAID use in advanced chronic kidney disease",
			Category:   types.CategoryMedication,
			Severity:   types.SeverityError,
			Confidence: 0.95,
			Conditions: []types.Condition{
				{Concept: "eGFR", Operator: types.OpLt, Value: 30.0},
				{Concept: "medication", Operator: types.OpIn, Values: []string{"ibuprofen", "naproxen", "diclofenac"}},
			},
			Actions: []types.Action{
				{Type: types.ActionAlert, Message: "NSAID contraindicated in advanced CKD", Severity: types.SeverityError},
				{Type: types.ActionSuggestion, Message: "Consider acetaminophen for analgesia"},
				{
					Type:     types.ActionExplanation,
					Template: "eGFR {egfr} is below 30 while taking {med}.",
					Variables: []types.Variable{
						{Name: "egfr", Source: "condition.eGFR"},
						{Name: "med", Source: "snapshot.medication[0]"},
					},
					References: []types.Reference{{Text: "KDIGO CKD guideline", URL: "https://example.org/kdigo"}},
				},
			},
		},
		{
			ID:         "QT_Prolongation",
			Text:       "QT-prolonging drug with already prolonged QTc",
			Category:   types.CategoryMedication,
			Severity:   types.SeverityWarning,
			Confidence: 0.85,
			Conditions: []types.Condition{
				{Concept: "QTc", Operator: types.OpGt, Value: 450.0},
				{Concept: "medication", Operator: types.OpIn, Values: []string{"amiodarone", "sotalol"}},
			},
		},
	}
}

func newTestServer(t *testing.T, loaded bool) *echo.Echo {
	t.Helper()

	store := catalog.NewStore()
	if loaded {
		verrs, err := store.Reload(testRules())
		if err != nil {
			t.Fatalf("Reload() error = %v", err)
		}
		if len(verrs) != 0 {
			t.Fatalf("Reload() validation errors = %v", verrs)
		}
	}

	service, err := NewService(store, nil, config.DefaultServerConfig(), zerolog.Nop(), func() ([]types.Rule, error) {
		return testRules(), nil
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	e := echo.New()
	service.Register(e, auth.NewAuthenticator(nil))
	return e
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMatchRules_FiresAlert(t *testing.T) {
	e := newTestServer(t, true)

	rec := doJSON(e, http.MethodPost, "/match-rules", `{"eGFR": 25, "medication": ["ibuprofen"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var alerts []types.Alert
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("response decode: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("len(alerts) = %d, want 1", len(alerts))
	}

	a := alerts[0]
	if a.RuleID != "CKD_NSAID" {
		t.Errorf("RuleID = %q, want CKD_NSAID", a.RuleID)
	}
	if a.Severity != types.SeverityError {
		t.Errorf("Severity = %q, want error", a.Severity)
	}
	if a.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", a.Confidence)
	}
	if a.Message != "NSAID contraindicated in advanced CKD" {
		t.Errorf("Message = %q", a.Message)
	}
	if a.Explanation != "eGFR 25 is below 30 while taking ibuprofen." {
		t.Errorf("Explanation = %q", a.Explanation)
	}
	if a.ID == "" {
		t.Error("ID = empty, want generated alert id")
	}
}

func TestMatchRules_NoMatchReturnsEmptyList(t *testing.T) {
	e := newTestServer(t, true)

	rec := doJSON(e, http.MethodPost, "/match-rules", `{"eGFR": 45, "medication": ["ibuprofen"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want empty JSON array", body)
	}
}

func TestMatchRules_EmptySnapshot(t *testing.T) {
	e := newTestServer(t, true)

	rec := doJSON(e, http.MethodPost, "/match-rules", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMatchRules_NoCatalogLoaded(t *testing.T) {
	e := newTestServer(t, false)

	rec := doJSON(e, http.MethodPost, "/match-rules", `{"eGFR": 25}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestMatchRules_RankedOrder(t *testing.T) {
	e := newTestServer(t, true)

	rec := doJSON(e, http.MethodPost, "/match-rules",
		`{"eGFR": 25, "QTc": 470, "medication": ["ibuprofen", "amiodarone"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var alerts []types.Alert
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 2 {
		t.Fatalf("len(alerts) = %d, want 2", len(alerts))
	}
	// error outranks warning.
	if alerts[0].RuleID != "CKD_NSAID" || alerts[1].RuleID != "QT_Prolongation" {
		t.Errorf("order = [%s %s], want [CKD_NSAID QT_Prolongation]", alerts[0].RuleID, alerts[1].RuleID)
	}
}

func TestSuggestRules(t *testing.T) {
	e := newTestServer(t, true)

	rec := doJSON(e, http.MethodGet, "/suggest-rules?prefix=ckd", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Prefix      string   `json:"prefix"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Suggestions) != 1 || resp.Suggestions[0] != "ckdnsaid" {
		t.Errorf("Suggestions = %v, want [ckdnsaid]", resp.Suggestions)
	}
}

func TestSuggestRules_InvalidLimit(t *testing.T) {
	e := newTestServer(t, true)

	for _, limit := range []string{"0", "-3", "ten"} {
		rec := doJSON(e, http.MethodGet, "/suggest-rules?prefix=a&limit="+limit, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestExplainRule(t *testing.T) {
	e := newTestServer(t, true)

	rec := doJSON(e, http.MethodPost, "/explain-rule?rule_id=CKD_NSAID",
		`{"eGFR": 22, "medication": ["naproxen"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RuleID      string            `json:"rule_id"`
		Template    string            `json:"template"`
		Explanation string            `json:"explanation"`
		Suggestions []string          `json:"suggestions"`
		Guidelines  []types.Reference `json:"guidelines"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.RuleID != "CKD_NSAID" {
		t.Errorf("rule_id = %q", resp.RuleID)
	}
	if resp.Explanation != "eGFR 22 is below 30 while taking naproxen." {
		t.Errorf("explanation = %q", resp.Explanation)
	}
	if len(resp.Suggestions) != 1 || resp.Suggestions[0] != "Consider acetaminophen for analgesia" {
		t.Errorf("suggestions = %v", resp.Suggestions)
	}
	if len(resp.Guidelines) != 1 || resp.Guidelines[0].Text != "KDIGO CKD guideline" {
		t.Errorf("guidelines = %v", resp.Guidelines)
	}
}

func TestExplainRule_UnknownRule(t *testing.T) {
	e := newTestServer(t, true)

	rec := doJSON(e, http.MethodPost, "/explain-rule?rule_id=nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestExplainRule_MissingRuleID(t *testing.T) {
	e := newTestServer(t, true)

	rec := doJSON(e, http.MethodPost, "/explain-rule", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListAndGetRules(t *testing.T) {
	e := newTestServer(t, true)

	rec := doJSON(e, http.MethodGet, "/rules", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var list struct {
		Count   int      `json:"count"`
		RuleIDs []string `json:"rule_ids"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 2 {
		t.Errorf("count = %d, want 2", list.Count)
	}

	rec = doJSON(e, http.MethodGet, "/rules/QT_Prolongation", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var rule types.Rule
	if err := json.Unmarshal(rec.Body.Bytes(), &rule); err != nil {
		t.Fatal(err)
	}
	if rule.ID != "QT_Prolongation" {
		t.Errorf("ID = %q", rule.ID)
	}

	rec = doJSON(e, http.MethodGet, "/rules/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestReloadRules(t *testing.T) {
	e := newTestServer(t, false)

	rec := doJSON(e, http.MethodPost, "/reload-rules", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RulesLoaded      int      `json:"rules_loaded"`
		ValidationErrors []string `json:"validation_errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.RulesLoaded != 2 {
		t.Errorf("rules_loaded = %d, want 2", resp.RulesLoaded)
	}

	// The freshly loaded catalog now serves matches.
	rec = doJSON(e, http.MethodPost, "/match-rules", `{"eGFR": 25, "medication": ["ibuprofen"]}`)
	if rec.Code != http.StatusOK {
		t.Errorf("post-reload match status = %d, want 200", rec.Code)
	}
}

func TestDatabaseBackedEndpoints_UnavailableWithoutDatabase(t *testing.T) {
	e := newTestServer(t, true)

	tests := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodPut, "/rules/NEW", `{"id": "NEW"}`},
		{http.MethodDelete, "/rules/CKD_NSAID", ""},
		{http.MethodGet, "/rules/CKD_NSAID/alerts", ""},
		{http.MethodGet, "/rules/CKD_NSAID/feedback", ""},
	}

	for _, tt := range tests {
		rec := doJSON(e, tt.method, tt.target, tt.body)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: status = %d, want 503 without database", tt.method, tt.target, rec.Code)
		}
	}
}

func TestFeedback_RequiresDatabase(t *testing.T) {
	e := newTestServer(t, true)

	rec := doJSON(e, http.MethodPost, "/feedback",
		`{"alert_id": "0191e4a0-0000-7000-8000-000000000000", "rule_id": "CKD_NSAID", "helpful": true}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without database", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t, true)

	rec := doJSON(e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Status      string `json:"status"`
		RulesLoaded int    `json:"rules_loaded"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.RulesLoaded != 2 {
		t.Errorf("healthz = %+v, want ok with 2 rules", resp)
	}
}
