package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ifrs-console/internal/model"
	"ifrs-console/internal/view"
)

func TestComplianceShouldShowReadyToAnalyzeOn404(t *testing.T) {
	e := newTestEnv(t)
	cookie, _ := e.signIn(t, "tok-analyst")

	w := e.get(t, "/compliance/d1", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ready to analyze")
	assert.Contains(t, w.Body.String(), `action="/compliance/d1/run"`)
	assert.NotContains(t, w.Body.String(), "Something went wrong")
}

func TestComplianceShouldShowErrorOnServerFailure(t *testing.T) {
	e := newTestEnv(t)
	cookie, _ := e.signIn(t, "tok-analyst")
	e.backend.failWith("GET /analysis/d1", http.StatusInternalServerError, "Database timeout")

	body := e.get(t, "/compliance/d1", cookie).Body.String()
	assert.Contains(t, body, "Something went wrong")
	assert.Contains(t, body, "Database timeout")
	assert.NotContains(t, body, "Ready to analyze")
}

func TestComplianceShouldRenderScoresAndTiers(t *testing.T) {
	e := newTestEnv(t)
	e.backend.compliance = &model.ComplianceResult{ID: "cr1", DocumentID: "d1", S1Score: 70, S2Score: 39, GovernanceScore: 40, GapSummary: "Missing scope 3"}
	cookie, _ := e.signIn(t, "tok-analyst")

	body := e.get(t, "/compliance/d1", cookie).Body.String()
	assert.Contains(t, body, "IFRS S1")
	assert.Contains(t, body, "tier-good")
	assert.Contains(t, body, "tier-poor")
	assert.Contains(t, body, "tier-fair")
	assert.Contains(t, body, "Missing scope 3")
}

func TestRunComplianceShouldReplaceResult(t *testing.T) {
	e := newTestEnv(t)
	e.backend.compliance = &model.ComplianceResult{ID: "cr1", DocumentID: "d1", GapSummary: "old summary"}
	cookie, _ := e.signIn(t, "tok-analyst")

	w := e.post(t, "/compliance/d1/run", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, e.backend.count("GET /analysis/d1"), "mount read settles first")
	assert.Equal(t, 1, e.backend.count("POST /analysis/run/d1"))
	assert.Contains(t, w.Body.String(), "fresh run")
	assert.NotContains(t, w.Body.String(), "old summary")
	assert.Contains(t, w.Body.String(), "Analysis complete.")
}

func TestRunComplianceFailureShouldKeepPriorResult(t *testing.T) {
	e := newTestEnv(t)
	e.backend.compliance = &model.ComplianceResult{ID: "cr1", DocumentID: "d1", GapSummary: "old summary"}
	cookie, _ := e.signIn(t, "tok-analyst")
	e.backend.failWith("POST /analysis/run/d1", http.StatusBadGateway, "AI provider unavailable")

	body := e.post(t, "/compliance/d1/run", nil, cookie).Body.String()
	assert.Contains(t, body, "old summary")
	assert.Contains(t, body, "AI provider unavailable")
	assert.Contains(t, body, "banner-error")
}

func TestRunComplianceShouldNotTriggerWhenMountFails(t *testing.T) {
	e := newTestEnv(t)
	cookie, _ := e.signIn(t, "tok-analyst")
	e.backend.failWith("GET /analysis/d1", http.StatusInternalServerError, "Database timeout")

	w := e.post(t, "/compliance/d1/run", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, e.backend.count("POST /analysis/run/d1"))
	assert.Contains(t, w.Body.String(), "Database timeout")
	assert.Contains(t, w.Body.String(), `<a href="/compliance/d1">Try again</a>`, "retry goes to the page, not the action URL")
}

func TestFailedActionsShouldLinkBackToTheirPage(t *testing.T) {
	e := newTestEnv(t)
	cookie, _ := e.signIn(t, "tok-analyst")
	e.backend.failWith("GET /reports/d1", http.StatusInternalServerError, "Database timeout")
	e.backend.failWith("GET /climate/d1", http.StatusInternalServerError, "Database timeout")

	body := e.post(t, "/reports/d1/generate", url.Values{"report_type": {"board_summary"}}, cookie).Body.String()
	assert.Contains(t, body, `<a href="/reports/d1">Try again</a>`)
	body = e.post(t, "/climate/d1/run", nil, cookie).Body.String()
	assert.Contains(t, body, `<a href="/climate/d1">Try again</a>`)
	assert.NotContains(t, body, `href=""`)
}

func TestRunShouldRefuseWhileSameActionInFlight(t *testing.T) {
	e := newTestEnv(t)
	cookie, sid := e.signIn(t, "tok-analyst")
	release, ok := e.deps.Busy.TryAcquire(view.BusyKey(sid, "compliance.run", "d1"))
	require.True(t, ok)
	defer release()

	w := e.post(t, "/compliance/d1/run", nil, cookie)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "still running")
	assert.Empty(t, e.backend.callsExceptMe())

	// A different document is not blocked.
	other := e.post(t, "/compliance/d2/run", nil, cookie)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestClimateShouldRenderHeatmapSeverity(t *testing.T) {
	e := newTestEnv(t)
	s1, s3 := 1200.0, 56000.0
	e.backend.climate = &model.ClimateResult{
		ID: "cl1", DocumentID: "d1", PhysicalRiskScore: 62, TransitionRiskScore: 81, ScenarioAlignmentScore: 20,
		EmissionsScope1: &s1, EmissionsScope3: &s3,
		RiskHeatmapData: model.RiskHeatmap{SeverityMatrix: []model.SeverityItem{
			{Risk: "Coastal flooding", Likelihood: 5, Impact: 5},
			{Risk: "Carbon pricing", Likelihood: 3, Impact: 4},
		}},
	}
	cookie, _ := e.signIn(t, "tok-analyst")

	body := e.get(t, "/climate/d1", cookie).Body.String()
	assert.Contains(t, body, "Coastal flooding")
	assert.Contains(t, body, `<span class="sev sev-4">Critical</span>`)
	assert.Contains(t, body, `<span class="sev sev-3">High</span>`)
	assert.Contains(t, body, "Scope 3")
	assert.NotContains(t, body, "No heatmap data available.")
}

func TestClimateShouldShowEmptyHeatmapMessage(t *testing.T) {
	e := newTestEnv(t)
	e.backend.climate = &model.ClimateResult{ID: "cl1", DocumentID: "d1"}
	cookie, _ := e.signIn(t, "tok-analyst")

	body := e.get(t, "/climate/d1", cookie).Body.String()
	assert.Contains(t, body, "No heatmap data available.")
}

func TestDocumentAnalysisShouldRenderSections(t *testing.T) {
	e := newTestEnv(t)
	var a model.DocumentAnalysis
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "da1", "document_id": "d1", "analysis_version": "2",
		"scores": {"s1_overall": 81, "ifrs_readiness": 45},
		"overview": {"summary": "FY2024 sustainability report"},
		"governance": {"findings": ["Board committee exists"]}
	}`), &a))
	e.backend.analysis = &a
	cookie, _ := e.signIn(t, "tok-analyst")

	body := e.get(t, "/analysis/d1", cookie).Body.String()
	assert.Contains(t, body, "FY2024 sustainability report")
	assert.Contains(t, body, "Board committee exists")
	assert.Contains(t, body, `id="section-overview" open`)
	assert.NotContains(t, body, `id="section-governance" open`)

	opened := e.get(t, "/analysis/d1?open=governance", cookie).Body.String()
	assert.Contains(t, opened, `id="section-governance" open`)
	assert.NotContains(t, opened, `id="section-overview" open`)
}

func TestRunDocumentAnalysisFromEmptyShouldLoad(t *testing.T) {
	e := newTestEnv(t)
	cookie, _ := e.signIn(t, "tok-analyst")

	w := e.post(t, "/analysis/d1/run", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, e.backend.count("POST /document-analysis/run/d1"))
	assert.NotContains(t, w.Body.String(), "Ready to analyze")
	assert.Contains(t, w.Body.String(), "IFRS S1")
}
