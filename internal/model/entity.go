package model

import "encoding/json"

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CompanyID string `json:"company_id"`
	CreatedAt Time   `json:"created_at"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

type Company struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Industry  string `json:"industry"`
	Region    string `json:"region"`
	CreatedAt Time   `json:"created_at"`
}

type Document struct {
	ID         string         `json:"id"`
	CompanyID  string         `json:"company_id"`
	UploadedBy string         `json:"uploaded_by"`
	FileName   string         `json:"file_name"`
	FileURL    string         `json:"file_url"`
	Status     DocumentStatus `json:"status"`
	UploadDate Time           `json:"upload_date"`
}

func (d Document) Ready() bool { return d.Status == StatusCompleted }

type Report struct {
	ID            string     `json:"id"`
	DocumentID    string     `json:"document_id"`
	ReportType    ReportType `json:"report_type"`
	GeneratedText string     `json:"generated_text"`
	CreatedAt     Time       `json:"created_at"`
}

type ComplianceResult struct {
	ID              string  `json:"id"`
	DocumentID      string  `json:"document_id"`
	S1Score         float64 `json:"s1_score"`
	S2Score         float64 `json:"s2_score"`
	GovernanceScore float64 `json:"governance_score"`
	StrategyScore   float64 `json:"strategy_score"`
	RiskScore       float64 `json:"risk_score"`
	MetricsScore    float64 `json:"metrics_score"`
	GapSummary      string  `json:"gap_summary"`
	CreatedAt       Time    `json:"created_at"`
}

// SeverityItem is one row of the risk severity matrix, rated 1-5 on both axes.
type SeverityItem struct {
	Risk       string  `json:"risk"`
	Likelihood float64 `json:"likelihood"`
	Impact     float64 `json:"impact"`
}

type RiskHeatmap struct {
	Physical       map[string]any `json:"physical,omitempty"`
	Transition     map[string]any `json:"transition,omitempty"`
	SeverityMatrix []SeverityItem `json:"severity_matrix"`
}

type ClimateResult struct {
	ID                     string      `json:"id"`
	DocumentID             string      `json:"document_id"`
	PhysicalRiskScore      float64     `json:"physical_risk_score"`
	TransitionRiskScore    float64     `json:"transition_risk_score"`
	ScenarioAlignmentScore float64     `json:"scenario_alignment_score"`
	EmissionsScope1        *float64    `json:"emissions_scope1"`
	EmissionsScope2        *float64    `json:"emissions_scope2"`
	EmissionsScope3        *float64    `json:"emissions_scope3"`
	RiskHeatmapData        RiskHeatmap `json:"risk_heatmap_data"`
	CreatedAt              Time        `json:"created_at"`
}

// Emissions returns the three scopes with absent values reported as zero.
func (c ClimateResult) Emissions() Emissions {
	return Emissions{Scope1: deref(c.EmissionsScope1), Scope2: deref(c.EmissionsScope2), Scope3: deref(c.EmissionsScope3)}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

type Emissions struct {
	Scope1 float64 `json:"scope1"`
	Scope2 float64 `json:"scope2"`
	Scope3 float64 `json:"scope3"`
}

// DocumentAnalysis keeps each section as raw JSON; the shape is owned by the backend.
type DocumentAnalysis struct {
	ID                string                     `json:"id"`
	DocumentID        string                     `json:"document_id"`
	AnalysisVersion   string                     `json:"analysis_version"`
	Scores            map[string]any             `json:"scores"`
	Overview          map[string]json.RawMessage `json:"overview"`
	Governance        map[string]json.RawMessage `json:"governance"`
	Strategy          map[string]json.RawMessage `json:"strategy"`
	RiskManagement    map[string]json.RawMessage `json:"risk_management"`
	MetricsTargets    map[string]json.RawMessage `json:"metrics_targets"`
	OverallAssessment map[string]json.RawMessage `json:"overall_assessment"`
	CreatedAt         Time                       `json:"created_at"`
}

type RecentReport struct {
	ID         string     `json:"id"`
	ReportType ReportType `json:"report_type"`
	CreatedAt  Time       `json:"created_at"`
}

type DashboardSummary struct {
	CompanyName            string         `json:"company_name"`
	OverallComplianceScore float64        `json:"overall_compliance_score"`
	ClimateRiskScore       float64        `json:"climate_risk_score"`
	EmissionsSummary       Emissions      `json:"emissions_summary"`
	RiskHeatmap            RiskHeatmap    `json:"risk_heatmap"`
	RecentReports          []RecentReport `json:"recent_reports"`
	DocumentCount          int            `json:"document_count"`
}

type AuditEntry struct {
	ID          string `json:"_id"`
	Action      string `json:"action"`
	TargetID    string `json:"target_id"`
	PerformedBy string `json:"performed_by"`
	Timestamp   Time   `json:"timestamp"`
}
