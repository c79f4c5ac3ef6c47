package model

import (
	"encoding/json"
	"fmt"
)

// Role is the closed set of user roles issued by the backend.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
	RoleViewer  Role = "viewer"
)

var roles = []Role{RoleAdmin, RoleAnalyst, RoleViewer}

// Roles returns every valid role in display order.
func Roles() []Role { return append([]Role(nil), roles...) }

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleAnalyst, RoleViewer:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Badge is the CSS modifier used for role chips.
func (r Role) Badge() string {
	switch r {
	case RoleAdmin:
		return "badge-danger"
	case RoleAnalyst:
		return "badge-info"
	default:
		return "badge-neutral"
	}
}

// DocumentStatus is driven entirely by backend processing.
type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

func ParseDocumentStatus(s string) (DocumentStatus, error) {
	switch st := DocumentStatus(s); st {
	case StatusProcessing, StatusCompleted, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown document status %q", s)
}

func (s *DocumentStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParseDocumentStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Label is the short human status shown on the document list.
func (s DocumentStatus) Label() string {
	switch s {
	case StatusCompleted:
		return "Ready"
	case StatusFailed:
		return "Failed"
	default:
		return "Processing"
	}
}

func (s DocumentStatus) Badge() string {
	switch s {
	case StatusCompleted:
		return "badge-success"
	case StatusFailed:
		return "badge-danger"
	default:
		return "badge-warning"
	}
}

// ReportType enumerates the report drafts the backend can generate.
type ReportType string

const (
	ReportGovernanceDisclosure     ReportType = "governance_disclosure"
	ReportClimateStrategy          ReportType = "climate_strategy"
	ReportRiskManagement           ReportType = "risk_management"
	ReportBoardSummary             ReportType = "board_summary"
	ReportIntegratedSustainability ReportType = "integrated_sustainability"
)

// DefaultReportType is preselected in the generator form.
const DefaultReportType = ReportBoardSummary

var reportTypes = []ReportType{
	ReportGovernanceDisclosure,
	ReportClimateStrategy,
	ReportRiskManagement,
	ReportBoardSummary,
	ReportIntegratedSustainability,
}

func ReportTypes() []ReportType { return append([]ReportType(nil), reportTypes...) }

func ParseReportType(s string) (ReportType, error) {
	for _, t := range reportTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown report type %q", s)
}

func (t ReportType) Label() string {
	switch t {
	case ReportGovernanceDisclosure:
		return "Governance Disclosure"
	case ReportClimateStrategy:
		return "Climate Strategy"
	case ReportRiskManagement:
		return "Risk Management"
	case ReportBoardSummary:
		return "Board Summary"
	case ReportIntegratedSustainability:
		return "Integrated Sustainability Note"
	}
	return string(t)
}
