package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"ifrs-console/internal/model"
)

// --- auth ---

func (c *Client) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	var resp model.TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", model.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.TokenResponse, error) {
	var resp model.TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	var u model.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// --- dashboard ---

func (c *Client) DashboardSummary(ctx context.Context, token, companyID string) (*model.DashboardSummary, error) {
	var s model.DashboardSummary
	if err := c.doJSON(ctx, http.MethodGet, "/dashboard/summary/"+url.PathEscape(companyID), token, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// --- documents ---

func (c *Client) ListDocuments(ctx context.Context, token, companyID string) ([]model.Document, error) {
	var docs []model.Document
	if err := c.doJSON(ctx, http.MethodGet, "/documents/company/"+url.PathEscape(companyID), token, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) UploadDocument(ctx context.Context, token, filename string, r io.Reader) (*model.Document, error) {
	var doc model.Document
	if err := c.uploadFile(ctx, "/documents/upload", token, "file", filename, r, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) DeleteDocument(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), token, nil, nil)
}

// --- compliance ---

func (c *Client) Compliance(ctx context.Context, token, documentID string) (*model.ComplianceResult, error) {
	var r model.ComplianceResult
	if err := c.doJSON(ctx, http.MethodGet, "/analysis/"+url.PathEscape(documentID), token, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) RunCompliance(ctx context.Context, token, documentID string) (*model.ComplianceResult, error) {
	var r model.ComplianceResult
	if err := c.doJSON(ctx, http.MethodPost, "/analysis/run/"+url.PathEscape(documentID), token, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// --- climate ---

func (c *Client) Climate(ctx context.Context, token, documentID string) (*model.ClimateResult, error) {
	var r model.ClimateResult
	if err := c.doJSON(ctx, http.MethodGet, "/climate/"+url.PathEscape(documentID), token, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) RunClimate(ctx context.Context, token, documentID string) (*model.ClimateResult, error) {
	var r model.ClimateResult
	if err := c.doJSON(ctx, http.MethodPost, "/climate/analyze/"+url.PathEscape(documentID), token, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// --- full document analysis ---

func (c *Client) DocumentAnalysis(ctx context.Context, token, documentID string) (*model.DocumentAnalysis, error) {
	var r model.DocumentAnalysis
	if err := c.doJSON(ctx, http.MethodGet, "/document-analysis/"+url.PathEscape(documentID), token, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) RunDocumentAnalysis(ctx context.Context, token, documentID string) (*model.DocumentAnalysis, error) {
	var r model.DocumentAnalysis
	if err := c.doJSON(ctx, http.MethodPost, "/document-analysis/run/"+url.PathEscape(documentID), token, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// --- reports ---

func (c *Client) ListReports(ctx context.Context, token, documentID string) ([]model.Report, error) {
	var reports []model.Report
	if err := c.doJSON(ctx, http.MethodGet, "/reports/"+url.PathEscape(documentID), token, nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *Client) GenerateReport(ctx context.Context, token, documentID string, t model.ReportType) (*model.Report, error) {
	var r model.Report
	body := model.GenerateReportRequest{DocumentID: documentID, ReportType: t}
	if err := c.doJSON(ctx, http.MethodPost, "/reports/generate", token, body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// --- admin ---

func (c *Client) ListUsers(ctx context.Context, token string) ([]model.User, error) {
	var users []model.User
	if err := c.doJSON(ctx, http.MethodGet, "/admin/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) CreateCompany(ctx context.Context, token string, req model.CompanyRequest) (*model.Company, error) {
	var co model.Company
	if err := c.doJSON(ctx, http.MethodPost, "/admin/companies", token, req, &co); err != nil {
		return nil, err
	}
	return &co, nil
}

func (c *Client) AuditLog(ctx context.Context, token string) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	if err := c.doJSON(ctx, http.MethodGet, "/admin/audit", token, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Health probes the backend's unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.doJSON(ctx, http.MethodGet, "/health", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
