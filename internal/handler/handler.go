package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ifrs-console/internal/apiclient"
	"ifrs-console/internal/logger"
	"ifrs-console/internal/middleware"
	"ifrs-console/internal/model"
	"ifrs-console/internal/session"
	"ifrs-console/internal/view"
	"ifrs-console/internal/web"
)

// API is the backend surface the pages use. *apiclient.Client implements it.
type API interface {
	DashboardSummary(ctx context.Context, token, companyID string) (*model.DashboardSummary, error)
	ListDocuments(ctx context.Context, token, companyID string) ([]model.Document, error)
	UploadDocument(ctx context.Context, token, filename string, r io.Reader) (*model.Document, error)
	DeleteDocument(ctx context.Context, token, id string) error
	Compliance(ctx context.Context, token, documentID string) (*model.ComplianceResult, error)
	RunCompliance(ctx context.Context, token, documentID string) (*model.ComplianceResult, error)
	Climate(ctx context.Context, token, documentID string) (*model.ClimateResult, error)
	RunClimate(ctx context.Context, token, documentID string) (*model.ClimateResult, error)
	DocumentAnalysis(ctx context.Context, token, documentID string) (*model.DocumentAnalysis, error)
	RunDocumentAnalysis(ctx context.Context, token, documentID string) (*model.DocumentAnalysis, error)
	ListReports(ctx context.Context, token, documentID string) ([]model.Report, error)
	GenerateReport(ctx context.Context, token, documentID string, t model.ReportType) (*model.Report, error)
	ListUsers(ctx context.Context, token string) ([]model.User, error)
	DeleteUser(ctx context.Context, token, id string) error
	CreateCompany(ctx context.Context, token string, req model.CompanyRequest) (*model.Company, error)
	AuditLog(ctx context.Context, token string) ([]model.AuditEntry, error)
	Health(ctx context.Context) (map[string]any, error)
}

var _ API = (*apiclient.Client)(nil)

// Deps are shared by every page handler.
type Deps struct {
	API      API
	Sessions *session.Manager
	Cookies  middleware.Cookies
	Busy     *view.Busy
}

func render(c *gin.Context, status int, name string, p web.Page) {
	if p.User == nil {
		p.User = middleware.CurrentSession(c).User()
	}
	if p.Path == "" {
		p.Path = web.PagePath(c.Request)
	}
	c.HTML(status, name, p)
}

func token(c *gin.Context) string { return middleware.CurrentSession(c).Token() }

func currentUser(c *gin.Context) *model.User { return middleware.CurrentSession(c).User() }

// rejected handles a backend refusal of the session token. 401 ends the
// session, 403 sends the user home. It reports whether the response is written.
func (d *Deps) rejected(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		st := middleware.CurrentSession(c)
		logger.Info("session.expired", "sid", st.ID, "path", c.FullPath())
		if lerr := d.Sessions.Logout(c.Request.Context(), st); lerr != nil {
			logger.Error("logout.failed", "err", lerr)
		}
		c.Redirect(http.StatusFound, "/login")
		return true
	case errors.Is(err, apiclient.ErrForbidden):
		c.Redirect(http.StatusFound, "/")
		return true
	case errors.Is(err, context.Canceled):
		// Client went away; nothing to render.
		c.Status(499)
		return true
	}
	return false
}

// acquire claims the busy slot for an action. When another request holds
// it, a "still running" page is written and ok is false.
func (d *Deps) acquire(c *gin.Context, action, resource string) (release func(), ok bool) {
	st := middleware.CurrentSession(c)
	release, ok = d.Busy.TryAcquire(view.BusyKey(st.ID, action, resource))
	if !ok {
		logger.Info("action.busy", "action", action, "resource", resource)
		render(c, http.StatusConflict, "error", web.Page{
			Title:  "Still running",
			Banner: view.InfoBanner("This action is still running. Refresh the page in a moment."),
		})
	}
	return release, ok
}

func errorText(err error) string {
	return apiclient.Detail(err, "Could not load data from the analysis service.")
}

// DocHeader is the title and tab bar shared by the per-document pages.
type DocHeader struct {
	Title      string
	DocumentID string
	Tab        string
}
