package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ifrs-console/internal/logger"
	"ifrs-console/internal/model"
	"ifrs-console/internal/view"
	"ifrs-console/internal/web"
)

type ReportHandler struct{ *Deps }

func NewReportHandler(d *Deps) *ReportHandler { return &ReportHandler{Deps: d} }

type ReportsBody struct {
	Doc      DocHeader
	Phase    view.Phase
	Error    string
	Reports  []model.Report
	Open     view.Expanded
	Types    []model.ReportType
	Selected model.ReportType
}

func (h *ReportHandler) load(c *gin.Context) (ReportsBody, bool) {
	id := c.Param("documentId")
	reports, err := h.API.ListReports(c.Request.Context(), token(c), id)
	if h.rejected(c, err) {
		return ReportsBody{}, false
	}
	body := ReportsBody{
		Doc:      DocHeader{Title: "Reports", DocumentID: id, Tab: "reports"},
		Phase:    view.MountPhase(err),
		Reports:  reports,
		Open:     view.ParseExpanded(c.QueryArray("open")),
		Types:    model.ReportTypes(),
		Selected: model.DefaultReportType,
	}
	if body.Phase == view.Error {
		body.Error = errorText(err)
	}
	return body, true
}

func (h *ReportHandler) page(c *gin.Context, banner *view.Banner, body ReportsBody) {
	render(c, http.StatusOK, "reports", web.Page{Title: "Reports", Nav: "upload", Banner: banner, Body: body})
}

func (h *ReportHandler) List(c *gin.Context) {
	if body, ok := h.load(c); ok {
		h.page(c, nil, body)
	}
}

// Generate asks the backend for a new draft and puts it at the top of the
// list, expanded.
func (h *ReportHandler) Generate(c *gin.Context) {
	id := c.Param("documentId")
	rt, err := model.ParseReportType(c.DefaultPostForm("report_type", string(model.DefaultReportType)))
	if err != nil {
		render(c, http.StatusBadRequest, "error", web.Page{Title: "Reports", Banner: &view.Banner{Kind: view.BannerError, Message: "Unknown report type."}})
		return
	}

	release, ok := h.acquire(c, "report.generate", id)
	if !ok {
		return
	}
	defer release()

	body, ok := h.load(c)
	if !ok {
		return
	}
	body.Selected = rt
	if body.Phase == view.Error {
		h.page(c, &view.Banner{Kind: view.BannerError, Message: body.Error}, body)
		return
	}

	report, err := h.API.GenerateReport(c.Request.Context(), token(c), id, rt)
	if h.rejected(c, err) {
		return
	}
	if err != nil {
		logger.Warn("report.generate.failed", "doc", id, "type", rt, "err", err)
		h.page(c, view.ErrorBanner(err, "Report generation failed."), body)
		return
	}
	logger.Info("report.generate.ok", "doc", id, "report", report.ID, "type", rt)
	body.Reports = view.Prepend(body.Reports, *report)
	body.Open = view.Expanded{report.ID: true}
	body.Phase = view.Loaded
	h.page(c, view.SuccessBanner(rt.Label()+" generated."), body)
}
