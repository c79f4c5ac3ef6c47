package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ifrs-console/internal/model"
	"ifrs-console/internal/view"
	"ifrs-console/internal/web"
)

type DashboardHandler struct{ *Deps }

func NewDashboardHandler(d *Deps) *DashboardHandler { return &DashboardHandler{Deps: d} }

type DashboardBody struct {
	Phase     view.Phase
	Error     string
	NoCompany bool
	Summary   *model.DashboardSummary
	Donuts    []view.Donut
	Heatmap   []view.HeatmapRow
}

func (h *DashboardHandler) Show(c *gin.Context) {
	user := currentUser(c)
	if user.CompanyID == "" {
		render(c, http.StatusOK, "dashboard", web.Page{Title: "Dashboard", Nav: "dashboard", Body: DashboardBody{Phase: view.Empty, NoCompany: true}})
		return
	}

	summary, err := h.API.DashboardSummary(c.Request.Context(), token(c), user.CompanyID)
	if h.rejected(c, err) {
		return
	}
	body := DashboardBody{Phase: view.MountPhase(err)}
	switch body.Phase {
	case view.Error:
		body.Error = errorText(err)
	case view.Loaded:
		body.Summary = summary
		body.Donuts = []view.Donut{
			view.NewDonut("Overall Compliance", view.NormalizeScore(summary.OverallComplianceScore)),
			view.NewDonut("Climate Risk", view.NormalizeScore(summary.ClimateRiskScore)),
		}
		body.Heatmap = view.HeatmapRows(summary.RiskHeatmap.SeverityMatrix)
	}
	render(c, http.StatusOK, "dashboard", web.Page{Title: "Dashboard", Nav: "dashboard", Body: body})
}
